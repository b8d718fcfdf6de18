package domtest

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/roach88/isomorph/internal/dom"
)

// Document is a headless dom.Document over a parsed node tree.
//
// Thread-safety: tree access is serialized by one mutex shared with the
// Elements the Document hands out.
type Document struct {
	mu     sync.Mutex
	root   *html.Node
	events listeners
}

var _ dom.Document = (*Document)(nil)

// Title implements dom.Document.
func (d *Document) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := findAtom(d.root, atom.Title)
	if t == nil {
		return ""
	}
	return strings.TrimSpace(textContent(t))
}

// SetTitle implements dom.Document. A missing <title> is created in <head>.
func (d *Document) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := findAtom(d.root, atom.Title)
	if t == nil {
		head := findAtom(d.root, atom.Head)
		if head == nil {
			return
		}
		t = &html.Node{Type: html.ElementNode, Data: "title", DataAtom: atom.Title}
		head.AppendChild(t)
	}
	for c := t.FirstChild; c != nil; c = t.FirstChild {
		t.RemoveChild(c)
	}
	t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
}

// ElementByID implements dom.Document.
func (d *Document) ElementByID(id string) dom.Element {
	el := d.Find(func(n *html.Node) bool { return attr(n, "id") == id })
	if el == nil {
		return nil
	}
	return el
}

// Find returns the first element, in document order, satisfying match.
func (d *Document) Find(match func(*html.Node) bool) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := find(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && match(n)
	})
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

// Link returns the first <a> whose text contains text.
func (d *Document) Link(text string) *Element {
	return d.Find(func(n *html.Node) bool {
		return n.DataAtom == atom.A && strings.Contains(textContent(n), text)
	})
}

// Text returns the text content of the whole document.
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return textContent(d.root)
}

// HTML renders the whole document.
func (d *Document) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return buf.String(), nil
}

// AddEventListener implements dom.Document.
func (d *Document) AddEventListener(typ string, fn dom.Listener) func() {
	return d.events.add(typ, fn)
}

// ListenerCount returns the number of document listeners for typ.
func (d *Document) ListenerCount(typ string) int {
	return d.events.count(typ)
}

// Dispatch delivers ev to the document's listeners.
func (d *Document) Dispatch(ev *dom.Event) {
	d.events.dispatch(ev)
}

// Element is a headless dom.Element.
type Element struct {
	doc  *Document
	node *html.Node
}

var _ dom.Element = (*Element)(nil)

// Node returns the underlying node.
func (e *Element) Node() *html.Node {
	return e.node
}

// Tag returns the element's tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the named attribute, or "".
func (e *Element) Attr(name string) string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return attr(e.node, name)
}

// Href implements dom.Element.
func (e *Element) Href() string {
	return e.Attr("href")
}

// Parent implements dom.Element.
func (e *Element) Parent() dom.Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return &Element{doc: e.doc, node: p}
}

// Text returns the element's text content.
func (e *Element) Text() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return textContent(e.node)
}

// InnerHTML implements dom.Element.
func (e *Element) InnerHTML() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}

// SetInnerHTML implements dom.Element.
func (e *Element) SetInnerHTML(markup string) error {
	parent := &html.Node{Type: html.ElementNode, Data: e.node.Data, DataAtom: e.node.DataAtom}
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}

	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for c := e.node.FirstChild; c != nil; c = e.node.FirstChild {
		e.node.RemoveChild(c)
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAtom(n *html.Node, a atom.Atom) *html.Node {
	return find(n, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	})
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Script {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
