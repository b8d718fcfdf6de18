// Package domtest is a headless implementation of the dom interfaces backed
// by golang.org/x/net/html, for driving the client-side navigator from
// server-rendered markup in tests and from the CLI.
package domtest

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/roach88/isomorph/internal/dom"
)

// globalPattern matches `window.NAME = JSON;` as emitted by the static
// renderer.
var globalPattern = regexp.MustCompile(`(?s)^\s*window\.([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*(.*?);?\s*$`)

type listeners struct {
	mu     sync.Mutex
	nextID int
	byType map[string]map[int]dom.Listener
}

func (l *listeners) add(typ string, fn dom.Listener) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.byType == nil {
		l.byType = make(map[string]map[int]dom.Listener)
	}
	if l.byType[typ] == nil {
		l.byType[typ] = make(map[int]dom.Listener)
	}
	l.nextID++
	id := l.nextID
	l.byType[typ][id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.byType[typ], id)
	}
}

func (l *listeners) dispatch(ev *dom.Event) {
	l.mu.Lock()
	registered := l.byType[ev.Type]
	ids := make([]int, 0, len(registered))
	for id := range registered {
		ids = append(ids, id)
	}
	l.mu.Unlock()

	slices.Sort(ids)
	for _, id := range ids {
		l.mu.Lock()
		fn, ok := l.byType[ev.Type][id]
		l.mu.Unlock()
		if ok {
			fn(ev)
		}
	}
}

func (l *listeners) count(typ string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byType[typ])
}

// Window is a headless dom.Window.
type Window struct {
	mu       sync.Mutex
	location string
	globals  map[string]string
	doc      *Document
	history  *History
	events   listeners
}

var _ dom.Window = (*Window)(nil)

// NewWindow parses markup as the loaded page at location. Scripts of the
// form `window.NAME = JSON;` become globals.
func NewWindow(location, markup string) (*Window, error) {
	if _, err := url.Parse(location); err != nil {
		return nil, fmt.Errorf("parse location: %w", err)
	}

	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	w := &Window{
		location: location,
		globals:  make(map[string]string),
		doc:      &Document{root: root},
	}
	w.history = &History{window: w, entries: []Entry{{URL: location}}}
	w.collectGlobals(root)
	return w, nil
}

// Location implements dom.Window.
func (w *Window) Location() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.location
}

// SetLocation moves the window without touching history.
func (w *Window) SetLocation(location string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.location = resolve(w.location, location)
}

// Document implements dom.Window.
func (w *Window) Document() dom.Document {
	return w.doc
}

// Doc returns the concrete Document.
func (w *Window) Doc() *Document {
	return w.doc
}

// History implements dom.Window.
func (w *Window) History() dom.History {
	return w.history
}

// Hist returns the concrete History.
func (w *Window) Hist() *History {
	return w.history
}

// Global implements dom.Window.
func (w *Window) Global(name string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.globals[name]
	return v, ok
}

// SetGlobal assigns raw JSON to window.<name>.
func (w *Window) SetGlobal(name, raw string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.globals[name] = raw
}

// AddEventListener implements dom.Window.
func (w *Window) AddEventListener(typ string, fn dom.Listener) func() {
	return w.events.add(typ, fn)
}

// ListenerCount returns the number of window listeners for typ.
func (w *Window) ListenerCount(typ string) int {
	return w.events.count(typ)
}

// Dispatch delivers ev to the window's listeners.
func (w *Window) Dispatch(ev *dom.Event) {
	w.events.dispatch(ev)
}

// Back moves one entry back in history and dispatches popstate. Reports
// false when already at the first entry.
func (w *Window) Back() bool {
	entry, ok := w.history.back()
	if !ok {
		return false
	}
	w.mu.Lock()
	w.location = entry.URL
	w.mu.Unlock()
	w.Dispatch(&dom.Event{Type: dom.EventPopState})
	return true
}

// Load dispatches DOMContentLoaded on the document.
func (w *Window) Load() {
	w.doc.Dispatch(&dom.Event{Type: dom.EventDOMContentLoaded})
}

// Click dispatches a click on el to the document and reports whether a
// listener prevented the default action.
func (w *Window) Click(el dom.Element, mods ...func(*dom.Event)) bool {
	ev := &dom.Event{Type: dom.EventClick, Target: el}
	for _, mod := range mods {
		mod(ev)
	}
	w.doc.Dispatch(ev)
	return ev.DefaultPrevented()
}

// WithCtrl holds the control key during a Click.
func WithCtrl(ev *dom.Event) { ev.CtrlKey = true }

// WithShift holds the shift key during a Click.
func WithShift(ev *dom.Event) { ev.ShiftKey = true }

// WithMeta holds the meta key during a Click.
func WithMeta(ev *dom.Event) { ev.MetaKey = true }

// WithAlt holds the alt key during a Click.
func WithAlt(ev *dom.Event) { ev.AltKey = true }

func (w *Window) collectGlobals(n *html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Script {
		var buf bytes.Buffer
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				buf.WriteString(c.Data)
			}
		}
		if m := globalPattern.FindStringSubmatch(buf.String()); m != nil {
			w.globals[m[1]] = strings.TrimSpace(m[2])
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.collectGlobals(c)
	}
}

// resolve resolves ref against base, returning ref unchanged when either
// fails to parse.
func resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
