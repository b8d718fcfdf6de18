package render

import (
	"context"

	"github.com/roach88/isomorph/internal/dom"
	"github.com/roach88/isomorph/internal/engine"
	"github.com/roach88/isomorph/internal/errs"
	"github.com/roach88/isomorph/internal/router"
)

// DefaultRootID is the id of the element the DOM renderer renders into.
const DefaultRootID = "app"

// DOMOptions configures a DOM renderer.
type DOMOptions struct {
	RootID     string
	GlobalName string
}

// DOM renders Route bodies into a live document.
type DOM struct {
	rootID string
	global string
}

// NewDOM creates a DOM renderer.
func NewDOM(opts DOMOptions) *DOM {
	d := &DOM{rootID: opts.RootID, global: opts.GlobalName}
	if d.rootID == "" {
		d.rootID = DefaultRootID
	}
	if d.global == "" {
		d.global = DefaultGlobalName
	}
	return d
}

// GlobalName returns the window property the snapshot is read from.
func (d *DOM) GlobalName() string {
	return d.global
}

// Root returns the element Routes render into.
func (d *DOM) Root(doc dom.Document) (dom.Element, error) {
	root := doc.ElementByID(d.rootID)
	if root == nil {
		return nil, errs.Configuration(d.rootID, "root element not found")
	}
	return root, nil
}

// Render replaces root's content with route's body.
func (d *DOM) Render(ctx context.Context, root dom.Element, route *router.Route, c *engine.Context) error {
	if route == nil || route.Body == nil {
		return errs.Render(routeName(route), errNoBody)
	}

	body, err := renderComponent(componentContext(ctx, route, c), route.Name, route.Body)
	if err != nil {
		return err
	}
	if err := root.SetInnerHTML(body); err != nil {
		return errs.Render(route.Name, err)
	}
	return nil
}

// Rehydrate applies the snapshot the server assigned to the window global
// to c. Reports whether a snapshot was present.
func (d *DOM) Rehydrate(w dom.Window, c *engine.Context) (bool, error) {
	raw, ok := w.Global(d.global)
	if !ok {
		return false, nil
	}
	if err := c.FromJSON([]byte(raw)); err != nil {
		return true, err
	}
	return true, nil
}
