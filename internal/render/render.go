// Package render turns a Route and a Context into markup.
//
// Static renders a full HTML document on the server, filling the {head} and
// {body} slots of a template and appending the Context snapshot as a
// script the client reads before its first render. DOM renders a Route's
// body into a root element on the client and rehydrates a Context from the
// snapshot the server embedded.
package render

import (
	"bytes"
	"context"
	"errors"

	"github.com/a-h/templ"

	"github.com/roach88/isomorph/internal/engine"
	"github.com/roach88/isomorph/internal/errs"
	"github.com/roach88/isomorph/internal/router"
	"github.com/roach88/isomorph/internal/view"
)

// DefaultGlobalName is the window property holding the snapshot.
const DefaultGlobalName = "LITTLEST_ISOMORPH_CONTEXT"

// HTMLRenderer renders a Route to a complete HTML document.
type HTMLRenderer interface {
	Render(ctx context.Context, route *router.Route, c *engine.Context) (string, error)
}

// errNoBody is the cause reported when a Route has no body component.
var errNoBody = errors.New("no body component found")

// componentContext returns ctx carrying route and, when c is set, c as the
// component capabilities.
func componentContext(ctx context.Context, route *router.Route, c *engine.Context) context.Context {
	ctx = view.WithRoute(ctx, route)
	if c != nil {
		ctx = view.WithCapabilities(ctx, c)
	}
	return ctx
}

// renderComponent renders comp to a string, wrapping failures as Render
// errors for the named route.
func renderComponent(ctx context.Context, name string, comp templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := comp.Render(ctx, &buf); err != nil {
		return "", errs.Render(name, err)
	}
	return buf.String(), nil
}

func routeName(route *router.Route) string {
	if route == nil {
		return ""
	}
	return route.Name
}
