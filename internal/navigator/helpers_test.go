package navigator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/roach88/isomorph/internal/dispatch"
	"github.com/roach88/isomorph/internal/engine"
	"github.com/roach88/isomorph/internal/render"
	"github.com/roach88/isomorph/internal/router"
	"github.com/roach88/isomorph/internal/value"
	"github.com/roach88/isomorph/internal/view"
)

const shell = `<!DOCTYPE html><html><head>{head}</head><body><div id="app">{body}</div></body></html>`

func page(format string, args ...func(context.Context) string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		vals := make([]any, len(args))
		for i, arg := range args {
			vals[i] = arg(ctx)
		}
		_, err := fmt.Fprintf(w, format, vals...)
		return err
	})
}

func userName(ctx context.Context) string {
	return value.Text(view.Get(ctx, view.At("user", "name")))
}

func routeError(ctx context.Context) string {
	return view.RouteFrom(ctx).Error
}

func routePath(ctx context.Context) string {
	return view.RouteFrom(ctx).Path
}

var titleHead = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
	_, err := fmt.Fprintf(w, "<title>%s</title>", view.RouteFrom(ctx).DocumentTitle())
	return err
})

// newRoot builds the Context every test serves from.
func newRoot(t *testing.T, withErrorRoutes bool) *engine.Context {
	t.Helper()
	c := engine.New(engine.WithIDGenerator(engine.NewSequenceGenerator("nav")))

	c.CreateStore("user", value.Object{"name": value.String("nobody")}).
		Handle(dispatch.Succeeded("user:load"), func(s *dispatch.Store, payload value.Value) error {
			s.Set("name", payload)
			return nil
		})
	c.CreateAction("user:load", func(_ context.Context, _ *engine.Context, params value.Value) (value.Value, error) {
		return params.(value.Object)["userName"], nil
	})
	c.CreateAction("go:about", func(_ context.Context, c *engine.Context, _ value.Value) (value.Value, error) {
		return nil, c.NavigateToRoute("about", nil)
	})
	c.CreateAction("explode", func(context.Context, *engine.Context, value.Value) (value.Value, error) {
		return nil, errors.New("kaboom")
	})

	require.NoError(t, c.CreateRoute("home", router.Definition{
		Path:  "/",
		Title: "Home",
		Head:  titleHead,
		Body:  page(`<h1>Home</h1><a id="about-link" href="/about"><span id="about-label">About</span></a><a id="away" href="http://elsewhere.test/">Away</a>`),
	}))
	require.NoError(t, c.CreateRoute("about", router.Definition{
		Path:  "/about",
		Title: "About",
		Head:  titleHead,
		Body:  page(`<h1>About</h1><a id="home-link" href="/">Home</a>`),
	}))
	require.NoError(t, c.CreateRoute("user", router.Definition{
		Path:      "/user/:userName",
		Action:    "user:load",
		Head:      titleHead,
		TitleFunc: func(r *router.Route) string { return "User " + r.Params["userName"] },
		Body:      page(`<h1>%s</h1>`, userName),
	}))
	require.NoError(t, c.CreateRoute("untitled", router.Definition{
		Path: "/untitled",
		Body: page(`<h1>Untitled</h1>`),
	}))
	require.NoError(t, c.CreateRoute("redirect", router.Definition{
		Path:   "/go",
		Action: "go:about",
		Body:   page(`<h1>never</h1>`),
	}))
	require.NoError(t, c.CreateRoute("fail", router.Definition{
		Path:   "/fail",
		Action: "explode",
		Body:   page(`<h1>never</h1>`),
	}))
	require.NoError(t, c.CreateRoute("broken", router.Definition{
		Path: "/broken",
		Body: templ.ComponentFunc(func(context.Context, io.Writer) error {
			return errors.New("bad markup")
		}),
	}))

	if withErrorRoutes {
		require.NoError(t, c.CreateErrorRoute(404, router.Definition{
			Title: "Not Found",
			Head:  titleHead,
			Body:  page(`<h1>Missing Content</h1><p>No content for <code>%s</code></p>`, routePath),
		}))
		require.NoError(t, c.CreateErrorRoute(500, router.Definition{
			Title: "Error",
			Head:  titleHead,
			Body:  page(`<h1>Error</h1><p>%s</p>`, routeError),
		}))
	}
	return c
}

func newStatic(t *testing.T) *render.Static {
	t.Helper()
	s, err := render.NewStatic(render.StaticOptions{Template: shell})
	require.NoError(t, err)
	return s
}
