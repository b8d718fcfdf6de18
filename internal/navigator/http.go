package navigator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/roach88/isomorph/internal/engine"
	"github.com/roach88/isomorph/internal/errs"
	"github.com/roach88/isomorph/internal/render"
	"github.com/roach88/isomorph/internal/router"
)

// Result is the outcome of serving one location.
type Result struct {
	Status   int
	HTML     string
	Redirect string
	Route    *router.Route
}

// HTTP serves Routes over net/http. Every request gets its own child of the
// root Context.
//
// Thread-safety: safe for concurrent use.
type HTTP struct {
	root     *engine.Context
	renderer render.HTMLRenderer
	logger   *slog.Logger
	onError  ErrorFunc
}

// NewHTTP creates an HTTP navigator over root.
func NewHTTP(root *engine.Context, renderer render.HTMLRenderer, opts ...Option) (*HTTP, error) {
	if root == nil {
		return nil, errs.Configuration("", "missing a valid context")
	}
	if renderer == nil {
		return nil, errs.Configuration("", "missing a valid renderer")
	}

	o := buildOptions(root, opts)
	onError := o.errorFunc
	if onError == nil {
		onError = plainTextError
	}
	return &HTTP{
		root:     root,
		renderer: renderer,
		logger:   o.logger,
		onError:  onError,
	}, nil
}

// Middleware serves GET requests and passes every other method, HEAD
// included, to next. The request's child Context is available to downstream code via
// ContextFrom.
func (n *HTTP) Middleware(next http.Handler) http.Handler {
	if next == nil {
		next = http.NotFoundHandler()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		c := n.root.GetChild()
		defer c.Dispose()
		r = r.WithContext(WithContext(r.Context(), c))

		res, err := n.Serve(r.Context(), r.URL.RequestURI(), c)
		if err != nil {
			n.logger.Error("request failed",
				"context_id", c.ID(),
				"path", r.URL.Path,
				"error", err,
			)
			n.onError(w, r, err)
			return
		}

		n.write(w, r, res)
		n.logger.Info("request served",
			"context_id", c.ID(),
			"method", r.Method,
			"path", r.URL.Path,
			"route", res.Route.Name,
			"status", res.Status,
			"duration", time.Since(start),
		)
	})
}

// ServeHTTP serves GET requests and rejects every other method.
func (n *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})).ServeHTTP(w, r)
}

// Serve resolves location, performs the Route's action against c, and
// renders. A nil c serves on a fresh child of the root Context, disposed
// before Serve returns.
//
// A NavigateToRoute during the action or render turns the result into a
// redirect. Action and render failures re-route to the 500 route; without
// one, the failure is returned. No matching route and no 404 route fails
// with a RouteNotFound error.
func (n *HTTP) Serve(ctx context.Context, location string, c *engine.Context) (*Result, error) {
	if c == nil {
		c = n.root.GetChild()
		defer c.Dispose()
	}

	route, err := resolve(c.Router(), location)
	if err != nil {
		return nil, err
	}
	advance(n.logger, c, engine.PhaseRoutesResolved)

	var redirect string
	cancel := c.OnNavigate(func(ev engine.NavigateEvent) {
		if redirect == "" {
			redirect = ev.Location
		}
	})
	defer cancel()

	if route.Action != "" {
		if _, err := c.PerformAction(ctx, route.Action, actionParams(route)); err != nil {
			return n.serveError(ctx, c, err)
		}
		advance(n.logger, c, engine.PhaseActionPerformed)
	}
	if redirect != "" {
		return &Result{Status: http.StatusFound, Redirect: redirect, Route: route}, nil
	}

	html, err := n.renderer.Render(ctx, route, c)
	if err != nil {
		return n.serveError(ctx, c, err)
	}
	if redirect != "" {
		return &Result{Status: http.StatusFound, Redirect: redirect, Route: route}, nil
	}
	advance(n.logger, c, engine.PhaseRendered)

	return &Result{Status: route.Status, HTML: html, Route: route}, nil
}

// serveError renders the 500 route for cause.
func (n *HTTP) serveError(ctx context.Context, c *engine.Context, cause error) (*Result, error) {
	route := c.Router().GetErrorRoute(http.StatusInternalServerError, errorMessage(cause))
	if route == nil {
		return nil, cause
	}

	n.logger.Warn("serving error route",
		"context_id", c.ID(),
		"error", cause,
	)
	advance(n.logger, c, engine.PhaseRoutesResolved)

	html, err := n.renderer.Render(ctx, route, c)
	if err != nil {
		return nil, errors.Join(cause, err)
	}
	advance(n.logger, c, engine.PhaseRendered)
	return &Result{Status: route.Status, HTML: html, Route: route}, nil
}

func (n *HTTP) write(w http.ResponseWriter, r *http.Request, res *Result) {
	if res.Redirect != "" {
		http.Redirect(w, r, res.Redirect, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(res.Status)
	if _, err := io.WriteString(w, res.HTML); err != nil {
		n.logger.Warn("write response", "error", err)
	}
}

// plainTextError is the default ErrorFunc.
func plainTextError(w http.ResponseWriter, _ *http.Request, err error) {
	status := http.StatusInternalServerError
	if errs.IsRouteNotFound(err) {
		status = http.StatusNotFound
	}
	http.Error(w, http.StatusText(status)+": "+err.Error(), status)
}
