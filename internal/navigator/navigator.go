// Package navigator runs one request or one client navigation: resolve the
// Route, perform its action, render, then apply the transport's side
// effect. HTTP writes a response; DOM replaces the root element and pushes
// browser history.
//
// Both variants fall back to the 404 route when nothing matches and
// re-route action and render failures to the 500 route. Without those
// routes the failure is returned to the caller.
package navigator

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/roach88/isomorph/internal/engine"
	"github.com/roach88/isomorph/internal/errs"
	"github.com/roach88/isomorph/internal/router"
	"github.com/roach88/isomorph/internal/value"
)

// ErrorFunc writes the response for a failure no error route could absorb.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// Option configures a navigator.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	errorFunc ErrorFunc
	onError   func(error)
}

// WithLogger sets the navigator's logger. Defaults to the root Context's.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithErrorFunc replaces the HTTP navigator's plain-text failure response.
func WithErrorFunc(fn ErrorFunc) Option {
	return func(o *options) {
		o.errorFunc = fn
	}
}

// WithErrorHandler receives failures of event-driven DOM navigations,
// which have no caller to return them to. Defaults to logging them.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

func buildOptions(c *engine.Context, opts []Option) options {
	o := options{logger: c.Logger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type contextKey struct{}

// WithContext returns a copy of ctx carrying the request Context c.
func WithContext(ctx context.Context, c *engine.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ContextFrom returns the request Context carried by ctx, or nil.
func ContextFrom(ctx context.Context) *engine.Context {
	c, _ := ctx.Value(contextKey{}).(*engine.Context)
	return c
}

// resolve returns the Route for location, falling back to the 404 route.
func resolve(r *router.Router, location string) (*router.Route, error) {
	if route := r.GetRoute(location); route != nil {
		return route, nil
	}
	if route := r.GetErrorRoute(404, ""); route != nil {
		route.Path = location
		return route, nil
	}
	return nil, errs.RouteNotFound(location)
}

// actionParams converts a Route's params into the action's argument.
func actionParams(route *router.Route) value.Value {
	params := make(value.Object, len(route.Params))
	for k, v := range route.Params {
		params[k] = value.String(v)
	}
	return params
}

// errorMessage returns the message shown on the 500 page: the innermost
// cause of a categorized error, or the error text itself.
func errorMessage(err error) string {
	var e *errs.Error
	if errors.As(err, &e) && e.Err != nil {
		return errorMessage(e.Err)
	}
	return err.Error()
}

// advance moves c to phase, logging instead of failing when the move is
// out of order.
func advance(logger *slog.Logger, c *engine.Context, phase engine.Phase) {
	if c == nil {
		return
	}
	if err := c.Transition(phase); err != nil {
		logger.Debug("lifecycle transition skipped", "context_id", c.ID(), "error", err)
	}
}
