// Package view is what components see of the application: the resolved
// Route and a capability set for reading Stores, performing actions and
// building links. Both travel on the context.Context that templ hands to
// every component.
package view

import (
	"context"

	"github.com/roach88/isomorph/internal/dispatch"
	"github.com/roach88/isomorph/internal/router"
	"github.com/roach88/isomorph/internal/value"
)

// Capabilities is the function set a component may call.
// *engine.Context implements it.
type Capabilities interface {
	PerformAction(ctx context.Context, name string, params value.Value) (value.Value, error)
	GetStore(name string) *dispatch.Store
	GetRouteURL(name string, params map[string]string) (string, bool)
	NavigateToRoute(name string, params map[string]string) error
}

type routeKey struct{}

type capabilitiesKey struct{}

// WithRoute returns a copy of ctx carrying route.
func WithRoute(ctx context.Context, route *router.Route) context.Context {
	return context.WithValue(ctx, routeKey{}, route)
}

// RouteFrom returns the Route carried by ctx, or nil.
func RouteFrom(ctx context.Context) *router.Route {
	route, _ := ctx.Value(routeKey{}).(*router.Route)
	return route
}

// WithCapabilities returns a copy of ctx carrying caps.
func WithCapabilities(ctx context.Context, caps Capabilities) context.Context {
	return context.WithValue(ctx, capabilitiesKey{}, caps)
}

// CapabilitiesFrom returns the Capabilities carried by ctx, or nil.
func CapabilitiesFrom(ctx context.Context) Capabilities {
	caps, _ := ctx.Value(capabilitiesKey{}).(Capabilities)
	return caps
}

// URL renders the URL of the named route, or "#" when it cannot be built.
func URL(ctx context.Context, name string, params map[string]string) string {
	caps := CapabilitiesFrom(ctx)
	if caps == nil {
		return "#"
	}
	loc, ok := caps.GetRouteURL(name, params)
	if !ok {
		return "#"
	}
	return loc
}

// Get reads the value at p through the Capabilities on ctx. Missing Stores
// and keys read as Null.
func Get(ctx context.Context, p Path) value.Value {
	caps := CapabilitiesFrom(ctx)
	if caps == nil {
		return value.Null{}
	}
	s := caps.GetStore(p.Store)
	if s == nil {
		return value.Null{}
	}
	v, ok := s.Get(p.Key)
	if !ok {
		return value.Null{}
	}
	return v
}

// Param returns the named param of the Route on ctx.
func Param(ctx context.Context, name string) string {
	route := RouteFrom(ctx)
	if route == nil {
		return ""
	}
	return route.Params[name]
}

// Prop returns the named prop of the Route on ctx, or Null.
func Prop(ctx context.Context, name string) value.Value {
	route := RouteFrom(ctx)
	if route == nil {
		return value.Null{}
	}
	v, ok := route.Props[name]
	if !ok {
		return value.Null{}
	}
	return v
}
