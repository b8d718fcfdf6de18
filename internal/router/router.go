// Package router maps URL paths to named Routes.
//
// A Router owns a route table and composes a Matcher that does the path
// work. Registered definitions are never handed out directly: GetRoute and
// friends return a fresh *Route on every call, so callers may fill in or
// modify the copy freely.
package router

import (
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/a-h/templ"

	"github.com/roach88/isomorph/internal/errs"
	"github.com/roach88/isomorph/internal/value"
)

// Definition describes a route at registration time.
type Definition struct {
	// Path is the path template, e.g. "/user/:userName". Required for
	// regular routes, ignored for error routes.
	Path string

	// Body renders the page content. Required.
	Body templ.Component

	// Head renders into the document head. Optional.
	Head templ.Component

	// Action names the action performed before rendering. Optional.
	Action string

	// Title is the document title.
	Title string

	// TitleFunc computes the title from the resolved route. Takes
	// precedence over Title.
	TitleFunc func(*Route) string

	// Props are static values passed to the components.
	Props value.Object

	// Method is the HTTP method served. Defaults to GET.
	Method string
}

// Route is a resolved route.
type Route struct {
	Name      string
	Template  string
	Path      string
	Params    map[string]string
	Query     url.Values
	Body      templ.Component
	Head      templ.Component
	Action    string
	Title     string
	TitleFunc func(*Route) string
	Props     value.Object
	Method    string
	Status    int
	Error     string
}

// DocumentTitle returns TitleFunc's result when set, otherwise Title.
func (r *Route) DocumentTitle() string {
	if r.TitleFunc != nil {
		return r.TitleFunc(r)
	}
	return r.Title
}

// IsError reports whether r was resolved from an error route.
func (r *Route) IsError() bool {
	return r.Status >= 400
}

// clone returns a copy of r whose maps are independent of r's.
func (r *Route) clone() *Route {
	out := *r
	out.Params = make(map[string]string, len(r.Params))
	for k, v := range r.Params {
		out.Params[k] = v
	}
	out.Query = make(url.Values, len(r.Query))
	for k, v := range r.Query {
		out.Query[k] = append([]string(nil), v...)
	}
	out.Props = value.CloneObject(r.Props)
	return &out
}

// RouteInfo summarizes a registered route.
type RouteInfo struct {
	Name   string `json:"name"`
	Path   string `json:"path,omitempty"`
	Method string `json:"method"`
	Action string `json:"action,omitempty"`
	Title  string `json:"title,omitempty"`
	Status int    `json:"status"`
}

// Option configures a Router.
type Option func(*Router)

// WithMatcher replaces the default SegmentMatcher.
func WithMatcher(m Matcher) Option {
	return func(r *Router) {
		if m != nil {
			r.matcher = m
		}
	}
}

// Router resolves locations to Routes.
//
// Thread-safety: safe for concurrent use. Lookups take a read lock, so a
// route table shared by many request Contexts never blocks them on each
// other.
type Router struct {
	mu          sync.RWMutex
	matcher     Matcher
	routes      map[string]*Route
	order       []string
	errorRoutes map[int]*Route
	errorOrder  []int
}

// New creates an empty Router.
func New(opts ...Option) *Router {
	r := &Router{
		matcher:     NewSegmentMatcher(),
		routes:      make(map[string]*Route),
		errorRoutes: make(map[int]*Route),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddRoute registers def under name, replacing any route of that name.
// A replaced route keeps its original matching priority.
func (r *Router) AddRoute(name string, def Definition) error {
	if name == "" {
		return errs.Configuration(name, "route name is required")
	}
	if def.Path == "" {
		return errs.Configuration(name, "route definitions require a path")
	}
	if def.Body == nil {
		return errs.Configuration(name, "route definitions require a body component")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.matcher.Add(name, def.Path); err != nil {
		return errs.Configuration(name, "invalid path: %v", err)
	}
	if _, ok := r.routes[name]; !ok {
		r.order = append(r.order, name)
	}
	r.routes[name] = newRoute(name, def, 200)
	return nil
}

// AddErrorRoute registers def as the route rendered for status.
func (r *Router) AddErrorRoute(status int, def Definition) error {
	if !validStatus(status) {
		return errs.Configuration(StatusName(status), "invalid error route status %d", status)
	}
	if def.Body == nil {
		return errs.Configuration(StatusName(status), "error route definitions require a body component")
	}

	route := newRoute(StatusName(status), def, status)
	route.Template = ""
	route.Error = StatusText(status)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.errorRoutes[status]; !ok {
		r.errorOrder = append(r.errorOrder, status)
	}
	r.errorRoutes[status] = route
	return nil
}

// AddNamedErrorRoute registers def for the status named name, e.g.
// "NotFound" or "BadRequest".
func (r *Router) AddNamedErrorRoute(name string, def Definition) error {
	status, ok := StatusCode(name)
	if !ok {
		return errs.Configuration(name, "unknown HTTP status name")
	}
	return r.AddErrorRoute(status, def)
}

// GetRoute resolves location, an absolute URL or a path with an optional
// query, to a Route. Returns nil when nothing matches.
func (r *Router) GetRoute(location string) *Route {
	u, err := url.Parse(location)
	if err != nil {
		return nil
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.matcher.Match(path)
	if !ok {
		return nil
	}
	def, ok := r.routes[m.Name]
	if !ok {
		return nil
	}

	route := def.clone()
	route.Path = u.Path
	if route.Path == "" {
		route.Path = "/"
	}
	route.Params = m.Params
	route.Query = u.Query()
	return route
}

// GetErrorRoute returns the route registered for status with Status and
// Error filled in. An empty message uses the canonical reason phrase.
// Returns nil when no route is registered for status.
func (r *Router) GetErrorRoute(status int, message string) *Route {
	r.mu.RLock()
	def, ok := r.errorRoutes[status]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	route := def.clone()
	route.Status = status
	route.Error = message
	if route.Error == "" {
		route.Error = StatusText(status)
	}
	return route
}

// GetNamedErrorRoute is GetErrorRoute addressed by status name.
func (r *Router) GetNamedErrorRoute(name, message string) *Route {
	status, ok := StatusCode(name)
	if !ok {
		return nil
	}
	return r.GetErrorRoute(status, message)
}

// GetRouteURL renders the path for the route named name. Params consumed
// by the template are path-escaped into it; the rest become the query
// string, sorted by key. Reports false for unknown names or missing
// template params.
func (r *Router) GetRouteURL(name string, params map[string]string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.routes[name]; !ok {
		return "", false
	}
	path, rest, ok := r.matcher.Build(name, params)
	if !ok {
		return "", false
	}
	if len(rest) == 0 {
		return path, true
	}

	q := make(url.Values, len(rest))
	for k, v := range rest {
		q.Set(k, v)
	}
	return path + "?" + q.Encode(), true
}

// Routes returns the registered regular routes in registration order,
// followed by the error routes in status order.
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RouteInfo, 0, len(r.order)+len(r.errorOrder))
	for _, name := range r.order {
		out = append(out, r.routes[name].info())
	}

	statuses := append([]int(nil), r.errorOrder...)
	sort.Ints(statuses)
	for _, status := range statuses {
		out = append(out, r.errorRoutes[status].info())
	}
	return out
}

// IsSameDomain reports whether a and b address the same host. A location
// without a host, such as a relative path, matches any host.
func IsSameDomain(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	if ua.Host == "" || ub.Host == "" {
		return true
	}
	return ua.Host == ub.Host
}

func newRoute(name string, def Definition, status int) *Route {
	method := strings.ToUpper(def.Method)
	if method == "" {
		method = "GET"
	}
	return &Route{
		Name:      name,
		Template:  def.Path,
		Body:      def.Body,
		Head:      def.Head,
		Action:    def.Action,
		Title:     def.Title,
		TitleFunc: def.TitleFunc,
		Props:     value.CloneObject(def.Props),
		Method:    method,
		Status:    status,
	}
}

func (r *Route) info() RouteInfo {
	return RouteInfo{
		Name:   r.Name,
		Path:   r.Template,
		Method: r.Method,
		Action: r.Action,
		Title:  r.Title,
		Status: r.Status,
	}
}
