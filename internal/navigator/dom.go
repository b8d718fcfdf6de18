package navigator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/isomorph/internal/dom"
	"github.com/roach88/isomorph/internal/engine"
	"github.com/roach88/isomorph/internal/errs"
	"github.com/roach88/isomorph/internal/render"
	"github.com/roach88/isomorph/internal/router"
)

// NavigateOptions controls one DOM navigation.
type NavigateOptions struct {
	// PerformAction runs the Route's action before rendering.
	PerformAction bool
	// PushState records the location in session history.
	PushState bool
}

// StartOptions controls how a page boots.
type StartOptions struct {
	// PerformAction runs the first Route's action even when the server
	// snapshot was found. Without a snapshot the action always runs.
	PerformAction bool
}

// DOM navigates a live document. It works on one long-lived Context: the
// page's, rehydrated from the server snapshot.
//
// Navigations may overlap when a click or popstate arrives while an action
// is still running. Only the most recently started navigation renders; the
// others finish their action and are discarded.
type DOM struct {
	window   dom.Window
	c        *engine.Context
	renderer *render.DOM
	logger   *slog.Logger
	onError  func(error)

	gen atomic.Uint64

	mu       sync.Mutex
	ctx      context.Context
	started  bool
	hydrated bool
}

// NewDOM creates a DOM navigator for window.
func NewDOM(window dom.Window, c *engine.Context, renderer *render.DOM, opts ...Option) (*DOM, error) {
	if window == nil {
		return nil, errs.Configuration("", "missing a valid window")
	}
	if c == nil {
		return nil, errs.Configuration("", "missing a valid context")
	}
	if renderer == nil {
		renderer = render.NewDOM(render.DOMOptions{})
	}

	o := buildOptions(c, opts)
	n := &DOM{
		window:   window,
		c:        c,
		renderer: renderer,
		logger:   o.logger,
		onError:  o.onError,
		ctx:      context.Background(),
	}
	if n.onError == nil {
		n.onError = func(err error) {
			n.logger.Error("navigation failed", "error", err)
		}
	}
	return n, nil
}

// Navigate renders the Route for location into the root element.
//
// Locations on another host are ignored. Unmatched locations render the 404
// route; action and render failures render the 500 route. When neither
// exists the failure is returned and the document is left untouched. The
// document title becomes the Route's title, or stays as it was when the
// Route has none.
func (n *DOM) Navigate(ctx context.Context, location string, opts NavigateOptions) error {
	if !router.IsSameDomain(location, n.window.Location()) {
		n.logger.Debug("ignoring cross-domain navigation", "location", location)
		return nil
	}

	route, err := resolve(n.c.Router(), location)
	if err != nil {
		return err
	}
	gen := n.gen.Add(1)
	advance(n.logger, n.c, engine.PhaseRoutesResolved)

	if opts.PerformAction && route.Action != "" {
		if _, err := n.c.PerformAction(ctx, route.Action, actionParams(route)); err != nil {
			return n.renderError(ctx, gen, location, opts, err)
		}
		advance(n.logger, n.c, engine.PhaseActionPerformed)
	}

	if err := n.render(ctx, gen, location, route, opts); err != nil {
		if errs.IsRender(err) {
			return n.renderError(ctx, gen, location, opts, err)
		}
		return err
	}
	return nil
}

// HandleClick navigates to the href of the clicked element or its nearest
// ancestor with one. Clicks with a modifier key held, and links to other
// hosts, keep the browser's default behavior.
func (n *DOM) HandleClick(ev *dom.Event) {
	if ev == nil || ev.Modified() {
		return
	}

	var href string
	for el := ev.Target; el != nil; el = el.Parent() {
		if href = el.Href(); href != "" {
			break
		}
	}
	if href == "" || !router.IsSameDomain(href, n.window.Location()) {
		return
	}

	ev.PreventDefault()
	n.navigateAsync(href, NavigateOptions{PerformAction: true, PushState: true})
}

// Start boots the page: it rehydrates the Context from the server snapshot,
// then listens for popstate, DOMContentLoaded, link clicks and navigate
// events. ctx bounds every navigation Start triggers. Starting twice fails.
//
// The returned stop function removes every listener Start added.
func (n *DOM) Start(ctx context.Context, opts StartOptions) (stop func(), err error) {
	n.mu.Lock()
	if n.started {
		n.mu.Unlock()
		return nil, errs.Configuration("", "navigator already started")
	}
	n.started = true
	n.ctx = ctx
	n.mu.Unlock()

	found, err := n.renderer.Rehydrate(n.window, n.c)
	if err != nil {
		return nil, err
	}
	if found {
		n.mu.Lock()
		n.hydrated = true
		n.mu.Unlock()
		advance(n.logger, n.c, engine.PhaseRehydrated)
		n.logger.Debug("context rehydrated", "global", n.renderer.GlobalName())
	}

	doc := n.window.Document()
	removers := []func(){
		n.window.AddEventListener(dom.EventPopState, func(*dom.Event) {
			n.navigateAsync(n.window.Location(), NavigateOptions{PerformAction: true})
		}),
		doc.AddEventListener(dom.EventDOMContentLoaded, func(*dom.Event) {
			n.navigateAsync(n.window.Location(), NavigateOptions{
				PerformAction: !found || opts.PerformAction,
			})
		}),
		doc.AddEventListener(dom.EventClick, n.HandleClick),
		n.c.OnNavigate(func(ev engine.NavigateEvent) {
			n.navigateAsync(ev.Location, NavigateOptions{PerformAction: true, PushState: true})
		}),
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, remove := range removers {
				remove()
			}
		})
	}, nil
}

// Rehydrated reports whether Start found a server snapshot.
func (n *DOM) Rehydrated() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.hydrated
}

// navigateAsync runs an event-driven navigation, reporting failures to the
// error handler.
func (n *DOM) navigateAsync(location string, opts NavigateOptions) {
	n.mu.Lock()
	ctx := n.ctx
	n.mu.Unlock()

	if err := n.Navigate(ctx, location, opts); err != nil {
		n.onError(err)
	}
}

// render writes route into the document unless a later navigation started
// in the meantime.
func (n *DOM) render(ctx context.Context, gen uint64, location string, route *router.Route, opts NavigateOptions) error {
	if n.gen.Load() != gen {
		n.logger.Debug("discarding stale navigation", "location", location)
		return nil
	}

	doc := n.window.Document()
	root, err := n.renderer.Root(doc)
	if err != nil {
		return err
	}
	if err := n.renderer.Render(ctx, root, route, n.c); err != nil {
		return err
	}
	if n.gen.Load() != gen {
		return nil
	}

	title := route.DocumentTitle()
	if title != "" {
		doc.SetTitle(title)
	} else {
		title = doc.Title()
	}
	if opts.PushState {
		n.window.History().PushState(title, location)
	}

	advance(n.logger, n.c, engine.PhaseRendered)
	n.mu.Lock()
	started := n.started
	n.mu.Unlock()
	if started {
		advance(n.logger, n.c, engine.PhaseListening)
	}

	n.logger.Debug("navigated",
		"location", location,
		"route", route.Name,
		"status", route.Status,
	)
	return nil
}

// renderError renders the 500 route for cause, or returns cause when there
// is none. It keeps the failed navigation's gen, so a navigation started
// since then wins.
func (n *DOM) renderError(ctx context.Context, gen uint64, location string, opts NavigateOptions, cause error) error {
	if n.gen.Load() != gen {
		n.logger.Debug("discarding stale failure", "location", location, "error", cause)
		return nil
	}

	route := n.c.Router().GetErrorRoute(500, errorMessage(cause))
	if route == nil {
		return cause
	}
	route.Path = location

	advance(n.logger, n.c, engine.PhaseRoutesResolved)
	if err := n.render(ctx, gen, location, route, opts); err != nil {
		return errors.Join(cause, err)
	}
	return nil
}
