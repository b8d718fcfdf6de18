package engine

import (
	"github.com/roach88/isomorph/internal/errs"
)

// NavigateEvent asks the active navigator to move to another route.
type NavigateEvent struct {
	Route    string
	Params   map[string]string
	Location string
}

// OnNavigate registers fn for navigate events and returns a function that
// removes it.
func (c *Context) OnNavigate(fn func(NavigateEvent)) (cancel func()) {
	c.navMu.Lock()
	defer c.navMu.Unlock()
	c.navNext++
	id := c.navNext
	c.navigates[id] = fn
	return func() {
		c.navMu.Lock()
		defer c.navMu.Unlock()
		delete(c.navigates, id)
	}
}

// NavigateToRoute resolves the named route's URL and emits a NavigateEvent
// to every listener. Actions use it to request a redirect without knowing
// which transport serves them.
func (c *Context) NavigateToRoute(name string, params map[string]string) error {
	loc, ok := c.GetRouteURL(name, params)
	if !ok {
		return &errs.Error{
			Code:    errs.CodeRouteNotFound,
			Message: "cannot navigate to unknown route",
			Name:    name,
			Status:  404,
		}
	}

	ev := NavigateEvent{Route: name, Params: params, Location: loc}
	c.logger.Debug("navigate", "route", name, "location", loc)

	c.navMu.Lock()
	listeners := make([]func(NavigateEvent), 0, len(c.navigates))
	for id := uint64(1); id <= c.navNext; id++ {
		if fn, ok := c.navigates[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	c.navMu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
	return nil
}
