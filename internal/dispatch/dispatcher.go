package dispatch

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/roach88/isomorph/internal/value"
)

// ActionFunc is the behavior behind an Action.
type ActionFunc func(ctx context.Context, params value.Value) (value.Value, error)

// Action is a named function whose outcome is dispatched to every Store.
type Action struct {
	name string
	fn   ActionFunc
	d    *Dispatcher
}

// Name returns the action's name.
func (a *Action) Name() string {
	return a.name
}

// Perform runs the action and dispatches its started, succeeded or failed
// events. The action's own error is returned unwrapped so callers can
// classify it; a Store handler error is returned after the succeeded event.
func (a *Action) Perform(ctx context.Context, params value.Value) (value.Value, error) {
	if params == nil {
		params = value.Null{}
	}

	if err := a.d.Dispatch(ctx, Started(a.name), params); err != nil {
		return nil, err
	}

	result, err := a.fn(ctx, params)
	if err != nil {
		if derr := a.d.Dispatch(ctx, Failed(a.name), value.String(err.Error())); derr != nil {
			a.d.logger.Warn("failed-event handler error",
				"action", a.name,
				"error", derr,
			)
		}
		return nil, err
	}
	if result == nil {
		result = value.Null{}
	}

	if err := a.d.Dispatch(ctx, Succeeded(a.name), result); err != nil {
		return result, err
	}
	return result, nil
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher's logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// Dispatcher creates and owns Stores and Actions and routes action events to
// Store handlers in Store creation order.
//
// Thread-safety: safe for concurrent use.
type Dispatcher struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	stores  map[string]*Store
	order   []string
	actions map[string]*Action
}

// New creates an empty Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger:  slog.New(slog.DiscardHandler),
		stores:  make(map[string]*Store),
		actions: make(map[string]*Action),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CreateStore creates a Store named name seeded with a copy of initial.
// An existing Store with that name is replaced but keeps its dispatch slot.
func (d *Dispatcher) CreateStore(name string, initial value.Object) *Store {
	s := NewStore(name, initial)

	d.mu.Lock()
	defer d.mu.Unlock()
	if old, ok := d.stores[name]; ok {
		old.Close()
	} else {
		d.order = append(d.order, name)
	}
	d.stores[name] = s
	return s
}

// Store returns the named Store or nil.
func (d *Dispatcher) Store(name string) *Store {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stores[name]
}

// Stores returns every Store in creation order.
func (d *Dispatcher) Stores() []*Store {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Store, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.stores[name])
	}
	return out
}

// StoreNames returns the Store names in sorted order.
func (d *Dispatcher) StoreNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := append([]string(nil), d.order...)
	sort.Strings(names)
	return names
}

// CreateAction registers fn under name, replacing any earlier action.
func (d *Dispatcher) CreateAction(name string, fn ActionFunc) *Action {
	a := &Action{name: name, fn: fn, d: d}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions[name] = a
	return a
}

// Action returns the named Action or nil.
func (d *Dispatcher) Action(name string) *Action {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.actions[name]
}

// ActionNames returns the action names in sorted order.
func (d *Dispatcher) ActionNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.actions))
	for name := range d.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch delivers ev with payload to every Store in creation order.
// Stops at the first handler error.
func (d *Dispatcher) Dispatch(ctx context.Context, ev ActionEvent, payload value.Value) error {
	stores := d.Stores()

	d.logger.Debug("dispatch",
		"event", ev.String(),
		"stores", len(stores),
	)

	for _, s := range stores {
		if err := s.receive(ctx, ev, payload); err != nil {
			return err
		}
	}
	return nil
}

// Close drops every Store subscription.
func (d *Dispatcher) Close() {
	for _, s := range d.Stores() {
		s.Close()
	}
}
