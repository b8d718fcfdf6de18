package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/isomorph/internal/dispatch"
	"github.com/roach88/isomorph/internal/errs"
	"github.com/roach88/isomorph/internal/router"
	"github.com/roach88/isomorph/internal/value"
)

// ActionFunc is the behavior behind a Context action. c is the Context the
// action was performed on; on a child Context it is the child.
type ActionFunc func(ctx context.Context, c *Context, params value.Value) (value.Value, error)

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the Context's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.baseLogger = l
		}
	}
}

// WithRouter sets the Context's Router.
func WithRouter(r *router.Router) Option {
	return func(c *Context) {
		if r != nil {
			c.router = r
		}
	}
}

// WithIDGenerator sets the generator for Context IDs.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *Context) {
		if g != nil {
			c.idGen = g
		}
	}
}

// Context owns a Router, a Dispatcher holding Actions and Stores, and the
// replay log used to build isolated children.
//
// The root Context is built once at startup and then used read-only: every
// request or page load works on a child from GetChild.
//
// Thread-safety: safe for concurrent use. Concurrent GetChild calls on a
// shared root never block each other.
type Context struct {
	mu           sync.RWMutex
	id           string
	parentID     string
	baseLogger   *slog.Logger
	logger       *slog.Logger
	router       *router.Router
	dispatcher   *dispatch.Dispatcher
	idGen        IDGenerator
	steps        []step
	replaySource *Context
	phase        Phase

	navMu     sync.Mutex
	navNext   uint64
	navigates map[uint64]func(NavigateEvent)
}

// New creates a root Context.
func New(opts ...Option) *Context {
	c := &Context{
		baseLogger: slog.New(slog.DiscardHandler),
		idGen:      UUIDv7Generator{},
		navigates:  make(map[uint64]func(NavigateEvent)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.router == nil {
		c.router = router.New()
	}

	c.id = c.idGen.Generate()
	c.logger = c.baseLogger.With("context_id", c.id)
	c.dispatcher = dispatch.New(dispatch.WithLogger(c.logger))
	return c
}

// ID returns the Context's ID.
func (c *Context) ID() string {
	return c.id
}

// ParentID returns the ID of the Context this one was cloned from, or "".
func (c *Context) ParentID() string {
	return c.parentID
}

// Logger returns the Context's logger, tagged with its ID.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// Router returns the Context's Router.
func (c *Context) Router() *router.Router {
	return c.router
}

// CreateAction registers fn under name, bound to this Context, and records
// the call for replay. Re-registering a name overwrites it.
func (c *Context) CreateAction(name string, fn ActionFunc) *dispatch.Action {
	action := c.dispatcher.CreateAction(name, func(ctx context.Context, params value.Value) (value.Value, error) {
		return fn(ctx, c, params)
	})
	c.record(actionStep(name, fn))
	return action
}

// PerformAction performs the named action and returns its result.
//
// Unknown names fail with an ActionNotFound error. The action's own failure,
// or a Store handler failure, is wrapped as an ActionExecution error. The
// call blocks until the action returns; ctx bounds it.
func (c *Context) PerformAction(ctx context.Context, name string, params value.Value) (value.Value, error) {
	action := c.dispatcher.Action(name)
	if action == nil {
		return nil, errs.ActionNotFound(name)
	}

	c.logger.Debug("performing action", "action", name)

	result, err := action.Perform(ctx, params)
	if err != nil {
		c.logger.Debug("action failed", "action", name, "error", err)
		return nil, errs.ActionExecution(name, err)
	}
	return result, nil
}

// CreateStore creates a Store seeded with a copy of initial and records the
// call for replay. While replaying into a child, the Store is seeded from
// the parent's current Store data instead.
func (c *Context) CreateStore(name string, initial value.Object) *StoreBinding {
	seed := initial
	if parent := c.replaySource; parent != nil {
		if ps := parent.GetStore(name); ps != nil {
			seed = ps.ToObject()
		}
	}

	s := c.dispatcher.CreateStore(name, seed)
	c.record(storeStep(name, value.CloneObject(initial)))
	return &StoreBinding{Store: s, c: c}
}

// GetStore returns the named Store, or nil.
func (c *Context) GetStore(name string) *dispatch.Store {
	return c.dispatcher.Store(name)
}

// Bind returns a StoreBinding for an existing Store, or nil.
func (c *Context) Bind(name string) *StoreBinding {
	s := c.dispatcher.Store(name)
	if s == nil {
		return nil
	}
	return &StoreBinding{Store: s, c: c}
}

// StoreNames returns the Store names in sorted order.
func (c *Context) StoreNames() []string {
	return c.dispatcher.StoreNames()
}

// ActionNames returns the action names in sorted order.
func (c *Context) ActionNames() []string {
	return c.dispatcher.ActionNames()
}

// CreateRoute registers a route on the Context's Router.
func (c *Context) CreateRoute(name string, def router.Definition) error {
	return c.router.AddRoute(name, def)
}

// CreateErrorRoute registers an error route for status.
func (c *Context) CreateErrorRoute(status int, def router.Definition) error {
	return c.router.AddErrorRoute(status, def)
}

// CreateNamedErrorRoute registers an error route by status name.
func (c *Context) CreateNamedErrorRoute(name string, def router.Definition) error {
	return c.router.AddNamedErrorRoute(name, def)
}

// GetRouteURL renders the URL of the named route.
func (c *Context) GetRouteURL(name string, params map[string]string) (string, bool) {
	return c.router.GetRouteURL(name, params)
}

// GetChild returns a new Context built from this one's replay log.
//
// The child shares the Router. opts are applied before replay, so they may
// replace the logger, Router or ID generator.
func (c *Context) GetChild(opts ...Option) *Context {
	c.mu.RLock()
	steps := append([]step(nil), c.steps...)
	c.mu.RUnlock()

	base := []Option{
		WithLogger(c.baseLogger),
		WithRouter(c.router),
		WithIDGenerator(c.idGen),
	}
	child := New(append(base, opts...)...)
	child.parentID = c.id

	child.replaySource = c
	for _, st := range steps {
		st.apply(child)
	}
	child.replaySource = nil

	child.logger.Debug("context cloned",
		"parent_id", c.id,
		"steps", len(steps),
	)
	return child
}

// Steps describes the replay log in order.
func (c *Context) Steps() []StepRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]StepRecord, len(c.steps))
	for i, st := range c.steps {
		out[i] = st.record
	}
	return out
}

// Phase returns the current lifecycle phase.
func (c *Context) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// Transition moves the Context to phase to. Skipping a required phase or
// leaving Disposed fails with ErrInvalidTransition.
func (c *Context) Transition(to Phase) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !CanTransition(c.phase, to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, c.phase, to)
	}
	c.logger.Debug("lifecycle", "from", c.phase.String(), "to", to.String())
	c.phase = to
	return nil
}

// Dispose moves the Context to Disposed and releases every navigate
// listener and Store subscription. Calling it again is a no-op.
func (c *Context) Dispose() {
	c.mu.Lock()
	if c.phase == PhaseDisposed {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseDisposed
	c.mu.Unlock()

	c.navMu.Lock()
	c.navigates = make(map[uint64]func(NavigateEvent))
	c.navMu.Unlock()

	c.dispatcher.Close()
	c.logger.Debug("context disposed")
}

func (c *Context) record(st step) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st.record.Seq = int64(len(c.steps)) + 1
	c.steps = append(c.steps, st)
}

// StoreBinding is a Store as seen from the Context that created it.
// Handlers attached through it are recorded for replay.
type StoreBinding struct {
	*dispatch.Store
	c *Context
}

// Handle attaches fn for ev and records the call for replay. fn receives
// the Store it is attached to, which on a child Context is the child's.
func (b *StoreBinding) Handle(ev dispatch.ActionEvent, fn dispatch.HandlerFunc) *StoreBinding {
	b.Store.Handle(ev, fn)
	b.c.record(handleStep(b.Name(), ev, fn))
	return b
}
