package view

import (
	"fmt"
	"sync"

	"github.com/roach88/isomorph/internal/dispatch"
	"github.com/roach88/isomorph/internal/value"
)

// Path addresses one key of one Store.
type Path struct {
	Store string
	Key   string
}

// At builds a Path.
func At(store, key string) Path {
	return Path{Store: store, Key: key}
}

// String returns "store.key".
func (p Path) String() string {
	return p.Store + "." + p.Key
}

// Binder holds a component's Store subscriptions and the local state they
// feed. Each Path is resolved to its Store once, when it is registered.
//
// Thread-safety: safe for concurrent use.
type Binder struct {
	caps Capabilities

	mu       sync.Mutex
	subs     map[Path]*dispatch.Subscription
	state    value.Object
	onChange func(key string, v value.Value)
}

// NewBinder creates a Binder over caps. onChange, if not nil, runs after a
// bound state key changes.
func NewBinder(caps Capabilities, onChange func(key string, v value.Value)) *Binder {
	return &Binder{
		caps:     caps,
		subs:     make(map[Path]*dispatch.Subscription),
		state:    make(value.Object),
		onChange: onChange,
	}
}

// Subscribe calls fn whenever the value at p changes. A second Subscribe on
// the same Path replaces the first.
func (b *Binder) Subscribe(p Path, fn func(v value.Value)) error {
	s := b.caps.GetStore(p.Store)
	if s == nil {
		return fmt.Errorf("subscribe %s: store %q not found", p, p.Store)
	}

	sub := s.Subscribe(dispatch.EventChange, p.Key, func(_ string, v value.Value) {
		fn(v)
	})

	b.mu.Lock()
	old := b.subs[p]
	b.subs[p] = sub
	b.mu.Unlock()

	old.Cancel()
	return nil
}

// Unsubscribe stops notifications for p.
func (b *Binder) Unsubscribe(p Path) {
	b.mu.Lock()
	sub := b.subs[p]
	delete(b.subs, p)
	b.mu.Unlock()

	sub.Cancel()
}

// Read returns the current value at p.
func (b *Binder) Read(p Path) (value.Value, bool) {
	s := b.caps.GetStore(p.Store)
	if s == nil {
		return nil, false
	}
	return s.Get(p.Key)
}

// Map applies fn to the current value at p, reading Null when absent.
func (b *Binder) Map(p Path, fn func(value.Value) value.Value) value.Value {
	v, ok := b.Read(p)
	if !ok {
		v = value.Null{}
	}
	return fn(v)
}

// BindToState copies the value at p into the Binder's state under key and
// keeps it current.
func (b *Binder) BindToState(p Path, key string) error {
	if v, ok := b.Read(p); ok {
		b.setState(key, v, false)
	}
	return b.Subscribe(p, func(v value.Value) {
		b.setState(key, v, true)
	})
}

// State returns a copy of the bound state.
func (b *Binder) State() value.Object {
	b.mu.Lock()
	defer b.mu.Unlock()
	return value.CloneObject(b.state)
}

// Close cancels every subscription.
func (b *Binder) Close() {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[Path]*dispatch.Subscription)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

func (b *Binder) setState(key string, v value.Value, notify bool) {
	b.mu.Lock()
	b.state[key] = v
	onChange := b.onChange
	b.mu.Unlock()

	if notify && onChange != nil {
		onChange(key, v)
	}
}
