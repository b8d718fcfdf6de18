package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/isomorph/internal/value"
)

type subKey struct {
	kind EventKind
	key  string
}

type subscriber struct {
	id uint64
	fn ChangeFunc
}

// Store is a named, mutable bag of keyed values with change notification.
//
// Values handed in and out are deep-copied, so a caller holding a value read
// from one Store can never mutate another Store's state through it.
//
// Thread-safety: all methods are safe for concurrent use. Subscribers and
// handlers run on the calling goroutine after the lock is released.
type Store struct {
	mu       sync.RWMutex
	name     string
	data     value.Object
	subs     map[subKey][]subscriber
	nextID   uint64
	handlers map[ActionEvent][]HandlerFunc
}

// NewStore creates a Store seeded with a copy of initial.
func NewStore(name string, initial value.Object) *Store {
	return &Store{
		name:     name,
		data:     value.CloneObject(initial),
		subs:     make(map[subKey][]subscriber),
		handlers: make(map[ActionEvent][]HandlerFunc),
	}
}

// Name returns the Store's name.
func (s *Store) Name() string {
	return s.name
}

// Get returns a copy of the value at key.
func (s *Store) Get(key string) (value.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false
	}
	return value.Clone(v), true
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}

// Keys returns the Store's keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.SortedKeys()
}

// Define sets key without notifying subscribers. Used to declare the shape
// of a Store before anything observes it. Returns the Store for chaining.
func (s *Store) Define(key string, v value.Value) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value.Clone(v)
	return s
}

// Set stores a copy of v at key and notifies change subscribers when the
// value actually changed. Reports whether it changed.
func (s *Store) Set(key string, v value.Value) bool {
	if v == nil {
		v = value.Null{}
	}

	s.mu.Lock()
	old, existed := s.data[key]
	if existed && value.Equal(old, v) {
		s.mu.Unlock()
		return false
	}
	s.data[key] = value.Clone(v)
	subs := s.subscribersLocked(key)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(key, value.Clone(v))
	}
	return true
}

// Delete removes key. Subscribers are notified with Null.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	if _, ok := s.data[key]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.data, key)
	subs := s.subscribersLocked(key)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(key, value.Null{})
	}
}

// ToObject returns a deep copy of the Store's data.
func (s *Store) ToObject() value.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return value.CloneObject(s.data)
}

// Merge overwrites the Store's keys from obj, including keys the Store has
// never seen. Keys absent from obj are left alone. Returns the number of
// keys whose value changed; merging the same object twice changes nothing
// the second time.
func (s *Store) Merge(obj value.Object) int {
	changed := 0
	for _, k := range obj.SortedKeys() {
		if s.Set(k, obj[k]) {
			changed++
		}
	}
	return changed
}

// Subscribe registers fn for kind notifications on key. An empty key
// subscribes to every key. Cancel the returned Subscription to stop.
func (s *Store) Subscribe(kind EventKind, key string, fn ChangeFunc) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	sk := subKey{kind: kind, key: key}
	s.subs[sk] = append(s.subs[sk], subscriber{id: s.nextID, fn: fn})
	return &Subscription{store: s, key: sk, id: s.nextID}
}

// SubscriberCount returns the number of active change subscriptions.
func (s *Store) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, subs := range s.subs {
		n += len(subs)
	}
	return n
}

// Handle registers fn to run when ev is dispatched to this Store.
// Returns the Store for chaining.
func (s *Store) Handle(ev ActionEvent, fn HandlerFunc) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[ev] = append(s.handlers[ev], fn)
	return s
}

// HandlerCount returns the number of handlers registered for ev.
func (s *Store) HandlerCount(ev ActionEvent) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handlers[ev])
}

// Close drops every change subscription. Handlers stay registered.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = make(map[subKey][]subscriber)
}

// receive runs the handlers registered for ev in registration order.
func (s *Store) receive(ctx context.Context, ev ActionEvent, payload value.Value) error {
	s.mu.RLock()
	handlers := append([]HandlerFunc(nil), s.handlers[ev]...)
	s.mu.RUnlock()

	for _, h := range handlers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h(s, value.Clone(payload)); err != nil {
			return fmt.Errorf("store %q handling %s: %w", s.name, ev, err)
		}
	}
	return nil
}

// subscribersLocked returns key-specific then wildcard change subscribers.
// Caller must hold s.mu.
func (s *Store) subscribersLocked(key string) []subscriber {
	specific := s.subs[subKey{kind: EventChange, key: key}]
	wildcard := s.subs[subKey{kind: EventChange}]
	out := make([]subscriber, 0, len(specific)+len(wildcard))
	out = append(out, specific...)
	return append(out, wildcard...)
}

// Subscription is a handle to a registered change subscriber.
type Subscription struct {
	store *Store
	key   subKey
	id    uint64
}

// Cancel removes the subscriber. Safe to call more than once.
func (sub *Subscription) Cancel() {
	if sub == nil || sub.store == nil {
		return
	}
	s := sub.store
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.subs[sub.key]
	for i, entry := range subs {
		if entry.id == sub.id {
			s.subs[sub.key] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	sub.store = nil
}
