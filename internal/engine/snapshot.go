package engine

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/isomorph/internal/value"
)

// Snapshot is the serialized form of a Context: the data of every Store,
// keyed by Store name. Actions never appear in it.
type Snapshot struct {
	Stores map[string]value.Object `json:"stores"`
}

// DecodeSnapshot parses a JSON snapshot. A document without "stores"
// decodes to an empty Snapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// Object returns the snapshot as a single Value tree.
func (s *Snapshot) Object() value.Object {
	stores := make(value.Object, len(s.Stores))
	for name, data := range s.Stores {
		stores[name] = value.CloneObject(data)
	}
	return value.Object{"stores": stores}
}

// Digest returns a content digest of the whole snapshot.
func (s *Snapshot) Digest() (string, error) {
	return value.Digest(value.DomainSnapshot, s.Object())
}

// StoreDigest returns a content digest of one Store's data, or "" when the
// snapshot does not contain it.
func (s *Snapshot) StoreDigest(name string) (string, error) {
	data, ok := s.Stores[name]
	if !ok {
		return "", nil
	}
	return value.Digest(value.DomainStore, data)
}

// Snapshot captures a copy of every Store's current data.
func (c *Context) Snapshot() Snapshot {
	stores := c.dispatcher.Stores()
	snap := Snapshot{Stores: make(map[string]value.Object, len(stores))}
	for _, s := range stores {
		snap.Stores[s.Name()] = s.ToObject()
	}
	return snap
}

// MarshalJSON encodes the Context's Snapshot.
func (c *Context) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Snapshot())
}

// FromSnapshot merges snap into the Stores this Context has declared.
// Keys the local Store has never seen are merged too. Stores missing
// locally are skipped. A nil snapshot is a no-op.
func (c *Context) FromSnapshot(snap *Snapshot) {
	if snap == nil {
		return
	}

	changed := 0
	for name, data := range snap.Stores {
		s := c.dispatcher.Store(name)
		if s == nil {
			c.logger.Debug("snapshot store not declared", "store", name)
			continue
		}
		changed += s.Merge(data)
	}
	c.logger.Debug("snapshot applied", "stores", len(snap.Stores), "changed_keys", changed)
}

// FromJSON decodes a JSON snapshot and applies it with FromSnapshot.
func (c *Context) FromJSON(data []byte) error {
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}
	c.FromSnapshot(snap)
	return nil
}
