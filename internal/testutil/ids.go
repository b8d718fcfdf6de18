package testutil

// FixedIDs hands out the same Context ID every time, so every Context a
// scenario creates logs under one recognizable ID.
//
// Implements engine.IDGenerator.
type FixedIDs struct {
	id string
}

// NewFixedIDs returns a generator for id. An empty id becomes "test-context".
func NewFixedIDs(id string) *FixedIDs {
	if id == "" {
		id = "test-context"
	}
	return &FixedIDs{id: id}
}

// Generate returns the fixed ID.
func (g *FixedIDs) Generate() string {
	return g.id
}
