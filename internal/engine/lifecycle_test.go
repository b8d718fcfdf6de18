package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/isomorph/internal/value"
)

func TestServerLifecycle(t *testing.T) {
	c := newTestContext(t)
	assert.Equal(t, PhaseCreated, c.Phase())

	for _, p := range []Phase{PhaseRoutesResolved, PhaseActionPerformed, PhaseRendered, PhaseDisposed} {
		require.NoError(t, c.Transition(p), "to %s", p)
	}
	assert.Equal(t, PhaseDisposed, c.Phase())
}

func TestClientLifecycle(t *testing.T) {
	c := newTestContext(t)
	steps := []Phase{
		PhaseRehydrated, PhaseRoutesResolved, PhaseRendered, PhaseListening,
		PhaseRoutesResolved, PhaseActionPerformed, PhaseRendered, PhaseListening,
	}
	for _, p := range steps {
		require.NoError(t, c.Transition(p), "to %s", p)
	}
}

func TestErrorRerouteLifecycle(t *testing.T) {
	c := newTestContext(t)
	require.NoError(t, c.Transition(PhaseRoutesResolved))
	require.NoError(t, c.Transition(PhaseActionPerformed))
	require.NoError(t, c.Transition(PhaseRoutesResolved))
	require.NoError(t, c.Transition(PhaseRendered))
}

func TestLifecycleRejectsSkips(t *testing.T) {
	tests := []struct {
		from []Phase
		to   Phase
	}{
		{nil, PhaseRendered},
		{nil, PhaseActionPerformed},
		{nil, PhaseListening},
		{[]Phase{PhaseRehydrated}, PhaseRendered},
		{[]Phase{PhaseRoutesResolved}, PhaseListening},
		{[]Phase{PhaseRoutesResolved, PhaseRendered}, PhaseRehydrated},
		{[]Phase{PhaseDisposed}, PhaseRoutesResolved},
	}

	for _, tt := range tests {
		t.Run(tt.to.String(), func(t *testing.T) {
			c := newTestContext(t)
			for _, p := range tt.from {
				require.NoError(t, c.Transition(p))
			}
			err := c.Transition(tt.to)
			require.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestDisposeReleasesListeners(t *testing.T) {
	c := newTestContext(t)
	c.CreateStore("s", nil)

	changes := 0
	c.GetStore("s").Subscribe("change", "", func(string, value.Value) { changes++ })
	navigations := 0
	c.OnNavigate(func(NavigateEvent) { navigations++ })

	c.Dispose()
	c.Dispose()
	assert.Equal(t, PhaseDisposed, c.Phase())

	c.GetStore("s").Set("x", value.Int(1))
	assert.Equal(t, 0, changes)
	assert.Equal(t, 0, navigations)
	assert.Equal(t, 0, c.GetStore("s").SubscriberCount())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "routes_resolved", PhaseRoutesResolved.String())
	assert.Equal(t, "phase(99)", Phase(99).String())
}
