package engine

import (
	"errors"
	"fmt"
)

// Phase is a Context's position in its request or page-load lifecycle.
type Phase int

const (
	PhaseCreated Phase = iota
	PhaseRehydrated
	PhaseRoutesResolved
	PhaseActionPerformed
	PhaseRendered
	PhaseListening
	PhaseDisposed
)

var phaseNames = map[Phase]string{
	PhaseCreated:         "created",
	PhaseRehydrated:      "rehydrated",
	PhaseRoutesResolved:  "routes_resolved",
	PhaseActionPerformed: "action_performed",
	PhaseRendered:        "rendered",
	PhaseListening:       "listening",
	PhaseDisposed:        "disposed",
}

// String returns the phase's snake_case name.
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// ErrInvalidTransition is returned when a lifecycle step is skipped or
// taken out of order.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// transitions lists the phases reachable from each phase, excluding
// Disposed which every phase but Disposed itself may move to.
var transitions = map[Phase][]Phase{
	PhaseCreated:         {PhaseRehydrated, PhaseRoutesResolved},
	PhaseRehydrated:      {PhaseRoutesResolved},
	PhaseRoutesResolved:  {PhaseActionPerformed, PhaseRendered, PhaseRoutesResolved},
	PhaseActionPerformed: {PhaseRendered, PhaseRoutesResolved},
	PhaseRendered:        {PhaseListening, PhaseRoutesResolved},
	PhaseListening:       {PhaseRoutesResolved},
}

// CanTransition reports whether a Context may move from one phase to another.
func CanTransition(from, to Phase) bool {
	if from == PhaseDisposed {
		return false
	}
	if to == PhaseDisposed {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
