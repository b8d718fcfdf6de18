package dispatch

import "github.com/roach88/isomorph/internal/value"

// Phase is the stage of an action an ActionEvent reports.
type Phase string

const (
	// PhaseStarted is dispatched before the action function runs.
	PhaseStarted Phase = "started"
	// PhaseSucceeded is dispatched with the action's result.
	PhaseSucceeded Phase = "succeeded"
	// PhaseFailed is dispatched with the action's error message.
	PhaseFailed Phase = "failed"
)

// ActionEvent addresses one phase of one action.
type ActionEvent struct {
	Action string
	Phase  Phase
}

// String returns the "<action>:<phase>" form used in logs.
func (e ActionEvent) String() string {
	return e.Action + ":" + string(e.Phase)
}

// Started returns the started event for action.
func Started(action string) ActionEvent { return ActionEvent{Action: action, Phase: PhaseStarted} }

// Succeeded returns the succeeded event for action.
func Succeeded(action string) ActionEvent { return ActionEvent{Action: action, Phase: PhaseSucceeded} }

// Failed returns the failed event for action.
func Failed(action string) ActionEvent { return ActionEvent{Action: action, Phase: PhaseFailed} }

// EventKind is the kind of Store notification a subscriber listens for.
type EventKind string

// EventChange fires when a key's value changes.
const EventChange EventKind = "change"

// ChangeFunc receives the key that changed and its new value.
type ChangeFunc func(key string, v value.Value)

// HandlerFunc reacts to an ActionEvent dispatched to a Store.
type HandlerFunc func(s *Store, payload value.Value) error
