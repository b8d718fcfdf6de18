package engine

import (
	"github.com/roach88/isomorph/internal/dispatch"
	"github.com/roach88/isomorph/internal/value"
)

// StepKind identifies the kind of a replay step.
type StepKind string

const (
	StepCreateAction StepKind = "create_action"
	StepCreateStore  StepKind = "create_store"
	StepHandle       StepKind = "handle"
)

// StepRecord describes one replay step.
type StepRecord struct {
	Seq   int64    `json:"seq"`
	Kind  StepKind `json:"kind"`
	Name  string   `json:"name"`
	Event string   `json:"event,omitempty"`
}

// step is a recorded setup call. apply re-runs the call against target,
// which records it again on target's own log.
type step struct {
	record StepRecord
	apply  func(target *Context)
}

func actionStep(name string, fn ActionFunc) step {
	return step{
		record: StepRecord{Kind: StepCreateAction, Name: name},
		apply: func(target *Context) {
			target.CreateAction(name, fn)
		},
	}
}

func storeStep(name string, initial value.Object) step {
	return step{
		record: StepRecord{Kind: StepCreateStore, Name: name},
		apply: func(target *Context) {
			target.CreateStore(name, initial)
		},
	}
}

func handleStep(store string, ev dispatch.ActionEvent, fn dispatch.HandlerFunc) step {
	return step{
		record: StepRecord{Kind: StepHandle, Name: store, Event: ev.String()},
		apply: func(target *Context) {
			if b := target.Bind(store); b != nil {
				b.Handle(ev, fn)
			}
		},
	}
}
