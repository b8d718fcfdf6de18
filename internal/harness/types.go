package harness

import "github.com/roach88/isomorph/internal/value"

// TraceEvent records one served request.
type TraceEvent struct {
	Seq      int64        `json:"seq"`
	Path     string       `json:"path"`
	Status   int          `json:"status"`
	Redirect string       `json:"redirect,omitempty"`
	Route    string       `json:"route,omitempty"`
	Stores   value.Object `json:"stores"`
}

// Object returns the event as a Value tree. Empty optional fields are left
// out so golden traces stay small.
func (e TraceEvent) Object() value.Object {
	obj := value.Object{
		"seq":    value.Int(e.Seq),
		"path":   value.String(e.Path),
		"status": value.Int(int64(e.Status)),
		"stores": value.CloneObject(e.Stores),
	}
	if e.Redirect != "" {
		obj["redirect"] = value.String(e.Redirect)
	}
	if e.Route != "" {
		obj["route"] = value.String(e.Route)
	}
	return obj
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per request, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds one message per failed expectation or assertion.
	Errors []string `json:"errors,omitempty"`

	// State holds the Stores of the last request's Context.
	State value.Object `json:"state,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  value.Object{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a served request.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
