// Package dom describes the slice of a browser the client-side renderer and
// navigator touch: the window location and history, the document title, a
// root element, and click/popstate/DOMContentLoaded events.
//
// The interfaces are small enough to back with a real browser bridge or
// with the headless implementation in domtest.
package dom

// Event types the navigator listens for.
const (
	EventClick            = "click"
	EventPopState         = "popstate"
	EventDOMContentLoaded = "DOMContentLoaded"
)

// Listener handles a dispatched Event.
type Listener func(ev *Event)

// Event is a dispatched DOM event.
type Event struct {
	Type   string
	Target Element

	ShiftKey bool
	CtrlKey  bool
	AltKey   bool
	MetaKey  bool

	defaultPrevented bool
}

// PreventDefault marks the event as handled.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Modified reports whether any modifier key was held.
func (e *Event) Modified() bool {
	return e.ShiftKey || e.CtrlKey || e.AltKey || e.MetaKey
}

// Window is the browser global.
type Window interface {
	// Location returns the current absolute URL.
	Location() string
	Document() Document
	History() History
	// Global returns the raw JSON assigned to window.<name>, if any.
	Global(name string) (string, bool)
	AddEventListener(typ string, fn Listener) (remove func())
}

// Document is the loaded page.
type Document interface {
	Title() string
	SetTitle(title string)
	// ElementByID returns nil when no element has the id.
	ElementByID(id string) Element
	AddEventListener(typ string, fn Listener) (remove func())
}

// Element is a node in the document tree.
type Element interface {
	// Href returns the element's href attribute, or "" when it has none.
	Href() string
	// Parent returns the parent element, or nil at the root.
	Parent() Element
	InnerHTML() string
	SetInnerHTML(markup string) error
}

// History is the session history.
type History interface {
	PushState(title, url string)
}
