// Package engine implements the Context: the aggregate of a Router, a
// Dispatcher with its Actions and Stores, and the replay log that lets a
// Context spawn isolated children.
//
// # Replay
//
// Every CreateAction, CreateStore and StoreBinding.Handle call appends a step
// to the Context's replay log. GetChild builds a fresh Context and re-runs the
// log against it in original order:
//
//	root:   CreateStore(test) → CreateAction(test:go) → Handle(test:go:succeeded)
//	                                  │ GetChild
//	                                  ▼
//	child:  CreateStore(test) → CreateAction(test:go) → Handle(test:go:succeeded)
//
// Replayed steps are recorded on the child too, so a grandchild sees the same
// log. Steps added to the parent after the clone are not visible in the child.
//
// # Isolation
//
// During replay CreateStore seeds the child Store with a copy of the parent
// Store's current data rather than the initial props. Store values are deep
// copied on every read and write, so no Store shares mutable data with
// another. Actions and handlers receive the child Context and the child
// Store; a handler must write through the Store it is given.
//
// # Snapshots
//
// Snapshot returns {"stores": {name: data}}, the only state that crosses the
// network boundary. FromSnapshot merges a snapshot into the Stores this
// Context has declared and ignores the rest. Applying the same snapshot twice
// changes nothing the second time.
//
// # Lifecycle
//
// A Context used for one request or page load moves through
//
//	Created → Rehydrated → RoutesResolved → ActionPerformed → Rendered → Listening → Disposed
//
// where Rehydrated, ActionPerformed and Listening are optional. RoutesResolved
// may be re-entered to re-route to an error page or to serve the next client
// navigation. Disposed is terminal.
package engine
