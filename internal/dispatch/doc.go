// Package dispatch provides Stores, Actions and the Dispatcher that routes
// action outcomes to Store handlers.
//
// A Store is a named, observable bag of keyed values. Setting a key to a new
// value notifies change subscribers registered for that key. An Action is a
// named function; performing it dispatches three events to every Store in
// creation order:
//
//	<action>:started    payload = params
//	<action>:succeeded  payload = result
//	<action>:failed     payload = error message
//
// Stores react through handlers registered with Store.Handle, keyed by a
// typed ActionEvent rather than a parsed string.
package dispatch
