// Package harness runs request scenarios against the demo application and
// checks what each request served.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: user_profile
//	description: "A known user renders on the server"
//	users:
//	  - login: ada
//	    name: Ada Lovelace
//	requests:
//	  - path: /user/ada
//	    expect:
//	      status: 200
//	      title: User ada
//	      contains: ["<h1>Ada Lovelace</h1>"]
//	      stores:
//	        user: { found: true }
//	assertions:
//	  - type: root_unchanged
//	  - type: store_equals
//	    store: user
//	    expect: { login: ada }
//
// Every field of expect is optional; only the fields present are checked.
// Store expectations are subset matches on the named keys.
//
// # Assertion Types
//
//   - root_unchanged: the root Context's Stores are the same after every
//     request as before the first
//   - store_equals: the named Store of the last request's Context holds
//     the expected keys
//
// # Determinism
//
// Each scenario gets a fresh root Context over an in-memory user
// directory. Trace events are numbered from 1, so the same scenario always
// produces the same trace, byte for byte, for golden comparison.
package harness
