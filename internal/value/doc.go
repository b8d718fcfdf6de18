// Package value provides the JSON-safe value model shared by stores,
// actions and serialized snapshots.
//
// This package imports nothing internal. Every other package that carries
// application state uses these types so that anything placed in a Store
// is guaranteed to survive a JSON round trip to the browser and back.
//
// Key constraints:
//   - Integral numbers decode as Int, everything else as Float
//   - null is a real value (Null), never a nil interface
//   - Object iteration is always through SortedKeys for determinism
package value
