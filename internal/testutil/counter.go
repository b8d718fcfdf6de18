package testutil

import "sync/atomic"

// Counter numbers events from 1. The zero value is ready to use.
//
// Thread-safety: all methods are safe for concurrent use.
type Counter struct {
	n atomic.Int64
}

// Next returns the next number.
func (c *Counter) Next() int64 {
	return c.n.Add(1)
}

// Current returns the last number handed out, or 0.
func (c *Counter) Current() int64 {
	return c.n.Load()
}

// Reset starts the count over, so the same scenario numbers its events
// identically on every run.
func (c *Counter) Reset() {
	c.n.Store(0)
}
