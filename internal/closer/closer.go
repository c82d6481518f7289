// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package closer provides a one-shot, concurrency-safe close signal.
package closer

import "sync"

// Closer signals shutdown to any number of goroutines through a channel
// that is safe to close exactly once, no matter how many callers race
// to call Close.
type Closer struct {
	once sync.Once
	done chan struct{}
}

// NewCloser returns a Closer ready for use.
func NewCloser() *Closer {
	return &Closer{done: make(chan struct{})}
}

// Close signals shutdown. Safe to call more than once and from more
// than one goroutine; only the first call has effect.
func (c *Closer) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// Done returns a channel that is closed once Close has been called.
func (c *Closer) Done() <-chan struct{} {
	return c.done
}

// IsClosed reports whether Close has already been called.
func (c *Closer) IsClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
