// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package testflight wraps a net.PacketConn with deliberate flight-level
// misbehavior — reordering a batch of writes, dropping a chosen write
// outright — so handshake tests can exercise the reassembly and
// retransmission paths a cooperative loopback connection never
// exercises on its own.
package testflight

import (
	"net"
	"sync"
)

// DropFunc decides whether to silently discard an outbound datagram.
// writeIndex is 0-based and counts every WriteTo call on the wrapped
// PacketConn, including ones a DropFunc itself discards.
type DropFunc func(writeIndex int, b []byte, addr net.Addr) bool

// PacketConn wraps a net.PacketConn, letting a test control exactly
// what a peer observes on the wire for a given flight.
type PacketConn struct {
	net.PacketConn

	// Drop, if set, is consulted before every WriteTo; a true return
	// drops the datagram (the caller still sees a successful write, the
	// same way a real lost UDP datagram would).
	Drop DropFunc

	// ReverseBatch, if > 0, buffers that many consecutive WriteTo calls
	// and flushes them to the network in reverse order once the batch
	// fills, simulating a flight whose records (e.g. ServerHello,
	// Certificate, ServerKeyExchange, ServerHelloDone) arrive out of
	// message_seq order.
	ReverseBatch int

	mu      sync.Mutex
	writes  int
	pending []pendingWrite
}

type pendingWrite struct {
	b    []byte
	addr net.Addr
}

// WriteTo implements net.PacketConn.
func (c *PacketConn) WriteTo(b []byte, addr net.Addr) (int, error) {
	c.mu.Lock()
	idx := c.writes
	c.writes++
	drop := c.Drop
	batch := c.ReverseBatch
	c.mu.Unlock()

	if drop != nil && drop(idx, b, addr) {
		return len(b), nil
	}

	if batch <= 0 {
		return c.PacketConn.WriteTo(b, addr)
	}

	cp := append([]byte(nil), b...)
	c.mu.Lock()
	c.pending = append(c.pending, pendingWrite{b: cp, addr: addr})
	var flushing []pendingWrite
	if len(c.pending) >= batch {
		flushing, c.pending = c.pending, nil
	}
	c.mu.Unlock()

	if flushing == nil {
		return len(b), nil
	}
	for i := len(flushing) - 1; i >= 0; i-- {
		w := flushing[i]
		if _, err := c.PacketConn.WriteTo(w.b, w.addr); err != nil {
			return 0, err
		}
	}
	return len(b), nil
}

// DropNth returns a DropFunc that drops exactly the nth write (0-based)
// to addr and lets every other write through, forcing the peer to time
// out that datagram and retransmit whatever depended on it.
func DropNth(n int) DropFunc {
	return func(writeIndex int, _ []byte, _ net.Addr) bool {
		return writeIndex == n
	}
}
