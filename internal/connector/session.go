// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package connector

import (
	"errors"
	"net"
	"sync"
	"time"
)

// ErrSessionClosed is returned from a Session's I/O methods once Close
// has been called.
var ErrSessionClosed = errors.New("connector: session closed")

// Session is a net.PacketConn backed by the connector's single shared
// UDP socket: reads are packets the connector has already demultiplexed
// to this remote address (or connection ID) and delivered via push;
// writes are forwarded straight to the shared socket addressed at the
// session's remote peer, ignoring whatever net.Addr the caller passes
// (a DTLS Conn always writes back to the address it read from).
//
// This is what lets one real socket host many independent dtls.Conn
// values: each Conn's own read loop calls ReadFrom on its Session
// exactly like it would on a dedicated per-connection net.PacketConn.
type Session struct {
	shared net.PacketConn

	mu          sync.Mutex
	remote      net.Addr
	in          chan []byte
	closed      chan struct{}
	closeOnce   sync.Once
	readDLTimer *time.Timer
	readDL      time.Time
}

func newSession(shared net.PacketConn, remote net.Addr, queueLen int) *Session {
	return &Session{
		shared: shared,
		remote: remote,
		in:     make(chan []byte, queueLen),
		closed: make(chan struct{}),
	}
}

// rebind updates the session's remote peer address after the
// connector observes a negotiated connection ID arriving from a new
// source address (NAT rebinding, RFC 9146).
func (s *Session) rebind(addr net.Addr) {
	s.mu.Lock()
	s.remote = addr
	s.mu.Unlock()
}

func (s *Session) remoteAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remote
}

// push hands a demultiplexed datagram to the session's reader. It
// never blocks: if the session's inbound queue is full the datagram is
// dropped, matching UDP's own no-delivery-guarantee semantics.
func (s *Session) push(b []byte) bool {
	cp := make([]byte, len(b))
	copy(cp, b)
	select {
	case <-s.closed:
		return false
	case s.in <- cp:
		return true
	default:
		return false
	}
}

// ReadFrom implements net.PacketConn.
func (s *Session) ReadFrom(p []byte) (int, net.Addr, error) {
	s.mu.Lock()
	dl := s.readDL
	s.mu.Unlock()

	var timeout <-chan time.Time
	if !dl.IsZero() {
		t := time.NewTimer(time.Until(dl))
		defer t.Stop()
		timeout = t.C
	}

	select {
	case <-s.closed:
		return 0, s.remoteAddr(), ErrSessionClosed
	case b := <-s.in:
		n := copy(p, b)
		return n, s.remoteAddr(), nil
	case <-timeout:
		return 0, s.remoteAddr(), errTimeout{}
	}
}

// WriteTo implements net.PacketConn, always addressing the session's
// remote peer on the shared socket regardless of addr.
func (s *Session) WriteTo(p []byte, _ net.Addr) (int, error) {
	select {
	case <-s.closed:
		return 0, ErrSessionClosed
	default:
	}
	return s.shared.WriteTo(p, s.remoteAddr())
}

// Close marks the session closed, unblocking any in-flight ReadFrom.
// It does not touch the shared socket, which the connector owns.
func (s *Session) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

// LocalAddr returns the shared socket's local address.
func (s *Session) LocalAddr() net.Addr { return s.shared.LocalAddr() }

// SetDeadline implements net.PacketConn.
func (s *Session) SetDeadline(t time.Time) error {
	_ = s.SetReadDeadline(t)
	return nil
}

// SetReadDeadline implements net.PacketConn.
func (s *Session) SetReadDeadline(t time.Time) error {
	s.mu.Lock()
	s.readDL = t
	s.mu.Unlock()
	return nil
}

// SetWriteDeadline is a no-op: writes go straight to the shared socket
// and never block on this session's own state.
func (s *Session) SetWriteDeadline(time.Time) error { return nil }

type errTimeout struct{}

func (errTimeout) Error() string   { return "connector: i/o timeout" }
func (errTimeout) Timeout() bool   { return true }
func (errTimeout) Temporary() bool { return true }
