// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package connector

import (
	"net"
	"testing"
	"time"
)

func TestSessionReadFromDeliversPushedData(t *testing.T) {
	shared, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer shared.Close()

	remote := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4242}
	s := newSession(shared, remote, 4)

	if ok := s.push([]byte("hello")); !ok {
		t.Fatalf("expected push to succeed")
	}

	buf := make([]byte, 16)
	n, addr, err := s.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if string(buf[:n]) != "hello" {
		t.Fatalf("unexpected payload: %q", buf[:n])
	}
	if addr.String() != remote.String() {
		t.Fatalf("unexpected addr: %v", addr)
	}
}

func TestSessionReadFromDeadline(t *testing.T) {
	shared, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer shared.Close()

	s := newSession(shared, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4242}, 4)
	if err := s.SetReadDeadline(time.Now().Add(10 * time.Millisecond)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}

	buf := make([]byte, 16)
	_, _, err = s.ReadFrom(buf)
	if err == nil {
		t.Fatalf("expected a timeout error")
	}
	var timeoutErr interface{ Timeout() bool }
	if !asTimeout(err, &timeoutErr) || !timeoutErr.Timeout() {
		t.Fatalf("expected a net.Error-shaped timeout, got %v", err)
	}
}

func asTimeout(err error, target *interface{ Timeout() bool }) bool {
	if t, ok := err.(interface{ Timeout() bool }); ok {
		*target = t
		return true
	}
	return false
}

func TestSessionPushDropsWhenFullOrClosed(t *testing.T) {
	shared, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer shared.Close()

	s := newSession(shared, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4242}, 1)
	if ok := s.push([]byte("a")); !ok {
		t.Fatalf("expected first push to succeed")
	}
	if ok := s.push([]byte("b")); ok {
		t.Fatalf("expected second push to be dropped once the queue is full")
	}

	_ = s.Close()
	if ok := s.push([]byte("c")); ok {
		t.Fatalf("expected push to fail once the session is closed")
	}
}

func TestSessionWriteToUsesSessionRemote(t *testing.T) {
	server, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen server: %v", err)
	}
	defer server.Close()

	client, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen client: %v", err)
	}
	defer client.Close()

	s := newSession(client, server.LocalAddr(), 4)

	// The addr argument to WriteTo is intentionally ignored; writes
	// always go to the session's own remote peer.
	wrongAddr := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 1}
	if _, err := s.WriteTo([]byte("ping"), wrongAddr); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	if err := server.SetReadDeadline(time.Now().Add(time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	buf := make([]byte, 16)
	n, _, err := server.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP: %v", err)
	}
	if string(buf[:n]) != "ping" {
		t.Fatalf("unexpected payload: %q", buf[:n])
	}
}
