// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/coreshift/dtls/v2/internal/testflight"
	"github.com/coreshift/dtls/v2/pkg/protocol"
	"github.com/coreshift/dtls/v2/pkg/protocol/handshake"
	"github.com/coreshift/dtls/v2/pkg/protocol/recordlayer"
)

// udpPipe binds two loopback UDP sockets addressed at each other, the
// closest real-socket analogue to the in-memory pipes the teacher's
// tests use: DTLS needs actual datagram framing (ReadFrom/WriteTo), not
// the stream semantics of a net.Conn.
func udpPipe(t *testing.T) (client, server net.PacketConn) {
	t.Helper()
	c, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen client: %v", err)
	}
	s, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen server: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
		_ = s.Close()
	})
	return c, s
}

func cidGenerator(length int) func() []byte {
	return func() []byte {
		cid := make([]byte, length)
		_, _ = rand.Read(cid)
		return cid
	}
}

// datagramCarriesHandshakeType reports whether any record in a
// (possibly multi-record) outbound datagram is a handshake message of
// the given type, regardless of how writePackets happened to batch
// records together.
func datagramCarriesHandshakeType(b []byte, typ handshake.Type) bool {
	records, err := recordlayer.ContentAwareUnpackDatagram(b, 0)
	if err != nil {
		return false
	}
	for _, rec := range records {
		var hdr recordlayer.Header
		if err := hdr.Unmarshal(rec); err != nil || hdr.ContentType != protocol.ContentTypeHandshake {
			continue
		}
		var hsHdr handshake.Header
		if err := hsHdr.Unmarshal(rec[hdr.Size():]); err != nil {
			continue
		}
		if hsHdr.Type == typ {
			return true
		}
	}
	return false
}

// TestScenarioFullHandshakeEstablishesConnectionID drives a complete,
// in-order handshake between a client with no CID and a server that
// generates a 6-byte one, and checks both sides agree on it.
func TestScenarioFullHandshakeEstablishesConnectionID(t *testing.T) {
	clientConn, serverConn := udpPipe(t)
	cert := generateSelfSignedECDSACert(t)

	serverCfg := &Config{
		Certificates:          []tls.Certificate{cert},
		ConnectionIDGenerator: cidGenerator(6),
	}
	clientCfg := &Config{
		InsecureSkipVerify: true,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	type serverResult struct {
		conn *Conn
		err  error
	}
	serverCh := make(chan serverResult, 1)
	go func() {
		conn, err := ServerWithContext(ctx, serverConn, clientConn.LocalAddr(), serverCfg)
		serverCh <- serverResult{conn, err}
	}()

	clientC, err := ClientWithContext(ctx, clientConn, serverConn.LocalAddr(), clientCfg)
	if err != nil {
		t.Fatalf("client handshake: %v", err)
	}
	defer func() { _ = clientC.Close() }()

	res := <-serverCh
	if res.err != nil {
		t.Fatalf("server handshake: %v", res.err)
	}
	defer func() { _ = res.conn.Close() }()

	serverState := res.conn.ConnectionState()
	if len(serverState.localConnectionID) != 6 {
		t.Fatalf("expected a 6-byte server connection ID, got %d bytes", len(serverState.localConnectionID))
	}
}

// TestScenarioReorderedServerWritesStillCompletes wraps the server's
// socket so its outbound datagrams are delivered to the client in
// reversed pairs, simulating a network that reorders a handshake
// flight's records; the handshake must still complete because
// reassembly keys records by message_seq rather than arrival order.
func TestScenarioReorderedServerWritesStillCompletes(t *testing.T) {
	clientConn, serverConn := udpPipe(t)
	cert := generateSelfSignedECDSACert(t)

	reordered := &testflight.PacketConn{PacketConn: serverConn, ReverseBatch: 2}

	serverCfg := &Config{Certificates: []tls.Certificate{cert}}
	clientCfg := &Config{InsecureSkipVerify: true}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	type serverResult struct {
		conn *Conn
		err  error
	}
	serverCh := make(chan serverResult, 1)
	go func() {
		conn, err := ServerWithContext(ctx, reordered, clientConn.LocalAddr(), serverCfg)
		serverCh <- serverResult{conn, err}
	}()

	clientC, err := ClientWithContext(ctx, clientConn, serverConn.LocalAddr(), clientCfg)
	if err != nil {
		t.Fatalf("client handshake: %v", err)
	}
	defer func() { _ = clientC.Close() }()

	res := <-serverCh
	if res.err != nil {
		t.Fatalf("server handshake: %v", res.err)
	}
	defer func() { _ = res.conn.Close() }()
}

// TestScenarioFinishedDropTimesOut drops the client's Finished message
// outright (identified by content, not by write index, so it does not
// depend on how many records writePackets happens to batch into one
// datagram) and checks the server's handshake fails via its
// retransmission timer's context deadline rather than hanging.
func TestScenarioFinishedDropTimesOut(t *testing.T) {
	clientConn, serverConn := udpPipe(t)
	cert := generateSelfSignedECDSACert(t)

	lossy := &testflight.PacketConn{
		PacketConn: clientConn,
		Drop: func(_ int, b []byte, _ net.Addr) bool {
			return datagramCarriesHandshakeType(b, handshake.TypeFinished)
		},
	}

	serverCfg := &Config{
		Certificates:   []tls.Certificate{cert},
		FlightInterval: 100 * time.Millisecond,
	}
	clientCfg := &Config{InsecureSkipVerify: true}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	go func() {
		_, _ = ClientWithContext(ctx, lossy, serverConn.LocalAddr(), clientCfg)
	}()

	_, err := ServerWithContext(ctx, serverConn, clientConn.LocalAddr(), serverCfg)
	if err == nil {
		t.Fatalf("expected the server handshake to fail once the client's Finished is lost")
	}

	var handshakeErr *HandshakeError
	if !errors.As(err, &handshakeErr) {
		t.Fatalf("expected a *HandshakeError, got %T: %v", err, err)
	}
}
