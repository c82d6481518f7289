// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"
	"net"
	"sync"

	"github.com/coreshift/dtls/v2/internal/connector"
)

// Listener accepts DTLS connections multiplexed over a single UDP
// socket, completing each handshake in the background and handing
// finished connections to Accept in the order they complete (not the
// order their ClientHellos arrived, since slower handshakes must not
// hold up faster ones).
//
// Where Server handles exactly one peer per net.PacketConn, Listener
// is the many-peers-per-socket counterpart spec.md's multiplexing
// requirement calls for; it is new relative to the teacher, grounded
// on the read-loop/dispatch shape of a vinom-api UDP server socket
// manager and wired onto the teacher's own Server/handshakeConn.
type Listener struct {
	connector *connector.Connector
	config    *Config

	accepted chan acceptResult
	closeMu  sync.Mutex
	closed   bool
}

type acceptResult struct {
	conn *Conn
	err  error
}

// Listen starts a Listener bound to laddr.
func Listen(network string, laddr *net.UDPAddr, config *Config) (*Listener, error) {
	pConn, err := net.ListenUDP(network, laddr)
	if err != nil {
		return nil, err
	}
	return NewListener(pConn, config)
}

// NewListener wraps an already-bound net.PacketConn with connection
// multiplexing. The Listener takes ownership of conn: closing the
// Listener closes conn.
func NewListener(conn net.PacketConn, config *Config) (*Listener, error) {
	if config == nil {
		return nil, errNoConfigProvided
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	l := &Listener{
		config:   config,
		accepted: make(chan acceptResult, 16),
	}

	var cidLength int
	if config.ConnectionIDGenerator != nil {
		// All CIDs this generator hands out share one length (see the
		// field's doc comment): sample it once up front so the connector
		// can carve a CID of that length out of inbound tls12_cid records,
		// whose wire format never encodes the length itself (RFC 9146).
		cidLength = len(config.ConnectionIDGenerator())
	}

	l.connector = connector.New(conn, connector.Config{
		MaxConnections:          config.MaxConnections,
		IdleTimeout:             config.ConnectionIdleTimeout,
		InsecureSkipVerifyHello: config.InsecureSkipVerifyHello,
		LoggerFactory:           config.LoggerFactory,
		Metrics:                 config.ConnectionMetrics,
		ConnectionIDLength:      cidLength,
	}, l.accept, l.evict)

	go func() {
		_ = l.connector.Serve(context.Background())
	}()

	return l, nil
}

// accept runs as the connector's AcceptFunc: it is called once per new
// remote address, in its own goroutine bounded by the connector's
// accept semaphore, and drives that address's DTLS handshake to
// completion over the virtual per-session net.PacketConn the
// connector demultiplexes datagrams into.
func (l *Listener) accept(ctx context.Context, session *connector.Session, remote net.Addr) (interface{}, error) {
	if l.config.OnConnectionAttempt != nil {
		if err := l.config.OnConnectionAttempt(remote); err != nil {
			return nil, err
		}
	}

	conn, err := ServerWithContext(ctx, session, remote, l.config)
	result := acceptResult{conn: conn, err: err}

	select {
	case l.accepted <- result:
	default:
		// Backlog full; block briefly rather than drop a completed
		// handshake, but never forever if the Listener is closing.
		select {
		case l.accepted <- result:
		case <-ctx.Done():
			if conn != nil {
				_ = conn.Close()
			}
		}
	}

	if err != nil {
		return nil, err
	}

	if cid := conn.state.localConnectionID; len(cid) > 0 {
		l.connector.BindConnectionID(remote, cid)
	}

	return conn, nil
}

// evict runs as the connector's CloseFunc when a connection has been
// idle past Config.ConnectionIdleTimeout.
func (l *Listener) evict(handle interface{}) {
	if conn, ok := handle.(*Conn); ok {
		_ = conn.Close()
	}
}

// Accept waits for and returns the next fully handshaken connection.
func (l *Listener) Accept() (net.Conn, error) {
	result, ok := <-l.accepted
	if !ok {
		return nil, net.ErrClosed
	}
	return result.conn, result.err
}

// Close stops accepting new connections and closes the shared socket.
// Every tracked connection, including those already handed out by
// Accept, is closed as well through the connector's CloseFunc.
func (l *Listener) Close() error {
	l.closeMu.Lock()
	defer l.closeMu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	close(l.accepted)
	return l.connector.Close()
}

// Addr returns the listener's network address.
func (l *Listener) Addr() net.Addr {
	return l.connector.LocalAddr()
}
