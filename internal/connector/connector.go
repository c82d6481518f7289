// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package connector multiplexes many DTLS connections onto a single
// UDP socket: one read loop demultiplexes inbound datagrams by
// connection ID, once a handshake has negotiated one, falling back to
// remote address otherwise, into per-connection Sessions; a bounded
// worker pool keeps a burst of new ClientHellos from accepting
// unbounded concurrent handshakes, and a per-connection serial task
// queue delivers each connection's inbound datagrams in order without
// serializing unrelated connections against each other. Eviction and
// address rebinding do not go through that queue: they run directly on
// the sweep, Close and read-loop goroutines.
//
// Grounded on the read-loop/dispatch shape of a vinom-api UDP server
// socket manager (a single ReadFromUDP loop feeding a dispatch
// function keyed by the sender's address), generalized with
// golang.org/x/sync/semaphore for the accept-side concurrency bound
// and the teacher's own closer.Closer for shutdown.
package connector

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/pion/logging"
	"golang.org/x/sync/semaphore"

	"github.com/coreshift/dtls/v2/internal/closer"
	"github.com/coreshift/dtls/v2/internal/connectionstore"
	"github.com/coreshift/dtls/v2/internal/metrics"
)

const defaultReadBufferSize = 8192

// AcceptFunc is called once, in its own goroutine bounded by the
// connector's accept semaphore, for every remote address seen for the
// first time. The returned handle is whatever the caller wants to
// associate with the connection (typically a *dtls.Conn); the
// connector never inspects it beyond passing it back through Evict
// hooks.
type AcceptFunc func(ctx context.Context, session *Session, remote net.Addr) (handle interface{}, err error)

// CloseFunc is called when the connector evicts a connection, either
// because it went idle past IdleTimeout or the connector itself is
// shutting down.
type CloseFunc func(handle interface{})

// Config configures a Connector.
type Config struct {
	// MaxConnections bounds live multiplexed connections; 0 means
	// unbounded. Corresponds to the root package's Config.MaxConnections.
	MaxConnections int
	// MaxConcurrentAccepts bounds how many AcceptFunc calls (i.e. how
	// many in-flight handshakes) may run at once. Defaults to 256.
	MaxConcurrentAccepts int64
	// IdleTimeout evicts a connection that has not been touched for
	// this long; 0 disables idle eviction.
	IdleTimeout time.Duration
	// ReadBufferSize sizes the buffer used for each ReadFrom on the
	// shared socket. Defaults to 8192.
	ReadBufferSize int
	// SessionQueueLength bounds how many undelivered inbound datagrams
	// a single session will buffer before newer ones are dropped.
	SessionQueueLength int

	// InsecureSkipVerifyHello disables the connector's stateless cookie
	// gate, allocating a connEntry/Session for every new address on its
	// first datagram the way a server with HelloVerifyRequest disabled
	// would. Corresponds to the root package's Config.InsecureSkipVerifyHello.
	InsecureSkipVerifyHello bool

	// ConnectionIDLength, if non-zero, is the fixed length of the
	// connection IDs Config.ConnectionIDGenerator hands out (all
	// generated CIDs share one length, per the root package's
	// Config.ConnectionIDGenerator contract). A tls12_cid record's CID
	// field has no explicit length of its own on the wire (RFC 9146),
	// so the demultiplexer must already know this length to carve the
	// CID out of an inbound datagram before it can look the owning
	// connection up. Zero disables CID-based dispatch entirely: every
	// datagram is routed by source address only.
	ConnectionIDLength int

	LoggerFactory logging.LoggerFactory

	// Metrics, if non-nil, receives Prometheus counters/gauges for
	// accepted/refused/evicted connections. Left nil, metrics
	// recording is skipped entirely.
	Metrics *metrics.Collector
}

// Connector owns one UDP socket and fans its traffic out across many
// DTLS connections.
type Connector struct {
	conn   net.PacketConn
	store  *connectionstore.Store
	sem    *semaphore.Weighted
	log    logging.LeveledLogger
	closed *closer.Closer

	readBufferSize          int
	sessionQueueLength      int
	insecureSkipVerifyHello bool
	cidLength               int
	cookie                  *statelessCookie
	metrics                 *metrics.Collector

	onAccept AcceptFunc
	onClose  CloseFunc
}

type connEntry struct {
	session *Session
	handle  interface{}
	queue   chan func()
}

// New wraps conn (typically a *net.UDPConn bound with net.ListenUDP)
// with connection-multiplexing machinery. Serve must be called to
// start pumping datagrams.
func New(conn net.PacketConn, cfg Config, onAccept AcceptFunc, onClose CloseFunc) *Connector {
	markLowDelay(conn)

	maxAccepts := cfg.MaxConcurrentAccepts
	if maxAccepts <= 0 {
		maxAccepts = 256
	}
	readBuf := cfg.ReadBufferSize
	if readBuf <= 0 {
		readBuf = defaultReadBufferSize
	}
	queueLen := cfg.SessionQueueLength
	if queueLen <= 0 {
		queueLen = 64
	}

	loggerFactory := cfg.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}
	log := loggerFactory.NewLogger("dtls-connector")

	cookie, err := newStatelessCookie()
	insecureSkipVerifyHello := cfg.InsecureSkipVerifyHello
	if err != nil {
		// Can't mint a secret; fail open rather than refuse to serve,
		// but log loudly since this silently drops the DoS defense
		// dispatch otherwise provides.
		log.Errorf("connector: disabling stateless cookie gate, could not seed secret: %v", err)
		insecureSkipVerifyHello = true
	}

	return &Connector{
		conn:                    conn,
		store:                   connectionstore.New(cfg.MaxConnections, cfg.IdleTimeout),
		sem:                     semaphore.NewWeighted(maxAccepts),
		log:                     log,
		closed:                  closer.NewCloser(),
		readBufferSize:          readBuf,
		sessionQueueLength:      queueLen,
		insecureSkipVerifyHello: insecureSkipVerifyHello,
		cidLength:               cfg.ConnectionIDLength,
		cookie:                  cookie,
		metrics:                 cfg.Metrics,
		onAccept:                onAccept,
		onClose:                 onClose,
	}
}

// Serve runs the read loop until ctx is done or Close is called. It
// always returns a non-nil error (nil-returning accept loops are a
// frequent source of silent goroutine leaks).
func (c *Connector) Serve(ctx context.Context) error {
	var sweepTicker *time.Ticker
	if c.store.IdleTimeout > 0 {
		sweepTicker = time.NewTicker(c.store.IdleTimeout / 2)
		defer sweepTicker.Stop()
		go c.sweepLoop(ctx, sweepTicker)
	}

	buf := make([]byte, c.readBufferSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.closed.Done():
			return net.ErrClosed
		default:
		}

		n, addr, err := c.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			c.log.Warnf("connector: read error: %v", err)
			continue
		}

		c.dispatch(ctx, addr, buf[:n])
	}
}

func (c *Connector) dispatch(ctx context.Context, addr net.Addr, data []byte) {
	if c.cidLength > 0 {
		if cid, ok := parseConnectionID(data, c.cidLength); ok {
			entry, ok := c.store.LookupCID(cid)
			if !ok {
				// A tls12_cid record is never a fresh ClientHello, so
				// there is no accept path to fall back to: an unknown
				// CID is either stale (the connection it named has
				// since been evicted) or forged, and either way the
				// right move is to drop it rather than treat it as a
				// new connection attempt.
				c.log.Debugf("connector: dropping record with unknown connection id from %s", addr)
				return
			}
			ce, _ := entry.Conn.(*connEntry)
			if entry.Addr.String() != addr.String() {
				// The peer's source address moved (NAT rebinding) but
				// it is still presenting the CID we handed out, so
				// follow it to the new address instead of treating this
				// as a new connection.
				c.store.Rebind(entry.Addr, addr, entry)
				ce.session.rebind(addr)
			}
			c.enqueue(ce, func() { ce.session.push(data) })
			return
		}
	}

	if entry, ok := c.store.LookupAddr(addr); ok {
		ce, _ := entry.Conn.(*connEntry)
		c.enqueue(ce, func() { ce.session.push(data) })
		return
	}

	// Nothing is tracked for addr yet: this is either a fresh
	// ClientHello or noise. Gate the allocation below (connEntry,
	// Session, and the goroutine/handshaker runConnEntry spawns) behind
	// a stateless cookie check so a flood of spoofed source addresses
	// cannot force that allocation at all — the only thing it can force
	// is this function computing an HMAC and writing a reply datagram.
	if !c.insecureSkipVerifyHello {
		clientHello, recHdr, err := peekClientHello(data)
		if err != nil {
			// Anything that is not an unfragmented ClientHello (a
			// fragmented one included) is dropped before any state exists.
			c.log.Debugf("connector: dropping datagram from %s: %v", addr, err)
			return
		}
		if !c.cookie.verify(addr, clientHello) {
			if len(clientHello.Cookie) > 0 {
				c.metrics.Refused(metrics.ReasonBadCookie)
			}
			reply, err := helloVerifyRequest(c.cookie.generate(addr, clientHello), recHdr.Version, recHdr.Epoch)
			if err != nil {
				c.log.Warnf("connector: building HelloVerifyRequest for %s: %v", addr, err)
				return
			}
			if _, err := c.conn.WriteTo(reply, addr); err != nil {
				c.log.Warnf("connector: writing HelloVerifyRequest to %s: %v", addr, err)
			}
			return
		}
	}

	if !c.sem.TryAcquire(1) {
		c.log.Warnf("connector: accept queue full, dropping datagram from %s", addr)
		c.metrics.Refused(metrics.ReasonAcceptQueueFull)
		return
	}

	session := newSession(c.conn, addr, c.sessionQueueLength)
	ce := &connEntry{session: session, queue: make(chan func(), 16)}
	entry, inserted := c.store.Insert(addr, ce)
	if !inserted {
		// dispatch runs only on the read loop, so nothing else has
		// inserted addr meanwhile: the store refused because it is at
		// capacity and its least-recently used entry is not stale. If
		// addr is tracked after all, its session takes this datagram.
		c.sem.Release(1)
		c.metrics.Refused(metrics.ReasonStoreFull)
		if entry, ok := c.store.LookupAddr(addr); ok {
			if winner, ok := entry.Conn.(*connEntry); ok {
				c.enqueue(winner, func() { winner.session.push(data) })
			}
		}
		return
	}
	_ = entry
	c.metrics.IncActive()
	c.metrics.AcceptedOne()

	go c.runConnEntry(ctx, ce)
	c.enqueue(ce, func() { ce.session.push(data) })
}

// runConnEntry is the per-connection serial executor: it drains ce's
// task queue on a single goroutine, then calls AcceptFunc, storing the
// resulting handle once the handshake's accept call returns.
func (c *Connector) runConnEntry(ctx context.Context, ce *connEntry) {
	remote := ce.session.remoteAddr()
	handle, err := c.onAccept(ctx, ce.session, remote)
	c.sem.Release(1)
	if err != nil {
		c.log.Debugf("connector: accept failed for %s: %v", remote, err)
		c.store.Remove(remote)
		c.metrics.DecActive()
		c.metrics.Evicted(metrics.ReasonAcceptFailed)
		_ = ce.session.Close()
		return
	}
	ce.handle = handle

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closed.Done():
			return
		case task, ok := <-ce.queue:
			if !ok {
				return
			}
			task()
		}
	}
}

func (c *Connector) enqueue(ce *connEntry, task func()) {
	select {
	case ce.queue <- task:
	default:
		c.log.Warnf("connector: task queue full for %s, dropping datagram", ce.session.remoteAddr())
	}
}

// BindConnectionID lets the caller (typically once a handshake
// negotiates one) register a connection ID for addr, so future
// datagrams arriving from a migrated address can still be routed by
// CID. Exposed for the root package's AcceptFunc to call once a
// handshake's local connection ID is known.
func (c *Connector) BindConnectionID(addr net.Addr, cid []byte) bool {
	return c.store.BindCID(addr, cid)
}

func (c *Connector) sweepLoop(ctx context.Context, t *time.Ticker) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closed.Done():
			return
		case <-t.C:
			for _, handle := range c.store.Sweep() {
				ce, ok := handle.(*connEntry)
				if !ok {
					continue
				}
				c.metrics.DecActive()
				c.metrics.Evicted(metrics.ReasonIdle)
				_ = ce.session.Close()
				if c.onClose != nil && ce.handle != nil {
					c.onClose(ce.handle)
				}
			}
		}
	}
}

// Close shuts the connector down: the read loop's blocking ReadFrom is
// unblocked by closing the underlying socket, and every tracked
// session is marked closed.
func (c *Connector) Close() error {
	c.closed.Close()
	err := c.conn.Close()
	for _, handle := range c.store.EvictAll() {
		ce, ok := handle.(*connEntry)
		if !ok {
			continue
		}
		c.metrics.DecActive()
		c.metrics.Evicted(metrics.ReasonShutdown)
		_ = ce.session.Close()
		if c.onClose != nil && ce.handle != nil {
			c.onClose(ce.handle)
		}
	}
	return err
}

// Len reports how many connections are currently multiplexed.
func (c *Connector) Len() int {
	return c.store.Len()
}

// LocalAddr returns the shared socket's local address.
func (c *Connector) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}
