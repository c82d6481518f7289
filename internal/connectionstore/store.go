// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package connectionstore indexes the connections multiplexed onto a
// single UDP socket by both their current remote address and, once a
// handshake negotiates one, their DTLS connection ID (RFC 9146), so an
// incoming datagram can be routed to the right connection even after
// the client's address changes.
//
// Grounded on the clients-map-plus-lock pattern of a vinom-api UDP
// server socket manager, adapted to an address/CID dual index backed
// by a single container/list LRU rather than that example's single
// map plus a separate garbage-collection ticker.
package connectionstore

import (
	"container/list"
	"net"
	"sync"
	"time"
)

// Entry is one multiplexed connection tracked by the store. Conn is an
// opaque handle (the connector's own connection wrapper); the store
// never dereferences it.
type Entry struct {
	Addr       net.Addr
	CID        string // empty until the handshake negotiates one
	Conn       interface{}
	LastActive time.Time

	element *list.Element
}

// Store indexes entries by remote address and by connection ID under
// one lock, evicting least-recently-used entries once Capacity is
// exceeded and lazily evicting entries older than IdleTimeout on
// access.
type Store struct {
	mu sync.Mutex

	byAddr map[string]*Entry
	byCID  map[string]*Entry
	lru    *list.List // most-recently-used at the front

	// Capacity is the maximum number of live entries; 0 means
	// unbounded. Corresponds to Config.MaxConnections.
	Capacity int
	// IdleTimeout, if non-zero, evicts an entry that has not been
	// touched for this long the next time it is looked up or the
	// store is swept.
	IdleTimeout time.Duration
}

// New returns a ready-to-use Store.
func New(capacity int, idleTimeout time.Duration) *Store {
	return &Store{
		byAddr:      make(map[string]*Entry),
		byCID:       make(map[string]*Entry),
		lru:         list.New(),
		Capacity:    capacity,
		IdleTimeout: idleTimeout,
	}
}

// Insert adds a new entry keyed by addr. If the store is at capacity it
// first evicts the least-recently used entry, but only when that entry
// is stale (idle past IdleTimeout) or IdleTimeout is 0; otherwise the
// insert is refused. It returns false (and inserts nothing) if an entry
// already exists for addr or the insert is refused.
func (s *Store) Insert(addr net.Addr, conn interface{}) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := addr.String()
	if _, exists := s.byAddr[key]; exists {
		return nil, false
	}

	if s.Capacity > 0 && len(s.byAddr) >= s.Capacity {
		if !s.evictOldestLocked() {
			// The LRU entry is still within the stale threshold (or one
			// is configured and nothing qualifies): refuse rather than
			// evict a healthy, recently-active connection out from under
			// it. The caller must drop the new handshake.
			return nil, false
		}
	}

	e := &Entry{Addr: addr, Conn: conn, LastActive: now()}
	e.element = s.lru.PushFront(e)
	s.byAddr[key] = e
	return e, true
}

// LookupAddr returns the live entry for addr, touching it as
// recently used. It reports false if no entry is registered, or the
// entry was idle past IdleTimeout and has just been evicted.
func (s *Store) LookupAddr(addr net.Addr) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byAddr[addr.String()]
	if !ok {
		return nil, false
	}
	return s.touchLocked(e)
}

// LookupCID returns the live entry for a connection ID, touching it
// as recently used.
func (s *Store) LookupCID(cid []byte) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byCID[string(cid)]
	if !ok {
		return nil, false
	}
	return s.touchLocked(e)
}

// touchLocked refreshes e's LRU position and last-active time, first
// evicting it if it has gone idle past IdleTimeout.
func (s *Store) touchLocked(e *Entry) (*Entry, bool) {
	if s.IdleTimeout > 0 && now().Sub(e.LastActive) > s.IdleTimeout {
		s.removeLocked(e)
		return nil, false
	}
	e.LastActive = now()
	s.lru.MoveToFront(e.element)
	return e, true
}

// BindCID associates a negotiated connection ID with an already
// tracked entry, so future datagrams can be routed by CID even after
// the client's source address migrates.
func (s *Store) BindCID(addr net.Addr, cid []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byAddr[addr.String()]
	if !ok {
		return false
	}
	if e.CID != "" {
		delete(s.byCID, e.CID)
	}
	e.CID = string(cid)
	s.byCID[e.CID] = e
	return true
}

// Rebind moves an entry from an old remote address to a new one,
// following a client that migrated addresses while keeping the same
// connection ID.
func (s *Store) Rebind(oldAddr, newAddr net.Addr, e *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byAddr, oldAddr.String())
	e.Addr = newAddr
	s.byAddr[newAddr.String()] = e
}

// Remove evicts an entry by its current remote address.
func (s *Store) Remove(addr net.Addr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.byAddr[addr.String()]; ok {
		s.removeLocked(e)
	}
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byAddr)
}

// Sweep evicts every entry that has been idle past IdleTimeout,
// returning the evicted connections so the caller can close them. Run
// from a periodic ticker alongside the connector's read loop.
func (s *Store) Sweep() []interface{} {
	if s.IdleTimeout <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []interface{}
	cutoff := now().Add(-s.IdleTimeout)
	for el := s.lru.Back(); el != nil; {
		e, _ := el.Value.(*Entry)
		prev := el.Prev()
		if e.LastActive.Before(cutoff) {
			evicted = append(evicted, e.Conn)
			s.removeLocked(e)
		}
		el = prev
	}
	return evicted
}

// EvictAll removes every tracked entry, returning their connections so
// the caller can close them. Used when the owning connector itself is
// shutting down.
func (s *Store) EvictAll() []interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := make([]interface{}, 0, len(s.byAddr))
	for el := s.lru.Front(); el != nil; el = el.Next() {
		e, _ := el.Value.(*Entry)
		evicted = append(evicted, e.Conn)
	}
	s.byAddr = make(map[string]*Entry)
	s.byCID = make(map[string]*Entry)
	s.lru = list.New()
	return evicted
}

// evictOldestLocked evicts the store's least-recently-used entry and
// reports whether it did, gated by the same stale threshold Sweep
// uses (IdleTimeout): an entry active more recently than that
// threshold survives a capacity-driven eviction attempt. An IdleTimeout
// of 0 means no stale-session policy is configured, so capacity
// pressure falls back to plain unconditional LRU eviction.
func (s *Store) evictOldestLocked() bool {
	el := s.lru.Back()
	if el == nil {
		return false
	}
	e, _ := el.Value.(*Entry)
	if s.IdleTimeout > 0 && now().Sub(e.LastActive) <= s.IdleTimeout {
		return false
	}
	s.removeLocked(e)
	return true
}

func (s *Store) removeLocked(e *Entry) {
	delete(s.byAddr, e.Addr.String())
	if e.CID != "" {
		delete(s.byCID, e.CID)
	}
	s.lru.Remove(e.element)
}

// now is a seam so tests can avoid depending on the wall clock.
var now = time.Now
