// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus collectors for the connection
// multiplexing layer (internal/connector, internal/connectionstore):
// how many connections are live, how many handshakes were accepted,
// evicted, or refused outright, broken down by reason.
//
// Grounded on the teacher's own go.mod dependency on
// github.com/prometheus/client_golang, which the retrieved snapshot
// lists but never calls into; wired in here against the one component
// the spec actually describes as long-lived and multi-tenant enough
// to want a /metrics endpoint in front of it.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector bundles every metric the connector and connection store
// report against. A nil *Collector is always safe to call methods on,
// so wiring metrics in is opt-in: callers that don't build one pay
// nothing beyond a nil check per event.
type Collector struct {
	activeConnections prometheus.Gauge
	accepted          prometheus.Counter
	refused           *prometheus.CounterVec
	evicted           *prometheus.CounterVec
}

// Eviction reasons recorded against the evicted counter.
const (
	ReasonIdle         = "idle"
	ReasonShutdown     = "shutdown"
	ReasonAcceptFailed = "accept_failed"
)

// Refusal reasons recorded against the refused counter.
const (
	ReasonAcceptQueueFull = "accept_queue_full"
	ReasonStoreFull       = "store_full"
	ReasonBadCookie       = "bad_cookie"
)

// NewCollector builds a Collector with metric names under namespace
// (typically "dtls"). The caller is responsible for registering it
// with a prometheus.Registerer via Register.
func NewCollector(namespace string) *Collector {
	return &Collector{
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "connector",
			Name:      "active_connections",
			Help:      "Number of connections currently multiplexed onto the connector's socket.",
		}),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connector",
			Name:      "handshakes_accepted_total",
			Help:      "Number of ClientHellos that passed the cookie gate and were handed a connection slot.",
		}),
		refused: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connector",
			Name:      "handshakes_refused_total",
			Help:      "Number of ClientHellos refused before a connection slot was allocated, by reason.",
		}, []string{"reason"}),
		evicted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connector",
			Name:      "connections_evicted_total",
			Help:      "Number of connections removed from the store, by reason.",
		}, []string{"reason"}),
	}
}

// Register adds every collector in c to reg. Safe to call once at
// startup; panics on a duplicate registration the same way
// prometheus.MustRegister does, since that indicates a programming
// error rather than a runtime condition to recover from.
func (c *Collector) Register(reg prometheus.Registerer) {
	if c == nil {
		return
	}
	reg.MustRegister(c.activeConnections, c.accepted, c.refused, c.evicted)
}

// IncActive records a connection entering the store.
func (c *Collector) IncActive() {
	if c == nil {
		return
	}
	c.activeConnections.Inc()
}

// DecActive records a connection leaving the store.
func (c *Collector) DecActive() {
	if c == nil {
		return
	}
	c.activeConnections.Dec()
}

// AcceptedOne records a ClientHello that passed the cookie gate.
func (c *Collector) AcceptedOne() {
	if c == nil {
		return
	}
	c.accepted.Inc()
}

// Refused records a ClientHello turned away before a slot was allocated.
func (c *Collector) Refused(reason string) {
	if c == nil {
		return
	}
	c.refused.WithLabelValues(reason).Inc()
}

// Evicted records a connection removed from the store.
func (c *Collector) Evicted(reason string) {
	if c == nil {
		return
	}
	c.evicted.WithLabelValues(reason).Inc()
}
