// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.IncActive()
	c.DecActive()
	c.AcceptedOne()
	c.Refused(ReasonBadCookie)
	c.Evicted(ReasonIdle)
	c.Register(prometheus.NewRegistry())
}

func TestCollectorRecordsCounts(t *testing.T) {
	c := NewCollector("dtls_test")
	reg := prometheus.NewRegistry()
	c.Register(reg)

	c.IncActive()
	c.IncActive()
	c.DecActive()
	c.AcceptedOne()
	c.Refused(ReasonStoreFull)
	c.Evicted(ReasonIdle)
	c.Evicted(ReasonIdle)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	byName := make(map[string]*dto.MetricFamily)
	for _, f := range families {
		byName[f.GetName()] = f
	}

	active := byName["dtls_test_connector_active_connections"]
	if active == nil || len(active.Metric) != 1 || active.Metric[0].GetGauge().GetValue() != 1 {
		t.Fatalf("unexpected active_connections family: %+v", active)
	}

	accepted := byName["dtls_test_connector_handshakes_accepted_total"]
	if accepted == nil || len(accepted.Metric) != 1 || accepted.Metric[0].GetCounter().GetValue() != 1 {
		t.Fatalf("unexpected handshakes_accepted_total family: %+v", accepted)
	}

	evicted := byName["dtls_test_connector_connections_evicted_total"]
	if evicted == nil || len(evicted.Metric) != 1 || evicted.Metric[0].GetCounter().GetValue() != 2 {
		t.Fatalf("unexpected connections_evicted_total family: %+v", evicted)
	}
}
