package inbound

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts acceptance decisions. Rejections carry the reason as a
// label for operator dashboards; the wire response stays uniform.
type Metrics struct {
	accepted prometheus.Counter
	rejected *prometheus.CounterVec
}

// NewMetrics registers the inbound counters on reg. A nil registerer
// yields metrics that still count but are not exported.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mesh",
			Subsystem: "inbound",
			Name:      "envelopes_accepted_total",
			Help:      "Envelopes that passed signature, freshness and replay checks.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mesh",
			Subsystem: "inbound",
			Name:      "envelopes_rejected_total",
			Help:      "Envelopes rejected by the acceptance pipeline, by reason.",
		}, []string{"reason"}),
	}
	if reg != nil {
		reg.MustRegister(m.accepted, m.rejected)
	}
	return m
}

func (m *Metrics) observe(d Decision) {
	if m == nil {
		return
	}
	if d.Status == StatusAccepted {
		m.accepted.Inc()
		return
	}
	m.rejected.WithLabelValues(string(d.Reason)).Inc()
}
