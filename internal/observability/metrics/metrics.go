// Package metrics exposes the registry's operational counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry *prometheus.Registry

	actionsProcessed   *prometheus.CounterVec
	certificatesIssued *prometheus.CounterVec
	eventsAppended     prometheus.Counter
}

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		actionsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gc_registry",
			Name:      "actions_processed_total",
			Help:      "Certificate bundle actions processed, by action type and outcome.",
		}, []string{"action_type", "outcome"}),
		certificatesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gc_registry",
			Name:      "certificates_issued_total",
			Help:      "Certificates issued, by device.",
		}, []string{"device_id"}),
		eventsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gc_registry",
			Name:      "events_appended_total",
			Help:      "Audit events appended to the registry stream.",
		}),
	}
	registry.MustRegister(m.actionsProcessed, m.certificatesIssued, m.eventsAppended)
	return m
}

func (m *Metrics) RecordAction(actionType, outcome string) {
	if m == nil {
		return
	}
	m.actionsProcessed.WithLabelValues(actionType, outcome).Inc()
}

func (m *Metrics) RecordIssued(deviceID string, count int64) {
	if m == nil {
		return
	}
	m.certificatesIssued.WithLabelValues(deviceID).Add(float64(count))
}

func (m *Metrics) RecordEventsAppended(count int) {
	if m == nil {
		return
	}
	m.eventsAppended.Add(float64(count))
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
