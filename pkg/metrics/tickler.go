// Copyright (C) 2017 ScyllaDB

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tickler"

// TicklerMetrics describe progress of a read repair sweep.
type TicklerMetrics struct {
	rows           *prometheus.CounterVec
	estimatedTotal *prometheus.GaugeVec
	throttle       prometheus.Gauge
}

func NewTicklerMetrics() TicklerMetrics {
	return TicklerMetrics{
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "repair",
			Name:      "rows_total",
			Help:      "Total number of rows read at the repair consistency level by outcome.",
		}, []string{"keyspace", "table", "outcome"}),
		estimatedTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "repair",
			Name:      "rows_estimated",
			Help:      "Estimated number of rows in the table.",
		}, []string{"keyspace", "table"}),
		throttle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "repair",
			Name:      "throttle_seconds",
			Help:      "Pause between repair reads.",
		}),
	}
}

func (m TicklerMetrics) all() []prometheus.Collector {
	return []prometheus.Collector{
		m.rows,
		m.estimatedTotal,
		m.throttle,
	}
}

// MustRegister shall be called to make the metrics visible by prometheus client.
func (m TicklerMetrics) MustRegister() TicklerMetrics {
	prometheus.MustRegister(m.all()...)
	return m
}

// AddRow increments "rows_total" for the outcome.
func (m TicklerMetrics) AddRow(keyspace, table, outcome string) {
	m.rows.With(prometheus.Labels{
		"keyspace": keyspace,
		"table":    table,
		"outcome":  outcome,
	}).Inc()
}

// SetEstimatedTotal updates "rows_estimated".
func (m TicklerMetrics) SetEstimatedTotal(keyspace, table string, total float64) {
	m.estimatedTotal.With(prometheus.Labels{
		"keyspace": keyspace,
		"table":    table,
	}).Set(total)
}

// SetThrottle updates "throttle_seconds".
func (m TicklerMetrics) SetThrottle(seconds float64) {
	m.throttle.Set(seconds)
}
