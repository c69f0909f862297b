// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

// Package metrics provides prometheus counters for logger activity.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hlog"

// Metrics counts dispatched, dropped and failed records.
type Metrics struct {
	records      *prometheus.CounterVec
	dropped      *prometheus.CounterVec
	outputErrors *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
// A nil reg leaves the counters unregistered, which is useful in tests.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Number of records dispatched to handlers, by level.",
		}, []string{"level"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_dropped_total",
			Help:      "Number of records below the configured level, by level.",
		}, []string{"level"}),
		outputErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_errors_total",
			Help:      "Number of failed handler writes, by handler type.",
		}, []string{"type"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.records, m.dropped, m.outputErrors} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("could not register metrics: %w", err)
		}
	}
	return m, nil
}

// Dispatched records a dispatched record.
func (m *Metrics) Dispatched(level string) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(level).Inc()
}

// Dropped records a record below the threshold.
func (m *Metrics) Dropped(level string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(level).Inc()
}

// OutputError records a failed handler write.
func (m *Metrics) OutputError(typ string) {
	if m == nil {
		return
	}
	m.outputErrors.WithLabelValues(typ).Inc()
}

// Records returns the dispatched records counter.
func (m *Metrics) Records() *prometheus.CounterVec {
	return m.records
}

// Drops returns the dropped records counter.
func (m *Metrics) Drops() *prometheus.CounterVec {
	return m.dropped
}

// OutputErrors returns the output errors counter.
func (m *Metrics) OutputErrors() *prometheus.CounterVec {
	return m.outputErrors
}
