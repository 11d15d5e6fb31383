// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the
// consultation service: diagnosis counters and latency, rule mutation
// counters, and a gauge of active rules.
//
// Metrics are exposed via the /metrics endpoint. All operations are
// thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "sipakar"

const consultationSubsystem = "consultation"

// ConsultationMetrics holds all Prometheus metrics for the service.
// Initialize once at startup via InitMetrics().
type ConsultationMetrics struct {
	// DiagnosesTotal counts diagnosis requests.
	// Labels: status (success, validation_error, empty_result)
	DiagnosesTotal *prometheus.CounterVec

	// DiagnosisDurationSeconds measures one forward-chaining pass plus
	// explanation building.
	DiagnosisDurationSeconds prometheus.Histogram

	// ConclusionsPerDiagnosis observes how many conclusions each
	// consultation produced.
	ConclusionsPerDiagnosis prometheus.Histogram

	// RuleMutationsTotal counts knowledge-base writes.
	// Labels: op (create, update, delete), status (success, error)
	RuleMutationsTotal *prometheus.CounterVec

	// ActiveRules tracks the size of the active rule set.
	ActiveRules prometheus.Gauge
}

// DefaultMetrics is the singleton instance, set by InitMetrics.
var DefaultMetrics *ConsultationMetrics

// InitMetrics creates and registers all metrics on the default
// registry. Call once at startup; a second call panics on duplicate
// registration.
func InitMetrics() *ConsultationMetrics {
	DefaultMetrics = &ConsultationMetrics{
		DiagnosesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: consultationSubsystem,
				Name:      "diagnoses_total",
				Help:      "Total diagnosis requests by outcome",
			},
			[]string{"status"},
		),

		DiagnosisDurationSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: consultationSubsystem,
				Name:      "diagnosis_duration_seconds",
				Help:      "Time to run inference and build explanations",
				Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
			},
		),

		ConclusionsPerDiagnosis: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: consultationSubsystem,
				Name:      "conclusions_per_diagnosis",
				Help:      "Number of conclusions per consultation",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
			},
		),

		RuleMutationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: consultationSubsystem,
				Name:      "rule_mutations_total",
				Help:      "Knowledge-base writes by operation and outcome",
			},
			[]string{"op", "status"},
		),

		ActiveRules: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: consultationSubsystem,
				Name:      "active_rules",
				Help:      "Rules currently participating in inference",
			},
		),
	}
	return DefaultMetrics
}

// RecordDiagnosis records one diagnosis request.
func (m *ConsultationMetrics) RecordDiagnosis(status string, seconds float64, conclusions int) {
	m.DiagnosesTotal.WithLabelValues(status).Inc()
	m.DiagnosisDurationSeconds.Observe(seconds)
	m.ConclusionsPerDiagnosis.Observe(float64(conclusions))
}

// RecordRuleMutation records one knowledge-base write.
func (m *ConsultationMetrics) RecordRuleMutation(op string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.RuleMutationsTotal.WithLabelValues(op, status).Inc()
}

// SetActiveRules updates the active-rule gauge.
func (m *ConsultationMetrics) SetActiveRules(n int) {
	m.ActiveRules.Set(float64(n))
}
