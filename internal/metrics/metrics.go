// Package metrics exposes Prometheus instrumentation for lookups, snapshot
// reloads and admin mutations on a dedicated registry.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loanlocator/internal/lookup"
)

const namespace = "loanlocator"

var latencyBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// Metrics holds all Prometheus metrics.
type Metrics struct {
	registry        *prometheus.Registry
	lookupsTotal    *prometheus.CounterVec
	lookupDuration  prometheus.Histogram
	reloadsTotal    *prometheus.CounterVec
	reloadDuration  prometheus.Histogram
	snapshotSize    *prometheus.GaugeVec
	mutationsTotal  *prometheus.CounterVec
	mutationLatency *prometheus.HistogramVec
}

// New creates the metrics and registers them with a fresh registry that
// also carries the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Loan lookups by outcome status",
		}, []string{"status"}),
		lookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Lookup latency in seconds",
			Buckets:   latencyBuckets,
		}),
		reloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_reloads_total",
			Help:      "Reference snapshot reload attempts by result",
		}, []string{"result"}),
		reloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_reload_duration_seconds",
			Help:      "Reference snapshot reload duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		snapshotSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_records",
			Help:      "Records held by the active snapshot per collection",
		}, []string{"collection"}),
		mutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_mutations_total",
			Help:      "Admin mutations by operation and result",
		}, []string{"operation", "result"}),
		mutationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "admin_mutation_duration_seconds",
			Help:      "Admin mutation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.lookupsTotal,
		m.lookupDuration,
		m.reloadsTotal,
		m.reloadDuration,
		m.snapshotSize,
		m.mutationsTotal,
		m.mutationLatency,
	)
	return m
}

// Registry returns the dedicated registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveLookup records one lookup. status is a lookup.Status or an error
// code such as "non_numeric_input".
func (m *Metrics) ObserveLookup(status string, duration time.Duration) {
	m.lookupsTotal.WithLabelValues(status).Inc()
	m.lookupDuration.Observe(duration.Seconds())
}

// ObserveReload implements lookup.ReloadObserver.
func (m *Metrics) ObserveReload(stats lookup.Stats, err error, duration time.Duration) {
	m.reloadDuration.Observe(duration.Seconds())
	if err != nil {
		m.reloadsTotal.WithLabelValues("error").Inc()
		return
	}
	m.reloadsTotal.WithLabelValues("success").Inc()
	m.snapshotSize.WithLabelValues("loans").Set(float64(stats.Loans))
	m.snapshotSize.WithLabelValues("ranges").Set(float64(stats.Ranges))
}

// Observe implements core.MetricsRecorder.
func (m *Metrics) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "error"
	}
	m.mutationsTotal.WithLabelValues(operation, result).Inc()
	m.mutationLatency.WithLabelValues(operation).Observe(duration.Seconds())
}
