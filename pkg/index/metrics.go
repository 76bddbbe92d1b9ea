// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors a Pipeline updates as it runs.
// A nil *Metrics is safe to use everywhere a Pipeline calls these methods
// (a Pipeline built without WithMetrics holds a nil *Metrics).
type Metrics struct {
	filesProcessed *prometheus.CounterVec
	parseErrors    prometheus.Counter
	embedErrors    prometheus.Counter
	embedDuration  prometheus.Histogram
	runDuration    prometheus.Histogram
}

// NewMetrics registers and returns the indexing pipeline's Prometheus
// collectors on reg. Pass prometheus.NewRegistry() for an isolated
// registry (one per process is enough for the CLI).
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		filesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codecontext_index_files_processed_total",
			Help: "Files processed by the indexing pipeline, by change type.",
		}, []string{"change_type"}),
		parseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codecontext_index_parse_errors_total",
			Help: "Files that failed to parse during an indexing run.",
		}),
		embedErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codecontext_index_embed_errors_total",
			Help: "Files that failed to embed during an indexing run.",
		}),
		embedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "codecontext_index_embed_duration_seconds",
			Help:    "Wall-clock time spent embedding and upserting per run.",
			Buckets: prometheus.DefBuckets,
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "codecontext_index_run_duration_seconds",
			Help:    "Wall-clock time spent per complete indexing run.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
	reg.MustRegister(m.filesProcessed, m.parseErrors, m.embedErrors, m.embedDuration, m.runDuration)
	return m
}

func (m *Metrics) observeRun(result *Result) {
	if m == nil {
		return
	}
	m.filesProcessed.WithLabelValues("added").Add(float64(result.Added))
	m.filesProcessed.WithLabelValues("modified").Add(float64(result.Modified))
	m.filesProcessed.WithLabelValues("unchanged").Add(float64(result.Unchanged))
	m.filesProcessed.WithLabelValues("deleted").Add(float64(result.Deleted))
	m.parseErrors.Add(float64(result.ParseErrors))
	m.embedErrors.Add(float64(result.EmbedErrors))
	m.embedDuration.Observe(result.EmbedDuration.Seconds())
	m.runDuration.Observe(result.TotalDuration.Seconds())
}

// Handler returns an HTTP handler serving this registry's metrics in the
// Prometheus exposition format, suitable for mounting at /metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
