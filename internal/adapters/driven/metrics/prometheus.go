// Package metrics exposes crawl telemetry as Prometheus metrics.
//
// The tool runs as a batch job, so metrics are written to a node_exporter
// textfile at the end of a run instead of being served over HTTP.
package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
)

const namespace = "ledgerscrape"

// Ensure Metrics implements the interface.
var _ driven.ExtractionObserver = (*Metrics)(nil)

// Metrics holds the crawl metrics.
type Metrics struct {
	PagesFetched   *prometheus.CounterVec
	RecordsFetched *prometheus.CounterVec
	Retries        *prometheus.CounterVec
	PageDuration   *prometheus.HistogramVec
	LastCursor     *prometheus.GaugeVec
	Partial        *prometheus.GaugeVec
	LastRun        prometheus.Gauge

	registry *prometheus.Registry
}

// New creates the metrics on a private registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.PagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Non-empty pages consumed",
		},
		[]string{"source"},
	)

	m.RecordsFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_fetched_total",
			Help:      "Records consumed",
		},
		[]string{"source"},
	)

	m.Retries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Page fetch retries by failure kind",
		},
		[]string{"source", "kind"}, // "transport", "shape"
	)

	m.PageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_fetch_duration_seconds",
			Help:      "Time to fetch and flatten one page",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"source"},
	)

	m.LastCursor = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cursor",
			Help:      "Cursor after the last consumed page",
		},
		[]string{"source"},
	)

	m.Partial = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "crawl_partial",
			Help:      "1 when the last crawl ended on an exhausted retry budget",
		},
		[]string{"source"},
	)

	m.LastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the metrics file was written",
		},
	)

	m.registry.MustRegister(
		m.PagesFetched,
		m.RecordsFetched,
		m.Retries,
		m.PageDuration,
		m.LastCursor,
		m.Partial,
		m.LastRun,
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// PageFetched records one consumed page.
func (m *Metrics) PageFetched(source string, records int, elapsed time.Duration) {
	label := sourceLabel(source)
	m.PagesFetched.WithLabelValues(label).Inc()
	m.RecordsFetched.WithLabelValues(label).Add(float64(records))
	m.PageDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// Retried records one retry.
func (m *Metrics) Retried(source string, kind driven.RetryKind) {
	m.Retries.WithLabelValues(sourceLabel(source), string(kind)).Inc()
}

// Finished records the final state of a crawl.
func (m *Metrics) Finished(source string, c *domain.Collection) {
	if c == nil {
		return
	}
	label := sourceLabel(source)
	// Per-proposal vote crawls share a label; their cursors are not comparable.
	if label == source {
		m.LastCursor.WithLabelValues(label).Set(float64(c.EndCursor))
	}
	partial := 0.0
	if c.Partial {
		partial = 1
	}
	m.Partial.WithLabelValues(label).Set(partial)
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	m.LastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}

// sourceLabel collapses per-entity sources ("votes:0xabc") to their kind.
func sourceLabel(source string) string {
	if i := strings.IndexByte(source, ':'); i > 0 {
		return source[:i]
	}
	return source
}
