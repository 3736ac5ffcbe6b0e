// Package telemetry records build and query metrics for rlzap.
//
// Metrics live in a per-process Prometheus registry. A short-lived CLI run
// exports them through the node_exporter textfile collector instead of
// serving a scrape endpoint.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jameslz/rlzap/pkg/alphabet"
	"github.com/jameslz/rlzap/pkg/lcp"
)

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the Prometheus collectors for one process.
type Metrics struct {
	registry *prometheus.Registry

	BuildsTotal   *prometheus.CounterVec
	BuildDuration prometheus.Histogram
	PhrasesTotal  *prometheus.CounterVec
	SymbolsTotal  *prometheus.CounterVec
	QueriesTotal  *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	IndexBytes    prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rlzap_builds_total",
				Help: "Index builds by status (ok, error).",
			},
			[]string{"status"},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rlzap_build_duration_seconds",
				Help:    "Wall time of one index build, matching included.",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
		PhrasesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rlzap_phrases_total",
				Help: "Phrases emitted by builds, by kind (literal, copy).",
			},
			[]string{"kind"},
		),
		SymbolsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rlzap_symbols_total",
				Help: "Target symbols covered by emitted phrases, by kind.",
			},
			[]string{"kind"},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rlzap_queries_total",
				Help: "Index queries by operation and status.",
			},
			[]string{"op", "status"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rlzap_query_duration_seconds",
				Help:    "Index query latency in seconds.",
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
			},
			[]string{"op"},
		),
		IndexBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rlzap_index_bytes_written_total",
				Help: "Bytes of serialized index written.",
			},
		),
	}

	m.registry.MustRegister(
		m.BuildsTotal,
		m.BuildDuration,
		m.PhrasesTotal,
		m.SymbolsTotal,
		m.QueriesTotal,
		m.QueryDuration,
		m.IndexBytes,
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordBuild counts one finished build.
func (m *Metrics) RecordBuild(d time.Duration, err error) {
	m.BuildsTotal.WithLabelValues(status(err)).Inc()
	if err == nil {
		m.BuildDuration.Observe(d.Seconds())
	}
}

// RecordQuery counts one query of operation op.
func (m *Metrics) RecordQuery(op string, d time.Duration, err error) {
	m.QueriesTotal.WithLabelValues(op, status(err)).Inc()
	m.QueryDuration.WithLabelValues(op).Observe(d.Seconds())
}

// WriteTextfile writes every metric to path in the Prometheus text format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Observer returns an lcp.Observer counting phrases as a build streams them.
func (m *Metrics) Observer() lcp.Observer {
	return &phraseCounter{m: m}
}

type phraseCounter struct {
	m *Metrics
}

func (p *phraseCounter) Literal(_ int, values []alphabet.Symbol) error {
	p.add(lcp.KindLiteral, len(values))
	return nil
}

func (p *phraseCounter) Copy(_, _, length int) error {
	p.add(lcp.KindCopy, length)
	return nil
}

func (p *phraseCounter) End() error {
	return nil
}

func (p *phraseCounter) add(kind lcp.PhraseKind, length int) {
	p.m.PhrasesTotal.WithLabelValues(kind.String()).Inc()
	p.m.SymbolsTotal.WithLabelValues(kind.String()).Add(float64(length))
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}
