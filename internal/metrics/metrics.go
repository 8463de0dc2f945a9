// Package metrics exposes prometheus collectors for completion calls and
// note processing.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spigell/interview-insights/internal/ai"
)

const namespace = "interview_insights"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeInvalid = "invalid"

	OriginFile   = "file"
	OriginManual = "manual"
)

// Metrics owns a private registry so several instances can coexist in tests.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	completions        *prometheus.CounterVec
	completionDuration *prometheus.HistogramVec
	reports            *prometheus.CounterVec
	noteSets           *prometheus.CounterVec
	extractionFailures *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Completion calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		completionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Latency of completion calls.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"provider"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Report requests by outcome.",
		}, []string{"outcome"}),
		noteSets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "note_sets_total",
			Help:      "Note sets received by origin.",
		}, []string{"origin"}),
		extractionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_failures_total",
			Help:      "Uploaded files replaced by a placeholder, by failure kind.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.completions,
		m.completionDuration,
		m.reports,
		m.noteSets,
		m.extractionFailures,
	)

	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveReport(outcome string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveNoteSet(origin string) {
	if m == nil {
		return
	}
	m.noteSets.WithLabelValues(origin).Inc()
}

func (m *Metrics) ObserveExtractionFailure(kind string) {
	if m == nil {
		return
	}
	m.extractionFailures.WithLabelValues(kind).Inc()
}

type instrumented struct {
	next     ai.Completer
	provider string
	metrics  *Metrics
}

// Instrument wraps c so every call is counted and timed.
func (m *Metrics) Instrument(provider string, c ai.Completer) ai.Completer {
	if m == nil {
		return c
	}
	return &instrumented{next: c, provider: provider, metrics: m}
}

func (i *instrumented) Complete(ctx context.Context, req ai.Request) (string, error) {
	start := time.Now()
	out, err := i.next.Complete(ctx, req)
	i.metrics.completionDuration.WithLabelValues(i.provider).Observe(time.Since(start).Seconds())

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	i.metrics.completions.WithLabelValues(i.provider, outcome).Inc()

	return out, err
}
