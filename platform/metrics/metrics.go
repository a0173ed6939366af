// Package metrics exposes Prometheus counters for the quoting pipeline.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "corralon"

// Metrics owns a private registry so tests can create independent instances.
type Metrics struct {
	registry *prometheus.Registry

	matchOutcomes        *prometheus.CounterVec
	turns                *prometheus.CounterVec
	turnDuration         prometheus.Histogram
	collaboratorFailures *prometheus.CounterVec
	inboundDropped       prometheus.Counter
	quotesFinalized      prometheus.Counter
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
	)

	m := &Metrics{
		registry: registry,
		matchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_outcomes_total",
			Help:      "Request lines by match outcome and deciding stage.",
		}, []string{"outcome", "stage"}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Conversation turns by the handler that resolved them.",
		}, []string{"handler"}),
		turnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Wall time to resolve one inbound message, collaborators included.",
			Buckets:   []float64{.005, .01, .05, .1, .5, 1, 2.5, 5, 10, 30},
		}),
		collaboratorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_failures_total",
			Help:      "Failed calls to external collaborators.",
		}, []string{"collaborator"}),
		inboundDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_dropped_total",
			Help:      "Inbound messages dropped by the per-conversation limiter.",
		}),
		quotesFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_finalized_total",
			Help:      "Quotes emitted to customers.",
		}),
	}

	registry.MustRegister(m.matchOutcomes, m.turns, m.turnDuration, m.collaboratorFailures, m.inboundDropped, m.quotesFinalized)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MatchOutcome counts one request line decision.
func (m *Metrics) MatchOutcome(outcome, stage string) {
	if m == nil {
		return
	}
	m.matchOutcomes.WithLabelValues(outcome, stage).Inc()
}

// Turn counts one resolved turn and its duration.
func (m *Metrics) Turn(handler string, took time.Duration) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(handler).Inc()
	m.turnDuration.Observe(took.Seconds())
}

// CollaboratorFailure counts one failed external call.
func (m *Metrics) CollaboratorFailure(collaborator string) {
	if m == nil {
		return
	}
	m.collaboratorFailures.WithLabelValues(collaborator).Inc()
}

// InboundDropped counts one throttled message.
func (m *Metrics) InboundDropped() {
	if m == nil {
		return
	}
	m.inboundDropped.Inc()
}

// QuoteFinalized counts one emitted quote.
func (m *Metrics) QuoteFinalized() {
	if m == nil {
		return
	}
	m.quotesFinalized.Inc()
}
