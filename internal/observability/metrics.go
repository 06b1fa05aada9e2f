// Package observability groups the Prometheus instruments for debaite.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the debate engine.
// A nil *Metrics is valid and turns every method into a no-op, so callers
// never need to guard.
type Metrics struct {
	DebatesStarted        prometheus.Counter
	DebatesCompleted      prometheus.Counter
	Turns                 *prometheus.CounterVec
	GenerationFailures    prometheus.Counter
	Placeholders          prometheus.Counter
	Summarizations        prometheus.Counter
	SummarizationFailures prometheus.Counter
	BatchFallbacks        prometheus.Counter
	StageSeconds          prometheus.Histogram
}

// New registers the instruments with reg under the given namespace.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DebatesStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "debates_started_total",
			Help:      "Debate sessions started.",
		}),
		DebatesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "debates_completed_total",
			Help:      "Debate sessions run to completion.",
		}),
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Response turns recorded, by stage.",
		}, []string{"stage"}),
		GenerationFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_failures_total",
			Help:      "Per-participant generation failures.",
		}),
		Placeholders: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placeholder_turns_total",
			Help:      "Turns substituted with placeholder text.",
		}),
		Summarizations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summarizations_total",
			Help:      "Transcript compactions performed.",
		}),
		SummarizationFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summarization_failures_total",
			Help:      "Transcript compactions that failed.",
		}),
		BatchFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_fallbacks_total",
			Help:      "Rounds that fell back from batched to sequential acquisition.",
		}),
		StageSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time per debate stage.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
}

// Default registers against the default Prometheus registry.
func Default(namespace string) *Metrics {
	return New(namespace, prometheus.DefaultRegisterer)
}

func (m *Metrics) IncDebatesStarted() {
	if m != nil {
		m.DebatesStarted.Inc()
	}
}

func (m *Metrics) IncDebatesCompleted() {
	if m != nil {
		m.DebatesCompleted.Inc()
	}
}

func (m *Metrics) IncTurns(stage string) {
	if m != nil {
		m.Turns.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) IncGenerationFailures() {
	if m != nil {
		m.GenerationFailures.Inc()
	}
}

func (m *Metrics) IncPlaceholders() {
	if m != nil {
		m.Placeholders.Inc()
	}
}

func (m *Metrics) IncSummarizations() {
	if m != nil {
		m.Summarizations.Inc()
	}
}

func (m *Metrics) IncSummarizationFailures() {
	if m != nil {
		m.SummarizationFailures.Inc()
	}
}

func (m *Metrics) IncBatchFallbacks() {
	if m != nil {
		m.BatchFallbacks.Inc()
	}
}

func (m *Metrics) ObserveStageSeconds(seconds float64) {
	if m != nil {
		m.StageSeconds.Observe(seconds)
	}
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
