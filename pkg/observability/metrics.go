package observability

import (
	"context"

	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	Evaluations        *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	Navigations        *prometheus.CounterVec
	Completions        prometheus.Counter
	AutoSaves          *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surveylogic_evaluations_total",
				Help: "Total number of answer set evaluations",
			},
			[]string{"end_survey"},
		),
		EvaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "surveylogic_evaluation_duration_seconds",
				Help:    "Duration of answer set evaluations",
				Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
		),
		Navigations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surveylogic_navigation_total",
				Help: "Cursor moves by reason",
			},
			[]string{"kind"},
		),
		Completions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "surveylogic_completions_total",
				Help: "Sessions that reached completion",
			},
		),
		AutoSaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surveylogic_autosaves_total",
				Help: "Auto-save attempts by result",
			},
			[]string{"result"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Evaluations, m.EvaluationDuration, m.Navigations, m.Completions, m.AutoSaves)
	}
	return m
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEvaluate: func(_ context.Context, e *domain.EvaluateEvent) {
			label := "false"
			if e.EndSurvey {
				label = "true"
			}
			m.Evaluations.WithLabelValues(label).Inc()
			m.EvaluationDuration.Observe(e.Duration.Seconds())
		},
		OnNavigate: func(_ context.Context, e *domain.NavigateEvent) {
			m.Navigations.WithLabelValues(string(e.Reason)).Inc()
		},
		OnComplete: func(context.Context, *domain.EventBase) {
			m.Completions.Inc()
		},
		OnSave: func(_ context.Context, e *domain.SaveEvent) {
			m.AutoSaves.WithLabelValues(e.Result).Inc()
		},
	}
}
