// Package observability provides Prometheus instrumentation for the engine.
//
// Metrics attaches to a session engine through the lifecycle hooks, so the
// core stays free of any metrics dependency. The HTTP adapter serves the
// default registry on /metrics.
package observability

import (
	"context"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	questionsShown  *prometheus.CounterVec
	questionsHidden *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	refreshMutated  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer to serve them on the standard /metrics
// endpoint.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		questionsShown: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "questions_shown_total",
			Help:      "Questions inserted into the view, by step.",
		}, []string{"step"}),
		questionsHidden: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "questions_hidden_total",
			Help:      "Questions removed from the view (deferred removals count at scheduling time), by step.",
		}, []string{"step"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "refresh_passes_total",
			Help:      "Reconciliation passes run, by step.",
		}, []string{"step"}),
		refreshMutated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "refresh_mutations_total",
			Help:      "View mutations performed by reconciliation passes, by step.",
		}, []string{"step"}),
	}
	reg.MustRegister(m.questionsShown, m.questionsHidden, m.refreshes, m.refreshMutated)
	return m
}

// Hooks returns lifecycle hooks that feed the collectors. Chain them with any
// existing hooks via Combine.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnQuestionShow: func(ctx context.Context, ev *domain.QuestionEvent) {
			m.questionsShown.WithLabelValues(ev.StepID).Inc()
		},
		OnQuestionHide: func(ctx context.Context, ev *domain.QuestionEvent) {
			m.questionsHidden.WithLabelValues(ev.StepID).Inc()
		},
		OnRefresh: func(ctx context.Context, ev *domain.RefreshEvent) {
			m.refreshes.WithLabelValues(ev.StepID).Inc()
			m.refreshMutated.WithLabelValues(ev.StepID).Add(float64(ev.Inserted + ev.Removed))
		},
	}
}

// Combine merges several hook sets into one that fans events out in order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnQuestionShow: func(ctx context.Context, ev *domain.QuestionEvent) {
			for _, h := range hooks {
				if h.OnQuestionShow != nil {
					h.OnQuestionShow(ctx, ev)
				}
			}
		},
		OnQuestionHide: func(ctx context.Context, ev *domain.QuestionEvent) {
			for _, h := range hooks {
				if h.OnQuestionHide != nil {
					h.OnQuestionHide(ctx, ev)
				}
			}
		},
		OnRefresh: func(ctx context.Context, ev *domain.RefreshEvent) {
			for _, h := range hooks {
				if h.OnRefresh != nil {
					h.OnRefresh(ctx, ev)
				}
			}
		},
	}
}
