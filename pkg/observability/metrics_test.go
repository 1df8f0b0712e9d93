package observability_test

import (
	"context"
	"testing"

	espalier "github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountsEngineEvents(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	engine := espalier.New(espalier.WithLifecycleHooks(metrics.Hooks()))
	step := &domain.Step{
		ID: "s1",
		Questions: []domain.Question{
			{ID: "mood", Type: domain.TypeRadio},
			{ID: "why_bad", Type: domain.TypeLongText, Conditions: &domain.ConditionSet{Rules: []domain.Rule{
				{QuestionID: "mood", Operator: domain.OpEquals, Value: "bad"},
			}}},
		},
	}
	session, err := engine.OpenSession(step)
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.Begin(ctx))
	require.NoError(t, session.Answer(ctx, "mood", "bad"))
	require.NoError(t, session.Answer(ctx, "mood", "good"))

	families, err := reg.Gather()
	require.NoError(t, err)

	got := map[string]float64{}
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			got[fam.GetName()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, got["espalier_questions_shown_total"])
	assert.Equal(t, 1.0, got["espalier_questions_hidden_total"])
	// Begin + two answers.
	assert.Equal(t, 3.0, got["espalier_refresh_passes_total"])
	assert.Equal(t, 2.0, got["espalier_refresh_mutations_total"])
}

func TestCombine_FansOut(t *testing.T) {
	var a, b int
	hooks := observability.Combine(
		domain.LifecycleHooks{OnRefresh: func(ctx context.Context, ev *domain.RefreshEvent) { a++ }},
		domain.LifecycleHooks{OnRefresh: func(ctx context.Context, ev *domain.RefreshEvent) { b++ }},
	)
	hooks.OnRefresh(context.Background(), &domain.RefreshEvent{})
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}
