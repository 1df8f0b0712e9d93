package espalier_test

import (
	"context"
	"testing"
	"time"

	espalier "github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/internal/testutils"
	"github.com/espalier-dev/espalier/pkg/adapters/memory"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func surveyStep() *domain.Step {
	return &domain.Step{
		ID:    "wellbeing",
		Title: "How are you doing?",
		Questions: []domain.Question{
			{ID: "name", Type: domain.TypeShortText, Title: "Your name"},
			{ID: "mood", Type: domain.TypeRadio, Title: "Mood today", Options: []domain.Option{
				{ID: "good", Label: "Good"},
				{ID: "bad", Label: "Bad"},
			}},
			{ID: "why_bad", Type: domain.TypeLongText, Title: "What went wrong?",
				Conditions: &domain.ConditionSet{Rules: []domain.Rule{
					{QuestionID: "mood", Operator: domain.OpEquals, Value: "bad"},
				}}},
			{ID: "hobbies", Type: domain.TypeCheckbox, Title: "Hobbies", Options: []domain.Option{
				{ID: "music", Label: "Music"},
				{ID: "sport", Label: "Sport"},
			}},
			{ID: "hobby_detail", Type: domain.TypeShortText, Title: "Tell us more about {{option}}",
				ForOptionID: "music", LinkedQuestionID: "hobbies"},
			{ID: "closing", Type: domain.TypeShortText, Title: "Anything else?"},
		},
	}
}

func TestSession_ConditionalFlow(t *testing.T) {
	ctx := context.Background()
	engine := espalier.New()

	session, err := engine.OpenSession(surveyStep())
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.Begin(ctx))
	assert.Equal(t, []string{"name", "mood", "hobbies", "closing"}, session.VisibleNodeIDs())

	// Radio answers are discrete: the dependent appears immediately, at its
	// declared position.
	require.NoError(t, session.Answer(ctx, "mood", "bad"))
	assert.Equal(t, []string{"name", "mood", "why_bad", "hobbies", "closing"}, session.VisibleNodeIDs())

	require.NoError(t, session.Answer(ctx, "mood", "good"))
	assert.Equal(t, []string{"name", "mood", "hobbies", "closing"}, session.VisibleNodeIDs())
}

func TestSession_OptionSpecificFlow(t *testing.T) {
	ctx := context.Background()
	clock := testutils.NewManualClock()
	engine := espalier.New(espalier.WithClock(clock))

	session, err := engine.OpenSession(surveyStep())
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.Begin(ctx))

	require.NoError(t, session.ToggleOption(ctx, "hobbies", "music", true))
	assert.Equal(t, []string{"name", "mood", "hobbies", "hobby_detail@music", "closing"}, session.VisibleNodeIDs())

	resp, err := engine.Store().Get(ctx, "hobbies")
	require.NoError(t, err)
	assert.Equal(t, []string{"music"}, resp.Value)

	// Unchecking removes after the cosmetic delay.
	require.NoError(t, session.ToggleOption(ctx, "hobbies", "music", false))
	assert.Contains(t, session.VisibleNodeIDs(), "hobby_detail@music")

	clock.Advance(espalier.DefaultRemovalDelay)
	assert.Equal(t, []string{"name", "mood", "hobbies", "closing"}, session.VisibleNodeIDs())
}

func TestSession_DebouncedTextFlow(t *testing.T) {
	ctx := context.Background()
	clock := testutils.NewManualClock()
	engine := espalier.New(espalier.WithClock(clock))

	step := &domain.Step{
		ID: "s",
		Questions: []domain.Question{
			{ID: "name", Type: domain.TypeShortText, Title: "Name"},
			{ID: "greeting", Type: domain.TypeShortText, Title: "Hello!",
				Conditions: &domain.ConditionSet{Rules: []domain.Rule{
					{QuestionID: "name", Operator: domain.OpAnswered},
				}}},
		},
	}
	session, err := engine.OpenSession(step)
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.Begin(ctx))

	// Simulated keystrokes: the dependent must not flicker in mid-typing.
	for _, partial := range []string{"A", "Ad", "Ada"} {
		require.NoError(t, session.Answer(ctx, "name", partial))
		clock.Advance(50 * time.Millisecond)
	}
	assert.Equal(t, []string{"name"}, session.VisibleNodeIDs())

	clock.Advance(espalier.DefaultDebounce)
	assert.Equal(t, []string{"name", "greeting"}, session.VisibleNodeIDs())
}

func TestSession_ReentryRestoresView(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine := espalier.New(espalier.WithResponseStore(store))
	step := surveyStep()

	first, err := engine.OpenSession(step)
	require.NoError(t, err)
	require.NoError(t, first.Begin(ctx))
	require.NoError(t, first.Answer(ctx, "mood", "bad"))
	require.NoError(t, first.ToggleOption(ctx, "hobbies", "music", true))
	want := first.VisibleNodeIDs()
	require.NoError(t, first.Close())

	// A fresh session over the same store reproduces the view.
	second, err := engine.OpenSession(step)
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.Begin(ctx))
	assert.Equal(t, want, second.VisibleNodeIDs())
}

func TestSession_CommentDebounced(t *testing.T) {
	ctx := context.Background()
	clock := testutils.NewManualClock()
	engine := espalier.New(espalier.WithClock(clock))

	session, err := engine.OpenSession(surveyStep())
	require.NoError(t, err)
	defer session.Close()
	require.NoError(t, session.Begin(ctx))

	require.NoError(t, session.Comment(ctx, "mood", "rough week"))
	resp, err := engine.Store().Get(ctx, "mood")
	require.NoError(t, err)
	assert.Equal(t, "rough week", resp.Comment)

	clock.Advance(espalier.DefaultDebounce)
}

func TestSession_ClosedSessionRejectsCalls(t *testing.T) {
	ctx := context.Background()
	engine := espalier.New()
	session, err := engine.OpenSession(surveyStep())
	require.NoError(t, err)
	require.NoError(t, session.Begin(ctx))
	require.NoError(t, session.Close())

	assert.ErrorIs(t, session.Begin(ctx), domain.ErrSessionClosed)
	assert.ErrorIs(t, session.Answer(ctx, "mood", "bad"), domain.ErrSessionClosed)
	assert.ErrorIs(t, session.ToggleOption(ctx, "hobbies", "music", true), domain.ErrSessionClosed)
	_, err = session.Refresh(ctx)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)

	// Close is idempotent.
	assert.NoError(t, session.Close())
}

func TestSession_LifecycleHooks(t *testing.T) {
	ctx := context.Background()
	var shown []string
	engine := espalier.New(espalier.WithLifecycleHooks(domain.LifecycleHooks{
		OnQuestionShow: func(ctx context.Context, ev *domain.QuestionEvent) {
			shown = append(shown, ev.NodeID)
		},
	}))

	session, err := engine.OpenSession(surveyStep())
	require.NoError(t, err)
	defer session.Close()
	require.NoError(t, session.Begin(ctx))

	require.NoError(t, session.Answer(ctx, "mood", "bad"))
	require.NoError(t, session.ToggleOption(ctx, "hobbies", "music", true))

	assert.Equal(t, []string{"why_bad", "hobby_detail@music"}, shown)
}

func TestOpenSession_NilStep(t *testing.T) {
	_, err := espalier.New().OpenSession(nil)
	assert.ErrorIs(t, err, domain.ErrStepNotFound)
}
