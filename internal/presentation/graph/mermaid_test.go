package graph_test

import (
	"strings"
	"testing"

	"github.com/espalier-dev/espalier/internal/presentation/graph"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func testStep() *domain.Step {
	return &domain.Step{
		ID: "s1",
		Questions: []domain.Question{
			{ID: "mood", Type: domain.TypeRadio, Title: "Mood",
				Options: []domain.Option{{ID: "good", Label: "Good"}, {ID: "bad", Label: "Bad"}}},
			{ID: "why_bad", Type: domain.TypeLongText, Title: "Why?",
				Conditions: &domain.ConditionSet{Rules: []domain.Rule{
					{QuestionID: "mood", Operator: domain.OpEquals, Value: "bad"},
				}}},
			{ID: "hobbies", Type: domain.TypeCheckbox, Title: "Hobbies",
				Options: []domain.Option{{ID: "music", Label: "Music"}}},
			{ID: "detail", Type: domain.TypeShortText, Title: "Detail",
				LinkedQuestionID: "hobbies", ForOptionID: "music"},
		},
	}
}

func TestGenerateMermaid_Shapes(t *testing.T) {
	out := graph.GenerateMermaid(testStep(), nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	// Discrete input: rectangle.
	assert.Contains(t, out, `mood["Mood"]`)
	// Continuous input: parallelogram.
	assert.Contains(t, out, `why_bad[/"Why?"/]`)
	// Option-specific instance: subroutine, composite identity.
	assert.Contains(t, out, `detail_at_music[["Detail"]]`)
}

func TestGenerateMermaid_Edges(t *testing.T) {
	out := graph.GenerateMermaid(testStep(), nil)

	assert.Contains(t, out, `mood -- "equals bad" --> why_bad`)
	assert.Contains(t, out, `hobbies -. "music" .-> detail_at_music`)
}

func TestGenerateMermaid_SkipsMalformedRules(t *testing.T) {
	step := &domain.Step{
		ID: "s1",
		Questions: []domain.Question{
			{ID: "a", Type: domain.TypeShortText, Title: "A"},
			{ID: "b", Type: domain.TypeShortText, Title: "B",
				Conditions: &domain.ConditionSet{Rules: []domain.Rule{
					{QuestionID: "", Operator: domain.OpEquals, Value: "x"},
				}}},
		},
	}
	out := graph.GenerateMermaid(step, nil)
	assert.NotContains(t, out, "-->")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := graph.GenerateMermaid(testStep(), &graph.Overlay{
		VisibleNodes: []string{"mood", "detail@music", "mood"},
	})

	assert.Contains(t, out, "classDef visible")
	assert.Contains(t, out, "class mood visible;")
	assert.Contains(t, out, "class detail_at_music visible;")
	// Duplicates collapse to one class line.
	assert.Equal(t, 1, strings.Count(out, "class mood visible;"))
}

func TestGenerateMermaid_EscapesQuotes(t *testing.T) {
	step := &domain.Step{
		ID: "s1",
		Questions: []domain.Question{
			{ID: "q", Type: domain.TypeShortText, Title: `Say "hi"`},
		},
	}
	out := graph.GenerateMermaid(step, nil)
	assert.Contains(t, out, `q[/"Say 'hi'"/]`)
}
