package espalier_test

import (
	"context"
	"fmt"

	espalier "github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/pkg/domain"
)

// A minimal conditional step: the follow-up question appears only after the
// mood answer is stored.
func Example() {
	ctx := context.Background()

	step := &domain.Step{
		ID: "checkin",
		Questions: []domain.Question{
			{ID: "mood", Type: domain.TypeRadio, Title: "Mood today", Options: []domain.Option{
				{ID: "good", Label: "Good"},
				{ID: "bad", Label: "Bad"},
			}},
			{ID: "why_bad", Type: domain.TypeLongText, Title: "What went wrong?",
				Conditions: &domain.ConditionSet{Rules: []domain.Rule{
					{QuestionID: "mood", Operator: domain.OpEquals, Value: "bad"},
				}}},
		},
	}

	engine := espalier.New()
	session, _ := engine.OpenSession(step)
	defer session.Close()

	_ = session.Begin(ctx)
	fmt.Println(session.VisibleNodeIDs())

	_ = session.Answer(ctx, "mood", "bad")
	fmt.Println(session.VisibleNodeIDs())

	// Output:
	// [mood]
	// [mood why_bad]
}
