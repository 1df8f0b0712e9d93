package dsl_test

import (
	"testing"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_FullForm(t *testing.T) {
	form, err := dsl.New("wellbeing").
		Title("Wellbeing Check").
		Intro("A few questions about your day.").
		Step("s1", "Today").
		Radio("mood", "How are you feeling?",
			dsl.Opt("good", "Good"), dsl.Opt("bad", "Bad")).
		LongText("why_bad", "What went wrong?").When("mood", domain.OpEquals, "bad").
		Checkbox("hobbies", "What did you do?",
			dsl.Opt("music", "Music"), dsl.Opt("sport", "Sport")).
		ShortText("hobby_detail", "Tell us about {{option}}").ForOption("hobbies", "music").
		Step("s2", "Reflection").
		Likert("satisfaction", "Overall satisfaction", 5).AllowComment().
		Build()
	require.NoError(t, err)

	assert.Equal(t, "wellbeing", form.ID)
	assert.Equal(t, "Wellbeing Check", form.Title)
	require.Len(t, form.Steps, 2)

	s1 := form.StepByID("s1")
	require.NotNil(t, s1)
	require.Len(t, s1.Questions, 4)

	whyBad := s1.QuestionByID("why_bad")
	require.NotNil(t, whyBad)
	assert.True(t, whyBad.Conditional())
	require.Len(t, whyBad.Conditions.Rules, 1)
	assert.Equal(t, "mood", whyBad.Conditions.Rules[0].QuestionID)

	detail := s1.QuestionByID("hobby_detail")
	require.NotNil(t, detail)
	assert.True(t, detail.OptionSpecific())
	assert.Equal(t, "hobbies", detail.LinkedQuestionID)
	assert.Equal(t, "music", detail.ForOptionID)

	sat := form.StepByID("s2").QuestionByID("satisfaction")
	require.NotNil(t, sat)
	assert.True(t, sat.AllowComment)
	assert.Equal(t, 5, sat.Settings["scale"])
}

func TestBuilder_MultipleConditionsAND(t *testing.T) {
	form, err := dsl.New("f").
		Step("s1", "").
		Radio("a", "A", dsl.Opt("x", "X"), dsl.Opt("y", "Y")).
		Radio("b", "B", dsl.Opt("x", "X"), dsl.Opt("y", "Y")).
		ShortText("both", "Both").
		When("a", domain.OpEquals, "x").
		When("b", domain.OpEquals, "y").
		Build()
	require.NoError(t, err)

	rules := form.Steps[0].QuestionByID("both").Conditions.Rules
	require.Len(t, rules, 2)
	assert.Equal(t, "a", rules[0].QuestionID)
	assert.Equal(t, "b", rules[1].QuestionID)
}

func TestBuilder_WhenAnswered(t *testing.T) {
	form, err := dsl.New("f").
		Step("s1", "").
		ShortText("name", "Name").
		ShortText("greeting", "Greeting").WhenAnswered("name").
		Build()
	require.NoError(t, err)

	rule := form.Steps[0].QuestionByID("greeting").Conditions.Rules[0]
	assert.Equal(t, domain.OpAnswered, rule.Operator)
	assert.Nil(t, rule.Value)
}

func TestBuilder_Setting(t *testing.T) {
	form, err := dsl.New("f").
		Step("s1", "").
		RangeSlider("pain", "Pain level", 0, 10).Setting("step", 0.5).
		Build()
	require.NoError(t, err)

	s := form.Steps[0].QuestionByID("pain").Settings
	assert.Equal(t, float64(0), s["min"])
	assert.Equal(t, float64(10), s["max"])
	assert.Equal(t, 0.5, s["step"])
}

func TestBuilder_ValidationFailures(t *testing.T) {
	t.Run("duplicate question id", func(t *testing.T) {
		_, err := dsl.New("f").
			Step("s1", "").
			ShortText("q", "One").
			ShortText("q", "Two").
			Build()
		assert.Error(t, err)
	})

	t.Run("radio without options", func(t *testing.T) {
		_, err := dsl.New("f").
			Step("s1", "").
			Radio("choice", "Pick one").
			Build()
		assert.Error(t, err)
	})

	t.Run("option-specific with conditions", func(t *testing.T) {
		_, err := dsl.New("f").
			Step("s1", "").
			Checkbox("hobbies", "Hobbies", dsl.Opt("music", "Music")).
			ShortText("detail", "Detail").
			ForOption("hobbies", "music").
			When("hobbies", domain.OpAnswered, nil).
			Build()
		assert.Error(t, err)
	})

	t.Run("link to unknown option", func(t *testing.T) {
		_, err := dsl.New("f").
			Step("s1", "").
			Checkbox("hobbies", "Hobbies", dsl.Opt("music", "Music")).
			ShortText("detail", "Detail").ForOption("hobbies", "chess").
			Build()
		assert.Error(t, err)
	})

	t.Run("no steps", func(t *testing.T) {
		_, err := dsl.New("f").Build()
		assert.Error(t, err)
	})
}
