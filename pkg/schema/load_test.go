package schema_test

import (
	"testing"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
id: wellbeing
title: Wellbeing check-in
steps:
  - id: s1
    title: Today
    questions:
      - id: mood
        type: radio
        title: Mood today
        options:
          - id: good
            label: Good
          - id: bad
            label: Bad
      - id: why_bad
        type: long_text
        title: What went wrong?
        conditions:
          rules:
            - question_id: mood
              operator: equals
              value: bad
      - id: hobbies
        type: checkbox
        title: Hobbies
        allow_comment: true
        options:
          - id: music
            label: Music
      - id: hobby_detail
        type: short_text
        title: "Tell us about {{option}}"
        for_option_id: music
        linked_question_id: hobbies
      - id: energy
        type: likert
        title: Energy level
        settings:
          scale: 7
          left_label: Drained
          right_label: Energized
`

func TestParseForm(t *testing.T) {
	form, err := schema.ParseForm([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "wellbeing", form.ID)
	require.Len(t, form.Steps, 1)
	step := form.Steps[0]
	require.Len(t, step.Questions, 5)

	why := step.QuestionByID("why_bad")
	require.NotNil(t, why)
	require.NotNil(t, why.Conditions)
	require.Len(t, why.Conditions.Rules, 1)
	assert.Equal(t, domain.OpEquals, why.Conditions.Rules[0].Operator)
	assert.Equal(t, "bad", why.Conditions.Rules[0].Value)

	detail := step.QuestionByID("hobby_detail")
	require.NotNil(t, detail)
	assert.True(t, detail.OptionSpecific())
	assert.Equal(t, "hobbies", detail.LinkedQuestionID)

	hobbies := step.QuestionByID("hobbies")
	require.NotNil(t, hobbies)
	assert.True(t, hobbies.AllowComment)
}

func TestParseForm_InvalidYAML(t *testing.T) {
	_, err := schema.ParseForm([]byte("steps: [whoops"))
	assert.Error(t, err)
}

func TestParseForm_ValidatesStructure(t *testing.T) {
	_, err := schema.ParseForm([]byte(`
id: broken
steps:
  - id: s1
    questions:
      - id: q1
        type: teleport
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown question type")
}

func TestMarshalForm_RoundTrip(t *testing.T) {
	form, err := schema.ParseForm([]byte(sampleYAML))
	require.NoError(t, err)

	data, err := schema.MarshalForm(form)
	require.NoError(t, err)

	again, err := schema.ParseForm(data)
	require.NoError(t, err)
	assert.Equal(t, form.ID, again.ID)
	assert.Len(t, again.Steps[0].Questions, 5)
}
