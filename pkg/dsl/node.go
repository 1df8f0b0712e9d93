package dsl

import (
	"github.com/espalier-dev/espalier/pkg/domain"
)

// QuestionBuilder chains modifiers onto the most recently added question.
// Every question method on it delegates back to the form builder, so chains
// can continue adding questions without breaking fluency. The target is held
// by index rather than pointer: later appends may reallocate the questions
// slice.
type QuestionBuilder struct {
	builder  *Builder
	stepIdx  int
	questIdx int
}

func (qb *QuestionBuilder) question() *domain.Question {
	return &qb.builder.form.Steps[qb.stepIdx].Questions[qb.questIdx]
}

// When adds a visibility rule. Multiple calls AND together.
func (qb *QuestionBuilder) When(questionID string, op domain.Operator, value any) *QuestionBuilder {
	q := qb.question()
	if q.Conditions == nil {
		q.Conditions = &domain.ConditionSet{}
	}
	q.Conditions.Rules = append(q.Conditions.Rules, domain.Rule{
		QuestionID: questionID,
		Operator:   op,
		Value:      value,
	})
	return qb
}

// WhenAnswered gates the question on another being answered at all.
func (qb *QuestionBuilder) WhenAnswered(questionID string) *QuestionBuilder {
	return qb.When(questionID, domain.OpAnswered, nil)
}

// ForOption binds the question to an option on a checkbox question: it
// appears only while that option is checked. Build rejects the combination
// of ForOption and When on the same question.
func (qb *QuestionBuilder) ForOption(linkedQuestionID, optionID string) *QuestionBuilder {
	q := qb.question()
	q.LinkedQuestionID = linkedQuestionID
	q.ForOptionID = optionID
	return qb
}

// AllowComment enables the free-text comment control.
func (qb *QuestionBuilder) AllowComment() *QuestionBuilder {
	qb.question().AllowComment = true
	return qb
}

// Setting stores one per-type configuration entry.
func (qb *QuestionBuilder) Setting(key string, value any) *QuestionBuilder {
	q := qb.question()
	if q.Settings == nil {
		q.Settings = map[string]any{}
	}
	q.Settings[key] = value
	return qb
}

// Step closes the current question and opens a new step.
func (qb *QuestionBuilder) Step(id, title string) *Builder {
	return qb.builder.Step(id, title)
}

// Build closes the current question and validates the form.
func (qb *QuestionBuilder) Build() (*domain.Form, error) {
	return qb.builder.Build()
}

func (qb *QuestionBuilder) ShortText(id, title string) *QuestionBuilder {
	return qb.builder.ShortText(id, title)
}

func (qb *QuestionBuilder) LongText(id, title string) *QuestionBuilder {
	return qb.builder.LongText(id, title)
}

func (qb *QuestionBuilder) Radio(id, title string, options ...domain.Option) *QuestionBuilder {
	return qb.builder.Radio(id, title, options...)
}

func (qb *QuestionBuilder) Checkbox(id, title string, options ...domain.Option) *QuestionBuilder {
	return qb.builder.Checkbox(id, title, options...)
}

func (qb *QuestionBuilder) Likert(id, title string, scale int) *QuestionBuilder {
	return qb.builder.Likert(id, title, scale)
}

func (qb *QuestionBuilder) RangeSlider(id, title string, min, max float64) *QuestionBuilder {
	return qb.builder.RangeSlider(id, title, min, max)
}

func (qb *QuestionBuilder) Tags(id, title string) *QuestionBuilder {
	return qb.builder.Tags(id, title)
}

func (qb *QuestionBuilder) RankOptions(id, title string, options ...domain.Option) *QuestionBuilder {
	return qb.builder.RankOptions(id, title, options...)
}
