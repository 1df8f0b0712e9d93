package dsl

import (
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/schema"
)

// Builder accumulates a form definition.
type Builder struct {
	form        domain.Form
	currentStep int
}

// New starts a form with the given ID.
func New(id string) *Builder {
	return &Builder{form: domain.Form{ID: id}, currentStep: -1}
}

// Title sets the form title.
func (b *Builder) Title(title string) *Builder {
	b.form.Title = title
	return b
}

// Intro sets the form's intro text.
func (b *Builder) Intro(intro string) *Builder {
	b.form.Intro = intro
	return b
}

// Step opens a new step; subsequent questions attach to it.
func (b *Builder) Step(id, title string) *Builder {
	b.form.Steps = append(b.form.Steps, domain.Step{ID: id, Title: title})
	b.currentStep = len(b.form.Steps) - 1
	return b
}

// Build validates and returns the form.
func (b *Builder) Build() (*domain.Form, error) {
	if err := schema.ValidateForm(&b.form); err != nil {
		return nil, err
	}
	return &b.form, nil
}

// Opt is a convenience constructor for options.
func Opt(id, label string) domain.Option {
	return domain.Option{ID: id, Label: label}
}

// add appends a question to the current step and returns a QuestionBuilder
// for chained modifiers. Calling a question method before Step panics by
// slice indexing; Build would reject the form anyway.
func (b *Builder) add(q domain.Question) *QuestionBuilder {
	step := &b.form.Steps[b.currentStep]
	step.Questions = append(step.Questions, q)
	return &QuestionBuilder{
		builder:  b,
		stepIdx:  b.currentStep,
		questIdx: len(step.Questions) - 1,
	}
}

// ShortText adds a short free-text question.
func (b *Builder) ShortText(id, title string) *QuestionBuilder {
	return b.add(domain.Question{ID: id, Type: domain.TypeShortText, Title: title})
}

// LongText adds a long free-text question.
func (b *Builder) LongText(id, title string) *QuestionBuilder {
	return b.add(domain.Question{ID: id, Type: domain.TypeLongText, Title: title})
}

// Radio adds a single-choice question.
func (b *Builder) Radio(id, title string, options ...domain.Option) *QuestionBuilder {
	return b.add(domain.Question{ID: id, Type: domain.TypeRadio, Title: title, Options: options})
}

// Checkbox adds a multi-choice question.
func (b *Builder) Checkbox(id, title string, options ...domain.Option) *QuestionBuilder {
	return b.add(domain.Question{ID: id, Type: domain.TypeCheckbox, Title: title, Options: options})
}

// Likert adds a Likert scale question.
func (b *Builder) Likert(id, title string, scale int) *QuestionBuilder {
	return b.add(domain.Question{
		ID: id, Type: domain.TypeLikert, Title: title,
		Settings: map[string]any{"scale": scale},
	})
}

// RangeSlider adds a range slider question.
func (b *Builder) RangeSlider(id, title string, min, max float64) *QuestionBuilder {
	return b.add(domain.Question{
		ID: id, Type: domain.TypeRangeSlider, Title: title,
		Settings: map[string]any{"min": min, "max": max},
	})
}

// Tags adds a free tags question.
func (b *Builder) Tags(id, title string) *QuestionBuilder {
	return b.add(domain.Question{ID: id, Type: domain.TypeTags, Title: title})
}

// RankOptions adds a ranking question.
func (b *Builder) RankOptions(id, title string, options ...domain.Option) *QuestionBuilder {
	return b.add(domain.Question{ID: id, Type: domain.TypeRankOptions, Title: title, Options: options})
}
