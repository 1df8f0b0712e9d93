package domain

// QuestionType identifies the rendering and input behavior of a question.
// The set is closed: the engine never branches on type itself, but the
// coordinator uses it to classify input signals and the factory dispatches
// per-type renderers through the registry.
type QuestionType string

const (
	TypeShortText        QuestionType = "short_text"
	TypeLongText         QuestionType = "long_text"
	TypeRadio            QuestionType = "radio"
	TypeCheckbox         QuestionType = "checkbox"
	TypeLikert           QuestionType = "likert"
	TypeRangeSlider      QuestionType = "range_slider"
	TypeMatrix2D         QuestionType = "matrix_2d"
	TypeRankOptions      QuestionType = "rank_options"
	TypeTags             QuestionType = "tags"
	TypeMultiValueSlider QuestionType = "multi_value_slider"
)

// InputKind classifies how change signals from a question's control are
// delivered to the reconciliation engine.
type InputKind int

const (
	// KindDiscrete controls (selects, pickers, sliders) fire immediately on change.
	KindDiscrete InputKind = iota
	// KindContinuous controls (free text entry) are debounced on the trailing edge.
	KindContinuous
)

// Kind returns the signal classification for this question type.
// Free-entry controls are continuous; everything structured is discrete.
func (t QuestionType) Kind() InputKind {
	switch t {
	case TypeShortText, TypeLongText, TypeTags:
		return KindContinuous
	default:
		return KindDiscrete
	}
}

// Valid reports whether t is one of the closed set of question types.
func (t QuestionType) Valid() bool {
	switch t {
	case TypeShortText, TypeLongText, TypeRadio, TypeCheckbox, TypeLikert,
		TypeRangeSlider, TypeMatrix2D, TypeRankOptions, TypeTags, TypeMultiValueSlider:
		return true
	}
	return false
}

// Option is a selectable choice on a radio, checkbox, rank or tags question.
type Option struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Question is a single form field. Identity is ID; for option-specific
// variants the effective identity is (ID, ForOptionID).
type Question struct {
	ID    string       `json:"id" yaml:"id"`
	Type  QuestionType `json:"type" yaml:"type"`
	Title string       `json:"title" yaml:"title"`

	// Conditions gate visibility. A nil set means the question is always shown.
	Conditions *ConditionSet `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// ForOptionID and LinkedQuestionID mark an option-specific question: it
	// exists only while the named option on the linked checkbox question is
	// checked. Both fields are set together.
	ForOptionID      string `json:"for_option_id,omitempty" yaml:"for_option_id,omitempty"`
	LinkedQuestionID string `json:"linked_question_id,omitempty" yaml:"linked_question_id,omitempty"`

	Options []Option `json:"options,omitempty" yaml:"options,omitempty"`

	// Settings carries per-type configuration (Likert scale size, slider
	// bounds, matrix axes). Decoded into typed structs by pkg/schema.
	Settings map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`

	// AllowComment adds a free-text comment control next to the answer control.
	AllowComment bool `json:"allow_comment,omitempty" yaml:"allow_comment,omitempty"`
}

// OptionSpecific reports whether the question exists only while a particular
// option on its linked question is checked.
func (q *Question) OptionSpecific() bool {
	return q.ForOptionID != "" && q.LinkedQuestionID != ""
}

// Conditional reports whether the question carries a non-empty condition set.
func (q *Question) Conditional() bool {
	return q.Conditions != nil && len(q.Conditions.Rules) > 0
}

// Step is an ordered page of questions. Order is significant: it defines the
// baseline render position of every standard question.
type Step struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title,omitempty" yaml:"title,omitempty"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// QuestionByID returns the step's question with the given ID, or nil.
func (s *Step) QuestionByID(id string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

// Form is a multi-step questionnaire definition.
type Form struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Intro string `json:"intro,omitempty" yaml:"intro,omitempty"`
	Steps []Step `json:"steps" yaml:"steps"`
}

// StepByID returns the form's step with the given ID, or nil.
func (f *Form) StepByID(id string) *Step {
	for i := range f.Steps {
		if f.Steps[i].ID == id {
			return &f.Steps[i]
		}
	}
	return nil
}

// OptionNodeID is the view-tree identity of an option-specific question
// instance. Standard questions render under their plain question ID.
func OptionNodeID(questionID, optionID string) string {
	return questionID + "@" + optionID
}
