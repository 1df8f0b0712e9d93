package loam

import (
	"github.com/espalier-dev/espalier/pkg/domain"
)

// FormMetadata is the frontmatter shape of a form document in a Loam vault.
// It mirrors the domain model with "mapstructure" tags so Loam's typed
// repository can decode the YAML header directly; the markdown body becomes
// the form's intro text.
type FormMetadata struct {
	ID    string         `json:"id" mapstructure:"id"`
	Title string         `json:"title" mapstructure:"title"`
	Steps []StepMetadata `json:"steps" mapstructure:"steps"`
}

type StepMetadata struct {
	ID        string             `json:"id" mapstructure:"id"`
	Title     string             `json:"title" mapstructure:"title"`
	Questions []QuestionMetadata `json:"questions" mapstructure:"questions"`
}

type QuestionMetadata struct {
	ID               string           `json:"id" mapstructure:"id"`
	Type             string           `json:"type" mapstructure:"type"`
	Title            string           `json:"title" mapstructure:"title"`
	Options          []OptionMetadata `json:"options" mapstructure:"options"`
	Conditions       *ConditionsMeta  `json:"conditions" mapstructure:"conditions"`
	ForOptionID      string           `json:"for_option_id" mapstructure:"for_option_id"`
	LinkedQuestionID string           `json:"linked_question_id" mapstructure:"linked_question_id"`
	Settings         map[string]any   `json:"settings" mapstructure:"settings"`
	AllowComment     bool             `json:"allow_comment" mapstructure:"allow_comment"`
}

type OptionMetadata struct {
	ID    string `json:"id" mapstructure:"id"`
	Label string `json:"label" mapstructure:"label"`
}

type ConditionsMeta struct {
	Rules []RuleMetadata `json:"rules" mapstructure:"rules"`
}

type RuleMetadata struct {
	QuestionID string `json:"question_id" mapstructure:"question_id"`
	Operator   string `json:"operator" mapstructure:"operator"`
	Value      any    `json:"value" mapstructure:"value"`
}

// toDomain converts the decoded frontmatter into the domain model.
func (m FormMetadata) toDomain(intro string) *domain.Form {
	form := &domain.Form{
		ID:    m.ID,
		Title: m.Title,
		Intro: intro,
		Steps: make([]domain.Step, len(m.Steps)),
	}
	for i, s := range m.Steps {
		step := domain.Step{
			ID:        s.ID,
			Title:     s.Title,
			Questions: make([]domain.Question, len(s.Questions)),
		}
		for j, q := range s.Questions {
			step.Questions[j] = q.toDomain()
		}
		form.Steps[i] = step
	}
	return form
}

func (m QuestionMetadata) toDomain() domain.Question {
	q := domain.Question{
		ID:               m.ID,
		Type:             domain.QuestionType(m.Type),
		Title:            m.Title,
		ForOptionID:      m.ForOptionID,
		LinkedQuestionID: m.LinkedQuestionID,
		Settings:         m.Settings,
		AllowComment:     m.AllowComment,
	}
	for _, opt := range m.Options {
		q.Options = append(q.Options, domain.Option{ID: opt.ID, Label: opt.Label})
	}
	if m.Conditions != nil && len(m.Conditions.Rules) > 0 {
		set := &domain.ConditionSet{Rules: make([]domain.Rule, len(m.Conditions.Rules))}
		for i, r := range m.Conditions.Rules {
			set.Rules[i] = domain.Rule{
				QuestionID: r.QuestionID,
				Operator:   domain.Operator(r.Operator),
				Value:      r.Value,
			}
		}
		q.Conditions = set
	}
	return q
}
