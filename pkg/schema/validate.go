package schema

import (
	"fmt"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// ValidateForm checks a form definition structurally. All failures are
// collected and returned as one AggregateError.
//
// Rules with an empty question ID or an unknown operator are NOT load errors:
// the oracle fails closed on them at evaluation time, and rejecting the whole
// form for one malformed rule would hide every other question too.
func ValidateForm(form *domain.Form) error {
	var errs []error
	fail := func(path, format string, args ...any) {
		errs = append(errs, &ValidationError{Path: path, Reason: fmt.Sprintf(format, args...)})
	}

	if form.ID == "" {
		fail("", "form id is required")
	}
	if len(form.Steps) == 0 {
		fail("", "form has no steps")
	}

	stepIDs := make(map[string]bool)
	for si := range form.Steps {
		step := &form.Steps[si]
		stepPath := fmt.Sprintf("steps[%d]", si)

		if step.ID == "" {
			fail(stepPath, "step id is required")
		} else if stepIDs[step.ID] {
			fail(stepPath, "duplicate step id %q", step.ID)
		}
		stepIDs[step.ID] = true

		validateStep(step, stepPath, fail)
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateStep checks a single step definition in isolation, for hosts that
// open sessions over steps built in code rather than loaded forms.
func ValidateStep(step *domain.Step) error {
	var errs []error
	fail := func(path, format string, args ...any) {
		errs = append(errs, &ValidationError{Path: path, Reason: fmt.Sprintf(format, args...)})
	}
	validateStep(step, "", fail)
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func validateStep(step *domain.Step, stepPath string, fail func(path, format string, args ...any)) {
	questionIDs := make(map[string]bool)
	for _, q := range step.Questions {
		questionIDs[q.ID] = true
	}

	seen := make(map[string]bool)
	for qi := range step.Questions {
		q := &step.Questions[qi]
		path := fmt.Sprintf("%s.questions[%d]", stepPath, qi)
		if stepPath == "" {
			path = fmt.Sprintf("questions[%d]", qi)
		}

		if q.ID == "" {
			fail(path, "question id is required")
		} else if seen[q.ID] {
			fail(path, "duplicate question id %q", q.ID)
		}
		seen[q.ID] = true

		if !q.Type.Valid() {
			fail(path, "unknown question type %q", q.Type)
		}

		switch q.Type {
		case domain.TypeRadio, domain.TypeCheckbox, domain.TypeRankOptions:
			if len(q.Options) == 0 {
				fail(path, "%s question needs options", q.Type)
			}
		}
		validateOptions(q, path, fail)

		// Half-set linkage is worse than none: the question would silently
		// render as a standard one.
		if (q.ForOptionID == "") != (q.LinkedQuestionID == "") {
			fail(path, "for_option_id and linked_question_id must be set together")
		}
		if q.OptionSpecific() {
			validateLinkage(step, q, path, fail)
			if q.Conditional() {
				fail(path, "option-specific questions cannot also carry conditions")
			}
		}

		if q.Conditional() {
			for ri, rule := range q.Conditions.Rules {
				if rule.QuestionID == "" {
					continue // oracle fails closed at runtime
				}
				if rule.QuestionID == q.ID {
					fail(path, "rules[%d] references the question itself", ri)
				} else if !questionIDs[rule.QuestionID] {
					fail(path, "rules[%d] references unknown question %q", ri, rule.QuestionID)
				}
			}
		}
	}
}

func validateOptions(q *domain.Question, path string, fail func(path, format string, args ...any)) {
	seen := make(map[string]bool)
	for oi, opt := range q.Options {
		if opt.ID == "" {
			fail(path, "options[%d] id is required", oi)
			continue
		}
		if seen[opt.ID] {
			fail(path, "duplicate option id %q", opt.ID)
		}
		seen[opt.ID] = true
	}
}

func validateLinkage(step *domain.Step, q *domain.Question, path string, fail func(path, format string, args ...any)) {
	linked := step.QuestionByID(q.LinkedQuestionID)
	if linked == nil {
		fail(path, "linked question %q not found", q.LinkedQuestionID)
		return
	}
	if linked.Type != domain.TypeCheckbox {
		fail(path, "linked question %q is %s, want checkbox", linked.ID, linked.Type)
		return
	}
	for _, opt := range linked.Options {
		if opt.ID == q.ForOptionID {
			return
		}
	}
	fail(path, "linked question %q has no option %q", linked.ID, q.ForOptionID)
}
