package domain

import (
	"context"
	"time"
)

// ResponseChange is the coarse invalidation signal: some question's answer
// (or comment) changed. The coordinator treats it as a discrete signal that
// forces a full reconciliation pass.
type ResponseChange struct {
	QuestionID string `json:"question_id"`
}

// OptionToggle is the structured signal emitted by checkbox leaf renderers
// when a single option is checked or unchecked. It is routed directly to the
// option-specific reconciliation path, bypassing the full refresh.
type OptionToggle struct {
	QuestionID  string `json:"question_id"`
	OptionID    string `json:"option_id"`
	OptionLabel string `json:"option_label"`
	Checked     bool   `json:"checked"`
}

// QuestionEvent describes a question becoming visible or hidden.
type QuestionEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	StepID     string    `json:"step_id"`
	QuestionID string    `json:"question_id"`
	NodeID     string    `json:"node_id"`
	// Deferred is set on hide events whose physical detachment is delayed
	// by the cosmetic-removal window.
	Deferred bool `json:"deferred,omitempty"`
}

// RefreshEvent summarizes one reconciliation pass.
type RefreshEvent struct {
	Timestamp time.Time `json:"timestamp"`
	StepID    string    `json:"step_id"`
	Inserted  int       `json:"inserted"`
	Removed   int       `json:"removed"`
}

// LifecycleHooks defines callbacks for engine observability. Nil callbacks
// are skipped. Hooks run inline on the event-processing path and must not
// re-enter the session.
type LifecycleHooks struct {
	OnQuestionShow func(context.Context, *QuestionEvent)
	OnQuestionHide func(context.Context, *QuestionEvent)
	OnRefresh      func(context.Context, *RefreshEvent)
}
