package domain

import "errors"

// ErrQuestionNotFound is returned when a question ID cannot be resolved
// within the active step.
var ErrQuestionNotFound = errors.New("question not found")

// ErrStepNotFound is returned when a step ID cannot be resolved within a form.
var ErrStepNotFound = errors.New("step not found")

// ErrSessionClosed is returned by session operations after Close.
var ErrSessionClosed = errors.New("session closed")
