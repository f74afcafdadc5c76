package app

import (
	"errors"
	"fmt"
)

// Error taxonomy for interaction handling. Validation failures never reach
// the store; constraint violations come back from it; nothing is retried
// automatically.

// ValidationError carries per-field messages so each offending input can be
// highlighted, instead of one flattened string.
type ValidationError struct {
	Fields map[string]string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %v field(s)", len(ve.Fields))
}

type ConstraintError struct {
	Message string
}

func (ce *ConstraintError) Error() string {
	return ce.Message
}

var (
	ErrNotFound        = errors.New("not found")
	ErrLoginRequired   = errors.New("must be logged in")
	ErrWrongPostType   = errors.New("operation does not apply to this post type")
	ErrAlreadyVoted    = &ConstraintError{Message: "a vote has already been cast for this poll"}
	ErrAlreadyAnswered = &ConstraintError{Message: "a response has already been submitted for this form"}
	ErrPollEnded       = &ConstraintError{Message: "the poll has ended"}
	ErrFormClosed      = &ConstraintError{Message: "the form deadline has passed"}
	ErrEventFull       = &ConstraintError{Message: "the event is at capacity"}
	ErrOptionOutOfRange = &ValidationError{Fields: map[string]string{
		"optionIndex": "option index is out of range",
	}}
)
