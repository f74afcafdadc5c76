package db

import (
	"errors"

	"github.com/lib/pq"
)

// Typed failures surfaced by every Database implementation. Callers decide
// whether to toast, reject, or propagate; nothing in this package retries.
var (
	// ErrDuplicate maps the store's uniqueness constraint on interaction rows
	ErrDuplicate = errors.New("row already exists")
	// ErrEventFull is returned when a join would exceed max_participants
	ErrEventFull = errors.New("event is at capacity")
	// ErrBadConfirmation is returned by delete_organization on a code mismatch
	ErrBadConfirmation = errors.New("confirmation code mismatch")
)

const pqUniqueViolation = "23505"

// IsDupKeyErr reports whether err is the backend's unique-constraint
// violation (or its typed mapping).
func IsDupKeyErr(err error) bool {
	if errors.Is(err, ErrDuplicate) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}
