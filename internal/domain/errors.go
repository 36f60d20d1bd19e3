package domain

import "errors"

// Shared error taxonomy. Repos map store-level failures onto these; any
// error raised inside a transaction aborts it and propagates unchanged.
var (
	// ErrNotFound: referenced task/tag/project/user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation: malformed input caught defensively in the core.
	ErrValidation = errors.New("validation failed")
	// ErrConflict: unique constraint violation (e.g. duplicate tag name).
	ErrConflict = errors.New("conflict")
	// ErrInvalidStatus: status value outside the enum.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrConstraint: foreign-key or check-constraint violation.
	ErrConstraint = errors.New("constraint violation")
)
