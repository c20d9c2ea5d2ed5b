package interviews

import "errors"

var (
	// ErrNotFound indicates no interview exists for the given id.
	ErrNotFound = errors.New("interview not found")

	// ErrValidation indicates bad caller input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates the interview is in the wrong state for the
	// requested operation.
	ErrConflict = errors.New("invalid interview state")

	// ErrUpstream indicates the question generator could not produce output.
	ErrUpstream = errors.New("question generation failed")
)
