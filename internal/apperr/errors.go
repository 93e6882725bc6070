package apperr

import "errors"

// Typed failures raised by the engine. The boundary layer matches these with
// errors.Is and translates them to transport status codes; the engine itself
// never renders user-facing strings.
var (
	// ErrNotFound is returned when an entity id does not resolve.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized is returned on ownership mismatch: the entity exists but
	// belongs to another candidate.
	ErrUnauthorized = errors.New("candidate does not own this resource")
	// ErrInvalidTransition is returned on state-machine violations: starting a
	// started test, submitting a non-in-progress test, mutating a submitted one.
	ErrInvalidTransition = errors.New("invalid test state transition")
	// ErrInsufficientQuestionBank is returned when snapshot creation cannot
	// satisfy the per-type question-count requirement.
	ErrInsufficientQuestionBank = errors.New("question bank cannot satisfy question count")
	// ErrInvalidMedia is returned when an upload fails size, content-type or
	// extension validation.
	ErrInvalidMedia = errors.New("invalid media file")
	// ErrConflict is returned when the eligibility guard rejects attempt
	// creation (an active or already-submitted attempt exists).
	ErrConflict = errors.New("conflicting test attempt exists")
)
