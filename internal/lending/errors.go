package lending

import "errors"

// Failure kinds surfaced by the engine. Callers match with errors.Is; none
// of these are retried internally, and infrastructure errors from the store
// are returned verbatim (wrapped) instead of being mapped onto these.
var (
	// ErrNotFound means the referenced book, request or user is absent.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller lacks the capability for the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState means the transition is illegal from the current status.
	ErrInvalidState = errors.New("invalid state for requested transition")
	// ErrUnavailable means no copy remains at borrow or approval time.
	ErrUnavailable = errors.New("no copies available")
	// ErrAlreadyActive means the caller already holds a pending or approved request.
	ErrAlreadyActive = errors.New("an active borrow request already exists for this user")
	// ErrDuplicatePending means the caller already has a pending request for the book.
	ErrDuplicatePending = errors.New("a pending request for this book already exists")
	// ErrInvariantViolation means a counter write would leave available
	// outside [0, total]. Unreachable if the validation above it is right,
	// but checked and rejected rather than clamped.
	ErrInvariantViolation = errors.New("availability bound would be violated")
	// ErrConflict means deletion was attempted while active requests
	// reference the book.
	ErrConflict = errors.New("active requests reference this book")
)
