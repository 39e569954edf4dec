package models

import "errors"

// Domain error taxonomy. Services wrap these with context so callers can
// branch on kind with errors.Is.
var (
	// ErrNotFound indicates a referenced entity id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the principal is authenticated but not
	// authorized for this action on this entity.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated indicates no valid principal could be resolved.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidTransition indicates a state machine rejected the requested
	// move, or a status value outside the entity's enum was supplied.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrPreconditionFailed indicates a dependent entity is not yet in the
	// required state.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrConflict indicates a uniqueness violation that is not semantically
	// idempotent.
	ErrConflict = errors.New("conflict")
)
