package domain

import "errors"

// Error taxonomy shared by the services and the HTTP layer. Services wrap
// these with detail via fmt.Errorf("%w: ..."); the HTTP layer maps them to
// response codes with errors.Is.
var (
	// ErrValidation covers bad input shape or range (negative price, empty
	// reason set, unknown enum values).
	ErrValidation = errors.New("validation error")

	// ErrInvalidTransition is returned when the target status is not
	// reachable from the current one, or an edge precondition fails.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTerminalState is returned for any transition attempt out of
	// completed or cancelled.
	ErrTerminalState = errors.New("order is in a terminal state")

	// ErrConflict covers duplicate active label keys and a second re-offer
	// proposed while one is still pending.
	ErrConflict = errors.New("conflict")

	// ErrNotFound covers unknown orders and unknown label keys.
	ErrNotFound = errors.New("not found")

	// ErrDeniedByCarrier marks a void request the carrier refused. Not a
	// local bug; surfaced per label rather than failing the batch.
	ErrDeniedByCarrier = errors.New("denied by carrier")

	// ErrInvalidReminderState is returned when a reminder action does not
	// fit the current escalation stage or order status.
	ErrInvalidReminderState = errors.New("invalid reminder state")
)
