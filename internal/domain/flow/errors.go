package flow

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted in the
	// current state, or a level is decided out of order.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a stored estado is not a known state.
	ErrInvalidState = errors.New("invalid state")

	// ErrGuardFailed is returned when a transition's guard condition fails.
	ErrGuardFailed = errors.New("guard condition failed")
)
