package flow

import "context"

// StateMachine tracks a current state and validates trigger-driven transitions.
type StateMachine interface {
	// State returns the current state.
	State() State

	// CanFire returns true if the trigger is permitted in the current state.
	CanFire(trigger Trigger) bool

	// Fire attempts the trigger, moving to the target state when permitted.
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns all triggers configured for the current state.
	PermittedTriggers() []Trigger
}

// NewSolicitudMachine builds the canonical Solicitud lifecycle machine
// positioned at the given state.
//
// Pendiente is the only working state: approving a non-final level loops back
// to Pendiente, approving the last level or rejecting any level terminates
// the ladder. Anular is reachable from every state except Anulada and is
// final once fired.
func NewSolicitudMachine(current State) StateMachine {
	b := NewBuilder()

	b.Configure(StatePendiente).
		Permit(TriggerAprobarNivel, StatePendiente).
		Permit(TriggerAprobarFinal, StateAprobada).
		Permit(TriggerRechazar, StateRechazada).
		Permit(TriggerAnular, StateAnulada)

	b.Configure(StateAprobada).
		Permit(TriggerAnular, StateAnulada)

	b.Configure(StateRechazada).
		Permit(TriggerAnular, StateAnulada)

	// StateAnulada has no outgoing transitions.

	return b.Build(current)
}
