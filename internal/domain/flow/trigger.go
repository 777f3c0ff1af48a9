package flow

// Trigger is an event that can move a Solicitud between states.
type Trigger string

const (
	// TriggerAprobarNivel fires when a non-final level is approved; the
	// request stays Pendiente and the next level becomes active.
	TriggerAprobarNivel Trigger = "APROBAR_NIVEL"

	// TriggerAprobarFinal fires when the last level is approved.
	TriggerAprobarFinal Trigger = "APROBAR_FINAL"

	// TriggerRechazar fires on rejection at any level; terminal immediately.
	TriggerRechazar Trigger = "RECHAZAR"

	// TriggerAnular is the administrator void, permitted from any state
	// except Anulada itself.
	TriggerAnular Trigger = "ANULAR"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}
