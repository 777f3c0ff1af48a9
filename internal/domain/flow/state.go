package flow

// State is a Solicitud lifecycle state.
type State string

const (
	StatePendiente State = "P"
	StateAprobada  State = "A"
	StateRechazada State = "R"
	StateAnulada   State = "N"
)

var validStates = map[State]bool{
	StatePendiente: true,
	StateAprobada:  true,
	StateRechazada: true,
	StateAnulada:   true,
}

// Pendiente is the sole non-terminal state; Anulada is reachable from the
// other terminals through the anulación side channel, but nothing leaves it.
var terminalStates = map[State]bool{
	StateRechazada: true,
	StateAnulada:   true,
	StateAprobada:  true,
}

// IsTerminal reports whether the approval ladder is done with this state.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid reports whether s is a known lifecycle state.
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the single-letter database representation.
func (s State) String() string {
	return string(s)
}
