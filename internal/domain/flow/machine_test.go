package flow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePendiente, false},
		{StateAprobada, true},
		{StateRechazada, true},
		{StateAnulada, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"pendiente", StatePendiente, true},
		{"anulada", StateAnulada, true},
		{"unknown letter", State("X"), false},
		{"empty", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()
	NewBuilder().Configure(State("X"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()
	NewBuilder().Build(State("X"))
}

func TestStateMachine_GuardFails(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatePendiente).
		PermitIf(TriggerAprobarFinal, StateAprobada, func(ctx context.Context) bool { return false })

	m := b.Build(StatePendiente)

	err := m.Fire(context.Background(), TriggerAprobarFinal)
	if !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("Fire() error = %v, want ErrGuardFailed", err)
	}
	if m.State() != StatePendiente {
		t.Errorf("state moved to %v after failed guard", m.State())
	}
}

func TestStateMachine_Immutability(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatePendiente).Permit(TriggerRechazar, StateRechazada)

	m1 := b.Build(StatePendiente)
	m2 := b.Build(StatePendiente)

	if err := m1.Fire(context.Background(), TriggerRechazar); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m2.State() != StatePendiente {
		t.Errorf("machine2 state = %v, machines should be independent", m2.State())
	}
}

func TestSolicitudMachine_ApprovalLadder(t *testing.T) {
	m := NewSolicitudMachine(StatePendiente)

	// Intermediate level approvals keep the request pending.
	if err := m.Fire(context.Background(), TriggerAprobarNivel); err != nil {
		t.Fatalf("Fire(AprobarNivel) failed: %v", err)
	}
	if m.State() != StatePendiente {
		t.Fatalf("state = %v, want Pendiente after intermediate approval", m.State())
	}

	// Final approval terminates.
	if err := m.Fire(context.Background(), TriggerAprobarFinal); err != nil {
		t.Fatalf("Fire(AprobarFinal) failed: %v", err)
	}
	if m.State() != StateAprobada {
		t.Fatalf("state = %v, want Aprobada", m.State())
	}

	// Nothing but anulación is permitted afterwards.
	if err := m.Fire(context.Background(), TriggerRechazar); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire(Rechazar) after approval error = %v, want ErrInvalidTransition", err)
	}
}

func TestSolicitudMachine_RejectionIsTerminal(t *testing.T) {
	m := NewSolicitudMachine(StatePendiente)

	if err := m.Fire(context.Background(), TriggerRechazar); err != nil {
		t.Fatalf("Fire(Rechazar) failed: %v", err)
	}
	if m.State() != StateRechazada {
		t.Fatalf("state = %v, want Rechazada", m.State())
	}
	if err := m.Fire(context.Background(), TriggerAprobarFinal); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("approval after rejection error = %v, want ErrInvalidTransition", err)
	}
}

func TestSolicitudMachine_AnularFromEveryState(t *testing.T) {
	for _, from := range []State{StatePendiente, StateAprobada, StateRechazada} {
		t.Run(string(from), func(t *testing.T) {
			m := NewSolicitudMachine(from)
			if err := m.Fire(context.Background(), TriggerAnular); err != nil {
				t.Fatalf("Fire(Anular) from %v failed: %v", from, err)
			}
			if m.State() != StateAnulada {
				t.Fatalf("state = %v, want Anulada", m.State())
			}
		})
	}
}

func TestSolicitudMachine_AnuladaIsFinal(t *testing.T) {
	m := NewSolicitudMachine(StateAnulada)

	for _, trigger := range []Trigger{TriggerAprobarNivel, TriggerAprobarFinal, TriggerRechazar, TriggerAnular} {
		if err := m.Fire(context.Background(), trigger); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Fire(%v) from Anulada error = %v, want ErrInvalidTransition", trigger, err)
		}
	}

	if got := m.PermittedTriggers(); len(got) != 0 {
		t.Errorf("PermittedTriggers() from Anulada = %v, want none", got)
	}
}
