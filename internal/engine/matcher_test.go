package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/dquispe/vacaciones-engine/internal/models"
)

func strPtr(s string) *string        { return &s }
func f64Ptr(f float64) *float64      { return &f }
func datePtr(t time.Time) *time.Time { return &t }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rule(id int64, mut func(*models.ConfigFlujo)) *models.ConfigFlujo {
	r := &models.ConfigFlujo{
		ID:                id,
		TipoSolicitud:     models.TipoVacaciones,
		NivelesRequeridos: 1,
		Orden:             1,
		Activo:            models.ActivoSi,
		FechaDesde:        date(2024, 1, 1),
	}
	if mut != nil {
		mut(r)
	}
	return r
}

func vacationInput(area string, dias float64) MatchInput {
	return MatchInput{
		TipoSolicitud:   models.TipoVacaciones,
		DiasSolicitados: dias,
		Scope:           models.OrgScope{CodigoArea: area, CodigoSeccion: "S1", CodigoCargo: "C1"},
		Fecha:           date(2024, 6, 1),
	}
}

func TestMatch_SpecificityWins(t *testing.T) {
	// Scenario: a wildcard rule (1 level, days 1-5) and an area-pinned rule
	// (2 levels, days 1-10) both match; the pinned rule must win.
	rules := []*models.ConfigFlujo{
		rule(1, func(r *models.ConfigFlujo) {
			r.DiasDesde = f64Ptr(1)
			r.DiasHasta = f64Ptr(5)
			r.NivelesRequeridos = 1
		}),
		rule(2, func(r *models.ConfigFlujo) {
			r.CodigoArea = strPtr("05")
			r.DiasDesde = f64Ptr(1)
			r.DiasHasta = f64Ptr(10)
			r.NivelesRequeridos = 2
		}),
	}

	got, err := Match(vacationInput("05", 3), rules)
	if err != nil {
		t.Fatalf("Match() failed: %v", err)
	}
	if got.ID != 2 {
		t.Errorf("Match() picked rule %d, want area-pinned rule 2", got.ID)
	}
	if got.NivelesRequeridos != 2 {
		t.Errorf("niveles = %d, want 2", got.NivelesRequeridos)
	}
}

func TestMatch_Deterministic(t *testing.T) {
	rules := []*models.ConfigFlujo{
		rule(3, nil),
		rule(1, nil),
		rule(2, nil),
	}

	first, err := Match(vacationInput("05", 3), rules)
	if err != nil {
		t.Fatalf("Match() failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := Match(vacationInput("05", 3), rules)
		if err != nil {
			t.Fatalf("Match() failed on call %d: %v", i, err)
		}
		if got.ID != first.ID {
			t.Fatalf("Match() returned rule %d on call %d, first call gave %d", got.ID, i, first.ID)
		}
	}
	// Equal score and orden: lowest id wins.
	if first.ID != 1 {
		t.Errorf("tie-break picked rule %d, want lowest id 1", first.ID)
	}
}

func TestMatch_OrdenBreaksTies(t *testing.T) {
	rules := []*models.ConfigFlujo{
		rule(1, func(r *models.ConfigFlujo) { r.Orden = 5 }),
		rule(2, func(r *models.ConfigFlujo) { r.Orden = 2 }),
	}

	got, err := Match(vacationInput("05", 3), rules)
	if err != nil {
		t.Fatalf("Match() failed: %v", err)
	}
	if got.ID != 2 {
		t.Errorf("Match() picked rule %d, want rule 2 with lower orden", got.ID)
	}
}

func TestMatch_Filters(t *testing.T) {
	tests := []struct {
		name  string
		rules []*models.ConfigFlujo
		input MatchInput
	}{
		{
			name:  "wrong tipo",
			rules: []*models.ConfigFlujo{rule(1, func(r *models.ConfigFlujo) { r.TipoSolicitud = models.TipoPermiso })},
			input: vacationInput("05", 3),
		},
		{
			name:  "inactive",
			rules: []*models.ConfigFlujo{rule(1, func(r *models.ConfigFlujo) { r.Activo = models.ActivoNo })},
			input: vacationInput("05", 3),
		},
		{
			name: "outside validity window",
			rules: []*models.ConfigFlujo{rule(1, func(r *models.ConfigFlujo) {
				r.FechaHasta = datePtr(date(2024, 3, 31))
			})},
			input: vacationInput("05", 3),
		},
		{
			name:  "area mismatch",
			rules: []*models.ConfigFlujo{rule(1, func(r *models.ConfigFlujo) { r.CodigoArea = strPtr("99") })},
			input: vacationInput("05", 3),
		},
		{
			name: "below day range",
			rules: []*models.ConfigFlujo{rule(1, func(r *models.ConfigFlujo) {
				r.DiasDesde = f64Ptr(5)
			})},
			input: vacationInput("05", 3),
		},
		{
			name: "above day range",
			rules: []*models.ConfigFlujo{rule(1, func(r *models.ConfigFlujo) {
				r.DiasHasta = f64Ptr(2)
			})},
			input: vacationInput("05", 3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Match(tt.input, tt.rules)
			if !errors.Is(err, ErrNoMatchingConfig) {
				t.Errorf("Match() error = %v, want ErrNoMatchingConfig", err)
			}
		})
	}
}

func TestMatch_WindowBoundaryWithClockTime(t *testing.T) {
	// Validity windows are calendar dates; a request carrying a time of day
	// on the last covered day must still match.
	rules := []*models.ConfigFlujo{
		rule(1, func(r *models.ConfigFlujo) {
			r.FechaHasta = datePtr(date(2024, 6, 30))
		}),
	}

	tests := []struct {
		name    string
		fecha   time.Time
		matches bool
	}{
		{"midday on first day", time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), true},
		{"afternoon on last day", time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC), true},
		{"midnight of day after", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := vacationInput("05", 3)
			input.Fecha = tt.fecha
			_, err := Match(input, rules)
			if tt.matches && err != nil {
				t.Errorf("Match() error = %v, want match inside window", err)
			}
			if !tt.matches && !errors.Is(err, ErrNoMatchingConfig) {
				t.Errorf("Match() error = %v, want ErrNoMatchingConfig", err)
			}
		})
	}
}

func TestMatch_PermisoSubtype(t *testing.T) {
	rules := []*models.ConfigFlujo{
		rule(1, func(r *models.ConfigFlujo) {
			r.TipoSolicitud = models.TipoPermiso
			r.CodigoPermiso = strPtr("MED")
			r.NivelesRequeridos = 1
		}),
		rule(2, func(r *models.ConfigFlujo) {
			r.TipoSolicitud = models.TipoPermiso
			r.NivelesRequeridos = 3
		}),
	}

	input := MatchInput{
		TipoSolicitud:   models.TipoPermiso,
		CodigoPermiso:   "MED",
		DiasSolicitados: 1,
		Scope:           models.OrgScope{CodigoArea: "05"},
		Fecha:           date(2024, 6, 1),
	}

	got, err := Match(input, rules)
	if err != nil {
		t.Fatalf("Match() failed: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("Match() picked rule %d, want permiso-pinned rule 1", got.ID)
	}

	// A different sub-type only matches the wildcard rule.
	input.CodigoPermiso = "PER"
	got, err = Match(input, rules)
	if err != nil {
		t.Fatalf("Match() failed: %v", err)
	}
	if got.ID != 2 {
		t.Errorf("Match() picked rule %d, want wildcard rule 2", got.ID)
	}
}

func TestMatch_NoRuleForUnknownScope(t *testing.T) {
	// Scenario: area 99, permiso X9 against an empty rule set for that shape.
	rules := []*models.ConfigFlujo{
		rule(1, func(r *models.ConfigFlujo) {
			r.TipoSolicitud = models.TipoPermiso
			r.CodigoPermiso = strPtr("MED")
		}),
	}

	input := MatchInput{
		TipoSolicitud:   models.TipoPermiso,
		CodigoPermiso:   "X9",
		DiasSolicitados: 1,
		Scope:           models.OrgScope{CodigoArea: "99"},
		Fecha:           date(2024, 6, 1),
	}

	if _, err := Match(input, rules); !errors.Is(err, ErrNoMatchingConfig) {
		t.Errorf("Match() error = %v, want ErrNoMatchingConfig", err)
	}
}
