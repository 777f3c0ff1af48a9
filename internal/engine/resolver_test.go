package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/dquispe/vacaciones-engine/internal/models"
)

func jerarquia(id int64, nivel int, aprobador string, mut func(*models.Jerarquia)) *models.Jerarquia {
	j := &models.Jerarquia{
		ID:                        id,
		CodigoTrabajadorAprobador: aprobador,
		TipoRelacion:              models.RelacionJefeDirecto,
		NivelJerarquico:           nivel,
		Activo:                    models.ActivoSi,
		FechaDesde:                date(2024, 1, 1),
	}
	if mut != nil {
		mut(j)
	}
	return j
}

func sustituto(id int64, titular, sust string, desde, hasta time.Time) *models.Sustituto {
	return &models.Sustituto{
		ID:                        id,
		CodigoTrabajadorTitular:   titular,
		CodigoTrabajadorSustituto: sust,
		FechaDesde:                desde,
		FechaHasta:                hasta,
		Activo:                    models.ActivoSi,
	}
}

var testScope = models.OrgScope{CodigoArea: "05", CodigoSeccion: "S1", CodigoCargo: "C1"}

func TestResolveChain_CompleteChain(t *testing.T) {
	jerarquias := []*models.Jerarquia{
		jerarquia(1, 1, "100", func(j *models.Jerarquia) { j.CodigoArea = strPtr("05") }),
		jerarquia(2, 2, "300", func(j *models.Jerarquia) { j.TipoRelacion = models.RelacionGerente }),
	}

	chain, err := ResolveChain(testScope, date(2024, 6, 1), 2, jerarquias, nil)
	if err != nil {
		t.Fatalf("ResolveChain() failed: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("chain length = %d, want 2", len(chain))
	}
	if chain[0].Aprueba != "100" || chain[0].Nivel != 1 {
		t.Errorf("level 1 = %+v, want approver 100", chain[0])
	}
	if chain[1].Aprueba != "300" || chain[1].Nivel != 2 {
		t.Errorf("level 2 = %+v, want approver 300", chain[1])
	}
}

func TestResolveChain_NeverPartial(t *testing.T) {
	// Level 1 resolvable, level 2 has no entry: the whole resolution fails
	// naming the missing level, and no partial chain is returned.
	jerarquias := []*models.Jerarquia{
		jerarquia(1, 1, "100", nil),
	}

	chain, err := ResolveChain(testScope, date(2024, 6, 1), 2, jerarquias, nil)
	if chain != nil {
		t.Fatalf("chain = %v, want nil on failure", chain)
	}
	var ic *IncompleteChainError
	if !errors.As(err, &ic) {
		t.Fatalf("error = %v, want IncompleteChainError", err)
	}
	if ic.Nivel != 2 {
		t.Errorf("missing level = %d, want 2", ic.Nivel)
	}
}

func TestResolveChain_MostSpecificScopeWins(t *testing.T) {
	jerarquias := []*models.Jerarquia{
		jerarquia(1, 1, "100", nil), // wildcard
		jerarquia(2, 1, "200", func(j *models.Jerarquia) {
			j.CodigoArea = strPtr("05")
			j.CodigoSeccion = strPtr("S1")
		}),
	}

	chain, err := ResolveChain(testScope, date(2024, 6, 1), 1, jerarquias, nil)
	if err != nil {
		t.Fatalf("ResolveChain() failed: %v", err)
	}
	if chain[0].Aprueba != "200" {
		t.Errorf("level 1 approver = %s, want the scope-pinned 200", chain[0].Aprueba)
	}
}

func TestResolveChain_ScopeMismatchExcluded(t *testing.T) {
	jerarquias := []*models.Jerarquia{
		jerarquia(1, 1, "100", func(j *models.Jerarquia) { j.CodigoArea = strPtr("99") }),
	}

	_, err := ResolveChain(testScope, date(2024, 6, 1), 1, jerarquias, nil)
	var ic *IncompleteChainError
	if !errors.As(err, &ic) {
		t.Fatalf("error = %v, want IncompleteChainError for foreign-area entry", err)
	}
}

func TestResolveChain_SubstitutionOverride(t *testing.T) {
	// Scenario: titular 100 covered by sustituto 200 for the request date.
	jerarquias := []*models.Jerarquia{
		jerarquia(1, 1, "100", func(j *models.Jerarquia) { j.CodigoArea = strPtr("05") }),
	}
	sustitutos := []*models.Sustituto{
		sustituto(1, "100", "200", date(2024, 5, 1), date(2024, 6, 15)),
	}

	chain, err := ResolveChain(testScope, date(2024, 6, 1), 1, jerarquias, sustitutos)
	if err != nil {
		t.Fatalf("ResolveChain() failed: %v", err)
	}
	if chain[0].Aprueba != "200" {
		t.Errorf("approver = %s, want substitute 200", chain[0].Aprueba)
	}
	if chain[0].Titular != "100" || !chain[0].Sustituido {
		t.Errorf("titular snapshot lost: %+v", chain[0])
	}
}

func TestResolveChain_SubstitutionOutsideRange(t *testing.T) {
	jerarquias := []*models.Jerarquia{jerarquia(1, 1, "100", nil)}
	sustitutos := []*models.Sustituto{
		sustituto(1, "100", "200", date(2024, 7, 1), date(2024, 7, 31)),
	}

	chain, err := ResolveChain(testScope, date(2024, 6, 1), 1, jerarquias, sustitutos)
	if err != nil {
		t.Fatalf("ResolveChain() failed: %v", err)
	}
	if chain[0].Aprueba != "100" {
		t.Errorf("approver = %s, want titular 100 outside substitution range", chain[0].Aprueba)
	}
}

func TestResolveChain_InactiveSubstitutionIgnored(t *testing.T) {
	jerarquias := []*models.Jerarquia{jerarquia(1, 1, "100", nil)}
	s := sustituto(1, "100", "200", date(2024, 5, 1), date(2024, 6, 15))
	s.Activo = models.ActivoNo

	chain, err := ResolveChain(testScope, date(2024, 6, 1), 1, jerarquias, []*models.Sustituto{s})
	if err != nil {
		t.Fatalf("ResolveChain() failed: %v", err)
	}
	if chain[0].Aprueba != "100" {
		t.Errorf("approver = %s, inactive substitution must not apply", chain[0].Aprueba)
	}
}

func TestResolveChain_OverlappingSubstitutionsNewestWins(t *testing.T) {
	jerarquias := []*models.Jerarquia{jerarquia(1, 1, "100", nil)}
	sustitutos := []*models.Sustituto{
		sustituto(1, "100", "200", date(2024, 5, 1), date(2024, 6, 30)),
		sustituto(2, "100", "300", date(2024, 5, 15), date(2024, 6, 30)),
	}

	chain, err := ResolveChain(testScope, date(2024, 6, 1), 1, jerarquias, sustitutos)
	if err != nil {
		t.Fatalf("ResolveChain() failed: %v", err)
	}
	if chain[0].Aprueba != "300" {
		t.Errorf("approver = %s, want most recently registered substitute 300", chain[0].Aprueba)
	}
}

func TestResolveChain_WindowBoundariesWithClockTime(t *testing.T) {
	// Hierarchy and substitution windows are calendar dates. Resolving with a
	// timestamp during the last covered day must honor both to the day's end.
	jerarquias := []*models.Jerarquia{
		jerarquia(1, 1, "100", func(j *models.Jerarquia) {
			j.FechaHasta = datePtr(date(2024, 6, 30))
		}),
	}
	sustitutos := []*models.Sustituto{
		sustituto(1, "100", "200", date(2024, 6, 1), date(2024, 6, 15)),
	}

	lastDayOfSub := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	chain, err := ResolveChain(testScope, lastDayOfSub, 1, jerarquias, sustitutos)
	if err != nil {
		t.Fatalf("ResolveChain() failed: %v", err)
	}
	if chain[0].Aprueba != "200" {
		t.Errorf("approver = %s, substitution must cover the whole last day", chain[0].Aprueba)
	}

	afterSub := time.Date(2024, 6, 16, 9, 0, 0, 0, time.UTC)
	chain, err = ResolveChain(testScope, afterSub, 1, jerarquias, sustitutos)
	if err != nil {
		t.Fatalf("ResolveChain() failed: %v", err)
	}
	if chain[0].Aprueba != "100" {
		t.Errorf("approver = %s, want titular once the substitution lapsed", chain[0].Aprueba)
	}

	lastDayOfEntry := time.Date(2024, 6, 30, 23, 15, 0, 0, time.UTC)
	chain, err = ResolveChain(testScope, lastDayOfEntry, 1, jerarquias, nil)
	if err != nil {
		t.Fatalf("ResolveChain() failed: %v", err)
	}
	if chain[0].Aprueba != "100" {
		t.Errorf("approver = %s, entry must resolve through its whole last day", chain[0].Aprueba)
	}

	if _, err := ResolveChain(testScope, time.Date(2024, 7, 1, 0, 30, 0, 0, time.UTC), 1, jerarquias, nil); err == nil {
		t.Error("ResolveChain() resolved past the entry's last day, want failure")
	}
}

func TestResolveChain_ExpiredHierarchyEntry(t *testing.T) {
	expired := jerarquia(1, 1, "100", func(j *models.Jerarquia) {
		j.FechaHasta = datePtr(date(2024, 3, 31))
	})
	current := jerarquia(2, 1, "200", nil)

	chain, err := ResolveChain(testScope, date(2024, 6, 1), 1, []*models.Jerarquia{expired, current}, nil)
	if err != nil {
		t.Fatalf("ResolveChain() failed: %v", err)
	}
	if chain[0].Aprueba != "200" {
		t.Errorf("approver = %s, expired entry must not resolve", chain[0].Aprueba)
	}
}
