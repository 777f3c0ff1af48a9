package engine

import (
	"sort"
	"time"

	"github.com/dquispe/vacaciones-engine/internal/models"
)

// ResolvedApprover is one level of a resolved chain. Titular keeps the
// hierarchy-selected approver even when a substitution redirected the level.
type ResolvedApprover struct {
	Nivel      int    `json:"nivel"`
	Aprueba    string `json:"codigo_trabajador_aprueba"`
	Titular    string `json:"codigo_trabajador_titular"`
	Sustituido bool   `json:"sustituido"`
}

// ResolveChain expands niveles approval levels into concrete approver codes
// for the given requester scope at the given date.
//
// For each level 1..niveles the most specific vigente Jerarquia row wins
// (same scoring as the rule matcher; ties break by lowest id_jerarquia). A
// level with no matching row aborts the whole resolution with
// IncompleteChainError — the output is always complete or absent, never
// partial.
//
// After a titular is selected, a vigente Sustituto row for that titular
// redirects the level to the substitute. Overlapping substitutions are
// rejected at write time, but the resolver still breaks ties by highest
// id_sustituto (most recently registered) so resolution stays deterministic
// over legacy data.
func ResolveChain(
	scope models.OrgScope,
	fecha time.Time,
	niveles int,
	jerarquias []*models.Jerarquia,
	sustitutos []*models.Sustituto,
) ([]ResolvedApprover, error) {
	chain := make([]ResolvedApprover, 0, niveles)

	for nivel := 1; nivel <= niveles; nivel++ {
		entry, err := pickApprover(scope, fecha, nivel, jerarquias)
		if err != nil {
			return nil, err
		}

		resolved := ResolvedApprover{
			Nivel:   nivel,
			Titular: entry.CodigoTrabajadorAprobador,
			Aprueba: entry.CodigoTrabajadorAprobador,
		}

		if sub := activeSubstitute(entry.CodigoTrabajadorAprobador, fecha, sustitutos); sub != nil {
			resolved.Aprueba = sub.CodigoTrabajadorSustituto
			resolved.Sustituido = true
		}

		chain = append(chain, resolved)
	}

	return chain, nil
}

// pickApprover selects the most specific vigente hierarchy entry for a level.
func pickApprover(scope models.OrgScope, fecha time.Time, nivel int, jerarquias []*models.Jerarquia) (*models.Jerarquia, error) {
	type scored struct {
		entry *models.Jerarquia
		score int
	}

	var candidates []scored
	for _, j := range jerarquias {
		if j.NivelJerarquico != nivel || !j.VigenteEn(fecha) {
			continue
		}

		score := 0
		matched, points := matchScope(j.CodigoArea, scope.CodigoArea)
		if !matched {
			continue
		}
		score += points

		matched, points = matchScope(j.CodigoSeccion, scope.CodigoSeccion)
		if !matched {
			continue
		}
		score += points

		matched, points = matchScope(j.CodigoCargo, scope.CodigoCargo)
		if !matched {
			continue
		}
		score += points

		candidates = append(candidates, scored{entry: j, score: score})
	}

	if len(candidates) == 0 {
		return nil, &IncompleteChainError{Nivel: nivel}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].entry.ID < candidates[j].entry.ID
	})

	return candidates[0].entry, nil
}

// activeSubstitute returns the substitution covering the titular at fecha,
// preferring the most recently registered row, or nil.
func activeSubstitute(titular string, fecha time.Time, sustitutos []*models.Sustituto) *models.Sustituto {
	var best *models.Sustituto
	for _, s := range sustitutos {
		if s.CodigoTrabajadorTitular != titular || !s.VigenteEn(fecha) {
			continue
		}
		if best == nil || s.ID > best.ID {
			best = s
		}
	}
	return best
}
