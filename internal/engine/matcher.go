// Package engine implements the approval routing core: matching a request to
// its governing flow configuration and resolving the concrete approver chain.
// Both operations are pure functions over rows supplied by the caller, with
// the evaluation date passed in explicitly.
package engine

import (
	"sort"
	"time"

	"github.com/dquispe/vacaciones-engine/internal/models"
)

// MatchInput carries the request attributes the matcher evaluates.
type MatchInput struct {
	TipoSolicitud   models.TipoSolicitud
	CodigoPermiso   string // empty unless TipoSolicitud is Permiso
	DiasSolicitados float64
	Scope           models.OrgScope
	Fecha           time.Time // submission date, drives validity windows
}

// Match selects the single ConfigFlujo row governing the input from the given
// candidate rules.
//
// A rule is a candidate when it is active and vigente at the input date, its
// tipo_solicitud matches exactly, every nullable predicate (codigo_permiso,
// area, seccion, cargo) is either nil or equal to the input's field, and the
// day count falls inside [dias_desde, dias_hasta] (nil = unbounded).
//
// Among candidates the most specific wins: one point per non-nil matched
// predicate. Ties break by orden ascending, then lowest id_config, so the
// result is deterministic even over mis-curated configuration.
func Match(input MatchInput, rules []*models.ConfigFlujo) (*models.ConfigFlujo, error) {
	type scored struct {
		rule  *models.ConfigFlujo
		score int
	}

	var candidates []scored
	for _, rule := range rules {
		score, ok := evalRule(input, rule)
		if !ok {
			continue
		}
		candidates = append(candidates, scored{rule: rule, score: score})
	}

	if len(candidates) == 0 {
		return nil, ErrNoMatchingConfig
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].rule.Orden != candidates[j].rule.Orden {
			return candidates[i].rule.Orden < candidates[j].rule.Orden
		}
		return candidates[i].rule.ID < candidates[j].rule.ID
	})

	return candidates[0].rule, nil
}

// evalRule reports whether the rule matches the input, and with what
// specificity score.
func evalRule(input MatchInput, rule *models.ConfigFlujo) (int, bool) {
	if rule.TipoSolicitud != input.TipoSolicitud {
		return 0, false
	}
	if !rule.VigenteEn(input.Fecha) {
		return 0, false
	}

	score := 0

	matched, points := matchScope(rule.CodigoPermiso, input.CodigoPermiso)
	if !matched {
		return 0, false
	}
	score += points

	matched, points = matchScope(rule.CodigoArea, input.Scope.CodigoArea)
	if !matched {
		return 0, false
	}
	score += points

	matched, points = matchScope(rule.CodigoSeccion, input.Scope.CodigoSeccion)
	if !matched {
		return 0, false
	}
	score += points

	matched, points = matchScope(rule.CodigoCargo, input.Scope.CodigoCargo)
	if !matched {
		return 0, false
	}
	score += points

	if rule.DiasDesde != nil && input.DiasSolicitados < *rule.DiasDesde {
		return 0, false
	}
	if rule.DiasHasta != nil && input.DiasSolicitados > *rule.DiasHasta {
		return 0, false
	}

	return score, true
}

// matchScope evaluates one nullable predicate: nil is a wildcard worth zero
// points, a pinned value must equal the input and is worth one.
func matchScope(predicate *string, value string) (matched bool, points int) {
	if predicate == nil {
		return true, 0
	}
	if *predicate == value {
		return true, 1
	}
	return false, 0
}
