package service

import (
	"context"
	"time"

	"github.com/dquispe/vacaciones-engine/internal/engine"
	"github.com/dquispe/vacaciones-engine/internal/models"
)

// Logger is the minimal logging dependency of the service layer.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ConfigFlujoStore is the slice of the config repository the routing service
// consumes.
type ConfigFlujoStore interface {
	ListActivas(ctx context.Context, tipo models.TipoSolicitud) ([]*models.ConfigFlujo, error)
}

// JerarquiaStore is the slice of the hierarchy repository the routing service
// consumes.
type JerarquiaStore interface {
	ListActivas(ctx context.Context) ([]*models.Jerarquia, error)
}

// SustitutoStore is the slice of the substitution repository the routing
// service consumes.
type SustitutoStore interface {
	ListActivos(ctx context.Context) ([]*models.Sustituto, error)
}

// RoutingService answers "which rule governs this request" and "who approves
// it" over a point-in-time read of the configuration stores.
type RoutingService struct {
	configs    ConfigFlujoStore
	jerarquias JerarquiaStore
	sustitutos SustitutoStore
	logger     Logger
}

// NewRoutingService creates a new RoutingService
func NewRoutingService(configs ConfigFlujoStore, jerarquias JerarquiaStore, sustitutos SustitutoStore, logger Logger) *RoutingService {
	return &RoutingService{
		configs:    configs,
		jerarquias: jerarquias,
		sustitutos: sustitutos,
		logger:     logger,
	}
}

// MatchConfig selects the governing flow configuration for the input.
// Returns engine.ErrNoMatchingConfig when no active rule applies.
func (s *RoutingService) MatchConfig(ctx context.Context, input engine.MatchInput) (*models.ConfigFlujo, error) {
	rules, err := s.configs.ListActivas(ctx, input.TipoSolicitud)
	if err != nil {
		return nil, err
	}

	matched, err := engine.Match(input, rules)
	if err != nil {
		s.logger.Warn("No flow configuration matched",
			"tipo", string(input.TipoSolicitud),
			"area", input.Scope.CodigoArea,
			"dias", input.DiasSolicitados)
		return nil, err
	}

	return matched, nil
}

// ResolveChain expands niveles approval levels into concrete approvers for
// the scope at the given date, applying substitution overrides.
func (s *RoutingService) ResolveChain(ctx context.Context, scope models.OrgScope, fecha time.Time, niveles int) ([]engine.ResolvedApprover, error) {
	jerarquias, err := s.jerarquias.ListActivas(ctx)
	if err != nil {
		return nil, err
	}
	sustitutos, err := s.sustitutos.ListActivos(ctx)
	if err != nil {
		return nil, err
	}

	chain, err := engine.ResolveChain(scope, fecha, niveles, jerarquias, sustitutos)
	if err != nil {
		s.logger.Warn("Approval chain resolution failed",
			"area", scope.CodigoArea,
			"niveles", niveles,
			"error", err.Error())
		return nil, err
	}

	return chain, nil
}
