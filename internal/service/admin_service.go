package service

import (
	"context"
	"fmt"

	"github.com/dquispe/vacaciones-engine/internal/models"
	"github.com/dquispe/vacaciones-engine/pkg/utils"
)

// ConfigFlujoAdmin is the full config repository surface used by the admin
// service.
type ConfigFlujoAdmin interface {
	Create(ctx context.Context, c *models.ConfigFlujo) error
	GetByID(ctx context.Context, id int64) (*models.ConfigFlujo, error)
	Update(ctx context.Context, c *models.ConfigFlujo) error
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*models.ConfigFlujo, int, error)
}

// JerarquiaAdmin is the full hierarchy repository surface used by the admin
// service.
type JerarquiaAdmin interface {
	Create(ctx context.Context, j *models.Jerarquia) error
	GetByID(ctx context.Context, id int64) (*models.Jerarquia, error)
	Update(ctx context.Context, j *models.Jerarquia) error
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*models.Jerarquia, int, error)
}

// SustitutoAdmin is the full substitution repository surface used by the
// admin service.
type SustitutoAdmin interface {
	Create(ctx context.Context, s *models.Sustituto) error
	GetByID(ctx context.Context, id int64) (*models.Sustituto, error)
	Update(ctx context.Context, s *models.Sustituto) error
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*models.Sustituto, int, error)
	ListActivosPorTitular(ctx context.Context, titular string) ([]*models.Sustituto, error)
}

// AdminService maintains the three configuration tables the routing engine
// reads: flow rules, hierarchy entries, and substitutions. All writes are
// validated here so the engine can trust its inputs.
type AdminService struct {
	configs    ConfigFlujoAdmin
	jerarquias JerarquiaAdmin
	sustitutos SustitutoAdmin
	logger     Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(configs ConfigFlujoAdmin, jerarquias JerarquiaAdmin, sustitutos SustitutoAdmin, logger Logger) *AdminService {
	return &AdminService{
		configs:    configs,
		jerarquias: jerarquias,
		sustitutos: sustitutos,
		logger:     logger,
	}
}

// CreateConfigFlujo validates and persists a new routing rule.
func (s *AdminService) CreateConfigFlujo(ctx context.Context, c *models.ConfigFlujo) error {
	if err := validateConfigFlujo(c); err != nil {
		return err
	}
	if c.Activo == "" {
		c.Activo = models.ActivoSi
	}
	if err := s.configs.Create(ctx, c); err != nil {
		return err
	}
	s.logger.Info("Config flujo created", "id_config", c.ID, "tipo", string(c.TipoSolicitud))
	return nil
}

// GetConfigFlujo retrieves one rule.
func (s *AdminService) GetConfigFlujo(ctx context.Context, id int64) (*models.ConfigFlujo, error) {
	c, err := s.configs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("config flujo %d: %w", id, ErrNotFound)
	}
	return c, nil
}

// UpdateConfigFlujo validates and rewrites an existing rule.
func (s *AdminService) UpdateConfigFlujo(ctx context.Context, c *models.ConfigFlujo) error {
	if _, err := s.GetConfigFlujo(ctx, c.ID); err != nil {
		return err
	}
	if err := validateConfigFlujo(c); err != nil {
		return err
	}
	return s.configs.Update(ctx, c)
}

// DeactivateConfigFlujo soft-deletes a rule. Past solicitudes keep their
// already-resolved chains.
func (s *AdminService) DeactivateConfigFlujo(ctx context.Context, id int64) error {
	if _, err := s.GetConfigFlujo(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Config flujo deactivated", "id_config", id)
	return s.configs.Deactivate(ctx, id)
}

// ListConfigFlujo lists rules with pagination.
func (s *AdminService) ListConfigFlujo(ctx context.Context, page, limit int) ([]*models.ConfigFlujo, int, error) {
	limit, offset := paginate(page, limit)
	return s.configs.List(ctx, limit, offset)
}

// CreateJerarquia validates and persists a new hierarchy entry.
func (s *AdminService) CreateJerarquia(ctx context.Context, j *models.Jerarquia) error {
	if err := validateJerarquia(j); err != nil {
		return err
	}
	if j.Activo == "" {
		j.Activo = models.ActivoSi
	}
	if err := s.jerarquias.Create(ctx, j); err != nil {
		return err
	}
	s.logger.Info("Jerarquia created",
		"id_jerarquia", j.ID,
		"aprobador", j.CodigoTrabajadorAprobador,
		"nivel", j.NivelJerarquico)
	return nil
}

// GetJerarquia retrieves one hierarchy entry.
func (s *AdminService) GetJerarquia(ctx context.Context, id int64) (*models.Jerarquia, error) {
	j, err := s.jerarquias.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, fmt.Errorf("jerarquia %d: %w", id, ErrNotFound)
	}
	return j, nil
}

// UpdateJerarquia validates and rewrites a hierarchy entry.
func (s *AdminService) UpdateJerarquia(ctx context.Context, j *models.Jerarquia) error {
	if _, err := s.GetJerarquia(ctx, j.ID); err != nil {
		return err
	}
	if err := validateJerarquia(j); err != nil {
		return err
	}
	return s.jerarquias.Update(ctx, j)
}

// DeactivateJerarquia soft-deletes a hierarchy entry.
func (s *AdminService) DeactivateJerarquia(ctx context.Context, id int64) error {
	if _, err := s.GetJerarquia(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Jerarquia deactivated", "id_jerarquia", id)
	return s.jerarquias.Deactivate(ctx, id)
}

// ListJerarquia lists hierarchy entries with pagination.
func (s *AdminService) ListJerarquia(ctx context.Context, page, limit int) ([]*models.Jerarquia, int, error) {
	limit, offset := paginate(page, limit)
	return s.jerarquias.List(ctx, limit, offset)
}

// CreateSustituto validates and persists a new substitution. Overlapping
// active windows for the same titular are rejected so chain resolution stays
// unambiguous.
func (s *AdminService) CreateSustituto(ctx context.Context, sub *models.Sustituto) error {
	if err := validateSustituto(sub); err != nil {
		return err
	}
	if sub.Activo == "" {
		sub.Activo = models.ActivoSi
	}
	if err := s.checkSustitutoOverlap(ctx, sub); err != nil {
		return err
	}
	if err := s.sustitutos.Create(ctx, sub); err != nil {
		return err
	}
	s.logger.Info("Sustituto created",
		"id_sustituto", sub.ID,
		"titular", sub.CodigoTrabajadorTitular,
		"sustituto", sub.CodigoTrabajadorSustituto)
	return nil
}

// GetSustituto retrieves one substitution.
func (s *AdminService) GetSustituto(ctx context.Context, id int64) (*models.Sustituto, error) {
	sub, err := s.sustitutos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("sustituto %d: %w", id, ErrNotFound)
	}
	return sub, nil
}

// UpdateSustituto validates and rewrites a substitution.
func (s *AdminService) UpdateSustituto(ctx context.Context, sub *models.Sustituto) error {
	if _, err := s.GetSustituto(ctx, sub.ID); err != nil {
		return err
	}
	if err := validateSustituto(sub); err != nil {
		return err
	}
	if sub.Activo == models.ActivoSi {
		if err := s.checkSustitutoOverlap(ctx, sub); err != nil {
			return err
		}
	}
	return s.sustitutos.Update(ctx, sub)
}

// DeactivateSustituto soft-deletes a substitution.
func (s *AdminService) DeactivateSustituto(ctx context.Context, id int64) error {
	if _, err := s.GetSustituto(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Sustituto deactivated", "id_sustituto", id)
	return s.sustitutos.Deactivate(ctx, id)
}

// ListSustituto lists substitutions with pagination.
func (s *AdminService) ListSustituto(ctx context.Context, page, limit int) ([]*models.Sustituto, int, error) {
	limit, offset := paginate(page, limit)
	return s.sustitutos.List(ctx, limit, offset)
}

func (s *AdminService) checkSustitutoOverlap(ctx context.Context, sub *models.Sustituto) error {
	existing, err := s.sustitutos.ListActivosPorTitular(ctx, sub.CodigoTrabajadorTitular)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == sub.ID {
			continue
		}
		if sub.Solapa(other) {
			return invalidInput("fecha_desde",
				fmt.Sprintf("overlaps active substitution %d for the same titular", other.ID))
		}
	}
	return nil
}

func validateConfigFlujo(c *models.ConfigFlujo) error {
	if !c.TipoSolicitud.IsValid() {
		return invalidInput("tipo_solicitud", "must be 'V' or 'P'")
	}
	if c.TipoSolicitud == models.TipoVacaciones && c.CodigoPermiso != nil {
		return invalidInput("codigo_permiso", "only applies to permiso rules")
	}
	if c.NivelesRequeridos < 1 {
		return invalidInput("niveles_requeridos", "must be at least 1")
	}
	if c.DiasDesde != nil && *c.DiasDesde < 0 {
		return invalidInput("dias_desde", "must not be negative")
	}
	if c.DiasDesde != nil && c.DiasHasta != nil && *c.DiasHasta < *c.DiasDesde {
		return invalidInput("dias_hasta", "must not precede dias_desde")
	}
	if c.FechaDesde.IsZero() {
		return invalidInput("fecha_desde", "is required")
	}
	if c.FechaHasta != nil && c.FechaHasta.Before(c.FechaDesde) {
		return invalidInput("fecha_hasta", "must not precede fecha_desde")
	}
	for field, value := range map[string]*string{
		"codigo_permiso": c.CodigoPermiso,
		"codigo_area":    c.CodigoArea,
		"codigo_seccion": c.CodigoSeccion,
		"codigo_cargo":   c.CodigoCargo,
	} {
		if value != nil {
			if err := utils.ValidateCodigo(field, *value); err != nil {
				return invalidInput(field, err.Error())
			}
		}
	}
	return nil
}

func validateJerarquia(j *models.Jerarquia) error {
	if err := utils.ValidateCodigo("codigo_trabajador_aprobador", j.CodigoTrabajadorAprobador); err != nil {
		return invalidInput("codigo_trabajador_aprobador", err.Error())
	}
	if !j.TipoRelacion.IsValid() {
		return invalidInput("tipo_relacion", "must be 'J', 'G' or 'D'")
	}
	if j.NivelJerarquico < 1 {
		return invalidInput("nivel_jerarquico", "must be at least 1")
	}
	if j.FechaDesde.IsZero() {
		return invalidInput("fecha_desde", "is required")
	}
	if j.FechaHasta != nil && j.FechaHasta.Before(j.FechaDesde) {
		return invalidInput("fecha_hasta", "must not precede fecha_desde")
	}
	return nil
}

func validateSustituto(s *models.Sustituto) error {
	if err := utils.ValidateCodigo("codigo_trabajador_titular", s.CodigoTrabajadorTitular); err != nil {
		return invalidInput("codigo_trabajador_titular", err.Error())
	}
	if err := utils.ValidateCodigo("codigo_trabajador_sustituto", s.CodigoTrabajadorSustituto); err != nil {
		return invalidInput("codigo_trabajador_sustituto", err.Error())
	}
	if s.CodigoTrabajadorTitular == s.CodigoTrabajadorSustituto {
		return invalidInput("codigo_trabajador_sustituto", "must differ from the titular")
	}
	if s.FechaDesde.IsZero() || s.FechaHasta.IsZero() {
		return invalidInput("fecha_desde", "date range is required")
	}
	if s.FechaHasta.Before(s.FechaDesde) {
		return invalidInput("fecha_hasta", "must not precede fecha_desde")
	}
	return nil
}

func paginate(page, limit int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}
	return limit, offset
}
