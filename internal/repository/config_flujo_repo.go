package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dquispe/vacaciones-engine/internal/models"
	"go.uber.org/zap"
)

// ConfigFlujoRepository handles flow configuration rule persistence
type ConfigFlujoRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewConfigFlujoRepository creates a new config flujo repository
func NewConfigFlujoRepository(db *sql.DB, logger *zap.Logger) *ConfigFlujoRepository {
	return &ConfigFlujoRepository{db: db, logger: logger}
}

const configFlujoColumns = `
	id_config, tipo_solicitud, codigo_permiso, codigo_area, codigo_seccion,
	codigo_cargo, dias_desde, dias_hasta, niveles_requeridos, orden, activo,
	fecha_desde, fecha_hasta, descripcion, usuario_registro, fecha_registro`

// Create inserts a new flow configuration rule
func (r *ConfigFlujoRepository) Create(ctx context.Context, c *models.ConfigFlujo) error {
	query := `
		INSERT INTO config_flujo (
			tipo_solicitud, codigo_permiso, codigo_area, codigo_seccion,
			codigo_cargo, dias_desde, dias_hasta, niveles_requeridos, orden,
			activo, fecha_desde, fecha_hasta, descripcion, usuario_registro
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		c.TipoSolicitud, c.CodigoPermiso, c.CodigoArea, c.CodigoSeccion,
		c.CodigoCargo, c.DiasDesde, c.DiasHasta, c.NivelesRequeridos, c.Orden,
		c.Activo, c.FechaDesde, c.FechaHasta, c.Descripcion, c.UsuarioRegistro,
	)
	if err != nil {
		r.logger.Error("Failed to create config flujo", zap.Error(err))
		return fmt.Errorf("failed to create config flujo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	c.ID = id
	return nil
}

// GetByID retrieves a rule by primary key, or nil when absent.
func (r *ConfigFlujoRepository) GetByID(ctx context.Context, id int64) (*models.ConfigFlujo, error) {
	query := `SELECT` + configFlujoColumns + ` FROM config_flujo WHERE id_config = ?`

	c, err := scanConfigFlujo(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get config flujo", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get config flujo: %w", err)
	}
	return c, nil
}

// Update rewrites the mutable fields of a rule
func (r *ConfigFlujoRepository) Update(ctx context.Context, c *models.ConfigFlujo) error {
	query := `
		UPDATE config_flujo SET
			tipo_solicitud = ?, codigo_permiso = ?, codigo_area = ?,
			codigo_seccion = ?, codigo_cargo = ?, dias_desde = ?, dias_hasta = ?,
			niveles_requeridos = ?, orden = ?, activo = ?, fecha_desde = ?,
			fecha_hasta = ?, descripcion = ?
		WHERE id_config = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		c.TipoSolicitud, c.CodigoPermiso, c.CodigoArea, c.CodigoSeccion,
		c.CodigoCargo, c.DiasDesde, c.DiasHasta, c.NivelesRequeridos, c.Orden,
		c.Activo, c.FechaDesde, c.FechaHasta, c.Descripcion, c.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update config flujo", zap.Int64("id", c.ID), zap.Error(err))
		return fmt.Errorf("failed to update config flujo: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a rule. Rules referenced by past solicitudes are
// never removed.
func (r *ConfigFlujoRepository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE config_flujo SET activo = ? WHERE id_config = ?`, models.ActivoNo, id)
	if err != nil {
		r.logger.Error("Failed to deactivate config flujo", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to deactivate config flujo: %w", err)
	}
	return nil
}

// List retrieves rules with pagination, newest first.
func (r *ConfigFlujoRepository) List(ctx context.Context, limit, offset int) ([]*models.ConfigFlujo, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM config_flujo`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count config flujo: %w", err)
	}

	query := `SELECT` + configFlujoColumns + ` FROM config_flujo ORDER BY id_config DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list config flujo", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list config flujo: %w", err)
	}
	defer rows.Close()

	var configs []*models.ConfigFlujo
	for rows.Next() {
		c, err := scanConfigFlujo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan config flujo: %w", err)
		}
		configs = append(configs, c)
	}
	return configs, total, rows.Err()
}

// ListActivas returns all active rules for a request type. Validity windows
// and predicates are evaluated by the matcher, which receives the evaluation
// date explicitly.
func (r *ConfigFlujoRepository) ListActivas(ctx context.Context, tipo models.TipoSolicitud) ([]*models.ConfigFlujo, error) {
	query := `SELECT` + configFlujoColumns + ` FROM config_flujo WHERE activo = ? AND tipo_solicitud = ?`
	rows, err := r.db.QueryContext(ctx, query, models.ActivoSi, tipo)
	if err != nil {
		r.logger.Error("Failed to list active config flujo", zap.Error(err))
		return nil, fmt.Errorf("failed to list active config flujo: %w", err)
	}
	defer rows.Close()

	var configs []*models.ConfigFlujo
	for rows.Next() {
		c, err := scanConfigFlujo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan config flujo: %w", err)
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConfigFlujo(row rowScanner) (*models.ConfigFlujo, error) {
	var c models.ConfigFlujo
	var codigoPermiso, codigoArea, codigoSeccion, codigoCargo, descripcion, usuarioRegistro sql.NullString
	var diasDesde, diasHasta sql.NullFloat64
	var fechaHasta sql.NullTime

	err := row.Scan(
		&c.ID, &c.TipoSolicitud, &codigoPermiso, &codigoArea, &codigoSeccion,
		&codigoCargo, &diasDesde, &diasHasta, &c.NivelesRequeridos, &c.Orden,
		&c.Activo, &c.FechaDesde, &fechaHasta, &descripcion, &usuarioRegistro,
		&c.FechaRegistro,
	)
	if err != nil {
		return nil, err
	}

	c.CodigoPermiso = nullStr(codigoPermiso)
	c.CodigoArea = nullStr(codigoArea)
	c.CodigoSeccion = nullStr(codigoSeccion)
	c.CodigoCargo = nullStr(codigoCargo)
	c.Descripcion = nullStr(descripcion)
	c.UsuarioRegistro = nullStr(usuarioRegistro)
	c.DiasDesde = nullF64(diasDesde)
	c.DiasHasta = nullF64(diasHasta)
	c.FechaHasta = nullTime(fechaHasta)
	return &c, nil
}
