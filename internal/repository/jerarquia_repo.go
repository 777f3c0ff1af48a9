package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dquispe/vacaciones-engine/internal/models"
	"go.uber.org/zap"
)

// JerarquiaRepository handles approver assignment persistence
type JerarquiaRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewJerarquiaRepository creates a new jerarquia repository
func NewJerarquiaRepository(db *sql.DB, logger *zap.Logger) *JerarquiaRepository {
	return &JerarquiaRepository{db: db, logger: logger}
}

const jerarquiaColumns = `
	id_jerarquia, codigo_area, codigo_seccion, codigo_cargo,
	codigo_trabajador_aprobador, tipo_relacion, nivel_jerarquico, activo,
	fecha_desde, fecha_hasta, descripcion, usuario_registro, fecha_registro`

// Create inserts a new approver assignment
func (r *JerarquiaRepository) Create(ctx context.Context, j *models.Jerarquia) error {
	query := `
		INSERT INTO jerarquia (
			codigo_area, codigo_seccion, codigo_cargo,
			codigo_trabajador_aprobador, tipo_relacion, nivel_jerarquico,
			activo, fecha_desde, fecha_hasta, descripcion, usuario_registro
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		j.CodigoArea, j.CodigoSeccion, j.CodigoCargo,
		j.CodigoTrabajadorAprobador, j.TipoRelacion, j.NivelJerarquico,
		j.Activo, j.FechaDesde, j.FechaHasta, j.Descripcion, j.UsuarioRegistro,
	)
	if err != nil {
		r.logger.Error("Failed to create jerarquia", zap.Error(err))
		return fmt.Errorf("failed to create jerarquia: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	j.ID = id
	return nil
}

// GetByID retrieves an assignment by primary key, or nil when absent.
func (r *JerarquiaRepository) GetByID(ctx context.Context, id int64) (*models.Jerarquia, error) {
	query := `SELECT` + jerarquiaColumns + ` FROM jerarquia WHERE id_jerarquia = ?`

	j, err := scanJerarquia(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get jerarquia", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get jerarquia: %w", err)
	}
	return j, nil
}

// Update rewrites the mutable fields of an assignment
func (r *JerarquiaRepository) Update(ctx context.Context, j *models.Jerarquia) error {
	query := `
		UPDATE jerarquia SET
			codigo_area = ?, codigo_seccion = ?, codigo_cargo = ?,
			codigo_trabajador_aprobador = ?, tipo_relacion = ?,
			nivel_jerarquico = ?, activo = ?, fecha_desde = ?, fecha_hasta = ?,
			descripcion = ?
		WHERE id_jerarquia = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		j.CodigoArea, j.CodigoSeccion, j.CodigoCargo,
		j.CodigoTrabajadorAprobador, j.TipoRelacion, j.NivelJerarquico,
		j.Activo, j.FechaDesde, j.FechaHasta, j.Descripcion, j.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update jerarquia", zap.Int64("id", j.ID), zap.Error(err))
		return fmt.Errorf("failed to update jerarquia: %w", err)
	}
	return nil
}

// Deactivate soft-deletes an assignment
func (r *JerarquiaRepository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE jerarquia SET activo = ? WHERE id_jerarquia = ?`, models.ActivoNo, id)
	if err != nil {
		r.logger.Error("Failed to deactivate jerarquia", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to deactivate jerarquia: %w", err)
	}
	return nil
}

// List retrieves assignments with pagination, by level then id.
func (r *JerarquiaRepository) List(ctx context.Context, limit, offset int) ([]*models.Jerarquia, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jerarquia`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count jerarquia: %w", err)
	}

	query := `SELECT` + jerarquiaColumns + ` FROM jerarquia ORDER BY nivel_jerarquico, id_jerarquia LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list jerarquia", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list jerarquia: %w", err)
	}
	defer rows.Close()

	var entries []*models.Jerarquia
	for rows.Next() {
		j, err := scanJerarquia(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan jerarquia: %w", err)
		}
		entries = append(entries, j)
	}
	return entries, total, rows.Err()
}

// ListActivas returns all active assignments. The chain resolver evaluates
// scope predicates and validity windows itself.
func (r *JerarquiaRepository) ListActivas(ctx context.Context) ([]*models.Jerarquia, error) {
	query := `SELECT` + jerarquiaColumns + ` FROM jerarquia WHERE activo = ?`
	rows, err := r.db.QueryContext(ctx, query, models.ActivoSi)
	if err != nil {
		r.logger.Error("Failed to list active jerarquia", zap.Error(err))
		return nil, fmt.Errorf("failed to list active jerarquia: %w", err)
	}
	defer rows.Close()

	var entries []*models.Jerarquia
	for rows.Next() {
		j, err := scanJerarquia(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan jerarquia: %w", err)
		}
		entries = append(entries, j)
	}
	return entries, rows.Err()
}

func scanJerarquia(row rowScanner) (*models.Jerarquia, error) {
	var j models.Jerarquia
	var codigoArea, codigoSeccion, codigoCargo, descripcion, usuarioRegistro sql.NullString
	var fechaHasta sql.NullTime

	err := row.Scan(
		&j.ID, &codigoArea, &codigoSeccion, &codigoCargo,
		&j.CodigoTrabajadorAprobador, &j.TipoRelacion, &j.NivelJerarquico,
		&j.Activo, &j.FechaDesde, &fechaHasta, &descripcion, &usuarioRegistro,
		&j.FechaRegistro,
	)
	if err != nil {
		return nil, err
	}

	j.CodigoArea = nullStr(codigoArea)
	j.CodigoSeccion = nullStr(codigoSeccion)
	j.CodigoCargo = nullStr(codigoCargo)
	j.Descripcion = nullStr(descripcion)
	j.UsuarioRegistro = nullStr(usuarioRegistro)
	j.FechaHasta = nullTime(fechaHasta)
	return &j, nil
}
