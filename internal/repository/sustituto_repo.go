package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dquispe/vacaciones-engine/internal/models"
	"go.uber.org/zap"
)

// SustitutoRepository handles substitution persistence
type SustitutoRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSustitutoRepository creates a new sustituto repository
func NewSustitutoRepository(db *sql.DB, logger *zap.Logger) *SustitutoRepository {
	return &SustitutoRepository{db: db, logger: logger}
}

const sustitutoColumns = `
	id_sustituto, codigo_trabajador_titular, codigo_trabajador_sustituto,
	fecha_desde, fecha_hasta, motivo, observacion, activo, usuario_registro,
	fecha_registro`

// Create inserts a new substitution
func (r *SustitutoRepository) Create(ctx context.Context, s *models.Sustituto) error {
	query := `
		INSERT INTO sustituto (
			codigo_trabajador_titular, codigo_trabajador_sustituto,
			fecha_desde, fecha_hasta, motivo, observacion, activo,
			usuario_registro
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		s.CodigoTrabajadorTitular, s.CodigoTrabajadorSustituto,
		s.FechaDesde, s.FechaHasta, s.Motivo, s.Observacion, s.Activo,
		s.UsuarioRegistro,
	)
	if err != nil {
		r.logger.Error("Failed to create sustituto", zap.Error(err))
		return fmt.Errorf("failed to create sustituto: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	s.ID = id
	return nil
}

// GetByID retrieves a substitution by primary key, or nil when absent.
func (r *SustitutoRepository) GetByID(ctx context.Context, id int64) (*models.Sustituto, error) {
	query := `SELECT` + sustitutoColumns + ` FROM sustituto WHERE id_sustituto = ?`

	s, err := scanSustituto(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get sustituto", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get sustituto: %w", err)
	}
	return s, nil
}

// Update rewrites the mutable fields of a substitution
func (r *SustitutoRepository) Update(ctx context.Context, s *models.Sustituto) error {
	query := `
		UPDATE sustituto SET
			codigo_trabajador_titular = ?, codigo_trabajador_sustituto = ?,
			fecha_desde = ?, fecha_hasta = ?, motivo = ?, observacion = ?,
			activo = ?
		WHERE id_sustituto = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		s.CodigoTrabajadorTitular, s.CodigoTrabajadorSustituto,
		s.FechaDesde, s.FechaHasta, s.Motivo, s.Observacion, s.Activo, s.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update sustituto", zap.Int64("id", s.ID), zap.Error(err))
		return fmt.Errorf("failed to update sustituto: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a substitution
func (r *SustitutoRepository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sustituto SET activo = ? WHERE id_sustituto = ?`, models.ActivoNo, id)
	if err != nil {
		r.logger.Error("Failed to deactivate sustituto", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to deactivate sustituto: %w", err)
	}
	return nil
}

// List retrieves substitutions with pagination, newest first.
func (r *SustitutoRepository) List(ctx context.Context, limit, offset int) ([]*models.Sustituto, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sustituto`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sustituto: %w", err)
	}

	query := `SELECT` + sustitutoColumns + ` FROM sustituto ORDER BY id_sustituto DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list sustitutos", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list sustitutos: %w", err)
	}
	defer rows.Close()

	var subs []*models.Sustituto
	for rows.Next() {
		s, err := scanSustituto(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan sustituto: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, total, rows.Err()
}

// ListActivos returns all active substitutions. Date coverage is evaluated
// by the chain resolver against the submission date.
func (r *SustitutoRepository) ListActivos(ctx context.Context) ([]*models.Sustituto, error) {
	query := `SELECT` + sustitutoColumns + ` FROM sustituto WHERE activo = ?`
	rows, err := r.db.QueryContext(ctx, query, models.ActivoSi)
	if err != nil {
		r.logger.Error("Failed to list active sustitutos", zap.Error(err))
		return nil, fmt.Errorf("failed to list active sustitutos: %w", err)
	}
	defer rows.Close()

	var subs []*models.Sustituto
	for rows.Next() {
		s, err := scanSustituto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sustituto: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// ListActivosPorTitular returns active substitutions for one titular, used
// for write-time overlap validation.
func (r *SustitutoRepository) ListActivosPorTitular(ctx context.Context, titular string) ([]*models.Sustituto, error) {
	query := `SELECT` + sustitutoColumns + ` FROM sustituto WHERE activo = ? AND codigo_trabajador_titular = ?`
	rows, err := r.db.QueryContext(ctx, query, models.ActivoSi, titular)
	if err != nil {
		r.logger.Error("Failed to list sustitutos for titular", zap.String("titular", titular), zap.Error(err))
		return nil, fmt.Errorf("failed to list sustitutos for titular: %w", err)
	}
	defer rows.Close()

	var subs []*models.Sustituto
	for rows.Next() {
		s, err := scanSustituto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sustituto: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func scanSustituto(row rowScanner) (*models.Sustituto, error) {
	var s models.Sustituto
	var motivo, observacion, usuarioRegistro sql.NullString

	err := row.Scan(
		&s.ID, &s.CodigoTrabajadorTitular, &s.CodigoTrabajadorSustituto,
		&s.FechaDesde, &s.FechaHasta, &motivo, &observacion, &s.Activo,
		&usuarioRegistro, &s.FechaRegistro,
	)
	if err != nil {
		return nil, err
	}

	s.Motivo = nullStr(motivo)
	s.Observacion = nullStr(observacion)
	s.UsuarioRegistro = nullStr(usuarioRegistro)
	return &s, nil
}
