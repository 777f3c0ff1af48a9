package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dquispe/vacaciones-engine/internal/models"
	"go.uber.org/zap"
)

// SolicitudRepository handles leave request persistence. Estado mutations go
// through the state machine service; rows are never deleted.
type SolicitudRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSolicitudRepository creates a new solicitud repository
func NewSolicitudRepository(db *sql.DB, logger *zap.Logger) *SolicitudRepository {
	return &SolicitudRepository{db: db, logger: logger}
}

const solicitudColumns = `
	id_solicitud, tipo_solicitud, codigo_permiso, codigo_trabajador,
	fecha_inicio, fecha_fin, dias_solicitados, observacion, motivo, estado,
	fecha_registro, usuario_registro, fecha_modificacion, usuario_modificacion,
	fecha_anulacion, usuario_anulacion, motivo_anulacion`

// Create inserts a new solicitud inside the submission transaction.
func (r *SolicitudRepository) Create(ctx context.Context, tx *sql.Tx, s *models.Solicitud) error {
	query := `
		INSERT INTO solicitud (
			tipo_solicitud, codigo_permiso, codigo_trabajador, fecha_inicio,
			fecha_fin, dias_solicitados, observacion, motivo, estado,
			usuario_registro
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		s.TipoSolicitud, s.CodigoPermiso, s.CodigoTrabajador, s.FechaInicio,
		s.FechaFin, s.DiasSolicitados, s.Observacion, s.Motivo, s.Estado,
		s.UsuarioRegistro,
	)
	if err != nil {
		r.logger.Error("Failed to create solicitud", zap.Error(err))
		return fmt.Errorf("failed to create solicitud: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	s.ID = id
	return nil
}

// GetByID retrieves a solicitud, or nil when absent.
func (r *SolicitudRepository) GetByID(ctx context.Context, id int64) (*models.Solicitud, error) {
	query := `SELECT` + solicitudColumns + ` FROM solicitud WHERE id_solicitud = ?`

	s, err := scanSolicitud(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get solicitud", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get solicitud: %w", err)
	}
	return s, nil
}

// GetByIDTx re-reads a solicitud inside a decision transaction, so the state
// check and the update see the same row version.
func (r *SolicitudRepository) GetByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Solicitud, error) {
	query := `SELECT` + solicitudColumns + ` FROM solicitud WHERE id_solicitud = ?`

	s, err := scanSolicitud(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get solicitud: %w", err)
	}
	return s, nil
}

// UpdateEstado moves a solicitud to a new estado, guarded by the expected
// current estado. Returns false when the guard did not hold (the row moved
// under a concurrent transition).
func (r *SolicitudRepository) UpdateEstado(ctx context.Context, tx *sql.Tx, id int64, from, to models.EstadoSolicitud, usuario string) (bool, error) {
	query := `
		UPDATE solicitud
		SET estado = ?, fecha_modificacion = ?, usuario_modificacion = ?
		WHERE id_solicitud = ? AND estado = ?
	`

	result, err := tx.ExecContext(ctx, query, to, time.Now(), usuario, id, from)
	if err != nil {
		r.logger.Error("Failed to update solicitud estado", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to update solicitud estado: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// Anular voids a solicitud from any estado except an already-annulled one.
// Returns false when the row was already Anulada.
func (r *SolicitudRepository) Anular(ctx context.Context, tx *sql.Tx, id int64, motivo, usuario string) (bool, error) {
	query := `
		UPDATE solicitud
		SET estado = ?, fecha_anulacion = ?, usuario_anulacion = ?, motivo_anulacion = ?
		WHERE id_solicitud = ? AND estado != ?
	`

	result, err := tx.ExecContext(ctx, query,
		models.SolicitudAnulada, time.Now(), usuario, motivo, id, models.SolicitudAnulada)
	if err != nil {
		r.logger.Error("Failed to anular solicitud", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to anular solicitud: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// List retrieves solicitudes matching the filters, newest first.
func (r *SolicitudRepository) List(ctx context.Context, f models.SolicitudFilters) ([]*models.Solicitud, int, error) {
	var conds []string
	var args []interface{}

	if f.CodigoTrabajador != "" {
		conds = append(conds, "codigo_trabajador = ?")
		args = append(args, f.CodigoTrabajador)
	}
	if f.Estado != "" {
		conds = append(conds, "estado = ?")
		args = append(args, f.Estado)
	}
	if f.TipoSolicitud != "" {
		conds = append(conds, "tipo_solicitud = ?")
		args = append(args, f.TipoSolicitud)
	}
	if f.FechaDesde != nil {
		conds = append(conds, "fecha_inicio >= ?")
		args = append(args, *f.FechaDesde)
	}
	if f.FechaHasta != nil {
		conds = append(conds, "fecha_fin <= ?")
		args = append(args, *f.FechaHasta)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM solicitud"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count solicitudes: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset := 0
	if f.Page > 1 {
		offset = (f.Page - 1) * limit
	}

	query := `SELECT` + solicitudColumns + ` FROM solicitud` + where +
		` ORDER BY id_solicitud DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		r.logger.Error("Failed to list solicitudes", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list solicitudes: %w", err)
	}
	defer rows.Close()

	var solicitudes []*models.Solicitud
	for rows.Next() {
		s, err := scanSolicitud(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan solicitud: %w", err)
		}
		solicitudes = append(solicitudes, s)
	}
	return solicitudes, total, rows.Err()
}

// Estadisticas aggregates request counts for the dashboard.
func (r *SolicitudRepository) Estadisticas(ctx context.Context) (*models.Estadisticas, error) {
	stats := &models.Estadisticas{}

	query := `
		SELECT
			COUNT(*),
			SUM(CASE WHEN estado = 'P' THEN 1 ELSE 0 END),
			SUM(CASE WHEN estado = 'A' THEN 1 ELSE 0 END),
			SUM(CASE WHEN estado = 'R' THEN 1 ELSE 0 END),
			SUM(CASE WHEN estado = 'N' THEN 1 ELSE 0 END),
			SUM(CASE WHEN tipo_solicitud = 'V' THEN 1 ELSE 0 END),
			SUM(CASE WHEN tipo_solicitud = 'P' THEN 1 ELSE 0 END),
			COALESCE(SUM(dias_solicitados), 0),
			COALESCE(SUM(CASE WHEN estado = 'A' THEN dias_solicitados ELSE 0 END), 0)
		FROM solicitud
	`
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalSolicitudes,
		&stats.SolicitudesPendientes,
		&stats.SolicitudesAprobadas,
		&stats.SolicitudesRechazadas,
		&stats.SolicitudesAnuladas,
		&stats.TotalVacaciones,
		&stats.TotalPermisos,
		&stats.DiasSolicitadosTotal,
		&stats.DiasAprobadosTotal,
	)
	if err != nil {
		r.logger.Error("Failed to aggregate estadisticas", zap.Error(err))
		return nil, fmt.Errorf("failed to aggregate estadisticas: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m', fecha_registro) AS mes, COUNT(*)
		FROM solicitud
		GROUP BY mes
		ORDER BY mes
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate per-month stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.EstadisticasMes
		if err := rows.Scan(&m.Mes, &m.Cantidad); err != nil {
			return nil, fmt.Errorf("failed to scan per-month stats: %w", err)
		}
		stats.SolicitudesPorMes = append(stats.SolicitudesPorMes, m)
	}
	return stats, rows.Err()
}

func scanSolicitud(row rowScanner) (*models.Solicitud, error) {
	var s models.Solicitud
	var codigoPermiso, observacion, motivo, usuarioRegistro, usuarioModificacion, usuarioAnulacion, motivoAnulacion sql.NullString
	var fechaModificacion, fechaAnulacion sql.NullTime

	err := row.Scan(
		&s.ID, &s.TipoSolicitud, &codigoPermiso, &s.CodigoTrabajador,
		&s.FechaInicio, &s.FechaFin, &s.DiasSolicitados, &observacion,
		&motivo, &s.Estado, &s.FechaRegistro, &usuarioRegistro,
		&fechaModificacion, &usuarioModificacion, &fechaAnulacion,
		&usuarioAnulacion, &motivoAnulacion,
	)
	if err != nil {
		return nil, err
	}

	s.CodigoPermiso = nullStr(codigoPermiso)
	s.Observacion = nullStr(observacion)
	s.Motivo = nullStr(motivo)
	s.UsuarioRegistro = nullStr(usuarioRegistro)
	s.UsuarioModificacion = nullStr(usuarioModificacion)
	s.UsuarioAnulacion = nullStr(usuarioAnulacion)
	s.MotivoAnulacion = nullStr(motivoAnulacion)
	s.FechaModificacion = nullTime(fechaModificacion)
	s.FechaAnulacion = nullTime(fechaAnulacion)
	return &s, nil
}
