package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dquispe/vacaciones-engine/internal/models"
	"go.uber.org/zap"
)

// AprobacionRepository handles per-level approval records. All rows for a
// solicitud are created together at submission; each is decided at most once.
type AprobacionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAprobacionRepository creates a new aprobacion repository
func NewAprobacionRepository(db *sql.DB, logger *zap.Logger) *AprobacionRepository {
	return &AprobacionRepository{db: db, logger: logger}
}

const aprobacionColumns = `
	id_aprobacion, id_solicitud, nivel, codigo_trabajador_aprueba, estado,
	observacion, fecha, usuario, ip_dispositivo, fecha_notificado`

// CreateChain inserts the full pre-resolved approval chain inside the
// submission transaction.
func (r *AprobacionRepository) CreateChain(ctx context.Context, tx *sql.Tx, aprobaciones []*models.Aprobacion) error {
	query := `
		INSERT INTO aprobacion (id_solicitud, nivel, codigo_trabajador_aprueba, estado)
		VALUES (?, ?, ?, ?)
	`

	for _, a := range aprobaciones {
		result, err := tx.ExecContext(ctx, query, a.IDSolicitud, a.Nivel, a.CodigoTrabajadorAprueba, a.Estado)
		if err != nil {
			r.logger.Error("Failed to create aprobacion",
				zap.Int64("id_solicitud", a.IDSolicitud),
				zap.Int("nivel", a.Nivel),
				zap.Error(err))
			return fmt.Errorf("failed to create aprobacion for level %d: %w", a.Nivel, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		a.ID = id
	}
	return nil
}

// GetBySolicitud returns the chain ordered by nivel.
func (r *AprobacionRepository) GetBySolicitud(ctx context.Context, idSolicitud int64) ([]*models.Aprobacion, error) {
	query := `SELECT` + aprobacionColumns + ` FROM aprobacion WHERE id_solicitud = ? ORDER BY nivel`
	return r.queryChain(ctx, r.db.QueryContext, query, idSolicitud)
}

// GetBySolicitudTx re-reads the chain inside a decision transaction.
func (r *AprobacionRepository) GetBySolicitudTx(ctx context.Context, tx *sql.Tx, idSolicitud int64) ([]*models.Aprobacion, error) {
	query := `SELECT` + aprobacionColumns + ` FROM aprobacion WHERE id_solicitud = ? ORDER BY nivel`
	return r.queryChain(ctx, tx.QueryContext, query, idSolicitud)
}

type queryFunc func(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)

func (r *AprobacionRepository) queryChain(ctx context.Context, q queryFunc, query string, idSolicitud int64) ([]*models.Aprobacion, error) {
	rows, err := q(ctx, query, idSolicitud)
	if err != nil {
		r.logger.Error("Failed to get aprobaciones", zap.Int64("id_solicitud", idSolicitud), zap.Error(err))
		return nil, fmt.Errorf("failed to get aprobaciones: %w", err)
	}
	defer rows.Close()

	var chain []*models.Aprobacion
	for rows.Next() {
		a, err := scanAprobacion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan aprobacion: %w", err)
		}
		chain = append(chain, a)
	}
	return chain, rows.Err()
}

// Decide records a level decision, guarded on the row still being Pendiente.
// Returns false when the row was already decided (lost race or stale caller).
func (r *AprobacionRepository) Decide(ctx context.Context, tx *sql.Tx, id int64, estado models.EstadoAprobacion, observacion, usuario, ip string) (bool, error) {
	query := `
		UPDATE aprobacion
		SET estado = ?, observacion = ?, fecha = ?, usuario = ?, ip_dispositivo = ?
		WHERE id_aprobacion = ? AND estado = ?
	`

	result, err := tx.ExecContext(ctx, query,
		estado, observacion, time.Now(), usuario, ip, id, models.AprobacionPendiente)
	if err != nil {
		r.logger.Error("Failed to decide aprobacion", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to decide aprobacion: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// MarkNotificado stamps the notification time for a level. Best-effort; a
// failed stamp never fails the surrounding operation.
func (r *AprobacionRepository) MarkNotificado(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE aprobacion SET fecha_notificado = ? WHERE id_aprobacion = ?`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark aprobacion notified: %w", err)
	}
	return nil
}

// ListPendientesPorAprobador returns the pending levels assigned to one
// approver whose solicitud is still Pendiente and whose level is the active
// one (all lower levels already approved).
func (r *AprobacionRepository) ListPendientesPorAprobador(ctx context.Context, aprobador string) ([]*models.Aprobacion, error) {
	query := `SELECT` + aprobacionColumns + `
		FROM aprobacion a
		WHERE a.codigo_trabajador_aprueba = ?
		  AND a.estado = 'P'
		  AND EXISTS (
			SELECT 1 FROM solicitud s
			WHERE s.id_solicitud = a.id_solicitud AND s.estado = 'P'
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM aprobacion prev
			WHERE prev.id_solicitud = a.id_solicitud
			  AND prev.nivel < a.nivel AND prev.estado != 'A'
		  )
		ORDER BY a.id_solicitud`

	rows, err := r.db.QueryContext(ctx, query, aprobador)
	if err != nil {
		r.logger.Error("Failed to list pending aprobaciones", zap.String("aprobador", aprobador), zap.Error(err))
		return nil, fmt.Errorf("failed to list pending aprobaciones: %w", err)
	}
	defer rows.Close()

	var pending []*models.Aprobacion
	for rows.Next() {
		a, err := scanAprobacion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan aprobacion: %w", err)
		}
		pending = append(pending, a)
	}
	return pending, rows.Err()
}

func scanAprobacion(row rowScanner) (*models.Aprobacion, error) {
	var a models.Aprobacion
	var observacion, usuario, ip sql.NullString
	var fecha, fechaNotificado sql.NullTime

	err := row.Scan(
		&a.ID, &a.IDSolicitud, &a.Nivel, &a.CodigoTrabajadorAprueba,
		&a.Estado, &observacion, &fecha, &usuario, &ip, &fechaNotificado,
	)
	if err != nil {
		return nil, err
	}

	a.Observacion = nullStr(observacion)
	a.Usuario = nullStr(usuario)
	a.IPDispositivo = nullStr(ip)
	a.Fecha = nullTime(fecha)
	a.FechaNotificado = nullTime(fechaNotificado)
	return &a, nil
}
