package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dquispe/vacaciones-engine/internal/models"
)

// EstadisticasStore aggregates request counts for the dashboard.
type EstadisticasStore interface {
	Estadisticas(ctx context.Context) (*models.Estadisticas, error)
}

// ReportService produces the dashboard aggregates and the xlsx export of
// solicitudes.
type ReportService struct {
	solicitudes SolicitudStore
	stats       EstadisticasStore
	logger      Logger
}

// NewReportService creates a new ReportService
func NewReportService(solicitudes SolicitudStore, stats EstadisticasStore, logger Logger) *ReportService {
	return &ReportService{solicitudes: solicitudes, stats: stats, logger: logger}
}

// Estadisticas returns the aggregated dashboard counters.
func (s *ReportService) Estadisticas(ctx context.Context) (*models.Estadisticas, error) {
	return s.stats.Estadisticas(ctx)
}

var exportHeaders = []string{
	"ID", "Tipo", "Código Permiso", "Trabajador", "Fecha Inicio", "Fecha Fin",
	"Días", "Estado", "Fecha Registro", "Motivo Anulación",
}

// ExportSolicitudes renders the filtered solicitudes as an xlsx workbook.
// The filter's pagination is ignored; the export covers every matching row.
func (s *ReportService) ExportSolicitudes(ctx context.Context, f models.SolicitudFilters) (*bytes.Buffer, error) {
	f.Page = 1
	f.Limit = 100

	var all []*models.Solicitud
	for {
		page, total, err := s.solicitudes.List(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(all) >= total || len(page) == 0 {
			break
		}
		f.Page++
	}

	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Solicitudes"
	index, err := file.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := file.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	endHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := file.SetCellStyle(sheet, "A1", endHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	const dateLayout = "2006-01-02"
	for i, sol := range all {
		row := i + 2
		values := []interface{}{
			sol.ID,
			tipoLabel(sol.TipoSolicitud),
			deref(sol.CodigoPermiso),
			sol.CodigoTrabajador,
			sol.FechaInicio.Format(dateLayout),
			sol.FechaFin.Format(dateLayout),
			sol.DiasSolicitados,
			estadoLabel(sol.Estado),
			sol.FechaRegistro.Format("2006-01-02 15:04"),
			deref(sol.MotivoAnulacion),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	if err := file.SetColWidth(sheet, "A", "J", 16); err != nil {
		return nil, fmt.Errorf("failed to set column widths: %w", err)
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("Solicitudes exported", "rows", len(all))
	return buf, nil
}

func tipoLabel(t models.TipoSolicitud) string {
	switch t {
	case models.TipoVacaciones:
		return "Vacaciones"
	case models.TipoPermiso:
		return "Permiso"
	}
	return string(t)
}

func estadoLabel(e models.EstadoSolicitud) string {
	switch e {
	case models.SolicitudPendiente:
		return "Pendiente"
	case models.SolicitudAprobada:
		return "Aprobada"
	case models.SolicitudRechazada:
		return "Rechazada"
	case models.SolicitudAnulada:
		return "Anulada"
	}
	return string(e)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
