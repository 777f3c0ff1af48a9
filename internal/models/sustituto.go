package models

import "time"

// Sustituto routes a titular approver's pending decisions to a substitute
// while the date range is in effect. Activo is an independent kill-switch
// inside the range.
type Sustituto struct {
	ID                        int64     `json:"id_sustituto"`
	CodigoTrabajadorTitular   string    `json:"codigo_trabajador_titular"`
	CodigoTrabajadorSustituto string    `json:"codigo_trabajador_sustituto"`
	FechaDesde                time.Time `json:"fecha_desde"`
	FechaHasta                time.Time `json:"fecha_hasta"`
	Motivo                    *string   `json:"motivo"`
	Observacion               *string   `json:"observacion"`
	Activo                    string    `json:"activo"`
	UsuarioRegistro           *string   `json:"usuario_registro"`
	FechaRegistro             time.Time `json:"fecha_registro"`
	TitularNombre             string    `json:"titular_nombre,omitempty"`
	SustitutoNombre           string    `json:"sustituto_nombre,omitempty"`
}

// VigenteEn reports whether the substitution covers the given date. The range
// is inclusive on both ends: the substitute decides through the whole last day.
func (s *Sustituto) VigenteEn(fecha time.Time) bool {
	if s.Activo != ActivoSi {
		return false
	}
	fecha = dateOnly(fecha)
	if fecha.Before(dateOnly(s.FechaDesde)) {
		return false
	}
	if fecha.After(dateOnly(s.FechaHasta)) {
		return false
	}
	return true
}

// Solapa reports whether two substitution windows for the same titular
// overlap. Used at write time to keep resolution unambiguous.
func (s *Sustituto) Solapa(other *Sustituto) bool {
	return !dateOnly(s.FechaHasta).Before(dateOnly(other.FechaDesde)) &&
		!dateOnly(other.FechaHasta).Before(dateOnly(s.FechaDesde))
}
