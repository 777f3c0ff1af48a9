package models

import "time"

// Jerarquia assigns an approver to an organizational scope at a given
// hierarchical level. Nil scope fields are wildcards.
type Jerarquia struct {
	ID                        int64        `json:"id_jerarquia"`
	CodigoArea                *string      `json:"codigo_area"`
	CodigoSeccion             *string      `json:"codigo_seccion"`
	CodigoCargo               *string      `json:"codigo_cargo"`
	CodigoTrabajadorAprobador string       `json:"codigo_trabajador_aprobador"`
	TipoRelacion              TipoRelacion `json:"tipo_relacion"`
	NivelJerarquico           int          `json:"nivel_jerarquico"`
	Activo                    string       `json:"activo"`
	FechaDesde                time.Time    `json:"fecha_desde"`
	FechaHasta                *time.Time   `json:"fecha_hasta"`
	Descripcion               *string      `json:"descripcion"`
	UsuarioRegistro           *string      `json:"usuario_registro"`
	FechaRegistro             time.Time    `json:"fecha_registro"`
	AprobadorNombre           string       `json:"aprobador_nombre,omitempty"`
}

// VigenteEn reports whether the entry is active and valid at the given date.
// Windows are inclusive calendar dates on both ends.
func (j *Jerarquia) VigenteEn(fecha time.Time) bool {
	if j.Activo != ActivoSi {
		return false
	}
	fecha = dateOnly(fecha)
	if fecha.Before(dateOnly(j.FechaDesde)) {
		return false
	}
	if j.FechaHasta != nil && fecha.After(dateOnly(*j.FechaHasta)) {
		return false
	}
	return true
}
