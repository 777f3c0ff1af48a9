package models

import "time"

// ConfigFlujo is a routing rule: requests matching its predicates require
// NivelesRequeridos sequential approval levels. Nil predicate fields are
// wildcards ("any"). Rules are soft-deactivated, never hard-deleted once
// referenced by a solicitud.
type ConfigFlujo struct {
	ID                int64         `json:"id_config"`
	TipoSolicitud     TipoSolicitud `json:"tipo_solicitud"`
	CodigoPermiso     *string       `json:"codigo_permiso"`
	CodigoArea        *string       `json:"codigo_area"`
	CodigoSeccion     *string       `json:"codigo_seccion"`
	CodigoCargo       *string       `json:"codigo_cargo"`
	DiasDesde         *float64      `json:"dias_desde"`
	DiasHasta         *float64      `json:"dias_hasta"`
	NivelesRequeridos int           `json:"niveles_requeridos"`
	Orden             int           `json:"orden"`
	Activo            string        `json:"activo"`
	FechaDesde        time.Time     `json:"fecha_desde"`
	FechaHasta        *time.Time    `json:"fecha_hasta"`
	Descripcion       *string       `json:"descripcion"`
	UsuarioRegistro   *string       `json:"usuario_registro"`
	FechaRegistro     time.Time     `json:"fecha_registro"`
}

// VigenteEn reports whether the rule is active and its validity window covers
// the given date. Windows are inclusive calendar dates on both ends; a nil
// FechaHasta means open-ended.
func (c *ConfigFlujo) VigenteEn(fecha time.Time) bool {
	if c.Activo != ActivoSi {
		return false
	}
	fecha = dateOnly(fecha)
	if fecha.Before(dateOnly(c.FechaDesde)) {
		return false
	}
	if c.FechaHasta != nil && fecha.After(dateOnly(*c.FechaHasta)) {
		return false
	}
	return true
}

// dateOnly truncates a timestamp to its calendar date in UTC. Rule and
// substitution windows are calendar dates; audit fields keep full timestamps.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
