package models

import "time"

// Solicitud is a leave or permission request. Rows are never physically
// deleted; estado transitions are owned by the request state machine and the
// anulación side channel.
type Solicitud struct {
	ID                  int64           `json:"id_solicitud"`
	TipoSolicitud       TipoSolicitud   `json:"tipo_solicitud"`
	CodigoPermiso       *string         `json:"codigo_permiso"`
	CodigoTrabajador    string          `json:"codigo_trabajador"`
	FechaInicio         time.Time       `json:"fecha_inicio"`
	FechaFin            time.Time       `json:"fecha_fin"`
	DiasSolicitados     float64         `json:"dias_solicitados"`
	Observacion         *string         `json:"observacion"`
	Motivo              *string         `json:"motivo"`
	Estado              EstadoSolicitud `json:"estado"`
	FechaRegistro       time.Time       `json:"fecha_registro"`
	UsuarioRegistro     *string         `json:"usuario_registro"`
	FechaModificacion   *time.Time      `json:"fecha_modificacion"`
	UsuarioModificacion *string         `json:"usuario_modificacion"`
	FechaAnulacion      *time.Time      `json:"fecha_anulacion"`
	UsuarioAnulacion    *string         `json:"usuario_anulacion"`
	MotivoAnulacion     *string         `json:"motivo_anulacion"`
}

// SolicitudDetalle is a Solicitud enriched with catalog names and its
// approval chain, as served by the detail endpoint.
type SolicitudDetalle struct {
	Solicitud
	TrabajadorNombre  string        `json:"trabajador_nombre,omitempty"`
	TrabajadorArea    string        `json:"trabajador_area,omitempty"`
	TrabajadorSeccion string        `json:"trabajador_seccion,omitempty"`
	TrabajadorCargo   string        `json:"trabajador_cargo,omitempty"`
	Aprobaciones      []*Aprobacion `json:"aprobaciones,omitempty"`
}

// SolicitudFilters narrows list queries.
type SolicitudFilters struct {
	CodigoTrabajador string
	Estado           EstadoSolicitud
	TipoSolicitud    TipoSolicitud
	FechaDesde       *time.Time
	FechaHasta       *time.Time
	Page             int
	Limit            int
}

// OrgScope is the requester's organizational position, used by the rule
// matcher and the chain resolver.
type OrgScope struct {
	CodigoArea    string `json:"codigo_area"`
	CodigoSeccion string `json:"codigo_seccion"`
	CodigoCargo   string `json:"codigo_cargo"`
}
