package models

// TipoSolicitud identifies the kind of leave request.
type TipoSolicitud string

const (
	TipoVacaciones TipoSolicitud = "V"
	TipoPermiso    TipoSolicitud = "P"
)

// IsValid reports whether the request type is one of the known values.
func (t TipoSolicitud) IsValid() bool {
	return t == TipoVacaciones || t == TipoPermiso
}

// EstadoSolicitud is the lifecycle state of a Solicitud.
type EstadoSolicitud string

const (
	SolicitudPendiente EstadoSolicitud = "P"
	SolicitudAprobada  EstadoSolicitud = "A"
	SolicitudRechazada EstadoSolicitud = "R"
	SolicitudAnulada   EstadoSolicitud = "N"
)

// EstadoAprobacion is the state of a single approval level.
type EstadoAprobacion string

const (
	AprobacionPendiente EstadoAprobacion = "P"
	AprobacionAprobada  EstadoAprobacion = "A"
	AprobacionRechazada EstadoAprobacion = "R"
)

// TipoRelacion describes the relationship of an approver to the requester's
// organizational scope. Display-only; routing keys off nivel_jerarquico.
type TipoRelacion string

const (
	RelacionJefeDirecto TipoRelacion = "J"
	RelacionGerente     TipoRelacion = "G"
	RelacionDirector    TipoRelacion = "D"
)

// IsValid reports whether the relation type is one of the known values.
func (t TipoRelacion) IsValid() bool {
	return t == RelacionJefeDirecto || t == RelacionGerente || t == RelacionDirector
}

// Activo flag values used across configuration tables ('S' = active).
const (
	ActivoSi = "S"
	ActivoNo = "N"
)
