package models

// CatalogItem is a generic code/description pair from the external HR
// catalogs (areas, secciones, cargos).
type CatalogItem struct {
	Codigo      string `json:"codigo"`
	Descripcion string `json:"descripcion"`
}

// Trabajador is a worker catalog entry with its organizational position.
type Trabajador struct {
	Codigo         string  `json:"codigo"`
	NombreCompleto string  `json:"nombre_completo"`
	CodigoArea     *string `json:"codigo_area"`
	CodigoSeccion  *string `json:"codigo_seccion"`
	CodigoCargo    *string `json:"codigo_cargo"`
	NumeroDNI      *string `json:"numero_dni"`
}

// Estadisticas aggregates request counts for the admin dashboard.
type Estadisticas struct {
	TotalSolicitudes      int               `json:"total_solicitudes"`
	SolicitudesPendientes int               `json:"solicitudes_pendientes"`
	SolicitudesAprobadas  int               `json:"solicitudes_aprobadas"`
	SolicitudesRechazadas int               `json:"solicitudes_rechazadas"`
	SolicitudesAnuladas   int               `json:"solicitudes_anuladas"`
	TotalVacaciones       int               `json:"total_vacaciones"`
	TotalPermisos         int               `json:"total_permisos"`
	DiasSolicitadosTotal  float64           `json:"dias_solicitados_totales"`
	DiasAprobadosTotal    float64           `json:"dias_aprobados_totales"`
	SolicitudesPorMes     []EstadisticasMes `json:"solicitudes_por_mes,omitempty"`
}

// EstadisticasMes is one month's request count.
type EstadisticasMes struct {
	Mes      string `json:"mes"`
	Cantidad int    `json:"cantidad"`
}
