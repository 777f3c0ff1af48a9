package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dquispe/vacaciones-engine/internal/catalog"
	"github.com/dquispe/vacaciones-engine/internal/domain/flow"
	"github.com/dquispe/vacaciones-engine/internal/engine"
	"github.com/dquispe/vacaciones-engine/internal/models"
	"github.com/dquispe/vacaciones-engine/internal/service"
)

const dateLayout = "2006-01-02"

// Handlers contains the request-lifecycle and consulta HTTP handlers.
type Handlers struct {
	solicitudes *service.SolicitudService
	routing     *service.RoutingService
	reports     *service.ReportService
	catalog     *catalog.Client
	logger      Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	solicitudes *service.SolicitudService,
	routing *service.RoutingService,
	reports *service.ReportService,
	catalogClient *catalog.Client,
	logger Logger,
) *Handlers {
	return &Handlers{
		solicitudes: solicitudes,
		routing:     routing,
		reports:     reports,
		catalog:     catalogClient,
		logger:      logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Total   *int        `json:"total,omitempty"`
}

// respondError maps service and engine errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	var ve *service.ValidationError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: ve.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrNoAutorizado):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case errors.Is(err, flow.ErrInvalidTransition):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case engine.IsConfigGap(err):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

// dateQuery reads an optional date filter from the query string. A malformed
// value is a 400, not a silently dropped filter.
func dateQuery(c *gin.Context, name string) (*time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		return nil, true
	}
	d, err := parseDate(v)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: name + " must be YYYY-MM-DD"})
		return nil, false
	}
	return &d, true
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "vacaciones-engine",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// CreateSolicitudRequest is the submission payload. The requester is taken
// from the bearer token, not the body.
type CreateSolicitudRequest struct {
	TipoSolicitud string  `json:"tipo_solicitud" binding:"required"`
	CodigoPermiso string  `json:"codigo_permiso"`
	CodigoArea    string  `json:"codigo_area" binding:"required"`
	CodigoSeccion string  `json:"codigo_seccion"`
	CodigoCargo   string  `json:"codigo_cargo"`
	FechaInicio   string  `json:"fecha_inicio" binding:"required"`
	FechaFin      string  `json:"fecha_fin" binding:"required"`
	Dias          float64 `json:"dias_solicitados" binding:"required"`
	Observacion   string  `json:"observacion"`
	Motivo        string  `json:"motivo"`
}

// SolicitudResponse is a solicitud with its approval chain.
type SolicitudResponse struct {
	Solicitud    *models.Solicitud    `json:"solicitud"`
	Aprobaciones []*models.Aprobacion `json:"aprobaciones,omitempty"`
}

// CreateSolicitud handles POST /api/v1/solicitudes
func (h *Handlers) CreateSolicitud(c *gin.Context) {
	var req CreateSolicitudRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	fechaInicio, err := parseDate(req.FechaInicio)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "fecha_inicio must be YYYY-MM-DD"})
		return
	}
	fechaFin, err := parseDate(req.FechaFin)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "fecha_fin must be YYYY-MM-DD"})
		return
	}

	usuario := actingUser(c)
	solicitud, chain, err := h.solicitudes.Submit(c.Request.Context(), service.SubmitInput{
		TipoSolicitud:    models.TipoSolicitud(req.TipoSolicitud),
		CodigoPermiso:    req.CodigoPermiso,
		CodigoTrabajador: usuario,
		Scope: models.OrgScope{
			CodigoArea:    req.CodigoArea,
			CodigoSeccion: req.CodigoSeccion,
			CodigoCargo:   req.CodigoCargo,
		},
		FechaInicio:     fechaInicio,
		FechaFin:        fechaFin,
		DiasSolicitados: req.Dias,
		Observacion:     req.Observacion,
		Motivo:          req.Motivo,
		Usuario:         usuario,
		Fecha:           time.Now(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    SolicitudResponse{Solicitud: solicitud, Aprobaciones: chain},
	})
}

// GetSolicitud handles GET /api/v1/solicitudes/:id
func (h *Handlers) GetSolicitud(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	detalle, err := h.solicitudes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: detalle})
}

// ListSolicitudes handles GET /api/v1/solicitudes
func (h *Handlers) ListSolicitudes(c *gin.Context) {
	filters := models.SolicitudFilters{
		CodigoTrabajador: c.Query("codigo_trabajador"),
		Estado:           models.EstadoSolicitud(c.Query("estado")),
		TipoSolicitud:    models.TipoSolicitud(c.Query("tipo_solicitud")),
	}
	var ok bool
	if filters.FechaDesde, ok = dateQuery(c, "fecha_desde"); !ok {
		return
	}
	if filters.FechaHasta, ok = dateQuery(c, "fecha_hasta"); !ok {
		return
	}
	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	solicitudes, total, err := h.solicitudes.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: solicitudes, Total: &total})
}

// DecidirRequest is the level decision payload.
type DecidirRequest struct {
	Decision    string `json:"decision" binding:"required"`
	Observacion string `json:"observacion"`
}

// DecidirSolicitud handles POST /api/v1/solicitudes/:id/decidir
func (h *Handlers) DecidirSolicitud(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req DecidirRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	solicitud, err := h.solicitudes.Decide(c.Request.Context(), service.DecideInput{
		IDSolicitud: id,
		Decision:    models.EstadoAprobacion(req.Decision),
		Observacion: req.Observacion,
		Usuario:     actingUser(c),
		IP:          c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: solicitud})
}

// AnularRequest is the annulment payload.
type AnularRequest struct {
	Motivo string `json:"motivo_anulacion" binding:"required"`
}

// AnularSolicitud handles POST /api/v1/solicitudes/:id/anular
func (h *Handlers) AnularSolicitud(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req AnularRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "motivo_anulacion is required"})
		return
	}

	solicitud, err := h.solicitudes.Anular(c.Request.Context(), id, req.Motivo, actingUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: solicitud})
}

// ListAprobacionesPendientes handles GET /api/v1/aprobaciones/pendientes
func (h *Handlers) ListAprobacionesPendientes(c *gin.Context) {
	pendientes, err := h.solicitudes.ListPendientes(c.Request.Context(), actingUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: pendientes})
}

// MatchRequest is the advisory match payload: which rule would govern this
// hypothetical request.
type MatchRequest struct {
	TipoSolicitud string  `json:"tipo_solicitud" binding:"required"`
	CodigoPermiso string  `json:"codigo_permiso"`
	CodigoArea    string  `json:"codigo_area"`
	CodigoSeccion string  `json:"codigo_seccion"`
	CodigoCargo   string  `json:"codigo_cargo"`
	Dias          float64 `json:"dias_solicitados"`
	Fecha         string  `json:"fecha"`
}

// MatchConfig handles POST /api/v1/match
func (h *Handlers) MatchConfig(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	fecha := time.Now()
	if req.Fecha != "" {
		parsed, err := parseDate(req.Fecha)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "fecha must be YYYY-MM-DD"})
			return
		}
		fecha = parsed
	}

	matched, err := h.routing.MatchConfig(c.Request.Context(), engine.MatchInput{
		TipoSolicitud:   models.TipoSolicitud(req.TipoSolicitud),
		CodigoPermiso:   req.CodigoPermiso,
		DiasSolicitados: req.Dias,
		Scope: models.OrgScope{
			CodigoArea:    req.CodigoArea,
			CodigoSeccion: req.CodigoSeccion,
			CodigoCargo:   req.CodigoCargo,
		},
		Fecha: fecha,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: matched})
}

// ResolveRequest is the advisory chain-resolution payload.
type ResolveRequest struct {
	CodigoArea    string `json:"codigo_area"`
	CodigoSeccion string `json:"codigo_seccion"`
	CodigoCargo   string `json:"codigo_cargo"`
	Niveles       int    `json:"niveles" binding:"required"`
	Fecha         string `json:"fecha"`
}

// ResolveChain handles POST /api/v1/resolver
func (h *Handlers) ResolveChain(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	fecha := time.Now()
	if req.Fecha != "" {
		parsed, err := parseDate(req.Fecha)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "fecha must be YYYY-MM-DD"})
			return
		}
		fecha = parsed
	}

	chain, err := h.routing.ResolveChain(c.Request.Context(), models.OrgScope{
		CodigoArea:    req.CodigoArea,
		CodigoSeccion: req.CodigoSeccion,
		CodigoCargo:   req.CodigoCargo,
	}, fecha, req.Niveles)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: chain})
}

// Estadisticas handles GET /api/v1/admin/estadisticas
func (h *Handlers) Estadisticas(c *gin.Context) {
	stats, err := h.reports.Estadisticas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: stats})
}

// ExportSolicitudes handles GET /api/v1/admin/solicitudes/export
func (h *Handlers) ExportSolicitudes(c *gin.Context) {
	filters := models.SolicitudFilters{
		CodigoTrabajador: c.Query("codigo_trabajador"),
		Estado:           models.EstadoSolicitud(c.Query("estado")),
		TipoSolicitud:    models.TipoSolicitud(c.Query("tipo_solicitud")),
	}
	var ok bool
	if filters.FechaDesde, ok = dateQuery(c, "fecha_desde"); !ok {
		return
	}
	if filters.FechaHasta, ok = dateQuery(c, "fecha_hasta"); !ok {
		return
	}

	buf, err := h.reports.ExportSolicitudes(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := "solicitudes_" + time.Now().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

// ListAreas handles GET /api/v1/catalogo/areas
func (h *Handlers) ListAreas(c *gin.Context) {
	areas, err := h.catalog.ListAreas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: "catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: areas})
}

// ListSecciones handles GET /api/v1/catalogo/secciones
func (h *Handlers) ListSecciones(c *gin.Context) {
	secciones, err := h.catalog.ListSecciones(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: "catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: secciones})
}

// ListCargos handles GET /api/v1/catalogo/cargos
func (h *Handlers) ListCargos(c *gin.Context) {
	cargos, err := h.catalog.ListCargos(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: "catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: cargos})
}

// SearchTrabajadores handles GET /api/v1/catalogo/trabajadores
func (h *Handlers) SearchTrabajadores(c *gin.Context) {
	trabajadores, err := h.catalog.SearchTrabajadores(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: "catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: trabajadores})
}
