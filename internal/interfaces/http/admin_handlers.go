package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dquispe/vacaciones-engine/internal/models"
	"github.com/dquispe/vacaciones-engine/internal/service"
)

// AdminHandlers contains the configuration maintenance handlers.
type AdminHandlers struct {
	admin  *service.AdminService
	logger Logger
}

// NewAdminHandlers creates a new AdminHandlers instance
func NewAdminHandlers(admin *service.AdminService, logger Logger) *AdminHandlers {
	return &AdminHandlers{admin: admin, logger: logger}
}

func listParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, limit
}

// ConfigFlujoRequest is the flow rule payload. Empty strings become nil
// predicates (wildcards).
type ConfigFlujoRequest struct {
	TipoSolicitud string   `json:"tipo_solicitud" binding:"required"`
	CodigoPermiso string   `json:"codigo_permiso"`
	CodigoArea    string   `json:"codigo_area"`
	CodigoSeccion string   `json:"codigo_seccion"`
	CodigoCargo   string   `json:"codigo_cargo"`
	DiasDesde     *float64 `json:"dias_desde"`
	DiasHasta     *float64 `json:"dias_hasta"`
	Niveles       int      `json:"niveles_requeridos" binding:"required"`
	Orden         int      `json:"orden"`
	Activo        string   `json:"activo"`
	FechaDesde    string   `json:"fecha_desde" binding:"required"`
	FechaHasta    string   `json:"fecha_hasta"`
	Descripcion   string   `json:"descripcion"`
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *ConfigFlujoRequest) toModel(usuario string) (*models.ConfigFlujo, error) {
	fechaDesde, err := parseDate(r.FechaDesde)
	if err != nil {
		return nil, err
	}

	c := &models.ConfigFlujo{
		TipoSolicitud:     models.TipoSolicitud(r.TipoSolicitud),
		CodigoPermiso:     optStr(r.CodigoPermiso),
		CodigoArea:        optStr(r.CodigoArea),
		CodigoSeccion:     optStr(r.CodigoSeccion),
		CodigoCargo:       optStr(r.CodigoCargo),
		DiasDesde:         r.DiasDesde,
		DiasHasta:         r.DiasHasta,
		NivelesRequeridos: r.Niveles,
		Orden:             r.Orden,
		Activo:            r.Activo,
		FechaDesde:        fechaDesde,
		Descripcion:       optStr(r.Descripcion),
		UsuarioRegistro:   optStr(usuario),
	}
	if r.FechaHasta != "" {
		hasta, err := parseDate(r.FechaHasta)
		if err != nil {
			return nil, err
		}
		c.FechaHasta = &hasta
	}
	return c, nil
}

// CreateConfigFlujo handles POST /api/v1/admin/config-flujo
func (h *AdminHandlers) CreateConfigFlujo(c *gin.Context) {
	var req ConfigFlujoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	config, err := req.toModel(actingUser(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "dates must be YYYY-MM-DD"})
		return
	}

	if err := h.admin.CreateConfigFlujo(c.Request.Context(), config); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: config})
}

// GetConfigFlujo handles GET /api/v1/admin/config-flujo/:id
func (h *AdminHandlers) GetConfigFlujo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	config, err := h.admin.GetConfigFlujo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: config})
}

// UpdateConfigFlujo handles PUT /api/v1/admin/config-flujo/:id
func (h *AdminHandlers) UpdateConfigFlujo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req ConfigFlujoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	config, err := req.toModel(actingUser(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "dates must be YYYY-MM-DD"})
		return
	}
	config.ID = id

	if err := h.admin.UpdateConfigFlujo(c.Request.Context(), config); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: config})
}

// DeactivateConfigFlujo handles DELETE /api/v1/admin/config-flujo/:id
func (h *AdminHandlers) DeactivateConfigFlujo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.admin.DeactivateConfigFlujo(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ListConfigFlujo handles GET /api/v1/admin/config-flujo
func (h *AdminHandlers) ListConfigFlujo(c *gin.Context) {
	page, limit := listParams(c)
	configs, total, err := h.admin.ListConfigFlujo(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: configs, Total: &total})
}

// JerarquiaRequest is the hierarchy entry payload.
type JerarquiaRequest struct {
	CodigoArea      string `json:"codigo_area"`
	CodigoSeccion   string `json:"codigo_seccion"`
	CodigoCargo     string `json:"codigo_cargo"`
	Aprobador       string `json:"codigo_trabajador_aprobador" binding:"required"`
	TipoRelacion    string `json:"tipo_relacion" binding:"required"`
	NivelJerarquico int    `json:"nivel_jerarquico" binding:"required"`
	Activo          string `json:"activo"`
	FechaDesde      string `json:"fecha_desde" binding:"required"`
	FechaHasta      string `json:"fecha_hasta"`
	Descripcion     string `json:"descripcion"`
}

func (r *JerarquiaRequest) toModel(usuario string) (*models.Jerarquia, error) {
	fechaDesde, err := parseDate(r.FechaDesde)
	if err != nil {
		return nil, err
	}

	j := &models.Jerarquia{
		CodigoArea:                optStr(r.CodigoArea),
		CodigoSeccion:             optStr(r.CodigoSeccion),
		CodigoCargo:               optStr(r.CodigoCargo),
		CodigoTrabajadorAprobador: r.Aprobador,
		TipoRelacion:              models.TipoRelacion(r.TipoRelacion),
		NivelJerarquico:           r.NivelJerarquico,
		Activo:                    r.Activo,
		FechaDesde:                fechaDesde,
		Descripcion:               optStr(r.Descripcion),
		UsuarioRegistro:           optStr(usuario),
	}
	if r.FechaHasta != "" {
		hasta, err := parseDate(r.FechaHasta)
		if err != nil {
			return nil, err
		}
		j.FechaHasta = &hasta
	}
	return j, nil
}

// CreateJerarquia handles POST /api/v1/admin/jerarquia
func (h *AdminHandlers) CreateJerarquia(c *gin.Context) {
	var req JerarquiaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	jerarquia, err := req.toModel(actingUser(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "dates must be YYYY-MM-DD"})
		return
	}

	if err := h.admin.CreateJerarquia(c.Request.Context(), jerarquia); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: jerarquia})
}

// GetJerarquia handles GET /api/v1/admin/jerarquia/:id
func (h *AdminHandlers) GetJerarquia(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	jerarquia, err := h.admin.GetJerarquia(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: jerarquia})
}

// UpdateJerarquia handles PUT /api/v1/admin/jerarquia/:id
func (h *AdminHandlers) UpdateJerarquia(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req JerarquiaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	jerarquia, err := req.toModel(actingUser(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "dates must be YYYY-MM-DD"})
		return
	}
	jerarquia.ID = id

	if err := h.admin.UpdateJerarquia(c.Request.Context(), jerarquia); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: jerarquia})
}

// DeactivateJerarquia handles DELETE /api/v1/admin/jerarquia/:id
func (h *AdminHandlers) DeactivateJerarquia(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.admin.DeactivateJerarquia(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ListJerarquia handles GET /api/v1/admin/jerarquia
func (h *AdminHandlers) ListJerarquia(c *gin.Context) {
	page, limit := listParams(c)
	jerarquias, total, err := h.admin.ListJerarquia(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: jerarquias, Total: &total})
}

// SustitutoRequest is the substitution payload.
type SustitutoRequest struct {
	Titular     string `json:"codigo_trabajador_titular" binding:"required"`
	Sustituto   string `json:"codigo_trabajador_sustituto" binding:"required"`
	FechaDesde  string `json:"fecha_desde" binding:"required"`
	FechaHasta  string `json:"fecha_hasta" binding:"required"`
	Motivo      string `json:"motivo"`
	Observacion string `json:"observacion"`
	Activo      string `json:"activo"`
}

func (r *SustitutoRequest) toModel(usuario string) (*models.Sustituto, error) {
	fechaDesde, err := parseDate(r.FechaDesde)
	if err != nil {
		return nil, err
	}
	fechaHasta, err := parseDate(r.FechaHasta)
	if err != nil {
		return nil, err
	}

	return &models.Sustituto{
		CodigoTrabajadorTitular:   r.Titular,
		CodigoTrabajadorSustituto: r.Sustituto,
		FechaDesde:                fechaDesde,
		FechaHasta:                fechaHasta,
		Motivo:                    optStr(r.Motivo),
		Observacion:               optStr(r.Observacion),
		Activo:                    r.Activo,
		UsuarioRegistro:           optStr(usuario),
	}, nil
}

// CreateSustituto handles POST /api/v1/admin/sustitutos
func (h *AdminHandlers) CreateSustituto(c *gin.Context) {
	var req SustitutoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	sustituto, err := req.toModel(actingUser(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "dates must be YYYY-MM-DD"})
		return
	}

	if err := h.admin.CreateSustituto(c.Request.Context(), sustituto); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: sustituto})
}

// GetSustituto handles GET /api/v1/admin/sustitutos/:id
func (h *AdminHandlers) GetSustituto(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	sustituto, err := h.admin.GetSustituto(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: sustituto})
}

// UpdateSustituto handles PUT /api/v1/admin/sustitutos/:id
func (h *AdminHandlers) UpdateSustituto(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req SustitutoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	sustituto, err := req.toModel(actingUser(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "dates must be YYYY-MM-DD"})
		return
	}
	sustituto.ID = id

	if err := h.admin.UpdateSustituto(c.Request.Context(), sustituto); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: sustituto})
}

// DeactivateSustituto handles DELETE /api/v1/admin/sustitutos/:id
func (h *AdminHandlers) DeactivateSustituto(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.admin.DeactivateSustituto(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ListSustitutos handles GET /api/v1/admin/sustitutos
func (h *AdminHandlers) ListSustitutos(c *gin.Context) {
	page, limit := listParams(c)
	sustitutos, total, err := h.admin.ListSustituto(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: sustitutos, Total: &total})
}
