// Package http provides the HTTP adapter for the approval routing engine.
// It is a thin layer translating requests into service calls; all business
// rules live in the service and engine packages.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dquispe/vacaciones-engine/internal/catalog"
	"github.com/dquispe/vacaciones-engine/internal/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	JWTSecret    string
	AdminRoles   []string
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine

	solicitudes *service.SolicitudService
	routing     *service.RoutingService
	admin       *service.AdminService
	reports     *service.ReportService
	catalog     *catalog.Client

	jwtSecret  string
	adminRoles []string
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	solicitudes *service.SolicitudService,
	routing *service.RoutingService,
	admin *service.AdminService,
	reports *service.ReportService,
	catalogClient *catalog.Client,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:      config,
		router:      gin.New(),
		solicitudes: solicitudes,
		routing:     routing,
		admin:       admin,
		reports:     reports,
		catalog:     catalogClient,
		jwtSecret:   config.JWTSecret,
		adminRoles:  config.AdminRoles,
		logger:      logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(corsMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.solicitudes, s.routing, s.reports, s.catalog, s.logger)
	adminHandlers := NewAdminHandlers(s.admin, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api/v1")
	api.Use(s.authMiddleware())
	{
		api.POST("/solicitudes", handlers.CreateSolicitud)
		api.GET("/solicitudes", handlers.ListSolicitudes)
		api.GET("/solicitudes/:id", handlers.GetSolicitud)
		api.POST("/solicitudes/:id/decidir", handlers.DecidirSolicitud)
		api.POST("/solicitudes/:id/anular", handlers.AnularSolicitud)

		api.GET("/aprobaciones/pendientes", handlers.ListAprobacionesPendientes)

		api.POST("/match", handlers.MatchConfig)
		api.POST("/resolver", handlers.ResolveChain)

		api.GET("/catalogo/areas", handlers.ListAreas)
		api.GET("/catalogo/secciones", handlers.ListSecciones)
		api.GET("/catalogo/cargos", handlers.ListCargos)
		api.GET("/catalogo/trabajadores", handlers.SearchTrabajadores)

		admin := api.Group("/admin")
		admin.Use(s.requireAdmin())
		{
			admin.POST("/config-flujo", adminHandlers.CreateConfigFlujo)
			admin.GET("/config-flujo", adminHandlers.ListConfigFlujo)
			admin.GET("/config-flujo/:id", adminHandlers.GetConfigFlujo)
			admin.PUT("/config-flujo/:id", adminHandlers.UpdateConfigFlujo)
			admin.DELETE("/config-flujo/:id", adminHandlers.DeactivateConfigFlujo)

			admin.POST("/jerarquia", adminHandlers.CreateJerarquia)
			admin.GET("/jerarquia", adminHandlers.ListJerarquia)
			admin.GET("/jerarquia/:id", adminHandlers.GetJerarquia)
			admin.PUT("/jerarquia/:id", adminHandlers.UpdateJerarquia)
			admin.DELETE("/jerarquia/:id", adminHandlers.DeactivateJerarquia)

			admin.POST("/sustitutos", adminHandlers.CreateSustituto)
			admin.GET("/sustitutos", adminHandlers.ListSustitutos)
			admin.GET("/sustitutos/:id", adminHandlers.GetSustituto)
			admin.PUT("/sustitutos/:id", adminHandlers.UpdateSustituto)
			admin.DELETE("/sustitutos/:id", adminHandlers.DeactivateSustituto)

			admin.GET("/estadisticas", handlers.Estadisticas)
			admin.GET("/solicitudes/export", handlers.ExportSolicitudes)
		}
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
