package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/dquispe/vacaciones-engine/internal/catalog"
	"github.com/dquispe/vacaciones-engine/internal/config"
	httpadapter "github.com/dquispe/vacaciones-engine/internal/interfaces/http"
	"github.com/dquispe/vacaciones-engine/internal/notification"
	"github.com/dquispe/vacaciones-engine/internal/repository"
	"github.com/dquispe/vacaciones-engine/internal/service"
	"github.com/dquispe/vacaciones-engine/pkg/database"
	"github.com/dquispe/vacaciones-engine/pkg/utils"
)

func main() {
	// Local development credentials; ignored when the file is absent
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting vacaciones approval routing engine",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.Fatal("Failed to create data directory", zap.Error(err))
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	configRepo := repository.NewConfigFlujoRepository(db.DB, logger)
	jerarquiaRepo := repository.NewJerarquiaRepository(db.DB, logger)
	sustitutoRepo := repository.NewSustitutoRepository(db.DB, logger)
	solicitudRepo := repository.NewSolicitudRepository(db.DB, logger)
	aprobacionRepo := repository.NewAprobacionRepository(db.DB, logger)

	// External dependencies
	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, logger)

	var notifier service.Notifier
	if cfg.Mail.Enabled {
		notifier = notification.NewMailer(notification.Config{
			Host:       cfg.Mail.Host,
			Port:       cfg.Mail.Port,
			Username:   cfg.Mail.Username,
			Password:   cfg.Mail.Password,
			From:       cfg.Mail.From,
			MailDomain: cfg.Mail.MailDomain,
		}, logger)
	}

	// Services
	sugar := sugarAdapter{logger.Sugar()}
	routingService := service.NewRoutingService(configRepo, jerarquiaRepo, sustitutoRepo, sugar)
	solicitudService := service.NewSolicitudService(
		solicitudRepo, aprobacionRepo, routingService, db, notifier, catalogClient, sugar)
	adminService := service.NewAdminService(configRepo, jerarquiaRepo, sustitutoRepo, sugar)
	reportService := service.NewReportService(solicitudRepo, solicitudRepo, sugar)

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		JWTSecret:    cfg.Auth.JWTSecret,
		AdminRoles:   cfg.Auth.AdminRoles,
	}, solicitudService, routingService, adminService, reportService, catalogClient, sugar)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Error("Server exited with error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Server exited successfully")
}

// sugarAdapter bridges the zap sugared logger to the keysAndValues Logger
// interfaces of the service and http packages.
type sugarAdapter struct {
	s *zap.SugaredLogger
}

func (a sugarAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.s.Infow(msg, keysAndValues...)
}

func (a sugarAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.s.Warnw(msg, keysAndValues...)
}

func (a sugarAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.s.Errorw(msg, keysAndValues...)
}
