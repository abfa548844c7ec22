package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/carebook/carebook/internal/config"
	v1 "github.com/carebook/carebook/internal/handler/v1"
	"github.com/carebook/carebook/internal/repository/postgres"
	"github.com/carebook/carebook/internal/service"
	"github.com/carebook/carebook/pkg/auth"
	"github.com/carebook/carebook/pkg/database"
	"github.com/carebook/carebook/pkg/imagestore"
	"github.com/carebook/carebook/pkg/logger"
	"github.com/carebook/carebook/pkg/metrics"
	"github.com/carebook/carebook/pkg/tracer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(db, log); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	images, err := imagestore.NewDiskStore(cfg.Uploads)
	if err != nil {
		return fmt.Errorf("initializing image store: %w", err)
	}

	collector := metrics.NewCollector("carebook", prometheus.DefaultRegisterer)
	if sqlDB, err := db.DB(); err == nil {
		prometheus.DefaultRegisterer.MustRegister(
			collectors.NewDBStatsCollector(sqlDB, cfg.Database.Name))
	}
	jwt := auth.NewJWTManager(cfg.JWT)

	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	auditSvc := service.NewAuditService(auditRepo, collector, log)
	defer auditSvc.Shutdown()

	authSvc := service.NewAuthService(patientRepo, doctorRepo, jwt, cfg.Admin, auditSvc, collector, log)
	doctorSvc := service.NewDoctorService(doctorRepo, auditSvc, log)
	patientSvc := service.NewPatientService(patientRepo, auditSvc, log)
	bookingSvc := service.NewBookingService(doctorRepo, patientRepo, appointmentRepo, auditSvc, collector, log)
	dashboardSvc := service.NewDashboardService(doctorRepo, patientRepo, appointmentRepo)

	router := v1.NewRouter(v1.RouterDeps{
		Config:    cfg,
		JWT:       jwt,
		Admin:     v1.NewAdminHandler(authSvc, doctorSvc, bookingSvc, dashboardSvc, images, log),
		Doctor:    v1.NewDoctorHandler(authSvc, doctorSvc, bookingSvc, dashboardSvc, images, log),
		User:      v1.NewUserHandler(authSvc, patientSvc, bookingSvc, images, log),
		Collector: collector,
		Log:       log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
