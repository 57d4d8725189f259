package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/ustagram/backend/internal/metrics"
	"github.com/anonto42/ustagram/backend/internal/middleware"
	"github.com/anonto42/ustagram/backend/internal/realtime"
	"github.com/anonto42/ustagram/backend/internal/router"
	"github.com/anonto42/ustagram/backend/pkg/config"
	"github.com/anonto42/ustagram/backend/pkg/firebase"
	"github.com/anonto42/ustagram/backend/pkg/logger"
	"github.com/anonto42/ustagram/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize databases", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.CloseDB()

	if err := db.Migrate(router.Models()...); err != nil {
		log.Error("failed to migrate", slog.Any("error", err))
		os.Exit(1)
	}

	// Firebase login is optional
	var verifier middleware.IDTokenVerifier
	if cfg.FirebaseCredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, log)
		if err != nil {
			log.Error("failed to initialize firebase", slog.Any("error", err))
			os.Exit(1)
		}
		verifier = app.AuthClient
	} else {
		log.Warn("FIREBASE_CREDENTIALS_PATH not set, firebase login disabled")
	}

	metrics.Init()
	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("metrics server started", slog.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", slog.Any("error", err))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e, log, middleware.Metrics())

	router.SetupRoutes(e, router.Deps{
		Config:   cfg,
		Postgres: db.Postgres,
		Mongo:    db.MongoDatabase(),
		Registry: realtime.NewRegistry(log),
		Firebase: verifier,
		Log:      log,
	})

	go func() {
		log.Info("server started", slog.String("port", cfg.Port), slog.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", slog.Any("error", err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics shutdown failed", slog.Any("error", err))
	}
	log.Info("server exited")
}
