// Package main is the entry point for the expense tracker web application.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.com/yelinaung/expense-web/internal/config"
	"gitlab.com/yelinaung/expense-web/internal/database"
	"gitlab.com/yelinaung/expense-web/internal/logger"
	"gitlab.com/yelinaung/expense-web/internal/repository"
	"gitlab.com/yelinaung/expense-web/internal/service"
	"gitlab.com/yelinaung/expense-web/internal/telemetry"
	"gitlab.com/yelinaung/expense-web/internal/web"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("expense-web %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	if err := logger.InitHashSalt(); err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid log hash salt")
	}

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.OTelExporter, cfg.ServiceName, version)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to set up telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Log.Warn().Err(err).Msg("Telemetry shutdown failed")
		}
	}()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Log.Info().Msg("Database initialized successfully")

	users := repository.NewUserRepository(pool)
	profiles := repository.NewProfileRepository(pool)
	categories := repository.NewCategoryRepository(pool)
	expenses := repository.NewExpenseRepository(pool)
	sessions := repository.NewSessionRepository(pool)

	opts := service.Options{
		Location:     cfg.Location,
		BudgetWindow: service.BudgetWindow(cfg.BudgetWindow),
	}
	authService := service.NewAuthService(users, sessions, cfg.SessionTTL, opts)

	srv, err := web.NewServer(web.Config{
		Auth:         authService,
		Expenses:     service.NewExpenseService(categories, expenses, profiles, opts),
		Dashboard:    service.NewDashboardService(users, expenses, profiles, opts),
		Profiles:     service.NewProfileService(profiles),
		DB:           pool,
		SecureCookie: cfg.SecureCookie,
		Location:     cfg.Location,
		ServiceName:  cfg.ServiceName,
	})
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to create web server")
	}

	go authService.RunSessionSweeper(ctx, cfg.SessionSweepInterval)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info().Str("addr", cfg.ListenAddr).Str("version", version).Msg("HTTP server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error().Err(err).Msg("HTTP server failed")
		}
	case <-ctx.Done():
		logger.Log.Info().Msg("Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}
