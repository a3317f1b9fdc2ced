package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okingsaam/Pulse/internal/api"
	"github.com/okingsaam/Pulse/internal/app"
	"github.com/okingsaam/Pulse/internal/config"
	"github.com/okingsaam/Pulse/internal/logs"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger := logs.New(cfg, "api-server")
	slog.SetDefault(logger)
	logger.Info("api-server starting up",
		slog.String("http_port", cfg.HTTPPort),
		slog.String("storage", cfg.Storage),
		slog.String("version", version),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pulse, err := app.New(rootCtx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := pulse.Close(); err != nil {
			logger.Warn("error closing backends", slog.Any("error", err))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Persons:       pulse.Persons,
		Catalog:       pulse.Catalog,
		Appointments:  pulse.Appointments,
		Consultations: pulse.Consultations,
		Reports:       pulse.Reports,
		Location:      cfg.Location(),
		PgPool:        pulse.PgPool,
		Redis:         pulse.Redis,
		Logger:        logger,
		Env:           cfg.Env,
		Version:       version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-rootCtx.Done():
	case err := <-serveErr:
		if err != nil {
			logger.Error("http server failed", slog.Any("error", err))
		}
	}

	logger.Info("shutting down api-server", slog.Duration("timeout", cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
}
