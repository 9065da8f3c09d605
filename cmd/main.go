package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angeloszaimis/circuit-breaker/config"
	"github.com/angeloszaimis/circuit-breaker/internal/circuitbreaker"
	"github.com/angeloszaimis/circuit-breaker/internal/handler"
	"github.com/angeloszaimis/circuit-breaker/internal/httpserver"
	"github.com/angeloszaimis/circuit-breaker/internal/metrics"
	"github.com/angeloszaimis/circuit-breaker/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	collector := metrics.NewCollector(cfg.Telemetry.BufferSize, log)
	collector.Start(ctx)

	registry := circuitbreaker.NewRegistry(collector, log)

	if err := seedRegistry(registry, cfg.Circuits); err != nil {
		log.Error("Failed to seed circuits", slog.Any("err", err))
		os.Exit(1)
	}

	adminHandler := handler.NewAdminHandler(log, registry)

	mux := setupRouter(adminHandler, collector)

	srv, err := httpserver.New(cfg.Server.Address, mux, httpserver.Options{})
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("Admin API listening", slog.String("address", cfg.Server.Address))

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting admin server", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func seedRegistry(registry *circuitbreaker.Registry, circuits []config.CircuitConfig) error {
	for _, circuit := range circuits {
		cfg := circuitbreaker.Config{
			Name:             circuit.Name,
			FailureThreshold: circuit.FailureThreshold,
			SuccessThreshold: circuit.SuccessThreshold,
		}

		var err error
		if cfg.Timeout, err = parseOptionalDuration(circuit.Timeout); err != nil {
			return err
		}
		if cfg.ResetTimeout, err = parseOptionalDuration(circuit.ResetTimeout); err != nil {
			return err
		}
		if cfg.MonitoringPeriod, err = parseOptionalDuration(circuit.MonitoringPeriod); err != nil {
			return err
		}

		registry.GetOrCreate(cfg)
	}

	return nil
}

func parseOptionalDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
