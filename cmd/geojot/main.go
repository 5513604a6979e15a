package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/geojot/geojot/api"
	"github.com/geojot/geojot/api/validator"
	"github.com/geojot/geojot/config"
	"github.com/geojot/geojot/geocode"
	"github.com/geojot/geojot/postgres"
	"github.com/geojot/geojot/redis"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Connecting to Postgres")
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}

	logger.Info("Connecting to Redis", "addr", cfg.RedisAddr)
	cache, err := redis.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}

	a := &api.API{
		Logger: logger,
		DB:     db,
		Cache:  cache,
		Val:    validator.New(),
	}
	if cfg.GeocoderURL != "" {
		a.Geo = geocode.New(cfg.GeocoderURL)
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: a,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}

	return nil
}
