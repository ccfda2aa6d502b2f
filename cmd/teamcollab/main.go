package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teamcollab/internal/logger"
	"teamcollab/internal/server"
	"teamcollab/internal/service"
	db "teamcollab/repository/db"
	inmemory "teamcollab/repository/inmemory"

	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 30 * time.Second

// apiServer is the part of *server.API that main drives.
type apiServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

func main() {
	cfg, err := server.ReadConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read config")
	}

	logger.Setup(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		File:   cfg.LogFile,
	})
	log.Info().Str("addr", cfg.ListenAddr()).Bool("inMemory", cfg.InMemory).Msg("starting teamcollab")

	store, closeStore := InitializeRepositories(cfg)
	defer closeStore()

	api := server.NewAPI(store, cfg)
	if api == nil {
		log.Fatal().Msg("failed to initialize API")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, api, shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		closeStore()
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

// InitializeRepositories returns the Postgres store, or the in-memory one
// when configured or when the database cannot be reached. The returned
// function releases the store.
func InitializeRepositories(cfg *server.Config) (service.Store, func()) {
	if cfg.InMemory {
		log.Info().Msg("using in-memory storage")
		return inmemory.NewStorage(), func() {}
	}

	if err := db.Migration(cfg.DBStr, cfg.MigratePath); err != nil {
		log.Warn().Err(err).Msg("migrations failed, falling back to in-memory storage")
		return inmemory.NewStorage(), func() {}
	}
	log.Info().Str("path", cfg.MigratePath).Msg("migrations applied")

	storage, err := db.NewStorage(cfg.DBStr)
	if err != nil {
		log.Warn().Err(err).Msg("database unavailable, falling back to in-memory storage")
		return inmemory.NewStorage(), func() {}
	}
	return storage, storage.Close
}

// run serves until ctx is cancelled or the server fails. On cancellation it
// shuts the server down within timeout and waits for Start to return.
func run(ctx context.Context, api apiServer, timeout time.Duration) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- api.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	if err := <-serverErr; err != nil {
		return err
	}
	log.Info().Msg("graceful shutdown completed")
	return nil
}
