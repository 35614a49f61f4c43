package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawgrasskings/booking-api/internal/config"
	"github.com/sawgrasskings/booking-api/internal/pkg/database"
	"github.com/sawgrasskings/booking-api/internal/pkg/kvstore"
	"github.com/sawgrasskings/booking-api/internal/pkg/logger"
	"github.com/sawgrasskings/booking-api/internal/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logCloser, err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise logger")
	}
	defer logCloser.Close()

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("shop", cfg.Shop.Name).
		Msg("Starting booking API")

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := database.NewRedis(ctx, cfg.RedisURL, database.ServerRedis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	kv, watcher, err := kvstore.Open(kvstore.Config{
		Backend: cfg.StoreBackend,
		Dir:     cfg.StoreDir,
		Redis:   rdb,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open device store")
	}
	defer kv.Close()

	var stateRepo stateRepository
	if cfg.StateBackend == "postgres" {
		db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer database.ClosePostgres(db)
		stateRepo = newPostgresState(db)
	} else {
		stateRepo = newFileState(cfg.StateFile)
	}

	a, err := newApp(ctx, cfg, appDeps{
		Redis:     rdb,
		KV:        kv,
		Watcher:   watcher,
		StateRepo: stateRepo,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	defer a.Close()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("Server exited properly")
}
