package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xelth-com/eckodoo/internal/buildinfo"
	"github.com/xelth-com/eckodoo/internal/config"
	"github.com/xelth-com/eckodoo/internal/database"
	"github.com/xelth-com/eckodoo/internal/handlers"
	"github.com/xelth-com/eckodoo/internal/logger"
	"github.com/xelth-com/eckodoo/internal/services/odoo"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.NewConsole("api", "info").Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := cfg.ValidateAPI(); err != nil {
		logger.NewConsole("api", "info").Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.NewConsole("api", cfg.LogLevel)
	if cfg.NodeEnv == "production" {
		log = logger.New(os.Stdout, "api", cfg.LogLevel)
	}
	log.Info().
		Str("version", buildinfo.Version).
		Str("commit", buildinfo.CommitHash).
		Msg("starting eckodoo gateway")

	// 2. Odoo client
	if !cfg.Odoo.Enabled() {
		log.Warn().Msg("ODOO_BASE_URL not set, using local defaults")
	}
	opts := append(cfg.Odoo.ClientOptions(), odoo.WithLogger(log.Child("service", "odoo")))
	client, err := odoo.NewClient(opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid Odoo settings")
	}
	log.Info().Str("url", client.Config().BaseURL()).Str("database", client.Config().Database).Msg("odoo client configured")

	// 3. Optional mirror (Detects Embedded vs External database automatically)
	var db *database.DB
	var mirror *odoo.SyncService
	if len(cfg.Odoo.SyncModels) > 0 {
		db, err = database.Connect(cfg.Database, log.Child("service", "database"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		if err := db.Migrate(); err != nil {
			log.Warn().Err(err).Msg("migration warning")
		}

		mirror = odoo.NewSyncService(client, db.DB, cfg.Odoo.SyncConfig(), log.Child("service", "mirror"))
		mirror.Start()
	}

	// 4. HTTP gateway with graceful shutdown
	router := handlers.NewRouter(client, cfg.JWTSecret, log)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	sig := <-shutdown
	log.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if mirror != nil {
		mirror.Stop()
	}

	// Close database (this also stops embedded PostgreSQL)
	if db != nil {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("database close error")
		}
	}

	log.Info().Msg("shutdown complete")
}
