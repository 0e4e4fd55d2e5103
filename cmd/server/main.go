// Package main is the entry point for the BONDIGO reward engine server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"bondigo/internal/catalog"
	"bondigo/internal/config"
	"bondigo/internal/gacha"
	"bondigo/internal/handler"
	"bondigo/internal/pkg/db"
	"bondigo/internal/pkg/lock"
	"bondigo/internal/repository"
	"bondigo/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load the companion catalog
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("Failed to load companion catalog")
	}
	log.Info().Int("companions", cat.Size()).Msg("Companion catalog loaded")

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := db.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}
	log.Info().Msg("Database migrations applied")

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbPool.Pool)
	ownRepo := repository.NewOwnershipRepository(dbPool.Pool)
	bondRepo := repository.NewBondRepository(dbPool.Pool)
	txRepo := repository.NewTransactionRepository(dbPool.Pool)

	// Initialize the reward engine
	userLock := lock.NewUserLock()
	roller := gacha.NewRoller(cat)
	rewards := service.NewRewardService(
		cat,
		roller,
		userRepo,
		ownRepo,
		bondRepo,
		txRepo,
		userLock,
		service.Config{
			AirdropAmount:  cfg.Economy.AirdropAmount,
			AirdropHours:   cfg.Economy.AirdropHours,
			StartingTokens: cfg.Economy.StartingTokens,
		},
	)

	// Schedule the purchase reconciliation sweep
	reconciler := service.NewReconciler(userRepo, txRepo)
	scheduler := cron.New()
	_, err = scheduler.AddFunc("@every "+cfg.Reconcile.Interval.String(), func() {
		refunded, err := reconciler.Run(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Reconciliation sweep failed")
			return
		}
		if refunded > 0 {
			log.Info().Int("refunded", refunded).Msg("Reconciliation sweep issued refunds")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule reconciliation sweep")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Set up HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.New(rewards, dbPool).Register(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped gracefully")
}
