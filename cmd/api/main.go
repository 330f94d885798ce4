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

	"checked-ledger/config"
	httpHandler "checked-ledger/internal/adapter/http/handler"
	pgStorage "checked-ledger/internal/adapter/storage/postgres"
	redisStorage "checked-ledger/internal/adapter/storage/redis"
	"checked-ledger/internal/core/domain"
	"checked-ledger/internal/core/ports"
	"checked-ledger/internal/service"
	"checked-ledger/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("CKL_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Uint64("fee_rate_bps", cfg.Ledger.FeeRateBps).
		Uint64("reward_rate_bps", cfg.Ledger.RewardRateBps).
		Uint64("rate_scale", cfg.Ledger.RateScale).
		Msg("Starting checked ledger")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, keyspace, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	idempotencyRepo := pgStorage.NewIdempotencyRepo(pool)
	transactor := pgStorage.NewTransactor(pool, cfg.Database.LockTimeout)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb, keyspace)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb, keyspace)

	// Balance encryption at rest
	cipher, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}

	fees := domain.FeeSchedule{
		FeeRateBps:    cfg.Ledger.FeeRateBps,
		RewardRateBps: cfg.Ledger.RewardRateBps,
		Scale:         cfg.Ledger.RateScale,
	}

	// Initialize business services
	ledgerSvc := service.NewLedgerService(
		txRepo,
		walletRepo,
		idempotencyRepo,
		idempotencyCache,
		cipher,
		transactor,
		fees,
		cfg.Ledger.IdempotencyTTL,
		logger.Component(log, "ledger"),
	)
	walletSvc := service.NewWalletService(walletRepo, txRepo, cipher, logger.Component(log, "wallet"))
	rateSvc := service.NewRateService(logger.Component(log, "rate"))

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb, keyspace)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		LedgerSvc:      ledgerSvc,
		WalletSvc:      walletSvc,
		RateSvc:        rateSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
