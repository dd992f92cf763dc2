package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/motocrm/balance/internal/adapter/http"
	"github.com/motocrm/balance/internal/adapter/http/handler"
	httpmiddleware "github.com/motocrm/balance/internal/adapter/http/middleware"
	postgresRepo "github.com/motocrm/balance/internal/adapter/repository/postgres"
	redisRepo "github.com/motocrm/balance/internal/adapter/repository/redis"
	"github.com/motocrm/balance/internal/infrastructure/config"
	"github.com/motocrm/balance/internal/infrastructure/eventpublisher"
	"github.com/motocrm/balance/internal/infrastructure/logger"
	"github.com/motocrm/balance/internal/infrastructure/postgres"
	"github.com/motocrm/balance/internal/infrastructure/redis"
	"github.com/motocrm/balance/internal/usecase"
)

func main() {
	// Bootstrap logger until config is loaded
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	maxOverride, err := cfg.MaxOverrideBalance()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid override ceiling")
	}

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if path := resolveMigrationsPath(); path != "" {
		if err := postgres.RunMigrations(cfg.DatabaseURL, path); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	balanceRepo := postgresRepo.NewBalanceRepository(pool)
	operationRepo := postgresRepo.NewOperationRepository(pool)
	historyRepo := postgresRepo.NewHistoryRepository(pool)
	documentRepo := postgresRepo.NewDocumentRepository(pool)

	var outboxRepo usecase.OutboxRepository = postgresRepo.NewNullOutboxRepository()
	if cfg.OutboxEnabled {
		outboxRepo = postgresRepo.NewOutboxRepository(pool)
	}
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	balanceUC := usecase.NewBalanceUseCase(
		txManager,
		balanceRepo,
		operationRepo,
		historyRepo,
		documentRepo,
		outboxRepo,
		idGen,
		appLogger,
	)
	balanceUC.SetRetryInterval(cfg.BalanceRetryInterval)

	coordinatorUC := usecase.NewCoordinatorUseCase(balanceUC, documentRepo, appLogger)
	overrideUC := usecase.NewOverrideUseCase(balanceUC, operationRepo, maxOverride, appLogger)
	reconciliationUC := usecase.NewReconciliationUseCase(balanceRepo, balanceUC)
	operationUC := usecase.NewOperationUseCase(operationRepo, historyRepo)

	// Initialize handlers
	balanceHandler := handler.NewBalanceHandler(balanceUC, reconciliationUC)
	operationHandler := handler.NewOperationHandler(operationUC)
	overrideHandler := handler.NewOverrideHandler(overrideUC)
	documentHandler := handler.NewDocumentHandler(coordinatorUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	routerCfg := httpAdapter.RouterConfig{
		BalanceHandler:   balanceHandler,
		OperationHandler: operationHandler,
		OverrideHandler:  overrideHandler,
		DocumentHandler:  documentHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		Logging:          httpmiddleware.NewLoggingMiddleware(appLogger),
	}
	if cfg.RateLimitPerSecond > 0 {
		routerCfg.RateLimiter = httpmiddleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	}

	router := httpAdapter.NewRouter(routerCfg)

	// Start outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	if cfg.OutboxEnabled {
		publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  eventpublisher.NewLogPublisher(appLogger),
			Logger:     appLogger,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
		})
		go func() {
			if err := publisher.Start(publisherCtx); err != nil && err != context.Canceled {
				log.Error().Err(err).Msg("event publisher stopped")
			}
		}()
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopPublisher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// resolveMigrationsPath returns the migrations directory, or empty to skip
// startup migrations.
func resolveMigrationsPath() string {
	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		return path
	}
	if _, err := os.Stat("migrations"); err == nil {
		return "migrations"
	}
	return ""
}
