package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"rideshare/internal/app"
	"rideshare/internal/config"
	"rideshare/internal/handler"
	internalRedis "rideshare/internal/redis"
	"rideshare/internal/repository/postgres"
	"rideshare/internal/service"
	"rideshare/internal/worker"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Warn("failed to initialize New Relic", zap.Error(err))
		} else {
			logger.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	// The payout queue lives in its own redis database.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.WorkerDB,
	})
	defer asynqClient.Close()

	// Wire dependencies.
	a := wireApplication(db, redisClient, asynqClient, nrApp, cfg, logger)
	defer a.registry.Close()

	if err := a.walletService.EnsurePlatformWallet(ctx); err != nil {
		logger.Warn("platform wallet not seeded", zap.Error(err))
	}

	if err := a.worker.Start(); err != nil {
		logger.Fatal("failed to start payout worker", zap.Error(err))
	}

	// Start server in goroutine.
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	a.worker.Shutdown()

	logger.Info("server exited")
}

// application bundles the wired pieces main manages directly.
type application struct {
	server        *http.Server
	worker        *worker.Worker
	registry      *service.ActiveTripRegistry
	walletService *service.WalletService
}

// wireApplication wires all dependencies.
func wireApplication(db *sql.DB, redisClient *redis.Client, asynqClient *asynq.Client, nrApp *newrelic.Application, cfg *config.Config, logger *zap.Logger) *application {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	userRepo := postgres.NewUserRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	walletRepo := postgres.NewWalletRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	payoutRepo := postgres.NewPayoutRepository(db)

	// Initialize services.
	registry := service.NewActiveTripRegistry(cfg.Trip.EvictionDelay)
	scheduler := worker.NewScheduler(asynqClient, logger)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, cfg.Notification.SendTimeout, logger)
	walletService := service.NewWalletService(walletRepo, cacheStore, notificationService, logger)
	settlementService := service.NewSettlementService(db, payoutRepo, cacheStore, scheduler, notificationService, cfg.Settlement, logger)
	tripService := service.NewTripService(tripRepo, userRepo, settlementService, lockStore, cacheStore, registry, notificationService, logger)
	receiptService := service.NewReceiptService(tripRepo)

	payoutWorker := worker.New(cfg.Redis, settlementService, logger)

	// Initialize handlers.
	userHandler := handler.NewUserHandler(userRepo, notificationService)
	tripHandler := handler.NewTripHandler(tripService, receiptService)
	walletHandler := handler.NewWalletHandler(walletService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	payoutHandler := handler.NewPayoutHandler(settlementService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		TripHandler:         tripHandler,
		WalletHandler:       walletHandler,
		NotificationHandler: notificationHandler,
		PayoutHandler:       payoutHandler,
		UserHandler:         userHandler,
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &application{
		server:        server,
		worker:        payoutWorker,
		registry:      registry,
		walletService: walletService,
	}
}
