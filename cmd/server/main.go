package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/api"
	"github.com/oudaybenrhouma/ghalinino-api/internal/api/handlers"
	"github.com/oudaybenrhouma/ghalinino-api/internal/config"
	"github.com/oudaybenrhouma/ghalinino-api/internal/mailer"
	"github.com/oudaybenrhouma/ghalinino-api/internal/paymee"
	"github.com/oudaybenrhouma/ghalinino-api/internal/pricing"
	"github.com/oudaybenrhouma/ghalinino-api/internal/realtime"
	"github.com/oudaybenrhouma/ghalinino-api/internal/repository/postgres"
	"github.com/oudaybenrhouma/ghalinino-api/internal/repository/redisstore"
	"github.com/oudaybenrhouma/ghalinino-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting storefront API server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := postgres.RunMigrations(db, migrationsDir); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	repos := postgres.NewRepositories(db, logger)
	repos.GuestCart = redisstore.NewGuestCartStore(redisClient, logger)

	feed := realtime.NewRedisFeed(redisClient, logger)

	dispatcher := mailer.NewDispatcher(
		mailer.NewSendGridMailer(cfg.Mail),
		cfg.Mail.AdminEmail,
		logger,
	)

	auth := service.NewAuthService(repos.Customer, repos.Session, logger)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				// Failures are logged by the service; retry on the next tick
				_ = auth.PruneExpiredSessions(sweepCtx)
			}
		}
	}()

	deps := handlers.Deps{
		Cfg:     cfg,
		Repos:   repos,
		Auth:    auth,
		Gateway: paymee.NewClient(cfg.Gateway, logger),
		Mail:    dispatcher,
		Feed:    feed,
		Volume:  pricing.DefaultVolumeDiscount(),
		Logger:  logger,
	}

	router := api.NewRouter(deps)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
