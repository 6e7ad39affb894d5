package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/showrunner/notification-api/config"
	"github.com/showrunner/notification-api/internal/email"
	"github.com/showrunner/notification-api/internal/handler"
	notificationHandler "github.com/showrunner/notification-api/internal/handler/notification"
	"github.com/showrunner/notification-api/internal/middleware"
	"github.com/showrunner/notification-api/internal/repository/postgres"
	"github.com/showrunner/notification-api/internal/router"
	notificationService "github.com/showrunner/notification-api/internal/service/notification"
	userService "github.com/showrunner/notification-api/internal/service/user"
	"github.com/showrunner/notification-api/pkg/auth"
	"github.com/showrunner/notification-api/pkg/logger"
	"github.com/showrunner/notification-api/pkg/messaging"
	redisBroker "github.com/showrunner/notification-api/pkg/messaging/redis"
	"github.com/showrunner/notification-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:   logger.InfoLevel,
		Service: "notification-api",
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	base := postgres.NewBaseRepository(db)
	notificationRepo := postgres.NewNotificationRepository(base)
	userRepo := postgres.NewUserRepository(base)
	scheduleRepo := postgres.NewScheduleRepository(base)

	// Optional broker; an empty URL runs without event publishing
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		zl := log.Logger
		broker, err = redisBroker.NewRedisBroker(redisBroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
			PoolSize:     10,
			MinIdleConns: 2,
		}, &zl)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
	}

	var emailSvc email.Service
	if cfg.SMTP.Enabled {
		emailSvc = email.NewService(cfg.SMTP)
	}

	appMetrics := metrics.NewMetrics("notifications")

	// Services
	directory := userService.NewService(userRepo, time.Duration(cfg.Notifications.UserCacheTTLSeconds)*time.Second)
	dispatcher := notificationService.NewDispatcher(
		broker,
		emailSvc,
		directory,
		cfg.Notifications.EmailCopies,
		appMetrics,
		appLogger,
	)
	notificationSvc := notificationService.NewService(
		notificationRepo,
		scheduleRepo,
		directory,
		dispatcher,
		appMetrics,
		appLogger,
		cfg.Notifications.FanoutWorkers,
	)

	// Handlers and middleware
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	notificationH := notificationHandler.NewHandler(notificationSvc)
	h := handler.NewHandler(db)

	r := router.NewRouter(authMiddleware, notificationH, h, router.Config{
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		CORS:           middleware.DefaultCORSConfig(),
		MetricsPrefix:  "notification_api",
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("notification service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
