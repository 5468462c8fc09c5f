package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/LoosePrince/Huisheen/internal/config"
	appHTTP "github.com/LoosePrince/Huisheen/internal/handler/http"
	"github.com/LoosePrince/Huisheen/internal/pkg/database"
	"github.com/LoosePrince/Huisheen/internal/pkg/poller"
	"github.com/LoosePrince/Huisheen/internal/pkg/redisclient"
	"github.com/LoosePrince/Huisheen/internal/pkg/sse"
	"github.com/LoosePrince/Huisheen/internal/pkg/token"
	"github.com/LoosePrince/Huisheen/internal/repository/postgresql"
	serviceAuth "github.com/LoosePrince/Huisheen/internal/service/auth"
	serviceNotification "github.com/LoosePrince/Huisheen/internal/service/notification"
	serviceSubscription "github.com/LoosePrince/Huisheen/internal/service/subscription"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "huisheen"),
	)
	slog.SetDefault(logger)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = redisclient.New(context.Background(), cfg.Redis.URL)
		if err != nil {
			logger.Warn("redis unavailable, rate limiting disabled", "error", err)
		}
	}

	userRepo := postgresql.NewUserRepository(db)
	subscriptionRepo := postgresql.NewSubscriptionRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	tokenService, err := token.NewTokenService(cfg.JWT.Secret, cfg.JWT.SubscriptionValidity, cfg.JWT.ExternalValidity)
	if err != nil {
		fmt.Println("Error creating token service:", err)
		return
	}

	hub := sse.NewHub()

	notificationService := serviceNotification.NewNotificationService(
		notificationRepo,
		subscriptionRepo,
		userRepo,
		tokenService,
		hub,
		logger,
	)

	pollEngine := poller.New(
		subscriptionRepo,
		notificationService,
		logger,
		cfg.Polling.PollTimeout,
		cfg.Polling.MaxConcurrentPolls,
	)
	prober := poller.NewProber(cfg.Polling.ProbeTimeout)

	authService := serviceAuth.NewAuthService(userRepo, tokenService, cfg.App.WebsiteDomain)
	subscriptionService := serviceSubscription.NewSubscriptionService(
		subscriptionRepo,
		authService,
		tokenService,
		prober,
		pollEngine,
		logger,
		cfg.Polling.DefaultIntervalMin,
	)

	scheduler := poller.NewScheduler(pollEngine, cfg.Polling.TickInterval, logger)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterDeps{
		TokenService:        tokenService,
		SubscriptionHandler: appHTTP.NewSubscriptionHandler(subscriptionService),
		NotificationHandler: appHTTP.NewNotificationHandler(notificationService, tokenService),
		ExternalHandler:     appHTTP.NewExternalHandler(authService, notificationService),
		UserHandler:         appHTTP.NewUserHandler(authService),
		AdminHandler:        appHTTP.NewAdminHandler(subscriptionService),
		RedisClient:         redisClient,
		RateLimitMax:        cfg.RateLimit.MaxRequests,
		RateLimitWindow:     cfg.RateLimit.Window,
		Env:                 cfg.App.Env,
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
