package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/agendazap/agendazap/internal/api/router"
	"github.com/agendazap/agendazap/internal/booking"
	"github.com/agendazap/agendazap/internal/calendar"
	"github.com/agendazap/agendazap/internal/clients"
	appconfig "github.com/agendazap/agendazap/internal/config"
	"github.com/agendazap/agendazap/internal/dialog"
	"github.com/agendazap/agendazap/internal/http/handlers"
	"github.com/agendazap/agendazap/internal/intent"
	"github.com/agendazap/agendazap/internal/messaging"
	"github.com/agendazap/agendazap/internal/observability/metrics"
	"github.com/agendazap/agendazap/internal/schedule"
	"github.com/agendazap/agendazap/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting agendazap API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("redis unreachable", "error", err)
		os.Exit(1)
	}

	cal, err := calendar.NewGoogleService(ctx, cfg.CalendarID, cfg.CalendarCredentials, tz, logger)
	if err != nil {
		logger.Error("failed to create calendar client", "error", err)
		os.Exit(1)
	}

	classifier, err := intent.NewDialogflowClassifier(ctx, cfg.DialogflowProjectID, cfg.DialogflowLanguage, cfg.DialogflowCredentials, logger)
	if err != nil {
		logger.Error("failed to create dialogflow client", "error", err)
		os.Exit(1)
	}

	sender := messaging.NewWhatsAppSender(
		cfg.TwilioAccountSID,
		cfg.TwilioAuthToken,
		cfg.TwilioWhatsAppFrom,
		cfg.TwilioSendMaxRetries,
		cfg.TwilioDeliveryPoll,
		logger,
	)

	webhookMetrics := metrics.NewWebhookMetrics(nil)
	bookingMetrics := metrics.NewBookingMetrics(nil)

	clientsRepo := clients.NewRepository(pool, logger)
	engine := schedule.NewEngine(pool, cal, tz, logger)
	bookingSvc := booking.NewService(pool, cal, engine, tz, bookingMetrics, logger)
	sessionStore := dialog.NewSessionStore(redisClient, cfg.SessionTTL)
	dialogRouter := dialog.NewRouter(sessionStore, classifier, clientsRepo, engine, bookingSvc, cfg.DaysWindow, logger)

	webhookHandler := handlers.NewWebhookHandler(handlers.WebhookConfig{
		Dialog:       dialogRouter,
		Channel:      sender,
		DeliveryWait: cfg.TwilioDeliveryWait,
		Logger:       logger,
		Metrics:      webhookMetrics,
	})

	routerCfg := &router.Config{
		Logger:              logger,
		WebhookHandler:      webhookHandler,
		AppointmentsHandler: handlers.NewAppointmentsHandler(bookingSvc, engine, logger),
		ClientsHandler:      handlers.NewClientsHandler(clientsRepo, logger),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"postgres": pool,
			"redis":    redisPinger{redisClient},
		}),
		MetricsHandler:  promhttp.Handler(),
		AllowedAgents:   cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// redisPinger adapts go-redis's status-command Ping to the health check.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
