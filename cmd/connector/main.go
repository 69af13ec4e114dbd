package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthibo/custom-whatsapp-connector/internal/bottest"
	"github.com/anthibo/custom-whatsapp-connector/internal/config"
	"github.com/anthibo/custom-whatsapp-connector/internal/consumer"
	"github.com/anthibo/custom-whatsapp-connector/internal/repository"
	"github.com/anthibo/custom-whatsapp-connector/internal/routes"
	"github.com/anthibo/custom-whatsapp-connector/internal/services"
	"github.com/anthibo/custom-whatsapp-connector/internal/transport"
	"github.com/anthibo/custom-whatsapp-connector/pkg/logger"
	"github.com/anthibo/custom-whatsapp-connector/pkg/metrics"
	"github.com/anthibo/custom-whatsapp-connector/pkg/retry"
	"github.com/go-redis/redis/v8"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logr := logger.New(cfg.LogLevel)
	logr.Info("starting whatsapp connector", slog.String("app", cfg.AppName))

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logr.Error("failed to connect database", slog.Any("error", err))
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	sessions := repository.NewSessionRepository(rdb, cfg.BotTestTTL)
	defer rdb.Close()

	settings := repository.NewSettingsStore(db, cfg.KVTable)

	whatsappClient := transport.NewWhatsAppClient(cfg.GraphURL, cfg.WhatsAppToken, cfg.BaseFileURL, cfg.ProviderTimeout, logr)
	chatClient := transport.NewChatClient(cfg.ChatAPIURL, cfg.ProjectID, cfg.ChatToken, cfg.ProviderTimeout, logr)
	metricsCollector := metrics.New()

	retryCfg := retry.Config{
		MaxAttempts:    cfg.RetryMaxAttempts,
		InitialBackoff: cfg.RetryInitialBackoff,
		MaxBackoff:     cfg.RetryMaxBackoff,
	}

	broker := bottest.NewBroker(cfg.ProjectID, sessions, settings, chatClient, logr)
	processor := services.NewProcessor(
		whatsappClient,
		chatClient,
		broker,
		metricsCollector,
		logr,
		retryCfg,
	)
	sender := services.NewSender(whatsappClient, metricsCollector, logr, retryCfg)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		logr.Error("failed to connect rabbitmq", slog.Any("error", err))
		os.Exit(1)
	}
	defer conn.Close()

	webhookBase := consumer.NewBaseConsumer(
		conn,
		cfg.WebhookQueue,
		cfg.DeadLetterQueue,
		"whatsapp.webhook",
		cfg.PrefetchCount,
		cfg.WorkerCount,
		logr,
	)
	webhookConsumer := consumer.NewWebhookConsumer(webhookBase, processor, logr, cfg.RetryMaxAttempts)

	outboundBase := consumer.NewBaseConsumer(
		conn,
		cfg.OutboundQueue,
		cfg.DeadLetterQueue,
		"whatsapp.outbound",
		cfg.PrefetchCount,
		cfg.WorkerCount,
		logr,
	)
	outboundConsumer := consumer.NewOutboundConsumer(outboundBase, sender, logr, cfg.RetryMaxAttempts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	httpSrv := startHTTPServer(cfg.HTTPPort, metricsCollector, logr, started)

	go func() {
		if err := outboundConsumer.Start(ctx); err != nil {
			logr.Error("outbound consumer exited", slog.Any("error", err))
		}
	}()

	if err := webhookConsumer.Start(ctx); err != nil {
		logr.Error("webhook consumer exited", slog.Any("error", err))
	}

	shutdownHTTP(httpSrv, logr)
	logr.Info("whatsapp connector stopped")
}

func startHTTPServer(port string, metricsCollector *metrics.Metrics, logr *slog.Logger, started time.Time) *http.Server {
	if port == "" {
		port = "8080"
	}
	handler := routes.NewRouter(metricsCollector, started)
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Error("http server error", slog.Any("error", err))
		}
	}()
	return srv
}

func shutdownHTTP(srv *http.Server, logr *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("failed to shutdown http server", slog.Any("error", err))
	}
}
