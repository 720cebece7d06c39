package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/config"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/httpserver"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/notify"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/logger"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/mq"
	redispkg "github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/redis"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/util"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting notifier service...",
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("queue", cfg.Notifier.QueueName),
		zap.Bool("webhook_configured", cfg.Notifier.WebhookURL != ""),
	)

	// Redis (去重 + 重试计数)
	rdb, err := redispkg.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Failed to init Redis", zap.Error(err))
	}
	defer rdb.Close()
	log.Info("Redis ready")

	dedupTTL := time.Duration(cfg.Notifier.DedupTTLMins) * time.Minute
	deduper := util.NewDeduperWithLogger(rdb, dedupTTL, log)
	retryCounter := util.NewRetryCounter(rdb, time.Hour)

	sender := notify.NewSender(cfg.Notifier.WebhookURL, deduper, retryCounter, int(cfg.Notifier.MaxRetries), log)

	// MQ Consumer for review.* and followup.* events
	log.Info("Initializing MQ consumer...",
		zap.String("queue", cfg.Notifier.QueueName),
		zap.Strings("binding_keys", []string{"review.*", "followup.*"}),
	)
	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.Notifier.QueueName, []string{"review.*", "followup.*"}, log)
	if err != nil {
		log.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	consumer.SetHandler(sender.Handle)

	go func() {
		log.Info("Starting review event consumer...")
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("Review event consumer failed", zap.Error(err))
		}
	}()
	log.Info("review event consumer started successfully")

	// HTTP Server (for health checks)
	log.Info("Initializing HTTP server...", zap.String("port", cfg.Server.Port))
	router := httpserver.NewWorkerRouter(
		func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		consumer,
		log,
	)
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("notifier service is fully initialized and running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down notifier service gracefully...")

	// Stop MQ consumer
	log.Info("Stopping MQ consumer...")
	consumer.Close()

	// Close HTTP server
	log.Info("Shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	rdb.Close()

	log.Info("notifier service shutdown complete")
}
