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
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/handler"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/httpserver"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/provider"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/repository"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/review"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/service"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/db"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/logger"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/mq"
	redispkg "github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting dashboard service...",
		zap.String("port", cfg.Server.Port),
		zap.String("storage_backend", cfg.Storage.Backend),
	)

	// State store
	log.Info("Initializing state store...", zap.String("backend", cfg.Storage.Backend))
	store, ready, cleanup := buildStateStore(cfg, log)
	defer cleanup()
	log.Info("State store ready")

	// MQ Publisher (optional; events are best-effort)
	var pub review.EventPublisher
	if cfg.MQ.URL != "" {
		publisher, err := mq.NewPublisher(cfg.MQ.URL, log)
		if err != nil {
			log.Warn("MQ publisher unavailable, review events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			pub = publisher
			log.Info("MQ publisher ready", zap.String("url", cfg.MQ.URL))
		}
	}

	engine := review.NewEngine(store, pub, log)

	// Providers
	sources, tracker := buildSources(cfg, log)
	log.Info("Providers configured",
		zap.Int("sources", len(sources)),
		zap.Bool("time_tracker", tracker != nil),
	)

	// Services
	dashboardSvc := service.NewDashboardService(engine, sources, tracker, cfg.Fetch.Workers, log)
	authSvc := service.NewAuthService(cfg.Auth, cfg.JWT.Secret)

	// HTTP Server
	log.Info("Initializing HTTP server...", zap.String("port", cfg.Server.Port))
	authHandler := handler.NewAuthHandler(authSvc, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, log)
	reviewHandler := handler.NewReviewHandler(engine, log)

	router := httpserver.NewRouter(authHandler, dashboardHandler, reviewHandler, cfg.JWT.Secret, ready, log)

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

	log.Info("dashboard service is fully initialized and running",
		zap.String("http_port", cfg.Server.Port),
	)

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down dashboard service gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("dashboard service shutdown complete")
}

// buildStateStore selects the persistence backend. The returned ready
// func backs /readyz, the cleanup func closes whatever was opened.
func buildStateStore(cfg *config.Config, log *zap.Logger) (review.StateStore, func(ctx context.Context) error, func()) {
	switch cfg.Storage.Backend {
	case "postgres":
		pool, err := db.NewConnection(cfg.DB.DSN(), log)
		if err != nil {
			log.Fatal("Failed to init DB", zap.Error(err))
		}
		pg := repository.NewStatePostgres(pool, log)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to ensure schema", zap.Error(err))
		}
		return pg, pool.Ping, pool.Close

	case "memory":
		log.Warn("Using in-memory state store, review marks will not survive restarts")
		return repository.NewStateMemory(),
			func(ctx context.Context) error { return nil },
			func() {}

	default: // redis
		rdb, err := redispkg.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to init Redis", zap.Error(err))
		}
		return repository.NewStateRedis(rdb, log),
			func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			func() { rdb.Close() }
	}
}

// buildSources wires each enabled provider to the category it feeds.
// Source names must match category keys, the aggregator joins on them.
func buildSources(cfg *config.Config, log *zap.Logger) ([]provider.Source, service.TimeTracker) {
	var sources []provider.Source
	timeout := time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second

	if cfg.Providers.Todoist.Enabled {
		todoist := provider.NewTodoist(cfg.Providers.Todoist, timeout, log)
		sources = append(sources,
			todoist.Source("commit", "@commit"),
			todoist.Source("bestcase", "@bestcase"),
			todoist.Source("p1", "p1"),
			todoist.Source("inbox", "#Inbox"),
		)
	}

	if cfg.Providers.Gmail.Enabled {
		gmail := provider.NewGmail(cfg.Providers.Gmail, timeout, log)
		sources = append(sources,
			gmail.Source("starred", "is:starred"),
			gmail.Source("unread", "is:unread in:inbox"),
		)
	}

	if cfg.Providers.Calendar.Enabled {
		sources = append(sources,
			provider.NewGoogleCalendar(cfg.Providers.Calendar, timeout, cfg.Fetch.CalendarWindowDays, log))
	}

	var tracker service.TimeTracker
	if cfg.Providers.Toggl.Enabled {
		tracker = provider.NewToggl(cfg.Providers.Toggl, timeout, log)
	}

	return sources, tracker
}
