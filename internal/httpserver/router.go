package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/handler"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/mq"
)

func NewRouter(
	authHandler *handler.AuthHandler,
	dashboardHandler *handler.DashboardHandler,
	reviewHandler *handler.ReviewHandler,
	jwtSecret string,
	ready func(ctx context.Context) error,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.Default()

	r.Use(TraceMiddleware())
	r.Use(RequestLogMiddleware(logger))

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := ready(ctx); err != nil {
			c.JSON(500, gin.H{"status": "state_not_ready", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/login", authHandler.Login)

	// Protected
	auth := r.Group("/api")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/dashboard", dashboardHandler.Dashboard)
		auth.GET("/badges", dashboardHandler.Badges)
		auth.GET("/sections/:category", dashboardHandler.Section)
		auth.POST("/reviews", reviewHandler.MarkReviewed)
		auth.POST("/followups", reviewHandler.TrackFollowup)
		auth.POST("/followups/:id/resolve", reviewHandler.Resolve)
	}

	return r
}

// NewWorkerRouter serves only health probes and metrics, for binaries
// that consume events instead of serving the API.
func NewWorkerRouter(ready func(ctx context.Context) error, consumer *mq.Consumer, logger *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := ready(ctx); err != nil {
			c.JSON(500, gin.H{"status": "state_not_ready", "error": err.Error()})
			return
		}

		if consumer != nil && !consumer.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
