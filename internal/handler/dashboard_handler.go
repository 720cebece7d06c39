package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/service"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/logger"
)

type DashboardHandler struct {
	dashboard *service.DashboardService
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

func (h *DashboardHandler) Dashboard(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	log.Info("Dashboard request received",
		zap.String("client_ip", c.ClientIP()),
	)

	view := h.dashboard.Dashboard(c.Request.Context())

	log.Info("Dashboard: success",
		zap.Int("home_badge", view.Badges.Home),
		zap.Int("sections", len(view.Sections)),
	)
	c.JSON(http.StatusOK, view)
}

func (h *DashboardHandler) Badges(c *gin.Context) {
	badges := h.dashboard.Badges(c.Request.Context())
	c.JSON(http.StatusOK, badges)
}

func (h *DashboardHandler) Section(c *gin.Context) {
	key := c.Param("category")
	log := logger.WithTrace(c.Request.Context(), h.logger)
	log.Info("Section request received",
		zap.String("category", key),
		zap.String("client_ip", c.ClientIP()),
	)

	res, err := h.dashboard.Section(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrUnknownSection) {
			log.Warn("Section: unknown category", zap.String("category", key))
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown section"})
			return
		}
		log.Error("Section: failed to evaluate", zap.String("category", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to evaluate section"})
		return
	}

	log.Info("Section: success",
		zap.String("category", key),
		zap.Int("needs_review", res.Count),
	)
	c.JSON(http.StatusOK, res)
}
