package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/model"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/review"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/logger"
)

type ReviewHandler struct {
	engine *review.Engine
	logger *zap.Logger
}

func NewReviewHandler(engine *review.Engine, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{engine: engine, logger: logger}
}

type markReviewedRequest struct {
	Namespace string `json:"namespace"`
	Category  string `json:"category"`
	ItemID    string `json:"item_id"`
}

func (h *ReviewHandler) MarkReviewed(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)

	var req markReviewedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("MarkReviewed: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	log.Info("MarkReviewed request received",
		zap.String("namespace", req.Namespace),
		zap.String("category", req.Category),
		zap.String("item_id", req.ItemID),
	)

	if req.Namespace == "" || req.Category == "" || req.ItemID == "" {
		log.Warn("MarkReviewed: missing fields")
		c.JSON(http.StatusBadRequest, gin.H{"error": "namespace, category and item_id required"})
		return
	}

	if err := h.engine.MarkReviewed(c.Request.Context(), req.Namespace, req.Category, req.ItemID); err != nil {
		if errors.Is(err, review.ErrInvalidCategory) {
			log.Warn("MarkReviewed: category rejected",
				zap.String("namespace", req.Namespace),
				zap.String("category", req.Category),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category for namespace"})
			return
		}
		log.Error("MarkReviewed: failed to persist",
			zap.String("namespace", req.Namespace),
			zap.String("category", req.Category),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "action failed, retry"})
		return
	}

	log.Info("MarkReviewed: success",
		zap.String("namespace", req.Namespace),
		zap.String("category", req.Category),
		zap.String("item_id", req.ItemID),
	)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type trackFollowupRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

func (h *ReviewHandler) TrackFollowup(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)

	var req trackFollowupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("TrackFollowup: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	log.Info("TrackFollowup request received",
		zap.String("thread_id", req.ID),
		zap.String("client_ip", c.ClientIP()),
	)

	if req.ID == "" {
		log.Warn("TrackFollowup: missing thread id")
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}

	source := req.Source
	if source == "" {
		source = "gmail"
	}
	item := model.Item{
		ID:      req.ID,
		Source:  source,
		Title:   req.Title,
		URL:     req.URL,
		Snippet: req.Snippet,
	}

	if err := h.engine.TrackFollowUp(c.Request.Context(), item); err != nil {
		if errors.Is(err, review.ErrResolvedThread) {
			log.Warn("TrackFollowup: thread already resolved", zap.String("thread_id", req.ID))
			c.JSON(http.StatusConflict, gin.H{"error": "thread already resolved"})
			return
		}
		log.Error("TrackFollowup: failed to persist", zap.String("thread_id", req.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "action failed, retry"})
		return
	}

	log.Info("TrackFollowup: success", zap.String("thread_id", req.ID))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ReviewHandler) Resolve(c *gin.Context) {
	threadID := c.Param("id")
	log := logger.WithTrace(c.Request.Context(), h.logger)
	log.Info("Resolve request received",
		zap.String("thread_id", threadID),
		zap.String("client_ip", c.ClientIP()),
	)

	if threadID == "" {
		log.Warn("Resolve: missing thread id")
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}

	if err := h.engine.Resolve(c.Request.Context(), threadID); err != nil {
		log.Error("Resolve: failed to persist", zap.String("thread_id", threadID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "action failed, retry"})
		return
	}

	log.Info("Resolve: success", zap.String("thread_id", threadID))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
