package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	mqcontracts "github.com/SonOfSamuel1/My-Workspace-TB--sub000/contracts/mq"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/metrics"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/util"
)

const handlerName = "notify"

// Deduper guards against duplicate deliveries of the same event.
type Deduper interface {
	AcquireOnce(ctx context.Context, handler, eventID string) bool
	Release(ctx context.Context, handler, eventID string)
}

// RetryCounter tracks how often an event has been attempted.
type RetryCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// Sender turns review events into webhook notifications. When no webhook
// URL is configured it degrades to log-only delivery.
type Sender struct {
	client     *http.Client
	webhookURL string
	deduper    Deduper
	retries    RetryCounter
	maxRetries int64
	logger     *zap.Logger
}

func NewSender(webhookURL string, deduper Deduper, retries RetryCounter, maxRetries int, logger *zap.Logger) *Sender {
	return &Sender{
		client:     &http.Client{Timeout: 10 * time.Second},
		webhookURL: webhookURL,
		deduper:    deduper,
		retries:    retries,
		maxRetries: int64(maxRetries),
		logger:     logger,
	}
}

// Handle is wired as the MQ consumer handler for review.* and followup.* events.
func (s *Sender) Handle(ctx context.Context, routingKey string, raw json.RawMessage) error {
	eventID, message, err := decode(routingKey, raw)
	if err != nil {
		// 坏消息重投也不会变好，直接丢弃
		s.logger.Error("Invalid event payload, dropping",
			zap.String("routing_key", routingKey),
			zap.String("raw", string(raw)),
			zap.Error(err),
		)
		metrics.IncrementNotificationDelivery(routingKey, "failed")
		return nil
	}

	s.logger.Info("Handling review event",
		zap.String("routing_key", routingKey),
		zap.String("event_id", eventID),
	)

	// Redis 去重（避免并发重复消费）
	if !s.deduper.AcquireOnce(ctx, handlerName, eventID) {
		metrics.IncrementNotificationDelivery(routingKey, "skipped")
		return nil
	}

	if s.webhookURL == "" {
		s.logger.Info("Webhook not configured, notification logged only",
			zap.String("routing_key", routingKey),
			zap.String("message", message),
		)
		metrics.IncrementNotificationDelivery(routingKey, "skipped")
		return nil
	}

	retryKey := util.FormatRetryKey(handlerName, eventID)
	retryCount, _ := s.retries.IncrementAndGet(ctx, retryKey)

	if err := s.deliver(ctx, routingKey, message); err != nil {
		return s.handleDeliveryError(ctx, err, routingKey, eventID, retryKey, retryCount)
	}

	s.retries.Reset(ctx, retryKey)
	metrics.IncrementNotificationDelivery(routingKey, "success")

	s.logger.Info("Notification delivered",
		zap.String("routing_key", routingKey),
		zap.String("event_id", eventID),
	)
	return nil
}

func (s *Sender) handleDeliveryError(ctx context.Context, err error, routingKey, eventID, retryKey string, retryCount int64) error {
	isRetryable, errType := util.IsRetryableError(err)

	s.logger.Warn("Webhook delivery failed",
		zap.String("routing_key", routingKey),
		zap.String("event_id", eventID),
		zap.String("error_type", errType),
		zap.Bool("retryable", isRetryable),
		zap.Int64("retry", retryCount),
		zap.Error(err),
	)

	if util.ShouldRetry(retryCount, s.maxRetries, isRetryable) {
		// 释放去重锁，让重投的消息能再次被处理
		s.deduper.Release(ctx, handlerName, eventID)
		return err // nack → 重试
	}

	if isRetryable {
		s.logger.Warn("Max retries exceeded, dropping notification",
			zap.String("event_id", eventID),
		)
	}
	s.retries.Reset(ctx, retryKey)
	metrics.IncrementNotificationDelivery(routingKey, "failed")
	return nil // ack → 吃掉
}

func (s *Sender) deliver(ctx context.Context, event, message string) error {
	body, err := json.Marshal(map[string]string{
		"event": event,
		"text":  message,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("call webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// decode parses the event payload and derives a stable event ID so that
// redeliveries of the same event map to the same dedup and retry keys.
func decode(routingKey string, raw json.RawMessage) (eventID, message string, err error) {
	switch routingKey {
	case mqcontracts.EventReviewMarked:
		var p mqcontracts.ReviewMarkedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return "", "", err
		}
		eventID = fmt.Sprintf("%s/%s/%s@%s", p.Namespace, p.Category, p.ItemID, p.ReviewedAt.UTC().Format(time.RFC3339))
		message = fmt.Sprintf("Reviewed %s/%s: %s", p.Namespace, p.Category, p.ItemID)
		return eventID, message, nil

	case mqcontracts.EventFollowupTracked:
		var p mqcontracts.FollowupTrackedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return "", "", err
		}
		eventID = fmt.Sprintf("%s@%s", p.ThreadID, p.TrackedAt.UTC().Format(time.RFC3339))
		message = fmt.Sprintf("Now tracking follow-up: %s", p.Title)
		return eventID, message, nil

	case mqcontracts.EventFollowupResolved:
		var p mqcontracts.FollowupResolvedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return "", "", err
		}
		eventID = fmt.Sprintf("%s@%s", p.ThreadID, p.ResolvedAt.UTC().Format(time.RFC3339))
		message = fmt.Sprintf("Follow-up resolved: %s", p.ThreadID)
		return eventID, message, nil
	}

	return "", "", fmt.Errorf("unknown routing key: %s", routingKey)
}
