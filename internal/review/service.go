package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	contracts "github.com/SonOfSamuel1/My-Workspace-TB--sub000/contracts/mq"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/model"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/metrics"
)

var (
	// ErrInvalidCategory rejects writes against a category outside the
	// namespace allow-list. The write never creates a new bucket.
	ErrInvalidCategory = errors.New("category not in namespace allow-list")
	// ErrResolvedThread rejects tracking a thread the user already
	// closed for good.
	ErrResolvedThread = errors.New("thread already resolved")
)

// EventPublisher pushes domain events after a successful mutation.
// Publishing is best-effort: a broker outage never fails the mutation.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// Engine ties the store, evaluator, aggregator and event publishing
// together behind the operations the handlers call.
type Engine struct {
	store  StateStore
	pub    EventPublisher
	logger *zap.Logger
	eval   *Evaluator
	agg    *Aggregator
	now    func() time.Time
}

// NewEngine creates an engine on the real clock. pub may be nil when
// no broker is configured.
func NewEngine(store StateStore, pub EventPublisher, logger *zap.Logger) *Engine {
	return NewEngineAt(store, pub, logger, time.Now)
}

// NewEngineAt pins the clock, so cycle and prune boundaries can be
// driven exactly in tests.
func NewEngineAt(store StateStore, pub EventPublisher, logger *zap.Logger, now func() time.Time) *Engine {
	eval := NewEvaluatorAt(now)
	return &Engine{
		store:  store,
		pub:    pub,
		logger: logger,
		eval:   eval,
		agg:    NewAggregator(eval),
		now:    now,
	}
}

// Evaluator exposes the engine's clock-bound evaluator for callers
// that format time-remaining labels themselves.
func (e *Engine) Evaluator() *Evaluator {
	return e.eval
}

// LoadHome reads the home namespace and prunes expired entries before
// returning. Any load or decode failure degrades to the empty state:
// callers never see a "not found".
func (e *Engine) LoadHome(ctx context.Context) HomeState {
	blob, err := e.store.Load(ctx, NamespaceHome)
	if err != nil {
		e.logger.Warn("Review state load failed, using empty default",
			zap.String("namespace", NamespaceHome),
			zap.Error(err),
		)
		return EmptyHome()
	}
	state, err := decodeHome(blob)
	if err != nil {
		e.logger.Warn("Review state blob malformed, using empty default",
			zap.String("namespace", NamespaceHome),
			zap.Error(err),
		)
		return EmptyHome()
	}
	return PruneHome(state, e.now())
}

func (e *Engine) LoadCalendar(ctx context.Context) CalendarState {
	blob, err := e.store.Load(ctx, NamespaceCalendar)
	if err != nil {
		e.logger.Warn("Review state load failed, using empty default",
			zap.String("namespace", NamespaceCalendar),
			zap.Error(err),
		)
		return EmptyCalendar()
	}
	state, err := decodeCalendar(blob)
	if err != nil {
		e.logger.Warn("Review state blob malformed, using empty default",
			zap.String("namespace", NamespaceCalendar),
			zap.Error(err),
		)
		return EmptyCalendar()
	}
	return state
}

func (e *Engine) LoadFollowup(ctx context.Context) FollowupState {
	blob, err := e.store.Load(ctx, NamespaceFollowup)
	if err != nil {
		e.logger.Warn("Review state load failed, using empty default",
			zap.String("namespace", NamespaceFollowup),
			zap.Error(err),
		)
		return EmptyFollowup()
	}
	state, err := decodeFollowup(blob)
	if err != nil {
		e.logger.Warn("Review state blob malformed, using empty default",
			zap.String("namespace", NamespaceFollowup),
			zap.Error(err),
		)
		return EmptyFollowup()
	}
	return state
}

// EvaluateHome partitions one home category against a snapshot the
// caller loaded once for the whole request.
func (e *Engine) EvaluateHome(state HomeState, cat Category, items []model.Item, auto AutoReviewFn) Result {
	res := e.agg.Evaluate(cat, items, state[cat.Key], nil, auto)
	metrics.SetNeedsReview(cat.Key, res.Count)
	return res
}

func (e *Engine) EvaluateCalendar(state CalendarState, items []model.Item) Result {
	res := e.agg.Evaluate(CategoryCalendar, items, state.Reviews, nil, nil)
	metrics.SetNeedsReview(CategoryCalendar.Key, res.Count)
	return res
}

// EvaluateFollowup renders the tracked threads. The item list comes
// from the cached payloads in the blob itself, ordered by thread id
// for a stable rendering.
func (e *Engine) EvaluateFollowup(state FollowupState) Result {
	items := make([]model.Item, 0, len(state.Emails))
	for _, it := range state.Emails {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	res := e.agg.Evaluate(CategoryFollowup, items, state.Reviews, state.Resolved, nil)
	metrics.SetNeedsReview(CategoryFollowup.Key, res.Count)
	return res
}

// MarkReviewed stamps state[category][itemID] with the current UTC
// time. The whole namespace blob is rewritten in one save, so a failed
// write leaves the prior state untouched and a retry is safe.
func (e *Engine) MarkReviewed(ctx context.Context, namespace, categoryKey, itemID string) error {
	cat, ok := LookupCategory(namespace, categoryKey)
	if !ok || !cat.Writable() {
		metrics.IncrementReviewMutation("mark_reviewed", namespace, "rejected")
		e.logger.Warn("Rejected review mark for unknown category",
			zap.String("namespace", namespace),
			zap.String("category", categoryKey),
			zap.String("item_id", itemID),
		)
		return fmt.Errorf("%w: %s/%s", ErrInvalidCategory, namespace, categoryKey)
	}

	reviewedAt := e.now().UTC()
	stamp := reviewedAt.Format(time.RFC3339)

	var err error
	switch namespace {
	case NamespaceHome:
		state := e.LoadHome(ctx)
		entries := state[cat.Key]
		if entries == nil {
			entries = map[string]string{}
			state[cat.Key] = entries
		}
		entries[itemID] = stamp
		err = e.saveBlob(ctx, NamespaceHome, state)
	case NamespaceCalendar:
		state := e.LoadCalendar(ctx)
		state.Reviews[itemID] = stamp
		err = e.saveBlob(ctx, NamespaceCalendar, state)
	case NamespaceFollowup:
		state := e.LoadFollowup(ctx)
		state.Reviews[itemID] = stamp
		err = e.saveBlob(ctx, NamespaceFollowup, state)
	}
	if err != nil {
		metrics.IncrementReviewMutation("mark_reviewed", namespace, "error")
		return err
	}

	metrics.IncrementReviewMutation("mark_reviewed", namespace, "ok")
	e.logger.Info("Review marked",
		zap.String("namespace", namespace),
		zap.String("category", cat.Key),
		zap.String("item_id", itemID),
	)
	e.publish(contracts.EventReviewMarked, contracts.ReviewMarkedPayload{
		Namespace:  namespace,
		Category:   cat.Key,
		ItemID:     itemID,
		ReviewedAt: reviewedAt,
	})
	return nil
}

// TrackFollowUp caches an email thread into the followup namespace so
// it keeps appearing until resolved. Re-tracking a resolved thread is
// rejected: resolution is terminal.
func (e *Engine) TrackFollowUp(ctx context.Context, item model.Item) error {
	state := e.LoadFollowup(ctx)
	if _, done := state.Resolved[item.ID]; done {
		metrics.IncrementReviewMutation("track_followup", NamespaceFollowup, "rejected")
		e.logger.Warn("Rejected follow-up track for resolved thread",
			zap.String("thread_id", item.ID),
		)
		return fmt.Errorf("%w: %s", ErrResolvedThread, item.ID)
	}

	state.Emails[item.ID] = item
	if err := e.saveBlob(ctx, NamespaceFollowup, state); err != nil {
		metrics.IncrementReviewMutation("track_followup", NamespaceFollowup, "error")
		return err
	}

	metrics.IncrementReviewMutation("track_followup", NamespaceFollowup, "ok")
	e.logger.Info("Follow-up tracked",
		zap.String("thread_id", item.ID),
		zap.String("title", item.Title),
	)
	e.publish(contracts.EventFollowupTracked, contracts.FollowupTrackedPayload{
		ThreadID:  item.ID,
		Title:     item.Title,
		TrackedAt: e.now().UTC(),
	})
	return nil
}

// Resolve closes a thread permanently: the resolved mark survives, the
// cached payload and any review mark are deleted. Resolving an already
// resolved or unknown thread just refreshes the mark.
func (e *Engine) Resolve(ctx context.Context, itemID string) error {
	resolvedAt := e.now().UTC()

	state := e.LoadFollowup(ctx)
	state.Resolved[itemID] = resolvedAt.Format(time.RFC3339)
	delete(state.Emails, itemID)
	delete(state.Reviews, itemID)

	if err := e.saveBlob(ctx, NamespaceFollowup, state); err != nil {
		metrics.IncrementReviewMutation("resolve", NamespaceFollowup, "error")
		return err
	}

	metrics.IncrementReviewMutation("resolve", NamespaceFollowup, "ok")
	e.logger.Info("Follow-up resolved",
		zap.String("thread_id", itemID),
	)
	e.publish(contracts.EventFollowupResolved, contracts.FollowupResolvedPayload{
		ThreadID:   itemID,
		ResolvedAt: resolvedAt,
	})
	return nil
}

func (e *Engine) saveBlob(ctx context.Context, namespace string, state any) error {
	blob, err := json.Marshal(state)
	if err != nil {
		e.logger.Error("Failed to encode review state",
			zap.String("namespace", namespace),
			zap.Error(err),
		)
		return fmt.Errorf("encode %s state: %w", namespace, err)
	}
	if err := e.store.Save(ctx, namespace, blob); err != nil {
		e.logger.Error("Failed to save review state",
			zap.String("namespace", namespace),
			zap.Error(err),
		)
		return fmt.Errorf("save %s state: %w", namespace, err)
	}
	return nil
}

func (e *Engine) publish(routingKey string, payload any) {
	if e.pub == nil {
		return
	}
	if err := e.pub.Publish(routingKey, payload); err != nil {
		e.logger.Warn("Event publish failed",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}
