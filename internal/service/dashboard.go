package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/model"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/provider"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/review"
)

var ErrUnknownSection = errors.New("unknown section")

// taskFed marks the home categories whose items carry due dates, so a
// future-dated item counts as needing no attention yet.
var taskFed = map[string]bool{
	"commit":   true,
	"bestcase": true,
	"p1":       true,
	"inbox":    true,
}

// TimeTracker contributes the tracked-time tile.
type TimeTracker interface {
	TrackedToday(ctx context.Context) (model.Card, error)
}

// DashboardView is the full aggregation the UI shell renders.
type DashboardView struct {
	Sections    map[string]review.Result `json:"sections"`
	Badges      review.BadgeSet          `json:"badges"`
	Cards       []model.Card             `json:"cards"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// DashboardService joins the provider fetches with stored review state
// into the rendered sections and badge numbers.
type DashboardService struct {
	engine  *review.Engine
	sources []provider.Source
	tracker TimeTracker
	workers int
	logger  *zap.Logger
	now     func() time.Time
}

// NewDashboardService takes the full source list, home categories and
// calendar alike, each named after the category it feeds. tracker may
// be nil when time tracking is not configured.
func NewDashboardService(engine *review.Engine, sources []provider.Source, tracker TimeTracker, workers int, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		engine:  engine,
		sources: sources,
		tracker: tracker,
		workers: workers,
		logger:  logger,
		now:     time.Now,
	}
}

// Dashboard fetches every source concurrently, evaluates all sections
// and computes the badges. It never fails as a whole: dead providers
// degrade to empty sections and an unreachable store reads as empty.
func (s *DashboardService) Dashboard(ctx context.Context) *DashboardView {
	fetched := provider.FetchAll(ctx, s.sources, s.workers, s.logger)

	homeState := s.engine.LoadHome(ctx)
	calState := s.engine.LoadCalendar(ctx)
	fuState := s.engine.LoadFollowup(ctx)

	auto := review.DueAfterToday(s.now())

	sections := make(map[string]review.Result)
	counts := make(map[string]int)

	for _, cat := range review.Categories(review.NamespaceHome) {
		items := fetched[cat.Key]
		var pred review.AutoReviewFn
		if taskFed[cat.Key] {
			pred = auto
		}
		res := s.engine.EvaluateHome(homeState, cat, items, pred)
		sections[cat.Key] = res
		counts[cat.Key] = res.Count
	}

	calRes := s.engine.EvaluateCalendar(calState, fetched[review.CategoryCalendar.Key])
	sections[review.CategoryCalendar.Key] = calRes

	fuRes := s.engine.EvaluateFollowup(fuState)
	sections[review.CategoryFollowup.Key] = fuRes
	counts[review.CategoryCalendar.Key] = calRes.Count
	counts[review.CategoryFollowup.Key] = fuRes.Count

	badges := review.BadgeSet{
		Home:       review.NamespaceBadge(review.NamespaceHome, counts),
		Calendar:   calRes.Count,
		Followup:   fuRes.Count,
		Unread:     counts[review.CategoryUnread.Key],
		Categories: counts,
	}

	view := &DashboardView{
		Sections:    sections,
		Badges:      badges,
		Cards:       s.cards(ctx),
		GeneratedAt: s.now().UTC(),
	}

	s.logger.Info("Dashboard aggregated",
		zap.Int("sections", len(sections)),
		zap.Int("home_badge", badges.Home),
		zap.Int("calendar_badge", badges.Calendar),
		zap.Int("followup_badge", badges.Followup),
	)
	return view
}

// Badges recomputes the poll payload. Same degradation rules as the
// full dashboard.
func (s *DashboardService) Badges(ctx context.Context) review.BadgeSet {
	return s.Dashboard(ctx).Badges
}

// Section renders a single category, fetching only its own source.
func (s *DashboardService) Section(ctx context.Context, key string) (review.Result, error) {
	if cat, ok := review.LookupCategory(review.NamespaceHome, key); ok {
		items := s.fetchOne(ctx, key)
		state := s.engine.LoadHome(ctx)
		var pred review.AutoReviewFn
		if taskFed[key] {
			pred = review.DueAfterToday(s.now())
		}
		return s.engine.EvaluateHome(state, cat, items, pred), nil
	}
	if key == review.CategoryCalendar.Key {
		items := s.fetchOne(ctx, key)
		return s.engine.EvaluateCalendar(s.engine.LoadCalendar(ctx), items), nil
	}
	if key == review.CategoryFollowup.Key {
		return s.engine.EvaluateFollowup(s.engine.LoadFollowup(ctx)), nil
	}
	return review.Result{}, ErrUnknownSection
}

func (s *DashboardService) fetchOne(ctx context.Context, name string) []model.Item {
	for _, src := range s.sources {
		if src.Name() != name {
			continue
		}
		items, err := src.Fetch(ctx)
		if err != nil {
			s.logger.Warn("Source fetch failed, section degrades to empty",
				zap.String("source", name),
				zap.Error(err),
			)
			return []model.Item{}
		}
		return items
	}
	return []model.Item{}
}

func (s *DashboardService) cards(ctx context.Context) []model.Card {
	if s.tracker == nil {
		return []model.Card{}
	}
	card, err := s.tracker.TrackedToday(ctx)
	if err != nil {
		s.logger.Warn("Time tracker unavailable, dropping card", zap.Error(err))
		return []model.Card{}
	}
	return []model.Card{card}
}
