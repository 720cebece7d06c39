package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/model"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/provider"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/repository"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/review"
)

type fakeSource struct {
	name    string
	items   []model.Item
	err     error
	fetches int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(_ context.Context) ([]model.Item, error) {
	f.fetches++
	return f.items, f.err
}

type fakeTracker struct {
	card model.Card
	err  error
}

func (f *fakeTracker) TrackedToday(_ context.Context) (model.Card, error) {
	return f.card, f.err
}

func testClock() time.Time {
	return time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, sources []provider.Source, tracker TimeTracker) (*DashboardService, *review.Engine) {
	t.Helper()
	now := testClock()
	engine := review.NewEngineAt(repository.NewStateMemory(), nil, zap.NewNop(), func() time.Time { return now })
	svc := NewDashboardService(engine, sources, tracker, 4, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc, engine
}

func TestDashboardAggregatesSectionsAndBadges(t *testing.T) {
	ctx := context.Background()
	sources := []provider.Source{
		&fakeSource{name: "commit", items: []model.Item{{ID: "c1", Title: "daily push"}, {ID: "c2", Title: "weekly review"}}},
		&fakeSource{name: "starred", items: []model.Item{{ID: "s1"}}},
		&fakeSource{name: "inbox", items: []model.Item{{ID: "i1"}, {ID: "i2"}, {ID: "i3"}}},
		&fakeSource{name: "unread", items: []model.Item{{ID: "u1"}, {ID: "u2"}}},
		&fakeSource{name: "calendar", items: []model.Item{{ID: "ev1", Title: "dentist"}}},
	}
	tracker := &fakeTracker{card: model.Card{Source: "toggl", Label: "Tracked today", Value: "2h10m"}}

	svc, engine := newTestService(t, sources, tracker)

	// One commit item already reviewed this cycle.
	if err := engine.MarkReviewed(ctx, review.NamespaceHome, "commit", "c1"); err != nil {
		t.Fatal(err)
	}

	view := svc.Dashboard(ctx)

	commit := view.Sections["commit"]
	if commit.Count != 1 {
		t.Errorf("commit count = %d, want 1", commit.Count)
	}
	if len(commit.Reviewed) != 1 || commit.Reviewed[0].ID != "c1" {
		t.Errorf("commit reviewed = %+v, want c1 visible in the worklist", commit.Reviewed)
	}

	// home badge: commit 1 + bestcase 0 + p1 0 + starred 1. inbox and
	// unread stay out of the headline.
	if view.Badges.Home != 2 {
		t.Errorf("home badge = %d, want 2", view.Badges.Home)
	}
	if view.Badges.Unread != 2 {
		t.Errorf("unread badge = %d, want 2", view.Badges.Unread)
	}
	if view.Badges.Calendar != 1 {
		t.Errorf("calendar badge = %d, want 1", view.Badges.Calendar)
	}
	if view.Badges.Followup != 0 {
		t.Errorf("followup badge = %d, want 0", view.Badges.Followup)
	}
	if got := view.Badges.Categories["inbox"]; got != 3 {
		t.Errorf("per-category inbox count = %d, want 3", got)
	}
	if got := view.Badges.Categories["calendar"]; got != 1 {
		t.Errorf("per-category calendar count = %d, want 1", got)
	}

	if got := view.Sections["inbox"]; got.Count != 3 {
		t.Errorf("inbox count = %d, want 3", got.Count)
	}
	if _, ok := view.Sections["followup"]; !ok {
		t.Error("followup section missing")
	}
	if len(view.Cards) != 1 || view.Cards[0].Value != "2h10m" {
		t.Errorf("cards = %+v", view.Cards)
	}
	if view.GeneratedAt != testClock() {
		t.Errorf("generated_at = %v", view.GeneratedAt)
	}
}

func TestDashboardSurvivesDeadSourceAndTracker(t *testing.T) {
	ctx := context.Background()
	sources := []provider.Source{
		&fakeSource{name: "commit", items: []model.Item{{ID: "c1"}}},
		&fakeSource{name: "starred", err: errors.New("gmail 503")},
	}
	tracker := &fakeTracker{err: errors.New("toggl down")}

	svc, _ := newTestService(t, sources, tracker)
	view := svc.Dashboard(ctx)

	if got := view.Sections["starred"]; got.Count != 0 || len(got.NeedsReview) != 0 {
		t.Errorf("dead source section = %+v, want empty", got)
	}
	if got := view.Sections["commit"]; got.Count != 1 {
		t.Errorf("healthy section count = %d, want 1", got.Count)
	}
	if len(view.Cards) != 0 {
		t.Errorf("cards = %+v, want none when the tracker is down", view.Cards)
	}
}

func TestDashboardAutoReviewsFutureDatedTasks(t *testing.T) {
	ctx := context.Background()
	tomorrow := testClock().AddDate(0, 0, 1)
	yesterday := testClock().AddDate(0, 0, -1)
	sources := []provider.Source{
		&fakeSource{name: "p1", items: []model.Item{
			{ID: "deferred", Due: &tomorrow},
			{ID: "overdue", Due: &yesterday},
		}},
	}

	svc, _ := newTestService(t, sources, nil)
	view := svc.Dashboard(ctx)

	p1 := view.Sections["p1"]
	if p1.Count != 1 {
		t.Errorf("p1 count = %d, want only the overdue task", p1.Count)
	}
	if len(p1.NeedsReview) != 1 || p1.NeedsReview[0].ID != "overdue" {
		t.Errorf("p1 needs-review = %+v", p1.NeedsReview)
	}
}

func TestSectionFetchesOnlyItsOwnSource(t *testing.T) {
	ctx := context.Background()
	commit := &fakeSource{name: "commit", items: []model.Item{{ID: "c1"}}}
	starred := &fakeSource{name: "starred", items: []model.Item{{ID: "s1"}}}

	svc, _ := newTestService(t, []provider.Source{commit, starred}, nil)

	res, err := svc.Section(ctx, "commit")
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 1 {
		t.Errorf("count = %d, want 1", res.Count)
	}
	if commit.fetches != 1 || starred.fetches != 0 {
		t.Errorf("fetches = commit:%d starred:%d, want 1/0", commit.fetches, starred.fetches)
	}
}

func TestSectionFollowupNeedsNoSource(t *testing.T) {
	ctx := context.Background()
	svc, engine := newTestService(t, nil, nil)

	if err := engine.TrackFollowUp(ctx, model.Item{ID: "th-1", Title: "waiting"}); err != nil {
		t.Fatal(err)
	}

	res, err := svc.Section(ctx, "followup")
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 1 || res.NeedsReview[0].ID != "th-1" {
		t.Errorf("followup section = %+v", res)
	}
}

func TestSectionUnknownKey(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	if _, err := svc.Section(context.Background(), "sprint"); !errors.Is(err, ErrUnknownSection) {
		t.Errorf("err = %v, want ErrUnknownSection", err)
	}
}
