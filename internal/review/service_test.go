package review

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/model"
)

type memStore struct {
	blobs   map[string][]byte
	loadErr error
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}}
}

func (m *memStore) Load(_ context.Context, namespace string) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.blobs[namespace], nil
}

func (m *memStore) Save(_ context.Context, namespace string, blob []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.blobs[namespace] = blob
	return nil
}

type stubPublisher struct {
	keys []string
	err  error
}

func (p *stubPublisher) Publish(routingKey string, _ any) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, routingKey)
	return nil
}

func testEngine(t *testing.T, store StateStore, pub EventPublisher, now time.Time) *Engine {
	t.Helper()
	return NewEngineAt(store, pub, zap.NewNop(), fixedClock(now))
}

func TestMarkReviewedIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	cur := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	engine := NewEngineAt(store, nil, zap.NewNop(), func() time.Time { return cur })

	if err := engine.MarkReviewed(ctx, NamespaceHome, "commit", "t1"); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	cur = cur.Add(time.Hour)
	if err := engine.MarkReviewed(ctx, NamespaceHome, "commit", "t1"); err != nil {
		t.Fatalf("second mark: %v", err)
	}

	state := engine.LoadHome(ctx)
	entries := state["commit"]
	if len(entries) != 1 {
		t.Fatalf("commit has %d entries, want 1: %v", len(entries), entries)
	}
	if got := entries["t1"]; got != cur.Format(time.RFC3339) {
		t.Errorf("reviewed-at = %q, want the later mark %q", got, cur.Format(time.RFC3339))
	}
}

func TestMarkReviewedRejectsUnknownCategory(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	now := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	engine := testEngine(t, store, nil, now)

	cases := []struct {
		name      string
		namespace string
		category  string
	}{
		{"unknown key", NamespaceHome, "sprint"},
		{"zero-cycle category", NamespaceHome, "unread"},
		{"key from another namespace", NamespaceCalendar, "commit"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := engine.MarkReviewed(ctx, tc.namespace, tc.category, "t1")
			if !errors.Is(err, ErrInvalidCategory) {
				t.Fatalf("err = %v, want ErrInvalidCategory", err)
			}
		})
	}

	if len(store.blobs) != 0 {
		t.Errorf("rejected writes must not persist anything, got %v", store.blobs)
	}
}

func TestMarkReviewedPerNamespace(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	now := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	engine := testEngine(t, store, nil, now)

	if err := engine.MarkReviewed(ctx, NamespaceCalendar, "calendar", "evt-1"); err != nil {
		t.Fatalf("calendar mark: %v", err)
	}
	if err := engine.MarkReviewed(ctx, NamespaceFollowup, "followup", "th-1"); err != nil {
		t.Fatalf("followup mark: %v", err)
	}

	cal := engine.LoadCalendar(ctx)
	if _, ok := cal.Reviews["evt-1"]; !ok {
		t.Error("calendar review mark missing")
	}
	fu := engine.LoadFollowup(ctx)
	if _, ok := fu.Reviews["th-1"]; !ok {
		t.Error("followup review mark missing")
	}
}

func TestResolveIsTerminal(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	now := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	engine := testEngine(t, store, nil, now)

	if err := engine.TrackFollowUp(ctx, model.Item{ID: "th-1", Title: "waiting on reply"}); err != nil {
		t.Fatalf("track: %v", err)
	}
	if res := engine.EvaluateFollowup(engine.LoadFollowup(ctx)); res.Count != 1 {
		t.Fatalf("tracked thread should need review, count = %d", res.Count)
	}

	if err := engine.Resolve(ctx, "th-1"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	state := engine.LoadFollowup(ctx)
	if _, ok := state.Resolved["th-1"]; !ok {
		t.Error("resolved mark missing")
	}
	if _, ok := state.Emails["th-1"]; ok {
		t.Error("cached payload should be deleted on resolve")
	}
	if _, ok := state.Reviews["th-1"]; ok {
		t.Error("review mark should be deleted on resolve")
	}

	res := engine.EvaluateFollowup(state)
	if res.Count != 0 || len(res.NeedsReview) != 0 || len(res.Reviewed) != 0 {
		t.Errorf("resolved thread resurfaced: %+v", res)
	}

	if err := engine.TrackFollowUp(ctx, model.Item{ID: "th-1"}); !errors.Is(err, ErrResolvedThread) {
		t.Errorf("re-tracking a resolved thread: err = %v, want ErrResolvedThread", err)
	}
}

func TestLoadDegradesToEmptyDefaults(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)

	t.Run("store read failure", func(t *testing.T) {
		store := newMemStore()
		store.loadErr = errors.New("backend unreachable")
		engine := testEngine(t, store, nil, now)

		if got := engine.LoadHome(ctx); len(got) != 0 {
			t.Errorf("home = %v, want empty", got)
		}
		if got := engine.LoadCalendar(ctx); len(got.Reviews) != 0 {
			t.Errorf("calendar = %v, want empty", got)
		}
		if got := engine.LoadFollowup(ctx); len(got.Emails)+len(got.Reviews)+len(got.Resolved) != 0 {
			t.Errorf("followup = %v, want empty", got)
		}
	})

	t.Run("malformed blob", func(t *testing.T) {
		store := newMemStore()
		store.blobs[NamespaceHome] = []byte(`{"commit": 41`)
		store.blobs[NamespaceCalendar] = []byte(`not json`)
		engine := testEngine(t, store, nil, now)

		if got := engine.LoadHome(ctx); len(got) != 0 {
			t.Errorf("home = %v, want empty", got)
		}
		if got := engine.LoadCalendar(ctx); len(got.Reviews) != 0 {
			t.Errorf("calendar = %v, want empty", got)
		}
	})
}

func TestSaveFailureSurfacesAndLeavesStateIntact(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)

	store := newMemStore()
	engine := testEngine(t, store, nil, now)
	if err := engine.MarkReviewed(ctx, NamespaceHome, "commit", "t1"); err != nil {
		t.Fatalf("seed mark: %v", err)
	}

	store.saveErr = errors.New("disk full")
	if err := engine.MarkReviewed(ctx, NamespaceHome, "commit", "t2"); err == nil {
		t.Fatal("mark with failing save should error")
	}

	store.saveErr = nil
	state := engine.LoadHome(ctx)
	if _, ok := state["commit"]["t1"]; !ok {
		t.Error("prior mark lost after failed write")
	}
	if _, ok := state["commit"]["t2"]; ok {
		t.Error("failed write must not partially apply")
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	pub := &stubPublisher{err: errors.New("broker down")}
	engine := testEngine(t, newMemStore(), pub, now)

	if err := engine.MarkReviewed(ctx, NamespaceHome, "commit", "t1"); err != nil {
		t.Fatalf("mutation should succeed despite publish failure: %v", err)
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	pub := &stubPublisher{}
	engine := testEngine(t, newMemStore(), pub, now)

	if err := engine.MarkReviewed(ctx, NamespaceHome, "commit", "t1"); err != nil {
		t.Fatal(err)
	}
	if err := engine.TrackFollowUp(ctx, model.Item{ID: "th-1"}); err != nil {
		t.Fatal(err)
	}
	if err := engine.Resolve(ctx, "th-1"); err != nil {
		t.Fatal(err)
	}

	want := []string{"review.marked", "followup.tracked", "followup.resolved"}
	if len(pub.keys) != len(want) {
		t.Fatalf("published %v, want %v", pub.keys, want)
	}
	for i := range want {
		if pub.keys[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, pub.keys[i], want[i])
		}
	}
}

func TestHomeLoadPrunesStaleEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)

	store := newMemStore()
	blob, _ := json.Marshal(HomeState{
		"commit": {
			"stale": now.Add(-3 * 24 * time.Hour).Format(time.RFC3339),
			"fresh": now.Add(-time.Hour).Format(time.RFC3339),
		},
		"starred": {
			"gone": now.Add(-10 * 24 * time.Hour).Format(time.RFC3339),
		},
	})
	store.blobs[NamespaceHome] = blob

	engine := testEngine(t, store, nil, now)
	state := engine.LoadHome(ctx)

	if _, ok := state["commit"]["stale"]; ok {
		t.Error("stale commit entry should be pruned on load")
	}
	if _, ok := state["commit"]["fresh"]; !ok {
		t.Error("fresh commit entry should survive")
	}
	if _, ok := state["starred"]; ok {
		t.Error("fully expired category should disappear")
	}

	// The next write persists the compacted snapshot.
	if err := engine.MarkReviewed(ctx, NamespaceHome, "commit", "t9"); err != nil {
		t.Fatal(err)
	}
	persisted, err := decodeHome(store.blobs[NamespaceHome])
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := persisted["commit"]["stale"]; ok {
		t.Error("write-back should persist the pruned snapshot")
	}
	if _, ok := persisted["commit"]["t9"]; !ok {
		t.Error("new mark missing from persisted blob")
	}
}

func TestEvaluateHomeUsesCategorySnapshot(t *testing.T) {
	now := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	engine := testEngine(t, newMemStore(), nil, now)

	state := HomeState{
		"p1": {"t1": now.Add(-time.Hour).Format(time.RFC3339)},
	}
	items := []model.Item{{ID: "t1"}, {ID: "t2"}}

	res := engine.EvaluateHome(state, CategoryP1, items, nil)
	if res.Count != 1 {
		t.Errorf("count = %d, want 1", res.Count)
	}
	if got := itemIDs(res.NeedsReview); len(got) != 1 || got[0] != "t2" {
		t.Errorf("needs-review = %v, want [t2]", got)
	}
}
