package review

import (
	"testing"
	"time"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/model"
)

func itemIDs(items []EvaluatedItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func TestEvaluateRetentionVariants(t *testing.T) {
	now := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	agg := NewAggregator(NewEvaluatorAt(fixedClock(now)))

	items := []model.Item{
		{ID: "t1", Title: "first"},
		{ID: "t2", Title: "second"},
		{ID: "t3", Title: "third"},
	}
	reviews := map[string]string{"t2": now.Add(-time.Hour).Format(time.RFC3339)}

	t.Run("always-show keeps reviewed items visible", func(t *testing.T) {
		res := agg.Evaluate(CategoryInbox, items, reviews, nil, nil)
		if got := itemIDs(res.NeedsReview); len(got) != 2 || got[0] != "t1" || got[1] != "t3" {
			t.Errorf("needs-review = %v, want [t1 t3]", got)
		}
		if got := itemIDs(res.Reviewed); len(got) != 1 || got[0] != "t2" {
			t.Errorf("reviewed = %v, want [t2]", got)
		}
		if res.Count != 2 {
			t.Errorf("count = %d, want 2 (reviewed-but-shown items never count)", res.Count)
		}
	})

	t.Run("hide-when-reviewed suppresses the reviewed bucket", func(t *testing.T) {
		res := agg.Evaluate(CategoryBestcase, items, reviews, nil, nil)
		if got := itemIDs(res.NeedsReview); len(got) != 2 || got[0] != "t1" || got[1] != "t3" {
			t.Errorf("needs-review = %v, want [t1 t3]", got)
		}
		if len(res.Reviewed) != 0 {
			t.Errorf("reviewed = %v, want empty for a triage queue", itemIDs(res.Reviewed))
		}
		if res.Count != 2 {
			t.Errorf("count = %d, want 2", res.Count)
		}
	})
}

func TestEvaluatePreservesInputOrder(t *testing.T) {
	now := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	agg := NewAggregator(NewEvaluatorAt(fixedClock(now)))

	items := []model.Item{
		{ID: "z"}, {ID: "a"}, {ID: "m"}, {ID: "b"},
	}

	res := agg.Evaluate(CategoryP1, items, nil, nil, nil)
	got := itemIDs(res.NeedsReview)
	want := []string{"z", "a", "m", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("needs-review order = %v, want %v", got, want)
		}
	}
}

func TestEvaluateAutoReviewByDueDate(t *testing.T) {
	now := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	agg := NewAggregator(NewEvaluatorAt(fixedClock(now)))
	auto := DueAfterToday(now)

	tomorrow := now.AddDate(0, 0, 1)
	yesterday := now.AddDate(0, 0, -1)
	laterToday := now.Add(2 * time.Hour)

	items := []model.Item{
		{ID: "future", Due: &tomorrow},
		{ID: "past", Due: &yesterday},
		{ID: "today", Due: &laterToday},
		{ID: "undated"},
	}

	res := agg.Evaluate(CategoryCommit, items, nil, nil, auto)

	if got := itemIDs(res.NeedsReview); len(got) != 3 || got[0] != "past" || got[1] != "today" || got[2] != "undated" {
		t.Errorf("needs-review = %v, want [past today undated]", got)
	}
	if got := itemIDs(res.Reviewed); len(got) != 1 || got[0] != "future" {
		t.Errorf("reviewed = %v, want [future]", got)
	}
	if res.Reviewed[0].TimeRemaining != "" {
		t.Errorf("auto-reviewed item has countdown %q, want none", res.Reviewed[0].TimeRemaining)
	}
	if res.Count != 3 {
		t.Errorf("count = %d, want 3", res.Count)
	}
}

func TestEvaluateDropsResolvedThreads(t *testing.T) {
	now := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	agg := NewAggregator(NewEvaluatorAt(fixedClock(now)))

	// th1 was resolved but still shows up in the fetched list; it must
	// not come back in either bucket.
	items := []model.Item{
		{ID: "th1", Title: "closed thread"},
		{ID: "th2", Title: "open thread"},
	}
	resolved := map[string]string{"th1": now.Add(-time.Hour).Format(time.RFC3339)}

	res := agg.Evaluate(CategoryFollowup, items, nil, resolved, nil)

	if got := itemIDs(res.NeedsReview); len(got) != 1 || got[0] != "th2" {
		t.Errorf("needs-review = %v, want [th2]", got)
	}
	if len(res.Reviewed) != 0 {
		t.Errorf("reviewed = %v, want empty", itemIDs(res.Reviewed))
	}
	if res.Count != 1 {
		t.Errorf("count = %d, want 1", res.Count)
	}
}

func TestEvaluateReviewedItemCarriesCountdown(t *testing.T) {
	now := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	agg := NewAggregator(NewEvaluatorAt(fixedClock(now)))

	items := []model.Item{{ID: "t1"}}
	reviews := map[string]string{"t1": now.Add(-12 * time.Hour).Format(time.RFC3339)}

	res := agg.Evaluate(CategoryCommit, items, reviews, nil, nil)
	if len(res.Reviewed) != 1 {
		t.Fatalf("reviewed = %v, want [t1]", itemIDs(res.Reviewed))
	}
	if got := res.Reviewed[0].TimeRemaining; got != "12h" {
		t.Errorf("TimeRemaining = %q, want 12h", got)
	}
}
