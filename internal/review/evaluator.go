package review

import (
	"fmt"
	"time"
)

// Timestamps written by this system are RFC 3339 UTC. Older blobs may
// carry timezone-naive strings; those are read as UTC.
const naiveLayout = "2006-01-02T15:04:05"

func parseReviewedAt(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(naiveLayout, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Evaluator answers whether an item is currently reviewed and how long
// until the review expires. The clock is injected so cycle boundaries
// can be tested exactly.
type Evaluator struct {
	now func() time.Time
}

func NewEvaluator() *Evaluator {
	return &Evaluator{now: time.Now}
}

func NewEvaluatorAt(now func() time.Time) *Evaluator {
	return &Evaluator{now: now}
}

func (c Category) cycle() time.Duration {
	return time.Duration(c.CycleDays * float64(24*time.Hour))
}

// IsReviewed reports whether itemID holds an unexpired review mark in
// the given category map. Absent entries, unparsable timestamps, and
// zero-cycle categories all fail toward "needs review": the engine may
// show the user something twice but never silently hides an item.
func (e *Evaluator) IsReviewed(reviews map[string]string, itemID string, cat Category) bool {
	if cat.CycleDays <= 0 {
		return false
	}
	raw, ok := reviews[itemID]
	if !ok {
		return false
	}
	reviewedAt, ok := parseReviewedAt(raw)
	if !ok {
		return false
	}
	elapsed := e.now().Sub(reviewedAt)
	return elapsed < cat.cycle()
}

// TimeRemaining returns the time left before the review expires,
// rendered as whole days when at least a day remains and whole hours
// below that. Unreviewed and expired items yield the empty string.
func (e *Evaluator) TimeRemaining(reviews map[string]string, itemID string, cat Category) string {
	if cat.CycleDays <= 0 {
		return ""
	}
	raw, ok := reviews[itemID]
	if !ok {
		return ""
	}
	reviewedAt, ok := parseReviewedAt(raw)
	if !ok {
		return ""
	}
	remaining := cat.cycle() - e.now().Sub(reviewedAt)
	if remaining <= 0 {
		return ""
	}
	return formatRemaining(remaining)
}

func formatRemaining(d time.Duration) string {
	hours := int(d.Hours())
	if hours >= 24 {
		return fmt.Sprintf("%dd", hours/24)
	}
	return fmt.Sprintf("%dh", hours)
}
