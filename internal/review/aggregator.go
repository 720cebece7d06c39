package review

import (
	"time"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/model"
)

// AutoReviewFn short-circuits the store lookup when an intrinsic item
// property already implies no attention is needed.
type AutoReviewFn func(model.Item) bool

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DueAfterToday treats items whose due date falls strictly after
// today's date as auto-reviewed. Items without a due date never match.
func DueAfterToday(now time.Time) AutoReviewFn {
	today := startOfDay(now)
	return func(it model.Item) bool {
		if it.Due == nil {
			return false
		}
		return startOfDay(*it.Due).After(today)
	}
}

// EvaluatedItem is an item paired with its remaining review window,
// empty for items that currently need attention.
type EvaluatedItem struct {
	model.Item
	TimeRemaining string `json:"time_remaining,omitempty"`
}

// Result is one category's rendered partition. Count always reflects
// the needs-review bucket, never the reviewed one.
type Result struct {
	NeedsReview []EvaluatedItem `json:"needs_review"`
	Reviewed    []EvaluatedItem `json:"reviewed"`
	Count       int             `json:"count"`
}

// Aggregator merges freshly fetched items with stored review state.
type Aggregator struct {
	eval *Evaluator
}

func NewAggregator(eval *Evaluator) *Aggregator {
	return &Aggregator{eval: eval}
}

// Evaluate walks items in input order and partitions them. Resolved
// ids are dropped before anything else so a stale upstream fetch can
// never resurrect a thread the user closed. Reviewed items stay in
// the output only for always-show categories; hide-when-reviewed
// categories compute the partition for the count and suppress the
// reviewed bucket from the rendered result.
func (a *Aggregator) Evaluate(cat Category, items []model.Item, reviews map[string]string, resolved map[string]string, auto AutoReviewFn) Result {
	res := Result{
		NeedsReview: []EvaluatedItem{},
		Reviewed:    []EvaluatedItem{},
	}

	for _, it := range items {
		if resolved != nil {
			if _, done := resolved[it.ID]; done {
				continue
			}
		}

		reviewed := false
		if auto != nil && auto(it) {
			reviewed = true
		} else {
			reviewed = a.eval.IsReviewed(reviews, it.ID, cat)
		}

		if !reviewed {
			res.NeedsReview = append(res.NeedsReview, EvaluatedItem{Item: it})
			continue
		}
		if cat.Retention == AlwaysShow {
			res.Reviewed = append(res.Reviewed, EvaluatedItem{
				Item:          it,
				TimeRemaining: a.eval.TimeRemaining(reviews, it.ID, cat),
			})
		}
	}

	res.Count = len(res.NeedsReview)
	return res
}
