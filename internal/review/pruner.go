package review

import "time"

// PruneHome compacts a home-namespace snapshot: entries whose age in
// whole days meets the category's retention window are dropped, as are
// categories left empty and entries whose timestamp no longer parses.
// This runs on every home load. It only builds the compacted snapshot;
// nothing is written back until the next user action persists state.
func PruneHome(state HomeState, now time.Time) HomeState {
	pruned := EmptyHome()
	for cat, entries := range state {
		window := pruneWindowDays(cat)
		kept := map[string]string{}
		for id, raw := range entries {
			reviewedAt, ok := parseReviewedAt(raw)
			if !ok {
				continue
			}
			ageDays := int(now.Sub(reviewedAt).Hours() / 24)
			if ageDays >= window {
				continue
			}
			kept[id] = raw
		}
		if len(kept) > 0 {
			pruned[cat] = kept
		}
	}
	return pruned
}
