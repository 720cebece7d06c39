package review

// BadgeSet is the small set of integers the UI shell polls, plus the
// per-category counts each section header renders.
type BadgeSet struct {
	Home       int            `json:"home"`
	Calendar   int            `json:"calendar"`
	Followup   int            `json:"followup"`
	Unread     int            `json:"unread"`
	Categories map[string]int `json:"categories"`
}

// NamespaceBadge sums per-category needs-review counts into one badge
// number. Only categories flagged CountsTowardBadge contribute: inbox
// keeps its own per-section number without inflating the home
// headline, and unread has a separate counter entirely.
func NamespaceBadge(namespace string, counts map[string]int) int {
	total := 0
	for _, c := range Categories(namespace) {
		if !c.CountsTowardBadge {
			continue
		}
		total += counts[c.Key]
	}
	return total
}
