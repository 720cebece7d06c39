package review

// Retention controls what happens to reviewed items in a rendered
// section: triage queues hide them, persistent worklists keep them
// visible with a muted treatment.
type Retention int

const (
	HideWhenReviewed Retention = iota
	AlwaysShow
)

// Category is a named bucket of items sharing one review policy.
// The set is closed: writes against a key outside the table are
// rejected rather than creating a new bucket on the fly.
type Category struct {
	Key       string
	Namespace string
	// CycleDays is how many days a review stays valid. Zero disables
	// review tracking entirely: the item always needs review.
	CycleDays float64
	Retention Retention
	// CountsTowardBadge folds this category's needs-review count into
	// the namespace badge total. Persistent worklists (inbox) and the
	// unread headline keep their own numbers instead.
	CountsTowardBadge bool
	// PruneAfterDays is the home pruner's max entry age for this
	// category. Zero means the category is never persisted.
	PruneAfterDays int
}

var (
	CategoryCommit   = Category{Key: "commit", Namespace: NamespaceHome, CycleDays: 1, Retention: AlwaysShow, CountsTowardBadge: true, PruneAfterDays: 2}
	CategoryBestcase = Category{Key: "bestcase", Namespace: NamespaceHome, CycleDays: 1, Retention: HideWhenReviewed, CountsTowardBadge: true, PruneAfterDays: 2}
	CategoryP1       = Category{Key: "p1", Namespace: NamespaceHome, CycleDays: 7, Retention: HideWhenReviewed, CountsTowardBadge: true, PruneAfterDays: 8}
	CategoryStarred  = Category{Key: "starred", Namespace: NamespaceHome, CycleDays: 1, Retention: HideWhenReviewed, CountsTowardBadge: true, PruneAfterDays: 2}
	CategoryInbox    = Category{Key: "inbox", Namespace: NamespaceHome, CycleDays: 1, Retention: AlwaysShow, CountsTowardBadge: false, PruneAfterDays: 2}
	CategoryUnread   = Category{Key: "unread", Namespace: NamespaceHome, CycleDays: 0, Retention: AlwaysShow, CountsTowardBadge: false}
	CategoryCalendar = Category{Key: "calendar", Namespace: NamespaceCalendar, CycleDays: 7, Retention: HideWhenReviewed, CountsTowardBadge: true}
	CategoryFollowup = Category{Key: "followup", Namespace: NamespaceFollowup, CycleDays: 7, Retention: HideWhenReviewed, CountsTowardBadge: true}
)

var categories = []Category{
	CategoryCommit,
	CategoryBestcase,
	CategoryP1,
	CategoryStarred,
	CategoryInbox,
	CategoryUnread,
	CategoryCalendar,
	CategoryFollowup,
}

// defaultPruneWindowDays covers stored home categories that are no
// longer in the table: legacy entries age out on the daily window.
const defaultPruneWindowDays = 2

// LookupCategory finds a category by key within a namespace.
func LookupCategory(namespace, key string) (Category, bool) {
	for _, c := range categories {
		if c.Namespace == namespace && c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// Categories returns all categories belonging to a namespace.
func Categories(namespace string) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if c.Namespace == namespace {
			out = append(out, c)
		}
	}
	return out
}

// Writable reports whether mark-reviewed may target this category.
// Zero-cycle categories have no review concept, so nothing is ever
// persisted for them.
func (c Category) Writable() bool {
	return c.CycleDays > 0
}

func pruneWindowDays(categoryKey string) int {
	if c, ok := LookupCategory(NamespaceHome, categoryKey); ok && c.PruneAfterDays > 0 {
		return c.PruneAfterDays
	}
	return defaultPruneWindowDays
}
