package mq

import "time"

// 事件路由键，topic exchange "events"
const (
	EventReviewMarked     = "review.marked"
	EventFollowupTracked  = "followup.tracked"
	EventFollowupResolved = "followup.resolved"
)

// ReviewMarkedPayload 用户标记某项已复查
type ReviewMarkedPayload struct {
	Namespace  string    `json:"namespace"`
	Category   string    `json:"category"`
	ItemID     string    `json:"item_id"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

type FollowupTrackedPayload struct {
	ThreadID  string    `json:"thread_id"`
	Title     string    `json:"title"`
	TrackedAt time.Time `json:"tracked_at"`
}

type FollowupResolvedPayload struct {
	ThreadID   string    `json:"thread_id"`
	ResolvedAt time.Time `json:"resolved_at"`
}
