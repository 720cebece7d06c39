package model

import "time"

// Item is one unit of attention on the dashboard: a task, an email
// thread, a calendar event. The ID is assigned by the provider and
// treated as opaque everywhere downstream.
type Item struct {
	ID      string     `json:"id"`
	Source  string     `json:"source"`
	Title   string     `json:"title"`
	URL     string     `json:"url,omitempty"`
	Snippet string     `json:"snippet,omitempty"`
	Due     *time.Time `json:"due,omitempty"`
}

// Card is a non-reviewable dashboard tile, e.g. today's tracked time.
type Card struct {
	Source string `json:"source"`
	Label  string `json:"label"`
	Value  string `json:"value"`
}
