package entity

import "time"

// NewsArticle is an ephemeral news record fetched per query.
type NewsArticle struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source"`
}
