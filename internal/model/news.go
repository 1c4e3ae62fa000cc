package model

import "time"

// NewsItem is a single news article related to one or more symbols.
type NewsItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Sentiment   string    `json:"sentiment,omitempty"`
	Symbols     []string  `json:"symbols"`
	Synthetic   bool      `json:"synthetic,omitempty"`
}
