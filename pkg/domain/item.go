package domain

import "time"

// ItemKind tags a content item as a post or a comment
type ItemKind string

const (
	KindPost    ItemKind = "post"
	KindComment ItemKind = "comment"
)

// ContentItem represents one normalized post or comment from a profile.
// Immutable once constructed by the fetcher.
type ContentItem struct {
	Title     string
	Content   string
	Subreddit string
	URL       string
	Created   time.Time
	Score     int
	Kind      ItemKind
}
