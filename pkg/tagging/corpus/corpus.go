package corpus

import (
	"context"
	"time"
)

// Store is the main interface for persisting and querying the tag corpus
type Store interface {
	Close() error

	// Bookmarks
	RecordBookmark(ctx context.Context, b Bookmark) (string, error)

	// Team tags
	GetExistingTags(ctx context.Context, teamID string) ([]string, error)
	RelatedTags(ctx context.Context, teamID, tag string, k int) ([]Neighbor, error)
	Stats(ctx context.Context, teamID string) (Stats, error)

	// Seed tags
	AddSeedTags(ctx context.Context, userID, teamID string, tags []string) error
	GetSeedTags(ctx context.Context, userID, teamID string, limit int) ([]string, error)
}

// Bookmark represents a saved bookmark with its final tags.
// An empty ID is assigned a fresh ULID on insert.
type Bookmark struct {
	ID          string
	TeamID      string
	UserID      string
	URL         string
	Title       string
	Description string
	Tags        []string
	CreatedAt   time.Time
}

// Neighbor represents a tag's co-occurrence neighbor
type Neighbor struct {
	Tag   string
	Score float64
	Count int64 // raw co-occurrence count
}

// Stats summarizes a team's corpus
type Stats struct {
	Bookmarks int64
	Tags      int64 // distinct tags
	Pairs     int64 // distinct co-occurring tag pairs
}
