package storage

import (
	"context"
	"time"
)

// Result is one organic search listing extracted from a results page.
type Result struct {
	Rank      int       `json:"rank"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Snippet   string    `json:"snippet,omitempty"` // empty when no snippet container was found
	Query     string    `json:"query"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Filter allows querying for specific Results.
type Filter struct {
	Link   string
	Query  string
	Since  *time.Time
	Limit  int
	Offset int
}

// Backend defines the interface for persisting and querying results.
// Save is an upsert keyed on Result.Link: a later save of the same link
// replaces every field of the stored row.
type Backend interface {
	Save(ctx context.Context, result *Result) error
	Query(ctx context.Context, filter Filter) ([]*Result, error)
	Close() error
}

// Match reports whether r satisfies the field filters in f. Limit and Offset
// are not considered. File-backed backends use it to filter in memory.
func (f Filter) Match(r *Result) bool {
	if f.Link != "" && r.Link != f.Link {
		return false
	}
	if f.Query != "" && r.Query != f.Query {
		return false
	}
	if f.Since != nil && r.FetchedAt.Before(*f.Since) {
		return false
	}
	return true
}
