package serp

import (
	"context"
	"strings"

	"github.com/FranksOps/serpkeep/internal/storage"
)

// Provider abstracts a search engine that returns the result listings of one
// results page for a query. Implementations may use scraping, official APIs,
// or other mechanisms.
type Provider interface {
	Search(ctx context.Context, query string) ([]*storage.Result, error)
}

// normalizeText collapses runs of whitespace into single spaces and trims.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
