package storage

import (
	"context"
	"testing"
	"time"
)

func TestFilter_Match(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	r := &Result{
		Rank:      1,
		Title:     "Customer Support Specialist",
		Link:      "https://jobs.lever.co/example",
		Query:     "support",
		FetchedAt: now,
	}

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", Filter{}, true},
		{"link match", Filter{Link: r.Link}, true},
		{"link mismatch", Filter{Link: "https://example.com"}, false},
		{"query match", Filter{Query: "support"}, true},
		{"query mismatch", Filter{Query: "sales"}, false},
		{"since before", Filter{Since: &past}, true},
		{"since after", Filter{Since: &future}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(r); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Ensure Backend interface exists and is implementable
type mockBackend struct{}

func (m *mockBackend) Save(ctx context.Context, result *Result) error { return nil }
func (m *mockBackend) Query(ctx context.Context, filter Filter) ([]*Result, error) {
	return nil, nil
}
func (m *mockBackend) Close() error { return nil }

func TestBackendInterface(t *testing.T) {
	var b Backend = &mockBackend{}
	_ = b
}
