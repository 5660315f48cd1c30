package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/FranksOps/serpkeep/internal/metrics"
	"github.com/FranksOps/serpkeep/internal/serp"
	"github.com/FranksOps/serpkeep/internal/storage"
	"github.com/google/uuid"
)

// Pipeline runs one search and persists every listing it returns.
type Pipeline struct {
	SERPProvider serp.Provider
	Backend      storage.Backend
	Logger       *slog.Logger
}

// Run searches for query and saves the results row by row. A search failure
// aborts before anything is written. A save failure stops the run and the
// returned count reflects the rows saved before it.
func (p *Pipeline) Run(ctx context.Context, query string) (int, error) {
	if p.SERPProvider == nil {
		return 0, errors.New("SERPProvider is nil")
	}
	if p.Backend == nil {
		return 0, errors.New("Backend is nil")
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", uuid.NewString())

	logger.Info("starting run", "query", query)

	results, err := p.SERPProvider.Search(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("search failed: %w", err)
	}
	logger.Debug("search complete", "results", len(results))

	saved := 0
	for _, r := range results {
		if err := p.Backend.Save(ctx, r); err != nil {
			metrics.RecordSaved(saved)
			return saved, fmt.Errorf("save %s: %w", r.Link, err)
		}
		logger.Debug("saved result", "rank", r.Rank, "link", r.Link)
		saved++
	}

	metrics.RecordSaved(saved)
	metrics.RecordRunCompleted(time.Now())
	logger.Info("run complete", "saved", saved)
	return saved, nil
}
