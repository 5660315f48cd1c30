package serp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FranksOps/serpkeep/internal/scraper"
	"github.com/FranksOps/serpkeep/internal/storage"
)

// DefaultGoogleURL is the endpoint GoogleScrape queries when BaseURL is unset.
const DefaultGoogleURL = "https://www.google.com/search"

// GoogleConfig configures a GoogleScrape.
type GoogleConfig struct {
	BaseURL string
	// Params are sent with every search; the query itself goes in "q".
	Params map[string]string
	// Parser is the template for each search; Query is filled per call.
	Parser ParserConfig
	// Robots, when set, is consulted before fetching and a disallowed search
	// fails with scraper.ErrDisallowed.
	Robots    *scraper.RobotsTxtAuditor
	UserAgent string
}

// GoogleScrape is a Provider that scrapes the first page of Google results.
type GoogleScrape struct {
	cfg     GoogleConfig
	fetcher *scraper.Fetcher
	logger  *slog.Logger
}

// ensure GoogleScrape implements Provider
var _ Provider = (*GoogleScrape)(nil)

// NewGoogleScrape creates a GoogleScrape that fetches through fetcher.
func NewGoogleScrape(cfg GoogleConfig, fetcher *scraper.Fetcher, logger *slog.Logger) *GoogleScrape {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGoogleURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleScrape{cfg: cfg, fetcher: fetcher, logger: logger}
}

// Search fetches one results page for query and extracts its listings. Any
// fetch failure, including a non-2xx status, is returned unchanged in the
// error chain so callers can inspect a *scraper.StatusError.
func (g *GoogleScrape) Search(ctx context.Context, query string) ([]*storage.Result, error) {
	params := make(map[string]string, len(g.cfg.Params)+1)
	for k, v := range g.cfg.Params {
		params[k] = v
	}
	params["q"] = query

	searchURL, err := BuildURL(g.cfg.BaseURL, params)
	if err != nil {
		return nil, err
	}

	if g.cfg.Robots != nil {
		allowed, err := g.cfg.Robots.IsAllowed(ctx, searchURL, g.cfg.UserAgent)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", searchURL, scraper.ErrDisallowed)
		}
	}

	page, err := g.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("fetch results page: %w", err)
	}
	if page.DetectedBot {
		g.logger.Warn("results page looks like a block page", "url", searchURL, "detection_src", page.DetectionSrc)
	}

	parserCfg := g.cfg.Parser
	parserCfg.Query = query

	results, err := NewParser(parserCfg).Parse(string(page.Body))
	if err != nil {
		return nil, err
	}

	g.logger.Debug("parsed results page", "url", searchURL, "results", len(results))
	return results, nil
}
