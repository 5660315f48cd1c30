package cmd

import (
	"fmt"

	"github.com/FranksOps/serpkeep/internal/fingerprint"
	"github.com/FranksOps/serpkeep/internal/metrics"
	"github.com/FranksOps/serpkeep/internal/pipeline"
	"github.com/FranksOps/serpkeep/internal/scraper"
	"github.com/FranksOps/serpkeep/internal/serp"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetch the first results page for the query and store its listings",
		Args:  cobra.NoArgs,
		RunE:  a.runScrape,
	}
}

func (a *app) runScrape(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := a.cfg

	fetcher, err := scraper.NewFetcher(scraper.FetchConfig{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: cfg.UseCookieJar,
		Fingerprint:  fingerprint.Profile(cfg.Fingerprint),
		Header:       cfg.Header(),
		Logger:       a.logger,
	})
	if err != nil {
		return err
	}

	var robots *scraper.RobotsTxtAuditor
	if cfg.RespectRobots {
		robots = scraper.NewRobotsTxtAuditor(fetcher, a.logger)
	}

	provider := serp.NewGoogleScrape(serp.GoogleConfig{
		BaseURL: cfg.BaseURL,
		Params:  cfg.SearchParams(),
		Parser: serp.ParserConfig{
			CardSelector:         cfg.Selectors.Card,
			FallbackCardSelector: cfg.Selectors.FallbackCard,
			HeadingSelector:      cfg.Selectors.Heading,
			Snippets: &serp.ClassSnippetExtractor{
				Classes: cfg.Snippet.Classes,
				MinLen:  cfg.Snippet.MinLen,
				MaxLen:  cfg.Snippet.MaxLen,
			},
		},
		Robots:    robots,
		UserAgent: cfg.UserAgent,
	}, fetcher, a.logger)

	backend, err := openBackend(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer backend.Close()

	p := pipeline.Pipeline{
		SERPProvider: provider,
		Backend:      backend,
		Logger:       a.logger,
	}

	saved, runErr := p.Run(ctx, cfg.Query)

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			a.logger.Error("failed to write metrics", "err", err)
		}
	}

	if runErr != nil {
		a.logger.Error("run failed", "saved", saved, "err", runErr)
		return runErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d results from the first page.\n", saved)
	return nil
}
