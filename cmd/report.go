package cmd

import (
	"fmt"
	"time"

	"github.com/FranksOps/serpkeep/internal/report"
	"github.com/FranksOps/serpkeep/internal/storage"
	"github.com/spf13/cobra"
)

type reportOptions struct {
	format string
	terms  []string
	limit  int
	since  time.Duration
}

func newReportCmd(a *app) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the stored results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runReport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text, json, html")
	cmd.Flags().StringArrayVar(&opts.terms, "term", nil, "Term to count in titles and snippets (repeatable)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Only summarize the N most recent rows (0 for all)")
	cmd.Flags().DurationVar(&opts.since, "since", 0, "Only summarize rows fetched within this window, e.g. 24h")
	return cmd
}

func (a *app) runReport(cmd *cobra.Command, opts *reportOptions) error {
	ctx := cmd.Context()

	backend, err := openBackend(ctx, a.cfg.Storage)
	if err != nil {
		return err
	}
	defer backend.Close()

	filter := storage.Filter{Limit: opts.limit}
	if opts.since > 0 {
		since := time.Now().Add(-opts.since)
		filter.Since = &since
	}

	rows, err := backend.Query(ctx, filter)
	if err != nil {
		return err
	}
	a.logger.Debug("loaded rows", "rows", len(rows))

	summary := report.GenerateSummary(rows, opts.terms)
	out := cmd.OutOrStdout()

	switch opts.format {
	case "text":
		return report.WriteText(out, summary)
	case "json":
		return report.WriteJSON(out, summary)
	case "html":
		return report.WriteHTML(out, summary)
	default:
		return fmt.Errorf("unknown report format %q", opts.format)
	}
}
