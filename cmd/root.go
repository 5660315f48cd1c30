package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/FranksOps/serpkeep/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by the subcommands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
}

// flagKeys maps persistent flags onto config keys.
var flagKeys = map[string]string{
	"log-level":        "log_level",
	"query":            "query",
	"backend":          "storage.backend",
	"dsn":              "storage.dsn",
	"fingerprint":      "fingerprint",
	"respect-robots":   "respect_robots",
	"metrics-textfile": "metrics_textfile",
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "serpkeep",
		Short: "Scrape one page of search results into a local table",
		Long: `serpkeep runs a single search query, extracts the result listings from the
first results page and upserts them into a table keyed by link.

Commands:
  serpkeep          Run one scrape (default)
  serpkeep run      Run one scrape
  serpkeep report   Summarize the stored results`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		RunE:         a.runScrape,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
	}

	d := config.Default()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "Config file (yaml, toml or json)")
	flags.String("log-level", d.LogLevel, "Log level: debug, info, warn, error")
	flags.String("query", d.Query, "Search query")
	flags.String("backend", d.Storage.Backend, "Storage backend: sqlite, postgres, json, csv")
	flags.String("dsn", d.Storage.DSN, "Storage DSN or file path")
	flags.String("fingerprint", d.Fingerprint, "TLS profile: go, chrome, firefox, safari, random")
	flags.Bool("respect-robots", d.RespectRobots, "Check robots.txt before fetching")
	flags.String("metrics-textfile", d.MetricsTextfile, "Write run metrics to this node_exporter textfile")

	for flag, key := range flagKeys {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}

	rootCmd.AddCommand(newRunCmd(a), newReportCmd(a))
	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
