// Package main provides the rdmo CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tip-aru/rdmo/internal/config"
	"github.com/tip-aru/rdmo/internal/logger"
	"github.com/tip-aru/rdmo/internal/source"
	"github.com/tip-aru/rdmo/internal/view"
)

// Version is set at build time via ldflags
var Version = "dev"

// Global flags.
var (
	humanOutput  bool
	sourceFlag   string
	logModeFlag  string
	logLevelFlag string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// SilenceErrors is set, so cobra errors such as missing flags are printed here.
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rdmo",
	Short: "Research publication reconciliation and aggregation",
	Long: `rdmo reconciles faculty publication records (authors, research outputs,
campuses, colleges and programs) into a single view and aggregates it by
school year and category.

Records are kept in git-versionable JSONL with an ephemeral SQLite cache for
queries, or read live from PostgreSQL or the record API. All commands output
JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "Record source: sqlite, postgres, jsonl or api (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logModeFlag, "log-mode", "", "Log format: dev or prod (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "Minimum log level (debug, info, warn, error)")
	rootCmd.Version = Version
}

// getStartingDirectory returns the directory to start searching for a
// repository: RDMO_ROOT if set, otherwise the working directory.
func getStartingDirectory() string {
	if root := os.Getenv(config.EnvRoot); root != "" {
		return root
	}
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}
	return cwd
}

// repo bundles what most commands need: the repository root, the merged
// settings and a logger configured from them.
type repo struct {
	Root     string
	Settings config.Settings
	Log      *logger.Logger
}

// mustOpenRepository finds the repository, loads its settings with the
// global flags applied and builds the logger. Exits on error.
func mustOpenRepository() *repo {
	root, err := config.FindRepository(getStartingDirectory())
	if err != nil {
		exitWithError(ExitConfigError, "%v\n\nRun 'rdmo init' to create a repository.", err)
	}

	settings, err := config.LoadSettings(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if sourceFlag != "" {
		if err := config.ValidateSource(sourceFlag); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		settings.Source = sourceFlag
	}
	if logModeFlag != "" {
		settings.LogMode = logModeFlag
	}

	log, err := logger.New(settings.LogMode, logLevelFlag)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return &repo{Root: root, Settings: settings, Log: log}
}

// mustBuildView fetches from the configured source and builds a view.
func (r *repo) mustBuildView(ctx context.Context) *view.View {
	f, closeFn, err := newFetcher(ctx, r, r.Settings.Source)
	if err != nil {
		exitWithError(ExitSourceError, "opening %s source: %v", r.Settings.Source, err)
	}
	defer closeFn()

	v, elapsed, err := source.Build(ctx, f)
	if err != nil {
		exitWithError(ExitSourceError, "%v", err)
	}
	stats := v.Stats()
	r.Log.Info("view built",
		"source", r.Settings.Source,
		"rows", stats.Rows,
		"excluded", stats.Excluded.Total(),
		"duration", elapsed,
	)
	return v
}
