package main

import (
	"github.com/spf13/cobra"

	"github.com/tip-aru/rdmo/internal/metrics"
	"github.com/tip-aru/rdmo/internal/server"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides listen_addr)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve records, filter options and aggregates over HTTP",
	Long: `Serve the view over HTTP for a dashboard client.

Routes:
  GET  /authors /research_authors /researches   raw record sets
  GET  /campuses /colleges /programs
  GET  /author_research/:id                      one author's publications
  GET  /api/filter  /api/aggregate               selection and aggregates
  GET  /api/authors /api/years /api/stats
  POST /api/rebuild                              refetch and swap the view
  GET  /healthcheck /metrics

The view is built once at startup and again on POST /api/rebuild.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if !cmd.Flags().Changed("log-level") {
		logLevelFlag = "info"
	}
	r := mustOpenRepository()
	defer r.Log.Sync()

	f, closeFn, err := newFetcher(ctx, r, r.Settings.Source)
	if err != nil {
		exitWithError(ExitSourceError, "opening %s source: %v", r.Settings.Source, err)
	}
	defer closeFn()

	srv := server.New(server.Config{
		Fetcher:      f,
		Logger:       r.Log,
		Metrics:      metrics.New(),
		AllowOrigins: r.Settings.AllowOrigins,
	})
	if _, err := srv.Rebuild(ctx); err != nil {
		exitWithError(ExitSourceError, "building initial view: %v", err)
	}

	addr := serveAddr
	if addr == "" {
		addr = r.Settings.ListenAddr
	}
	if err := srv.Run(ctx, addr); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return nil
}
