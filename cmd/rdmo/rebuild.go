package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tip-aru/rdmo/internal/config"
	"github.com/tip-aru/rdmo/internal/record"
	"github.com/tip-aru/rdmo/internal/storage"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query cache from the record files",
	Long: `Rebuild the SQLite query cache from the JSONL record files.

Use this after pulling changes from git or if the cache becomes corrupted.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status  string        `json:"status"`
	Records record.Counts `json:"records"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	r := mustOpenRepository()
	defer r.Log.Sync()

	if err := os.MkdirAll(config.CachePath(r.Root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(ctx, storage.DriverSQLite, config.DBPath(r.Root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	counts, err := db.RebuildFromJSONL(ctx, config.RecordsPath(r.Root))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query cache with %d researches and %d authors\n", counts.Publications, counts.Authors)
	} else {
		outputJSON(RebuildResult{
			Status:  "rebuilt",
			Records: counts,
		})
	}
	return nil
}
