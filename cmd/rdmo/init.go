package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tip-aru/rdmo/internal/config"
	"github.com/tip-aru/rdmo/internal/record"
	"github.com/tip-aru/rdmo/internal/storage"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new rdmo repository",
	Long: `Initialize a new rdmo repository in the current directory.

Creates:
  .rdmo/
  ├── config.json      # Default config
  ├── .gitignore       # Ignores cache/
  ├── records/         # One empty JSONL file per record kind
  └── cache/           # SQLite query cache (gitignored)`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root := getStartingDirectory()

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains an rdmo repository")
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating .rdmo directory: %v", err)
	}
	if err := storage.WriteSets(config.RecordsPath(root), record.Sets{}); err != nil {
		exitWithError(ExitError, "creating record files: %v", err)
	}
	gitignore := filepath.Join(config.RdmoPath(root), ".gitignore")
	if err := os.WriteFile(gitignore, []byte(config.CacheDir+"/\n"), 0644); err != nil {
		exitWithError(ExitError, "writing .gitignore: %v", err)
	}
	if err := config.Default().Save(root); err != nil {
		exitWithError(ExitError, "creating config.json: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized rdmo repository in %s\n", root)
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   root,
		})
	}
	return nil
}
