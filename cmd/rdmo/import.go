package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tip-aru/rdmo/internal/config"
	"github.com/tip-aru/rdmo/internal/pdf"
	"github.com/tip-aru/rdmo/internal/record"
	"github.com/tip-aru/rdmo/internal/source"
	"github.com/tip-aru/rdmo/internal/storage"
	"github.com/tip-aru/rdmo/internal/view"
)

var (
	importFrom           string
	importDOIs           bool
	importManuscriptRoot string
)

func init() {
	importCmd.Flags().StringVar(&importFrom, "from", "", "Import from a live source instead of a directory: api or postgres")
	importCmd.Flags().BoolVar(&importDOIs, "doi-from-manuscripts", false, "Fill missing DOIs from full-manuscript PDFs")
	importCmd.Flags().StringVar(&importManuscriptRoot, "manuscript-root", "", "Folder holding full manuscripts (overrides config)")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import record sets into the repository",
	Long: `Import the six record sets and replace the repository's records.

From a directory holding authors.jsonl, research_authors.jsonl,
researches.jsonl, campuses.jsonl, colleges.jsonl and programs.jsonl, or
from a live source with --from. The SQLite cache is refreshed afterwards.

Examples:
  rdmo import ./dump
  rdmo import --from api
  rdmo import --from postgres --doi-from-manuscripts`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

// ImportResult is the response for the import command.
type ImportResult struct {
	Status  string              `json:"status"`
	Records record.Counts       `json:"records"`
	View    view.Stats          `json:"view"`
	DOIs    *pdf.BackfillResult `json:"dois,omitempty"`
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	r := mustOpenRepository()
	defer r.Log.Sync()

	sets := mustReadImport(ctx, r, args)

	var dois *pdf.BackfillResult
	if importDOIs {
		root := importManuscriptRoot
		if root == "" {
			root = r.Settings.ManuscriptRoot
		}
		if root == "" {
			exitWithError(ExitConfigError, "manuscript_root is not configured (set it with 'rdmo config manuscript-root' or --manuscript-root)")
		}
		root = config.ExpandPath(root)
		if err := config.ValidateManuscriptRoot(root); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		res := pdf.BackfillDOIs(sets.Publications, root, r.Log)
		dois = &res
	}

	if err := storage.WriteSets(config.RecordsPath(r.Root), sets); err != nil {
		exitWithError(ExitDataError, "writing records: %v", err)
	}

	if err := os.MkdirAll(config.CachePath(r.Root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(ctx, storage.DriverSQLite, config.DBPath(r.Root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()
	if err := db.ReplaceAll(ctx, sets); err != nil {
		exitWithError(ExitError, "refreshing cache: %v", err)
	}

	result := ImportResult{
		Status:  "imported",
		Records: sets.Counts(),
		View:    view.Build(sets).Stats(),
		DOIs:    dois,
	}

	if humanOutput {
		c := result.Records
		fmt.Printf("Imported %d researches, %d authors, %d authorship links\n", c.Publications, c.Authors, c.Authorships)
		fmt.Printf("         %d campuses, %d colleges, %d programs\n", c.Campuses, c.Colleges, c.Programs)
		fmt.Printf("View: %d rows from %d publications\n", result.View.Rows, result.View.Publications)
		printExclusions(result.View.Excluded)
		if dois != nil {
			fmt.Printf("DOIs: %d filled, %d normalized, %d without DOI, %d not found, %d unreadable\n",
				dois.Filled, dois.Normalized, dois.NoDOI, dois.NotFound, dois.Failed)
		}
	} else {
		outputJSON(result)
	}
	return nil
}

func mustReadImport(ctx context.Context, r *repo, args []string) record.Sets {
	if len(args) == 1 {
		if importFrom != "" {
			exitWithError(ExitError, "give either a directory or --from, not both")
		}
		sets, err := storage.ReadSets(args[0])
		if err != nil {
			exitWithError(ExitDataError, "reading %s: %v", args[0], err)
		}
		return sets
	}

	switch importFrom {
	case source.KindAPI, source.KindPostgres:
	case "":
		exitWithError(ExitError, "a directory or --from is required")
	default:
		exitWithError(ExitError, "--from must be api or postgres, got %q", importFrom)
	}

	f, closeFn, err := newFetcher(ctx, r, importFrom)
	if err != nil {
		exitWithError(ExitSourceError, "opening %s source: %v", importFrom, err)
	}
	defer closeFn()

	sets, err := f.Fetch(ctx)
	if err != nil {
		exitWithError(ExitSourceError, "fetching records: %v", err)
	}
	return sets
}

func printExclusions(ex record.Exclusions) {
	if ex.Total() == 0 {
		return
	}
	reasons := make([]string, 0, len(ex))
	for reason := range ex {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	fmt.Printf("Excluded %d:\n", ex.Total())
	for _, reason := range reasons {
		fmt.Printf("  %-22s %d\n", reason, ex[record.Reason(reason)])
	}
}
