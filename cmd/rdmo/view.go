package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tip-aru/rdmo/internal/schoolyear"
	"github.com/tip-aru/rdmo/internal/view"
)

var (
	viewRows  bool
	viewLimit int
)

func init() {
	viewCmd.Flags().BoolVar(&viewRows, "rows", false, "Include the denormalized rows")
	viewCmd.Flags().IntVar(&viewLimit, "limit", 0, "Maximum rows to return with --rows (0 = all)")
	rootCmd.AddCommand(viewCmd, authorsCmd, yearsCmd)
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Build the publication view and report how it was built",
	Long: `Build the publication view from the configured source and report row
counts, the year span and every excluded record by reason.

Examples:
  rdmo view
  rdmo view --rows --limit 20
  rdmo view --source postgres --human`,
	Args: cobra.NoArgs,
	RunE: runView,
}

var authorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "List the distinct author names in the view",
	Args:  cobra.NoArgs,
	RunE:  runAuthors,
}

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "List the school years present in the view",
	Args:  cobra.NoArgs,
	RunE:  runYears,
}

// ViewResult is the response for the view command.
type ViewResult struct {
	Stats view.Stats `json:"stats"`
	Rows  []view.Row `json:"rows,omitempty"`
}

func runView(cmd *cobra.Command, args []string) error {
	r := mustOpenRepository()
	defer r.Log.Sync()
	v := r.mustBuildView(cmd.Context())

	result := ViewResult{Stats: v.Stats()}
	if viewRows {
		result.Rows = v.Rows()
		if viewLimit > 0 && viewLimit < len(result.Rows) {
			result.Rows = result.Rows[:viewLimit]
		}
	}

	if !humanOutput {
		outputJSON(result)
		return nil
	}

	s := result.Stats
	fmt.Printf("%d rows from %d publications\n", s.Rows, s.Publications)
	if s.Years != nil {
		fmt.Printf("Years: %s to %s\n", schoolyear.Label(s.Years.From), schoolyear.Label(s.Years.To))
	}
	printExclusions(s.Excluded)
	if len(result.Rows) > 0 {
		fmt.Println()
		for _, row := range result.Rows {
			fmt.Printf("  %-6d %-14s %-20s %s\n", row.PublicationID, row.Bucket,
				truncateString(row.Author, 20), truncateString(row.Title, ViewTitleMaxLen))
		}
	}
	return nil
}

func runAuthors(cmd *cobra.Command, args []string) error {
	r := mustOpenRepository()
	defer r.Log.Sync()
	authors := r.mustBuildView(cmd.Context()).Authors()

	if humanOutput {
		if len(authors) == 0 {
			fmt.Println("No authors in view")
		}
		for _, a := range authors {
			fmt.Println(a)
		}
		return nil
	}
	if authors == nil {
		authors = []string{}
	}
	outputJSON(authors)
	return nil
}

func runYears(cmd *cobra.Command, args []string) error {
	r := mustOpenRepository()
	defer r.Log.Sync()
	buckets := r.mustBuildView(cmd.Context()).Buckets()

	if humanOutput {
		if len(buckets) == 0 {
			fmt.Println("No school years in view")
		}
		for _, b := range buckets {
			fmt.Println(b.Label)
		}
		return nil
	}
	if buckets == nil {
		buckets = []schoolyear.Bucket{}
	}
	outputJSON(buckets)
	return nil
}
