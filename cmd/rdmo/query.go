package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tip-aru/rdmo/internal/aggregate"
	"github.com/tip-aru/rdmo/internal/filter"
	"github.com/tip-aru/rdmo/internal/view"
)

// filterFlags holds the selection flags shared by filter and query.
type filterFlags struct {
	author  string
	from    int
	to      int
	campus  int64
	college int64
	program int64
	cmd     *cobra.Command
}

var (
	filterOpts      filterFlags
	queryOpts       filterFlags
	queryCategories []string
)

func (f *filterFlags) register(cmd *cobra.Command) {
	f.cmd = cmd
	cmd.Flags().StringVar(&f.author, "author", "", "Author name, exactly as listed by 'rdmo authors'")
	cmd.Flags().IntVar(&f.from, "from", 0, "First calendar year (default: earliest in view)")
	cmd.Flags().IntVar(&f.to, "to", 0, "Last calendar year (default: latest in view)")
	cmd.Flags().Int64Var(&f.campus, "campus", 0, "Campus ID")
	cmd.Flags().Int64Var(&f.college, "college", 0, "College ID (requires --campus)")
	cmd.Flags().Int64Var(&f.program, "program", 0, "Program ID (requires --college)")
}

// request converts the flags that were actually set into a filter request.
func (f *filterFlags) request() filter.Request {
	req := filter.Request{Author: strings.TrimSpace(f.author)}
	changed := f.cmd.Flags().Changed
	if changed("from") {
		req.FromYear = &f.from
	}
	if changed("to") {
		req.ToYear = &f.to
	}
	if changed("campus") {
		req.CampusID = &f.campus
	}
	if changed("college") {
		req.CollegeID = &f.college
	}
	if changed("program") {
		req.ProgramID = &f.program
	}
	return req
}

func init() {
	filterOpts.register(filterCmd)
	queryOpts.register(queryCmd)
	queryCmd.Flags().StringSliceVar(&queryCategories, "categories", nil,
		"Categories to distribute by: college, program, campus, journal, indexing, keyword (default college,program)")
	rootCmd.AddCommand(filterCmd, queryCmd)
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Resolve a selection and list the options it leaves",
	Long: `Resolve a campus, college, program, author and year selection against
the view and print the resulting state with the drop-down options reachable
from it. Unreachable colleges and programs are reset, not rejected.

Examples:
  rdmo filter --campus 1
  rdmo filter --campus 1 --college 3`,
	Args: cobra.NoArgs,
	RunE: runFilter,
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Aggregate publications by school year and category",
	Long: `Aggregate the selected publications into dense per-school-year counts
and category distributions.

Nothing is aggregated until a campus or an author is selected; that state is
reported as "selected": false with a null result.

Examples:
  rdmo query --author "Ana Cruz" --from 2019 --to 2023
  rdmo query --campus 1 --college 3 --categories program,journal
  rdmo query --campus 1 --human`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func runFilter(cmd *cobra.Command, args []string) error {
	r := mustOpenRepository()
	defer r.Log.Sync()
	v := r.mustBuildView(cmd.Context())
	h := filter.NewHierarchy(v)

	res := filter.Resolve(v, h, filterOpts.request())
	if err := res.Years.Validate(); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	snap := res.Snapshot(v, h)

	if !humanOutput {
		outputJSON(snap)
		return nil
	}
	fmt.Printf("Level: %s\n", snap.Level)
	for _, reset := range snap.Reset {
		fmt.Printf("Reset %s: not reachable from the selection\n", reset)
	}
	printOptions("Campuses", snap.Options.Campuses)
	printOptions("Colleges", snap.Options.Colleges)
	printOptions("Programs", snap.Options.Programs)
	return nil
}

func printOptions(title string, opts []filter.Option) {
	if len(opts) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for _, o := range opts {
		fmt.Printf("  %-6d %s\n", o.ID, o.Name)
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
	cats, err := aggregate.ParseCategories(queryCategories)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	r := mustOpenRepository()
	defer r.Log.Sync()
	v := r.mustBuildView(cmd.Context())

	resp, err := aggregate.Query(v, filter.NewHierarchy(v), queryOpts.request(), cats...)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		printQueryHuman(v, resp)
	} else {
		outputJSON(resp)
	}
	return nil
}

func printQueryHuman(v *view.View, resp aggregate.Response) {
	for _, reset := range resp.Filter.Reset {
		fmt.Printf("Reset %s: not reachable from the selection\n", reset)
	}
	if !resp.Selected {
		fmt.Println("No selection: choose a campus or an author")
		return
	}
	res := resp.Result
	fmt.Printf("%d rows\n\n", res.Rows)
	if v.Len() > 0 && res.Rows == 0 {
		fmt.Println("No publications match the selection")
	}

	for _, b := range res.BucketCounts {
		fmt.Printf("  %-14s %4d\n", b.Label, b.Count)
		for _, title := range b.Titles {
			fmt.Printf("      %s\n", truncateString(title, QueryTitleMaxLen))
		}
	}
	for _, c := range aggregate.Categories {
		entries, ok := res.Distributions[c]
		if !ok {
			continue
		}
		fmt.Printf("\n%s:\n", c)
		for _, e := range entries {
			fmt.Printf("  %-40s %4d\n", truncateString(e.Value, 40), e.Count)
		}
	}
}
