package main

import (
	"bufio"
	"fmt"
	"iter"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tip-aru/rdmo/internal/export"
	"github.com/tip-aru/rdmo/internal/filter"
	"github.com/tip-aru/rdmo/internal/view"
)

var (
	exportFormat string
	exportOutput string
	exportOpts   filterFlags
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", export.FormatJSONL, "Output format: "+strings.Join(export.Formats, ", "))
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	exportOpts.register(exportCmd)
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export view rows as JSONL, CSV or BibTeX",
	Long: `Export the denormalized view rows. Without selection flags every row is
exported; with them, only rows matching the selection.

Examples:
  rdmo export --format csv -o publications.csv
  rdmo export --format bibtex --author "Ana Cruz" > ana.bib
  rdmo export --campus 1 --from 2020`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	if !slices.Contains(export.Formats, strings.ToLower(exportFormat)) {
		exitWithError(ExitError, "unknown format %q (want %s)", exportFormat, strings.Join(export.Formats, ", "))
	}

	r := mustOpenRepository()
	defer r.Log.Sync()
	v := r.mustBuildView(cmd.Context())

	rows := v.All()
	req := exportOpts.request()
	if req != (filter.Request{}) {
		pred := filter.Resolve(v, filter.NewHierarchy(v), req).Predicate()
		all := rows
		rows = func(yield func(view.Row) bool) {
			for row := range all {
				if pred(row) && !yield(row) {
					return
				}
			}
		}
	}

	if err := writeExport(exportOutput, exportFormat, rows); err != nil {
		exitWithError(ExitDataError, "exporting: %v", err)
	}

	if exportOutput != "" && humanOutput {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", exportOutput)
	}
	return nil
}

// writeExport writes rows to path, or to stdout when path is empty. The file
// is flushed and closed before returning so that a short write is an error.
func writeExport(path, format string, rows iter.Seq[view.Row]) (err error) {
	if path == "" {
		return export.Write(os.Stdout, format, rows)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := export.Write(bw, format, rows); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
