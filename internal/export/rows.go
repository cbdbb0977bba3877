// Package export writes view rows and publications to interchange formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/tip-aru/rdmo/internal/view"
)

// Formats.
const (
	FormatJSONL  = "jsonl"
	FormatCSV    = "csv"
	FormatBibTeX = "bibtex"
)

// ErrUnknownFormat is returned by Write for an unsupported format.
var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists the supported formats.
var Formats = []string{FormatJSONL, FormatCSV, FormatBibTeX}

// CSVHeader is the first line written by WriteCSV.
var CSVHeader = []string{
	"publication_id", "title", "author", "linked_author",
	"campus", "college", "program",
	"year", "school_year", "date_of_publication",
	"journal_publisher", "indexing", "doi", "keywords",
}

// Write writes rows to w in format. BibTeX collapses rows to publications.
func Write(w io.Writer, format string, rows iter.Seq[view.Row]) error {
	switch strings.ToLower(format) {
	case FormatJSONL:
		return WriteJSONL(w, rows)
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatBibTeX:
		_, err := io.WriteString(w, ToBibTeXList(Entries(rows)))
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteJSONL writes one JSON object per row.
func WriteJSONL(w io.Writer, rows iter.Seq[view.Row]) error {
	enc := json.NewEncoder(w)
	n := 0
	for r := range rows {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding row %d: %w", n, err)
		}
		n++
	}
	return nil
}

// WriteCSV writes a header line followed by one line per row.
func WriteCSV(w io.Writer, rows iter.Seq[view.Row]) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for r := range rows {
		rec := []string{
			strconv.FormatInt(r.PublicationID, 10), r.Title, r.Author, r.LinkedAuthor,
			r.CampusName, r.CollegeName, r.ProgramName,
			strconv.Itoa(r.Year), r.Bucket, r.PublishedOn,
			r.Journal, r.Indexing, r.DOI, r.Keywords,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", r.PublicationID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
