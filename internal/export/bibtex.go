package export

import (
	"fmt"
	"iter"
	"strings"

	"github.com/tip-aru/rdmo/internal/view"
)

// Entry is one publication as cited in BibTeX.
type Entry struct {
	Key      string
	Type     string // Research type as entered
	Title    string
	Authors  []string
	Journal  string
	Year     int
	DOI      string
	Keywords string
	Abstract string
}

// Entries collapses view rows to one entry per publication, in first-seen
// order. Authors come from the publication's own author-name string.
func Entries(rows iter.Seq[view.Row]) []Entry {
	var out []Entry
	seen := make(map[int64]bool)
	for r := range rows {
		if seen[r.PublicationID] {
			continue
		}
		seen[r.PublicationID] = true
		out = append(out, Entry{
			Key:      fmt.Sprintf("rdmo%d", r.PublicationID),
			Type:     r.Type,
			Title:    r.Title,
			Authors:  view.SplitNames(r.AuthorNames),
			Journal:  r.Journal,
			Year:     r.Year,
			DOI:      r.DOI,
			Keywords: r.Keywords,
			Abstract: r.Abstract,
		})
	}
	return out
}

// ToBibTeX converts an entry to BibTeX format.
func ToBibTeX(e Entry) string {
	entryType := determineEntryType(e)
	var b strings.Builder

	fmt.Fprintf(&b, "@%s{%s,\n", entryType, e.Key)

	if len(e.Authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", formatAuthors(e.Authors))
	}
	fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(e.Title))

	if e.Journal != "" {
		fieldName := "journal"
		switch entryType {
		case "inproceedings":
			fieldName = "booktitle"
		case "misc":
			fieldName = "howpublished"
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", fieldName, escapeLatex(e.Journal))
	}

	fmt.Fprintf(&b, "  year = {%d},\n", e.Year)

	if e.DOI != "" {
		fmt.Fprintf(&b, "  doi = {%s},\n", e.DOI)
	}
	if e.Keywords != "" {
		fmt.Fprintf(&b, "  keywords = {%s},\n", escapeLatex(e.Keywords))
	}
	if e.Abstract != "" {
		fmt.Fprintf(&b, "  abstract = {%s},\n", escapeLatex(e.Abstract))
	}

	b.WriteString("}\n")
	return b.String()
}

// ToBibTeXList converts multiple entries to BibTeX format.
func ToBibTeXList(entries []Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, ToBibTeX(e))
	}
	return strings.Join(parts, "\n")
}

func determineEntryType(e Entry) string {
	kind := strings.ToLower(e.Type + " " + e.Journal)

	if strings.Contains(kind, "proceedings") ||
		strings.Contains(kind, "conference") ||
		strings.Contains(kind, "workshop") ||
		strings.Contains(kind, "symposium") {
		return "inproceedings"
	}
	if e.Journal == "" {
		return "misc"
	}
	return "article"
}

// formatAuthors joins names BibTeX style. Names are free text and are kept
// as entered.
func formatAuthors(authors []string) string {
	escaped := make([]string, len(authors))
	for i, a := range authors {
		escaped[i] = escapeLatex(a)
	}
	return strings.Join(escaped, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// & first, before other escapes that might produce &
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
