package export

import (
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tip-aru/rdmo/internal/view"
)

func TestToBibTeX_BasicArticle(t *testing.T) {
	e := Entry{
		Key:      "rdmo12",
		DOI:      "10.1234/test",
		Title:    "Seismic Retrofitting of Bridges",
		Authors:  []string{"Smith, John", "Doe, Jane"},
		Abstract: "This is the abstract",
		Journal:  "Engineering Structures",
		Keywords: "bridges, steel",
		Year:     2021,
	}

	got := ToBibTeX(e)

	for _, want := range []string{
		`author = {Smith, John and Doe, Jane}`,
		`title = {Seismic Retrofitting of Bridges}`,
		`journal = {Engineering Structures}`,
		`year = {2021}`,
		`doi = {10.1234/test}`,
		`keywords = {bridges, steel}`,
		`abstract = {This is the abstract}`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ToBibTeX() missing %q, got:\n%s", want, got)
		}
	}
	if !strings.HasPrefix(got, "@article{rdmo12,") {
		t.Errorf("ToBibTeX() should start with @article{rdmo12, got:\n%s", got)
	}
	if !strings.HasSuffix(strings.TrimSpace(got), "}") {
		t.Errorf("ToBibTeX() should end with }, got:\n%s", got)
	}
}

func TestToBibTeX_Inproceedings(t *testing.T) {
	e := Entry{
		Key:     "rdmo3",
		Title:   "A Conference Paper",
		Type:    "Conference Paper",
		Journal: "Philippine Engineering Congress",
		Year:    2020,
	}

	got := ToBibTeX(e)
	if !strings.HasPrefix(got, "@inproceedings{rdmo3,") {
		t.Errorf("ToBibTeX() should be inproceedings, got:\n%s", got)
	}
	if !strings.Contains(got, `booktitle = {Philippine Engineering Congress}`) {
		t.Errorf("ToBibTeX() should use booktitle, got:\n%s", got)
	}
}

func TestDetermineEntryType(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		journal string
		want    string
	}{
		{"journal article", "Journal Article", "IEEE Access", "article"},
		{"journal only", "", "Nature", "article"},
		{"proceedings venue", "", "Proceedings of ICCE", "inproceedings"},
		{"conference type", "Conference Paper", "", "inproceedings"},
		{"workshop", "", "Workshop on Smart Cities", "inproceedings"},
		{"symposium", "", "Symposium on Materials", "inproceedings"},
		{"no venue", "Research Report", "", "misc"},
		{"empty", "", "", "misc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := determineEntryType(Entry{Type: tt.kind, Journal: tt.journal})
			if got != tt.want {
				t.Errorf("determineEntryType(%q, %q) = %q, want %q", tt.kind, tt.journal, got, tt.want)
			}
		})
	}
}

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"single author", []string{"Smith, John"}, "Smith, John"},
		{"two authors", []string{"Ana Cruz", "Ben Reyes"}, "Ana Cruz and Ben Reyes"},
		{"escaped", []string{"R&D Office"}, `R\&D Office`},
		{"none", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAuthors(tt.authors); got != tt.want {
				t.Errorf("formatAuthors() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEscapeLatex(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"100% effective", `100\% effective`},
		{"A & B", `A \& B`},
		{"$100 price", `\$100 price`},
		{"section #1", `section \#1`},
		{"under_score", `under\_score`},
		{"{braces}", `\{braces\}`},
		{"test~tilde", `test\textasciitilde{}tilde`},
		{"x^2", `x\textasciicircum{}2`},
		{"A & B: $100 for {item} #1", `A \& B: \$100 for \{item\} \#1`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := escapeLatex(tt.input); got != tt.want {
				t.Errorf("escapeLatex(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToBibTeX_OptionalFields(t *testing.T) {
	got := ToBibTeX(Entry{Key: "rdmo1", Title: "Minimal Paper", Year: 2026})

	for _, field := range []string{"author = ", "doi = ", "abstract = ", "keywords = ", "journal = ", "howpublished = "} {
		if strings.Contains(got, field) {
			t.Errorf("ToBibTeX() should not include empty %q, got:\n%s", field, got)
		}
	}
	if !strings.Contains(got, "title = ") || !strings.Contains(got, "year = {2026}") {
		t.Errorf("ToBibTeX() should still include title and year, got:\n%s", got)
	}
}

func TestToBibTeXList(t *testing.T) {
	entries := []Entry{
		{Key: "rdmo1", Title: "First Paper", Journal: "J1", Year: 2026},
		{Key: "rdmo2", Title: "Second Paper", Journal: "J2", Year: 2025},
	}

	got := ToBibTeXList(entries)
	parts := strings.Split(got, "@article{")
	if len(parts) != 3 {
		t.Errorf("ToBibTeXList() should have 2 entries, got %d:\n%s", len(parts)-1, got)
	}

	if got := ToBibTeXList(nil); got != "" {
		t.Errorf("ToBibTeXList(nil) = %q, want empty", got)
	}
}

func TestEntries_OnePerPublication(t *testing.T) {
	rows := []view.Row{
		{PublicationID: 1, Title: "Bridges", AuthorNames: "Ana, Ben", Author: "Ana", Year: 2021},
		{PublicationID: 1, Title: "Bridges", AuthorNames: "Ana, Ben", Author: "Ben", Year: 2021},
		{PublicationID: 2, Title: "Steel", AuthorNames: "Ana", Author: "Ana", Year: 2019, DOI: "10.1000/x1"},
	}

	got := Entries(slices.Values(rows))
	want := []Entry{
		{Key: "rdmo1", Title: "Bridges", Authors: []string{"Ana", "Ben"}, Year: 2021},
		{Key: "rdmo2", Title: "Steel", Authors: []string{"Ana"}, Year: 2019, DOI: "10.1000/x1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}
