package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tip-aru/rdmo/internal/record"
)

func TestFindDOI(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "Available at 10.1016/j.engstruct.2021.112345 online", "10.1016/j.engstruct.2021.112345"},
		{"trailing punctuation", "see doi 10.1109/ACCESS.2020.3001234.", "10.1109/ACCESS.2020.3001234"},
		{"in parentheses", "(10.3390/su12093456)", "10.3390/su12093456"},
		{"url form", "https://doi.org/10.1007/s00170-019-04567-8", "10.1007/s00170-019-04567-8"},
		{"first of several", "10.1000/first and 10.1000/second", "10.1000/first"},
		{"short registrant", "10.12/abc is not a doi", ""},
		{"none", "Proceedings of the 5th Conference", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findDOI(tt.text); got != tt.want {
				t.Errorf("findDOI(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.1000/xyz123", "10.1000/xyz123"},
		{"  https://doi.org/10.1000/xyz123 ", "10.1000/xyz123"},
		{"https://dx.doi.org/10.1000/xyz123", "10.1000/xyz123"},
		{"DOI:10.1000/xyz123", "10.1000/xyz123"},
		{"doi: 10.1000/xyz123.", "10.1000/xyz123"},
		{"n/a", ""},
		{"10.1000/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeDOI(tt.in); got != tt.want {
			t.Errorf("NormalizeDOI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBackfillDOIs(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "broken.pdf"), []byte("not a pdf"), 0644); err != nil {
		t.Fatal(err)
	}

	pubs := []record.Publication{
		{ID: 1, DOI: "https://doi.org/10.1000/a1"},
		{ID: 2, DOI: "10.1000/b2", FullManuscript: "broken.pdf"},
		{ID: 3, FullManuscript: "paper.docx"},
		{ID: 4, FullManuscript: "missing.pdf"},
		{ID: 5, FullManuscript: "../outside.pdf"},
		{ID: 6, FullManuscript: "broken.pdf"},
		{ID: 7},
	}

	got := BackfillDOIs(pubs, root, nil)
	want := BackfillResult{Checked: 3, Normalized: 1, NotFound: 2, Failed: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BackfillDOIs() mismatch (-want +got):\n%s", diff)
	}

	dois := make([]string, len(pubs))
	for i, p := range pubs {
		dois[i] = p.DOI
	}
	wantDOIs := []string{"10.1000/a1", "10.1000/b2", "", "", "", "", ""}
	if diff := cmp.Diff(wantDOIs, dois); diff != "" {
		t.Errorf("DOIs mismatch (-want +got):\n%s", diff)
	}
}

func TestBackfillDOIs_NoRoot(t *testing.T) {
	pubs := []record.Publication{{ID: 1, FullManuscript: "paper.pdf"}}
	if got := BackfillDOIs(pubs, "", nil); got != (BackfillResult{}) {
		t.Errorf("BackfillDOIs() with no root = %+v, want zero", got)
	}
}
