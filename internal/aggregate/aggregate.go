// Package aggregate computes the chart data behind every dashboard view:
// dense per-school-year counts and per-category distributions over the rows
// selected by a filter.
package aggregate

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"

	"github.com/tip-aru/rdmo/internal/filter"
	"github.com/tip-aru/rdmo/internal/schoolyear"
	"github.com/tip-aru/rdmo/internal/view"
)

// Category names a row attribute that a distribution groups by.
type Category string

const (
	College  Category = "college"
	Program  Category = "program"
	Campus   Category = "campus"
	Journal  Category = "journal"
	Indexing Category = "indexing"
	Keyword  Category = "keyword"
)

// Unlabeled is reported for rows that have no value for a category.
const Unlabeled = "Unlabeled"

// ErrUnknownCategory is returned by ParseCategory for an unsupported name.
var ErrUnknownCategory = errors.New("unknown category")

// Categories lists every supported category.
var Categories = []Category{College, Program, Campus, Journal, Indexing, Keyword}

// DefaultCategories are computed when a query names none.
var DefaultCategories = []Category{College, Program}

// ParseCategory maps a case-insensitive name to a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// ParseCategories parses a list of names, skipping blanks. Duplicates are
// collapsed; the first occurrence keeps its position.
func ParseCategories(names []string) ([]Category, error) {
	var out []Category
	seen := make(map[Category]bool)
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		c, err := ParseCategory(n)
		if err != nil {
			return nil, err
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// values returns the display values a row contributes to c. Keywords are
// exploded, so a row may contribute several values.
func (c Category) values(r view.Row) []string {
	switch c {
	case College:
		return []string{r.CollegeName}
	case Program:
		return []string{r.ProgramName}
	case Campus:
		return []string{r.CampusName}
	case Journal:
		return []string{labelled(r.Journal)}
	case Indexing:
		return []string{labelled(r.Indexing)}
	case Keyword:
		kws := splitKeywords(r.Keywords)
		if len(kws) == 0 {
			return []string{Unlabeled}
		}
		return kws
	}
	return nil
}

func labelled(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unlabeled
	}
	return s
}

func splitKeywords(s string) []string {
	var out []string
	for _, kw := range strings.Split(s, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// BucketCount is the number of matching rows in one school year.
type BucketCount struct {
	Label  string   `json:"label"`
	Year   int      `json:"year"`
	Count  int      `json:"count"`
	Titles []string `json:"titles"`
}

// Entry is one value of a category distribution.
type Entry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Result is the aggregate over one filtered row set.
type Result struct {
	Rows          int                  `json:"rows"`
	BucketCounts  []BucketCount        `json:"bucket_counts"`
	Distributions map[Category][]Entry `json:"category_distributions"`
}

// Compute aggregates the rows accepted by pred whose year lies in yr.
//
// BucketCounts has one entry per year of yr in ascending order, zero counts
// included; an inverted range yields none. Each entry lists the distinct
// titles counted in it. Distributions hold one sequence per requested
// category, sorted by count descending and then value ascending. A nil pred
// accepts every row. A range wider than schoolyear.MaxSpan is rejected.
func Compute(rows iter.Seq[view.Row], pred filter.Predicate, yr schoolyear.YearRange, cats []Category) (Result, error) {
	if err := yr.Validate(); err != nil {
		return Result{}, err
	}
	bs := yr.Buckets()
	buckets := make([]BucketCount, 0, len(bs))
	for _, b := range bs {
		buckets = append(buckets, BucketCount{Label: b.Label, Year: b.Year, Titles: []string{}})
	}

	counts := make(map[Category]map[string]int, len(cats))
	for _, c := range cats {
		counts[c] = make(map[string]int)
	}
	seenTitle := make(map[int]map[int64]bool)

	matched := 0
	for r := range rows {
		if pred != nil && !pred(r) {
			continue
		}
		if !yr.Contains(r.Year) {
			continue
		}
		matched++

		i := r.Year - yr.From
		buckets[i].Count++
		if seenTitle[i] == nil {
			seenTitle[i] = make(map[int64]bool)
		}
		if !seenTitle[i][r.PublicationID] {
			seenTitle[i][r.PublicationID] = true
			buckets[i].Titles = append(buckets[i].Titles, r.Title)
		}

		for c, m := range counts {
			for _, v := range c.values(r) {
				m[v]++
			}
		}
	}

	dists := make(map[Category][]Entry, len(cats))
	for c, m := range counts {
		dists[c] = sortedEntries(m)
	}
	return Result{Rows: matched, BucketCounts: buckets, Distributions: dists}, nil
}

func sortedEntries(m map[string]int) []Entry {
	out := make([]Entry, 0, len(m))
	for v, n := range m {
		out = append(out, Entry{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Response is what a rendering client receives for one query: the resolved
// filter state and, unless nothing is selected, the aggregate.
type Response struct {
	Filter   filter.Snapshot `json:"filter"`
	Selected bool            `json:"selected"`
	Result   *Result         `json:"result"`
}

// Query resolves req against v and aggregates the selected rows. When
// neither a campus nor an author is selected, Result is nil: that is the
// no-selection state, not an empty result. The resolved year range is
// checked before the selection, so an oversized range is always an error.
func Query(v *view.View, h filter.Hierarchy, req filter.Request, cats ...Category) (Response, error) {
	if len(cats) == 0 {
		cats = DefaultCategories
	}
	res := filter.Resolve(v, h, req)
	if err := res.Years.Validate(); err != nil {
		return Response{}, err
	}
	resp := Response{
		Filter:   res.Snapshot(v, h),
		Selected: res.Selected,
	}
	if !res.Selected {
		return resp, nil
	}
	out, err := Compute(v.All(), res.Predicate(), res.Years, cats)
	if err != nil {
		return Response{}, err
	}
	resp.Result = &out
	return resp, nil
}
