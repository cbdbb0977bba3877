package view

import (
	"iter"
	"sort"

	"github.com/tip-aru/rdmo/internal/record"
	"github.com/tip-aru/rdmo/internal/schoolyear"
)

// Stats describes how a view was built.
type Stats struct {
	Input        record.Counts         `json:"input"`
	Rows         int                   `json:"rows"`
	Publications int                   `json:"publications"`
	Excluded     record.Exclusions     `json:"excluded"`
	Years        *schoolyear.YearRange `json:"years,omitempty"`
}

// View is an immutable snapshot of denormalized publication rows.
// The zero value is an empty view.
type View struct {
	rows  []Row
	stats Stats
}

// Build reconciles the six record sets into a new view. It is a pure
// function of its input: calling it twice on the same sets yields equal
// views. Records that cannot be reconciled are excluded and counted in
// Stats, never reported as errors.
func Build(sets record.Sets) *View {
	clean, excluded := sets.Clean()

	rows, joinEx := Join(clean)
	excluded.Merge(joinEx)

	rows, emptyNames := explodeAuthors(rows)
	for i := 0; i < emptyNames; i++ {
		excluded.Add(record.ReasonEmptyAuthorName)
	}

	rows, unparseable := AssignBuckets(rows)
	for i := 0; i < unparseable; i++ {
		excluded.Add(record.ReasonUnparseableDate)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Less(rows[j]) })

	return newView(rows, sets.Counts(), excluded)
}

// AssignBuckets derives Year and Bucket for every row from its publication
// date. Rows whose date does not parse are dropped and counted.
func AssignBuckets(rows []Row) ([]Row, int) {
	out := make([]Row, 0, len(rows))
	dropped := 0
	for _, r := range rows {
		b, ok := schoolyear.Derive(r.PublishedOn)
		if !ok {
			dropped++
			continue
		}
		r.Year = b.Year
		r.Bucket = b.Label
		out = append(out, r)
	}
	return out, dropped
}

func newView(rows []Row, input record.Counts, excluded record.Exclusions) *View {
	stats := Stats{
		Input:    input,
		Rows:     len(rows),
		Excluded: excluded,
	}
	pubs := make(map[int64]bool)
	for i, r := range rows {
		pubs[r.PublicationID] = true
		if i == 0 {
			stats.Years = &schoolyear.YearRange{From: r.Year, To: r.Year}
			continue
		}
		if r.Year < stats.Years.From {
			stats.Years.From = r.Year
		}
		if r.Year > stats.Years.To {
			stats.Years.To = r.Year
		}
	}
	stats.Publications = len(pubs)
	return &View{rows: rows, stats: stats}
}

// Len returns the number of rows.
func (v *View) Len() int {
	if v == nil {
		return 0
	}
	return len(v.rows)
}

// All iterates over the rows in canonical order.
func (v *View) All() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		if v == nil {
			return
		}
		for _, r := range v.rows {
			if !yield(r) {
				return
			}
		}
	}
}

// Rows returns a copy of the rows in canonical order.
func (v *View) Rows() []Row {
	if v == nil {
		return nil
	}
	out := make([]Row, len(v.rows))
	copy(out, v.rows)
	return out
}

// Stats returns a copy of the build statistics.
func (v *View) Stats() Stats {
	if v == nil {
		return Stats{Excluded: record.Exclusions{}}
	}
	s := v.stats
	s.Excluded = record.Exclusions{}
	s.Excluded.Merge(v.stats.Excluded)
	if v.stats.Years != nil {
		years := *v.stats.Years
		s.Years = &years
	}
	return s
}

// YearRange returns the span of years present in the view.
// ok is false for an empty view.
func (v *View) YearRange() (schoolyear.YearRange, bool) {
	if v == nil || v.stats.Years == nil {
		return schoolyear.YearRange{}, false
	}
	return *v.stats.Years, true
}

// Buckets returns the distinct buckets present in the view, ascending by year.
func (v *View) Buckets() []schoolyear.Bucket {
	seen := make(map[int]bool)
	var out []schoolyear.Bucket
	for r := range v.All() {
		if !seen[r.Year] {
			seen[r.Year] = true
			out = append(out, schoolyear.ForYear(r.Year))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Authors returns the distinct exploded author names, sorted.
func (v *View) Authors() []string {
	seen := make(map[string]bool)
	var out []string
	for r := range v.All() {
		if !seen[r.Author] {
			seen[r.Author] = true
			out = append(out, r.Author)
		}
	}
	sort.Strings(out)
	return out
}
