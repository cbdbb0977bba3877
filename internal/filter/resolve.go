package filter

import (
	"github.com/tip-aru/rdmo/internal/schoolyear"
	"github.com/tip-aru/rdmo/internal/view"
)

// Predicate selects rows.
type Predicate func(view.Row) bool

// Request is a filter as submitted by a client. Nil fields are unset.
// The hierarchy fields may be stale; Resolve repairs them.
type Request struct {
	Author    string `json:"author,omitempty"`
	FromYear  *int   `json:"from_year,omitempty"`
	ToYear    *int   `json:"to_year,omitempty"`
	CampusID  *int64 `json:"campus_id,omitempty"`
	CollegeID *int64 `json:"college_id,omitempty"`
	ProgramID *int64 `json:"program_id,omitempty"`
}

// Resolution is a valid filter state derived from a Request.
type Resolution struct {
	State  State
	Author string
	Years  schoolyear.YearRange

	// Selected is false when neither a campus nor an author is chosen.
	// This "no selection" state produces no aggregate at all and is
	// distinct from a selection that matches zero rows.
	Selected bool

	// Reset names the requested selections that were dropped as unreachable.
	Reset []string
}

// emptyYears is an inverted range: it contains no year and has no buckets.
var emptyYears = schoolyear.YearRange{From: 0, To: -1}

// Resolve turns a request into a valid resolution. Campus, college and
// program are applied as successive state transitions so that an
// unreachable college or program is reset rather than rejected. Missing year
// bounds default to the span of years present in v.
func Resolve(v *view.View, h Hierarchy, req Request) Resolution {
	var st State
	if req.CampusID != nil {
		st = st.SelectCampus(h, *req.CampusID)
	}
	if req.CollegeID != nil {
		st = st.SelectCollege(h, *req.CollegeID)
	}
	if req.ProgramID != nil {
		st = st.SelectProgram(h, *req.ProgramID)
	}

	res := Resolution{
		State:    st,
		Author:   req.Author,
		Years:    resolveYears(v, req),
		Selected: st.Campus != nil || req.Author != "",
	}
	if req.CollegeID != nil && st.College == nil {
		res.Reset = append(res.Reset, "college")
	}
	if req.ProgramID != nil && st.Program == nil {
		res.Reset = append(res.Reset, "program")
	}
	return res
}

func resolveYears(v *view.View, req Request) schoolyear.YearRange {
	span, ok := v.YearRange()
	switch {
	case req.FromYear != nil && req.ToYear != nil:
		return schoolyear.YearRange{From: *req.FromYear, To: *req.ToYear}
	case !ok && (req.FromYear == nil || req.ToYear == nil):
		if req.FromYear != nil {
			return schoolyear.YearRange{From: *req.FromYear, To: *req.FromYear}
		}
		if req.ToYear != nil {
			return schoolyear.YearRange{From: *req.ToYear, To: *req.ToYear}
		}
		return emptyYears
	case req.FromYear != nil:
		return schoolyear.YearRange{From: *req.FromYear, To: span.To}
	case req.ToYear != nil:
		return schoolyear.YearRange{From: span.From, To: *req.ToYear}
	default:
		return span
	}
}

// Predicate returns the row predicate for the resolution. Year membership is
// decided on the integer year, never on the bucket label.
func (r Resolution) Predicate() Predicate {
	st := r.State
	author := r.Author
	years := r.Years
	return func(row view.Row) bool {
		if author != "" && row.Author != author {
			return false
		}
		if !years.Contains(row.Year) {
			return false
		}
		if st.Campus != nil && row.CampusID != *st.Campus {
			return false
		}
		if st.College != nil && row.CollegeID != *st.College {
			return false
		}
		if st.Program != nil && row.ProgramID != *st.Program {
			return false
		}
		return true
	}
}

// Options are the drop-down choices valid under a state.
type Options struct {
	Authors  []string            `json:"authors"`
	Buckets  []schoolyear.Bucket `json:"school_years"`
	Campuses []Option            `json:"campuses"`
	Colleges []Option            `json:"colleges"`
	Programs []Option            `json:"programs"`
}

// Snapshot is the resolved filter state handed to a rendering client.
type Snapshot struct {
	State
	Level    string               `json:"level"`
	Author   string               `json:"author,omitempty"`
	Years    schoolyear.YearRange `json:"years"`
	Selected bool                 `json:"selected"`
	Reset    []string             `json:"reset,omitempty"`
	Options  Options              `json:"options"`
}

// Snapshot describes the resolution together with the options reachable
// from its state.
func (r Resolution) Snapshot(v *view.View, h Hierarchy) Snapshot {
	opts := Options{
		Authors:  v.Authors(),
		Buckets:  v.Buckets(),
		Campuses: h.Campuses(),
		Colleges: []Option{},
		Programs: []Option{},
	}
	if r.State.Campus != nil {
		opts.Colleges = h.Colleges(*r.State.Campus)
		if r.State.College != nil {
			opts.Programs = h.Programs(*r.State.Campus, *r.State.College)
		}
	}
	if opts.Authors == nil {
		opts.Authors = []string{}
	}
	if opts.Buckets == nil {
		opts.Buckets = []schoolyear.Bucket{}
	}
	return Snapshot{
		State:    r.State,
		Level:    r.State.Level().String(),
		Author:   r.Author,
		Years:    r.Years,
		Selected: r.Selected,
		Reset:    r.Reset,
		Options:  opts,
	}
}
