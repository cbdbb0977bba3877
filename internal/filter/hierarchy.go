// Package filter resolves hierarchical filter requests into row predicates.
//
// The campus → college → program selection is an explicit state machine.
// A selection that is not reachable under the current hierarchy resets that
// level and everything below it, the way a scoped drop-down would.
package filter

import (
	"sort"

	"github.com/tip-aru/rdmo/internal/view"
)

// Option is one selectable drop-down entry.
type Option struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type scope struct {
	campus, college int64
}

// Hierarchy records which colleges are reachable from each campus and which
// programs are reachable from each campus and college pair, as observed in
// a view.
type Hierarchy struct {
	campuses map[int64]string
	colleges map[int64]map[int64]string
	programs map[scope]map[int64]string
}

// NewHierarchy derives the reachable hierarchy from the rows of v.
func NewHierarchy(v *view.View) Hierarchy {
	h := Hierarchy{
		campuses: make(map[int64]string),
		colleges: make(map[int64]map[int64]string),
		programs: make(map[scope]map[int64]string),
	}
	for r := range v.All() {
		h.campuses[r.CampusID] = r.CampusName

		cols, ok := h.colleges[r.CampusID]
		if !ok {
			cols = make(map[int64]string)
			h.colleges[r.CampusID] = cols
		}
		cols[r.CollegeID] = r.CollegeName

		key := scope{r.CampusID, r.CollegeID}
		progs, ok := h.programs[key]
		if !ok {
			progs = make(map[int64]string)
			h.programs[key] = progs
		}
		progs[r.ProgramID] = r.ProgramName
	}
	return h
}

// CollegeReachable reports whether college is reachable from campus.
func (h Hierarchy) CollegeReachable(campus, college int64) bool {
	_, ok := h.colleges[campus][college]
	return ok
}

// ProgramReachable reports whether program is reachable from campus and college.
func (h Hierarchy) ProgramReachable(campus, college, program int64) bool {
	_, ok := h.programs[scope{campus, college}][program]
	return ok
}

// Campuses lists every campus with at least one row.
func (h Hierarchy) Campuses() []Option {
	return options(h.campuses)
}

// Colleges lists the colleges reachable from campus.
func (h Hierarchy) Colleges(campus int64) []Option {
	return options(h.colleges[campus])
}

// Programs lists the programs reachable from campus and college.
func (h Hierarchy) Programs(campus, college int64) []Option {
	return options(h.programs[scope{campus, college}])
}

func options(m map[int64]string) []Option {
	out := make([]Option, 0, len(m))
	for id, name := range m {
		out = append(out, Option{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
