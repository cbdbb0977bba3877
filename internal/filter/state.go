package filter

// Level is the depth of the current hierarchical selection.
type Level int

// Selection depths. A program is never selected without a college, nor a
// college without a campus.
const (
	NoCampus Level = iota
	CampusOnly
	CampusCollege
	CampusCollegeProgram
)

func (l Level) String() string {
	switch l {
	case CampusOnly:
		return "campus"
	case CampusCollege:
		return "campus_college"
	case CampusCollegeProgram:
		return "campus_college_program"
	default:
		return "no_campus"
	}
}

// State is the campus → college → program selection. A nil field is
// unselected. States are values; every transition returns a new State and
// never produces a college without a campus or a program without a college.
type State struct {
	Campus  *int64 `json:"campus_id"`
	College *int64 `json:"college_id"`
	Program *int64 `json:"program_id"`
}

// Level reports how deep the selection goes.
func (s State) Level() Level {
	switch {
	case s.Campus == nil:
		return NoCampus
	case s.College == nil:
		return CampusOnly
	case s.Program == nil:
		return CampusCollege
	default:
		return CampusCollegeProgram
	}
}

// SelectCampus selects a campus. A selected college that is not reachable
// from the new campus is reset together with the program; a program that is
// no longer reachable is reset on its own.
func (s State) SelectCampus(h Hierarchy, campus int64) State {
	next := State{Campus: ptr(campus)}
	if s.College == nil || !h.CollegeReachable(campus, *s.College) {
		return next
	}
	next.College = ptr(*s.College)
	if s.Program != nil && h.ProgramReachable(campus, *s.College, *s.Program) {
		next.Program = ptr(*s.Program)
	}
	return next
}

// SelectCollege selects a college under the current campus. Without a
// campus, or when the college is unreachable, the college and program are
// reset instead.
func (s State) SelectCollege(h Hierarchy, college int64) State {
	if s.Campus == nil {
		return State{}
	}
	next := State{Campus: ptr(*s.Campus)}
	if !h.CollegeReachable(*s.Campus, college) {
		return next
	}
	next.College = ptr(college)
	if s.Program != nil && h.ProgramReachable(*s.Campus, college, *s.Program) {
		next.Program = ptr(*s.Program)
	}
	return next
}

// SelectProgram selects a program under the current campus and college.
// An unreachable program, or one selected without a college, is reset.
func (s State) SelectProgram(h Hierarchy, program int64) State {
	next := s.ClearProgram()
	if s.Campus == nil || s.College == nil {
		return next
	}
	if h.ProgramReachable(*s.Campus, *s.College, program) {
		next.Program = ptr(program)
	}
	return next
}

// ClearCampus returns the empty selection.
func (s State) ClearCampus() State {
	return State{}
}

// ClearCollege drops the college and program, keeping the campus.
func (s State) ClearCollege() State {
	if s.Campus == nil {
		return State{}
	}
	return State{Campus: ptr(*s.Campus)}
}

// ClearProgram drops the program only.
func (s State) ClearProgram() State {
	next := s.ClearCollege()
	if s.Campus != nil && s.College != nil {
		next.College = ptr(*s.College)
	}
	return next
}

func ptr(v int64) *int64 {
	return &v
}
