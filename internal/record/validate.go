package record

import "strings"

// Reason names why a record or joined row was excluded from the view.
type Reason string

// Exclusion reasons. Exclusions are a data-quality policy, not errors.
const (
	ReasonMissingCampus       Reason = "missing_campus"       // Author has no campus reference
	ReasonMissingCollege      Reason = "missing_college"      // Publication has no college reference
	ReasonMissingProgram      Reason = "missing_program"      // Publication has no program reference
	ReasonMissingAuthors      Reason = "missing_authors"      // Publication author-name string is blank
	ReasonMissingTitle        Reason = "missing_title"        // Publication has no title
	ReasonMissingDate         Reason = "missing_date"         // Publication has no publication date
	ReasonDuplicateID         Reason = "duplicate_id"         // Second record with an already-seen identity
	ReasonDanglingCampus      Reason = "dangling_campus"      // Author references an unknown campus
	ReasonDanglingAuthor      Reason = "dangling_author"      // Link references an unknown author
	ReasonDanglingPublication Reason = "dangling_publication" // Link references an unknown publication
	ReasonDanglingCollege     Reason = "dangling_college"     // Publication references an unknown college
	ReasonDanglingProgram     Reason = "dangling_program"     // Publication references an unknown program
	ReasonEmptyAuthorName     Reason = "empty_author_name"    // Author string split into nothing
	ReasonUnparseableDate     Reason = "unparseable_date"     // Date did not parse to a year
)

// Exclusions counts excluded records per reason.
type Exclusions map[Reason]int

// Add increments the count for reason.
func (e Exclusions) Add(reason Reason) {
	e[reason]++
}

// Total returns the number of exclusions across all reasons.
func (e Exclusions) Total() int {
	n := 0
	for _, c := range e {
		n += c
	}
	return n
}

// Merge adds every count in other to e.
func (e Exclusions) Merge(other Exclusions) {
	for r, c := range other {
		e[r] += c
	}
}

// Clean applies ingestion validation and returns the records that may take
// part in a join. Records with missing required fields and records whose
// identity was already seen are dropped and counted; nothing here is fatal.
// Links to an author or publication rejected here are dropped without being
// counted again, since the rejected record already carries the reason.
func (s Sets) Clean() (Sets, Exclusions) {
	ex := Exclusions{}
	var out Sets

	seenAuthors := make(map[int64]bool, len(s.Authors))
	rejectedAuthors := make(map[int64]bool)
	for _, a := range s.Authors {
		if seenAuthors[a.ID] {
			ex.Add(ReasonDuplicateID)
			continue
		}
		seenAuthors[a.ID] = true
		if a.CampusID == nil {
			ex.Add(ReasonMissingCampus)
			rejectedAuthors[a.ID] = true
			continue
		}
		out.Authors = append(out.Authors, a)
	}

	seenPubs := make(map[int64]bool, len(s.Publications))
	rejectedPubs := make(map[int64]bool)
	for _, p := range s.Publications {
		if seenPubs[p.ID] {
			ex.Add(ReasonDuplicateID)
			continue
		}
		seenPubs[p.ID] = true
		if reason, ok := p.missingField(); ok {
			ex.Add(reason)
			rejectedPubs[p.ID] = true
			continue
		}
		out.Publications = append(out.Publications, p)
	}

	for _, l := range s.Authorships {
		if rejectedAuthors[l.AuthorID] || rejectedPubs[l.PublicationID] {
			continue
		}
		out.Authorships = append(out.Authorships, l)
	}

	seenCampuses := make(map[int64]bool, len(s.Campuses))
	for _, c := range s.Campuses {
		if seenCampuses[c.ID] {
			ex.Add(ReasonDuplicateID)
			continue
		}
		seenCampuses[c.ID] = true
		out.Campuses = append(out.Campuses, c)
	}

	seenColleges := make(map[int64]bool, len(s.Colleges))
	for _, c := range s.Colleges {
		if seenColleges[c.ID] {
			ex.Add(ReasonDuplicateID)
			continue
		}
		seenColleges[c.ID] = true
		out.Colleges = append(out.Colleges, c)
	}

	seenPrograms := make(map[int64]bool, len(s.Programs))
	for _, p := range s.Programs {
		if seenPrograms[p.ID] {
			ex.Add(ReasonDuplicateID)
			continue
		}
		seenPrograms[p.ID] = true
		out.Programs = append(out.Programs, p)
	}

	return out, ex
}

// missingField reports the first required field that is absent.
func (p Publication) missingField() (Reason, bool) {
	switch {
	case p.CollegeID == nil:
		return ReasonMissingCollege, true
	case p.ProgramID == nil:
		return ReasonMissingProgram, true
	case strings.TrimSpace(p.Authors) == "":
		return ReasonMissingAuthors, true
	case strings.TrimSpace(p.Title) == "":
		return ReasonMissingTitle, true
	case strings.TrimSpace(p.PublishedOn) == "":
		return ReasonMissingDate, true
	}
	return "", false
}
