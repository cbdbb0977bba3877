// Package record defines the raw record kinds supplied by a record source.
//
// JSON field names match the record API so that fetched payloads and JSONL
// files decode directly into these types.
package record

// Author is a faculty author owned by a campus.
type Author struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	CampusID *int64 `json:"campus_id"`
}

// Authorship links a publication to one of its authors.
// A publication with several authors has several links.
type Authorship struct {
	PublicationID int64 `json:"research_id"`
	AuthorID      int64 `json:"author_id"`
}

// Publication is a research output with its free-text metadata.
type Publication struct {
	ID             int64  `json:"id"`
	SchoolYear     string `json:"school_year,omitempty"`       // As entered; the derived bucket is authoritative
	Type           string `json:"type_of_research,omitempty"`  // Journal article, conference paper, ...
	Title          string `json:"title_of_research"`
	Abstract       string `json:"abstract,omitempty"`
	Keywords       string `json:"keywords,omitempty"`          // Comma separated
	DOI            string `json:"doi,omitempty"`
	FullManuscript string `json:"full_manuscript,omitempty"`   // Path relative to the manuscript root
	Journal        string `json:"journal_publisher,omitempty"`
	PublishedOn    string `json:"date_of_publication"`         // Raw date string, parsed permissively
	Indexing       string `json:"indexing,omitempty"`          // Scopus, WoS, ...
	APA            string `json:"apa_format,omitempty"`
	CollegeID      *int64 `json:"college_id"`
	ProgramID      *int64 `json:"program_id"`

	// Authors is the redundant author-name string ("A, B" or one per line).
	Authors string `json:"authors"`
}

// Campus is the top of the organizational hierarchy.
type Campus struct {
	ID   int64  `json:"camp_id"`
	Name string `json:"camp_name"`
}

// College is an academic college.
type College struct {
	ID   int64  `json:"id"`
	Name string `json:"college_name"`
}

// Program is a degree program.
type Program struct {
	ID   int64  `json:"id"`
	Name string `json:"program_name"`
}

// Sets bundles the six raw record sets a view is built from.
// No ordering is assumed within any set.
type Sets struct {
	Authors      []Author      `json:"authors"`
	Authorships  []Authorship  `json:"research_authors"`
	Publications []Publication `json:"researches"`
	Campuses     []Campus      `json:"campuses"`
	Colleges     []College     `json:"colleges"`
	Programs     []Program     `json:"programs"`
}

// Counts reports the number of records per kind.
type Counts struct {
	Authors      int `json:"authors"`
	Authorships  int `json:"research_authors"`
	Publications int `json:"researches"`
	Campuses     int `json:"campuses"`
	Colleges     int `json:"colleges"`
	Programs     int `json:"programs"`
}

// Counts returns the size of each record set.
func (s Sets) Counts() Counts {
	return Counts{
		Authors:      len(s.Authors),
		Authorships:  len(s.Authorships),
		Publications: len(s.Publications),
		Campuses:     len(s.Campuses),
		Colleges:     len(s.Colleges),
		Programs:     len(s.Programs),
	}
}

// ID returns a pointer to id, for populating nullable references.
func ID(id int64) *int64 {
	return &id
}
