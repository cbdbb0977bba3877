// Package view reconciles raw record sets into an immutable, denormalized
// publication view.
//
// Build runs the whole pipeline: ingestion validation, the inner joins,
// author fan-out and academic-year bucketing. The resulting View is a
// snapshot value; it is never mutated and is safe for concurrent readers.
package view

// Row is one denormalized publication record: a publication joined with a
// linked author (and that author's campus), its college and its program,
// carrying exactly one exploded author name.
type Row struct {
	PublicationID int64  `json:"publication_id"`
	Title         string `json:"title"`
	Type          string `json:"type_of_research,omitempty"`
	Abstract      string `json:"abstract,omitempty"`
	Keywords      string `json:"keywords,omitempty"`
	DOI           string `json:"doi,omitempty"`
	Journal       string `json:"journal_publisher,omitempty"`
	Indexing      string `json:"indexing,omitempty"`
	APA           string `json:"apa_format,omitempty"`
	PublishedOn   string `json:"date_of_publication"`

	// Linked author identity, resolved through the authorship link.
	AuthorID     int64  `json:"author_id"`
	LinkedAuthor string `json:"linked_author"`

	CampusID    int64  `json:"campus_id"`
	CampusName  string `json:"campus_name"`
	CollegeID   int64  `json:"college_id"`
	CollegeName string `json:"college_name"`
	ProgramID   int64  `json:"program_id"`
	ProgramName string `json:"program_name"`

	// AuthorNames is the publication's own author-name string before fan-out.
	AuthorNames string `json:"-"`

	// Derived fields.
	Author string `json:"author"`
	Year   int    `json:"year"`
	Bucket string `json:"school_year"`
}

// Less is the canonical row order: publication, linked author, exploded author.
func (r Row) Less(o Row) bool {
	if r.PublicationID != o.PublicationID {
		return r.PublicationID < o.PublicationID
	}
	if r.AuthorID != o.AuthorID {
		return r.AuthorID < o.AuthorID
	}
	return r.Author < o.Author
}
