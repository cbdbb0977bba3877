package view

import (
	"sort"

	"github.com/tip-aru/rdmo/internal/record"
)

// linkedAuthor is an author already joined to its campus.
type linkedAuthor struct {
	name       string
	campusID   int64
	campusName string
}

// Join performs the inner joins author⋈campus, link⋈author, ⋈publication,
// ⋈college and ⋈program. A publication with k resolvable links yields k rows.
// Rows that fail to resolve any reference are dropped and counted; the
// returned rows are not yet exploded or bucketed.
func Join(sets record.Sets) ([]Row, record.Exclusions) {
	ex := record.Exclusions{}

	campuses := make(map[int64]string, len(sets.Campuses))
	for _, c := range sets.Campuses {
		campuses[c.ID] = c.Name
	}
	colleges := make(map[int64]string, len(sets.Colleges))
	for _, c := range sets.Colleges {
		colleges[c.ID] = c.Name
	}
	programs := make(map[int64]string, len(sets.Programs))
	for _, p := range sets.Programs {
		programs[p.ID] = p.Name
	}
	publications := make(map[int64]record.Publication, len(sets.Publications))
	for _, p := range sets.Publications {
		publications[p.ID] = p
	}

	// Authors that exist but cannot be placed on a campus are counted once
	// here, not again for every link that references them.
	authors := make(map[int64]linkedAuthor, len(sets.Authors))
	unplaced := make(map[int64]bool)
	for _, a := range sets.Authors {
		if a.CampusID == nil {
			ex.Add(record.ReasonMissingCampus)
			unplaced[a.ID] = true
			continue
		}
		name, ok := campuses[*a.CampusID]
		if !ok {
			ex.Add(record.ReasonDanglingCampus)
			unplaced[a.ID] = true
			continue
		}
		authors[a.ID] = linkedAuthor{name: a.Name, campusID: *a.CampusID, campusName: name}
	}

	links := make([]record.Authorship, len(sets.Authorships))
	copy(links, sets.Authorships)
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].PublicationID != links[j].PublicationID {
			return links[i].PublicationID < links[j].PublicationID
		}
		return links[i].AuthorID < links[j].AuthorID
	})

	rows := make([]Row, 0, len(links))
	for _, link := range links {
		author, ok := authors[link.AuthorID]
		if !ok {
			if !unplaced[link.AuthorID] {
				ex.Add(record.ReasonDanglingAuthor)
			}
			continue
		}
		pub, ok := publications[link.PublicationID]
		if !ok {
			ex.Add(record.ReasonDanglingPublication)
			continue
		}
		if pub.CollegeID == nil {
			ex.Add(record.ReasonMissingCollege)
			continue
		}
		collegeName, ok := colleges[*pub.CollegeID]
		if !ok {
			ex.Add(record.ReasonDanglingCollege)
			continue
		}
		if pub.ProgramID == nil {
			ex.Add(record.ReasonMissingProgram)
			continue
		}
		programName, ok := programs[*pub.ProgramID]
		if !ok {
			ex.Add(record.ReasonDanglingProgram)
			continue
		}

		rows = append(rows, Row{
			PublicationID: pub.ID,
			Title:         pub.Title,
			Type:          pub.Type,
			Abstract:      pub.Abstract,
			Keywords:      pub.Keywords,
			DOI:           pub.DOI,
			Journal:       pub.Journal,
			Indexing:      pub.Indexing,
			APA:           pub.APA,
			PublishedOn:   pub.PublishedOn,
			AuthorID:      link.AuthorID,
			LinkedAuthor:  author.name,
			CampusID:      author.campusID,
			CampusName:    author.campusName,
			CollegeID:     *pub.CollegeID,
			CollegeName:   collegeName,
			ProgramID:     *pub.ProgramID,
			ProgramName:   programName,
			AuthorNames:   pub.Authors,
		})
	}

	return rows, ex
}
