package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tip-aru/rdmo/internal/aggregate"
	"github.com/tip-aru/rdmo/internal/filter"
	"github.com/tip-aru/rdmo/internal/record"
	"github.com/tip-aru/rdmo/internal/schoolyear"
	"github.com/tip-aru/rdmo/internal/view"
)

func (s *Server) healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// loaded returns the current snapshot, or writes 503 and returns nil.
func (s *Server) loaded(c *gin.Context) *snapshot {
	snap := s.current()
	if snap == nil {
		respondError(c, http.StatusServiceUnavailable, CodeNotLoaded, ErrNoSnapshot)
	}
	return snap
}

// GET /authors
func (s *Server) listAuthors(c *gin.Context) {
	if snap := s.loaded(c); snap != nil {
		respondOK(c, nonNil(snap.sets.Authors))
	}
}

// GET /research_authors
func (s *Server) listAuthorships(c *gin.Context) {
	if snap := s.loaded(c); snap != nil {
		respondOK(c, nonNil(snap.sets.Authorships))
	}
}

// GET /researches
func (s *Server) listPublications(c *gin.Context) {
	if snap := s.loaded(c); snap != nil {
		respondOK(c, nonNil(snap.sets.Publications))
	}
}

// GET /campuses
func (s *Server) listCampuses(c *gin.Context) {
	if snap := s.loaded(c); snap != nil {
		respondOK(c, nonNil(snap.sets.Campuses))
	}
}

// GET /colleges
func (s *Server) listColleges(c *gin.Context) {
	if snap := s.loaded(c); snap != nil {
		respondOK(c, nonNil(snap.sets.Colleges))
	}
}

// GET /programs
func (s *Server) listPrograms(c *gin.Context) {
	if snap := s.loaded(c); snap != nil {
		respondOK(c, nonNil(snap.sets.Programs))
	}
}

// AuthorResearch is one publication of an author as listed by
// /author_research/:id. Missing metadata is reported as "Unlabeled"; Year
// is an int, or "Unlabeled" when the date does not parse.
type AuthorResearch struct {
	ResearchID int64  `json:"research_id"`
	Title      string `json:"title"`
	Year       any    `json:"year"`
	Journal    string `json:"journal_publisher"`
	Indexing   string `json:"indexing"`
	DOI        string `json:"doi"`
	Keywords   string `json:"keywords"`
}

// GET /author_research/:id
func (s *Server) authorResearch(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, fmt.Errorf("invalid author id %q", c.Param("id")))
		return
	}
	snap := s.loaded(c)
	if snap == nil {
		return
	}
	respondOK(c, researchFor(snap.sets, id))
}

// researchFor lists the publications linked to author in link order.
// Links to unknown publications are skipped.
func researchFor(sets record.Sets, author int64) []AuthorResearch {
	pubs := make(map[int64]record.Publication, len(sets.Publications))
	for _, p := range sets.Publications {
		if _, dup := pubs[p.ID]; !dup {
			pubs[p.ID] = p
		}
	}

	out := []AuthorResearch{}
	for _, link := range sets.Authorships {
		if link.AuthorID != author {
			continue
		}
		p, ok := pubs[link.PublicationID]
		if !ok {
			continue
		}
		var year any = aggregate.Unlabeled
		if t, err := schoolyear.ParseDate(p.PublishedOn); err == nil {
			year = t.Year()
		}
		out = append(out, AuthorResearch{
			ResearchID: p.ID,
			Title:      p.Title,
			Year:       year,
			Journal:    orUnlabeled(p.Journal),
			Indexing:   orUnlabeled(p.Indexing),
			DOI:        orUnlabeled(p.DOI),
			Keywords:   orUnlabeled(p.Keywords),
		})
	}
	return out
}

func orUnlabeled(s string) string {
	if strings.TrimSpace(s) == "" {
		return aggregate.Unlabeled
	}
	return s
}

// StatsResponse describes the loaded snapshot.
type StatsResponse struct {
	view.Stats
	BuiltAt time.Time `json:"built_at"`
}

// GET /api/stats
func (s *Server) viewStats(c *gin.Context) {
	if snap := s.loaded(c); snap != nil {
		respondOK(c, StatsResponse{Stats: snap.view.Stats(), BuiltAt: snap.builtAt})
	}
}

// GET /api/authors
func (s *Server) viewAuthors(c *gin.Context) {
	if snap := s.loaded(c); snap != nil {
		respondOK(c, nonNil(snap.view.Authors()))
	}
}

// GET /api/years
func (s *Server) viewYears(c *gin.Context) {
	if snap := s.loaded(c); snap != nil {
		respondOK(c, nonNil(snap.view.Buckets()))
	}
}

// GET /api/filter
// Query: author, from_year, to_year, campus_id, college_id, program_id.
func (s *Server) filterOptions(c *gin.Context) {
	req, err := parseRequest(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	snap := s.loaded(c)
	if snap == nil {
		return
	}
	res := filter.Resolve(snap.view, snap.hier, req)
	if err := res.Years.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	respondOK(c, res.Snapshot(snap.view, snap.hier))
}

// GET /api/aggregate
// Query: the /api/filter parameters plus repeatable or comma-separated
// categories.
func (s *Server) aggregateQuery(c *gin.Context) {
	req, err := parseRequest(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	var names []string
	for _, v := range c.QueryArray("categories") {
		names = append(names, strings.Split(v, ",")...)
	}
	cats, err := aggregate.ParseCategories(names)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	snap := s.loaded(c)
	if snap == nil {
		return
	}

	start := time.Now()
	resp, err := aggregate.Query(snap.view, snap.hier, req, cats...)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	s.metrics.ObserveQuery(resp, time.Since(start))
	respondOK(c, resp)
}

// POST /api/rebuild
func (s *Server) rebuild(c *gin.Context) {
	stats, err := s.Rebuild(c.Request.Context())
	if err != nil {
		s.log.Error("rebuild failed", "error", err)
		respondError(c, http.StatusBadGateway, CodeSourceError, err)
		return
	}
	respondOK(c, stats)
}

func parseRequest(c *gin.Context) (filter.Request, error) {
	var req filter.Request
	req.Author = strings.TrimSpace(c.Query("author"))

	var err error
	if req.FromYear, err = queryInt(c, "from_year"); err != nil {
		return req, err
	}
	if req.ToYear, err = queryInt(c, "to_year"); err != nil {
		return req, err
	}
	if req.CampusID, err = queryID(c, "campus_id"); err != nil {
		return req, err
	}
	if req.CollegeID, err = queryID(c, "college_id"); err != nil {
		return req, err
	}
	if req.ProgramID, err = queryID(c, "program_id"); err != nil {
		return req, err
	}
	return req, nil
}

func queryInt(c *gin.Context, key string) (*int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &n, nil
}

func queryID(c *gin.Context, key string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &n, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
