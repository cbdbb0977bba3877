package pdf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/tip-aru/rdmo/internal/logger"
	"github.com/tip-aru/rdmo/internal/record"
)

// BackfillResult counts what happened to each publication during a backfill.
type BackfillResult struct {
	Checked    int `json:"checked"`    // Publications without a DOI and with a PDF manuscript
	Filled     int `json:"filled"`     // DOI recovered from the manuscript
	Normalized int `json:"normalized"` // Existing DOI rewritten to its bare form
	NotFound   int `json:"not_found"`  // Manuscript path missing under the root
	NoDOI      int `json:"no_doi"`     // Manuscript read but carried no DOI
	Failed     int `json:"failed"`     // Manuscript could not be parsed
}

// BackfillDOIs fills in missing publication DOIs from full-manuscript PDFs
// found under root, and rewrites existing DOIs to their bare form. pubs is
// modified in place. Manuscript paths that escape root are counted as not
// found.
func BackfillDOIs(pubs []record.Publication, root string, log *logger.Logger) BackfillResult {
	if log == nil {
		log = logger.Nop()
	}

	var res BackfillResult
	for i := range pubs {
		p := &pubs[i]

		if p.DOI != "" {
			if bare := NormalizeDOI(p.DOI); bare != "" && bare != p.DOI {
				p.DOI = bare
				res.Normalized++
			}
			continue
		}
		if root == "" || !isPDF(p.FullManuscript) {
			continue
		}
		res.Checked++

		path, ok := manuscriptPath(root, p.FullManuscript)
		if !ok {
			res.NotFound++
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.Warn("stat manuscript", "path", path, "error", err)
			}
			res.NotFound++
			continue
		}

		doi, err := ExtractDOI(path)
		if err != nil {
			log.Warn("reading manuscript", "research_id", p.ID, "path", path, "error", err)
			res.Failed++
			continue
		}
		if doi == "" {
			res.NoDOI++
			continue
		}
		log.Debug("recovered doi", "research_id", p.ID, "doi", doi)
		p.DOI = doi
		res.Filled++
	}
	return res
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(strings.TrimSpace(name)), ".pdf")
}

// manuscriptPath resolves rel under root, rejecting paths that leave it.
func manuscriptPath(root, rel string) (string, bool) {
	rel = filepath.FromSlash(strings.TrimSpace(rel))
	if !filepath.IsLocal(rel) {
		return "", false
	}
	return filepath.Join(root, rel), true
}
