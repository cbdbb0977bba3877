// Package pdf recovers DOIs from full-manuscript PDFs.
package pdf

import (
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// 10.XXXX/... where XXXX is 4 to 9 digits.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// maxSearchPages bounds how deep into a manuscript ExtractDOI looks.
const maxSearchPages = 3

// ExtractDOI extracts a DOI from the first pages of a PDF file.
// A manuscript without a DOI yields "" and a nil error.
func ExtractDOI(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pages := min(r.NumPage(), maxSearchPages)
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if doi := findDOI(text); doi != "" {
			return doi, nil
		}
	}

	return "", nil
}

// NormalizeDOI strips resolver prefixes and surrounding whitespace so that
// "https://doi.org/10.1000/x", "doi:10.1000/x" and "10.1000/x" compare equal.
// It returns "" when what remains is not a DOI.
func NormalizeDOI(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		if strings.HasPrefix(lower, prefix) {
			s = strings.TrimSpace(s[len(prefix):])
			break
		}
	}
	s = strings.TrimRight(s, ".,;:)")
	if !isValidDOI(s) {
		return ""
	}
	return s
}

func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI checks the 10.<registrant>/<suffix> shape.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash != -1 && slash < len(doi)-1
}
