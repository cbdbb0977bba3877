package view

import "strings"

// SplitNames splits a multi-valued name field on newlines and commas and
// trims each candidate. Blank candidates are discarded; order is preserved.
func SplitNames(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == ','
	})
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// Explode fans out every row into one row per value of a multi-valued field.
// get reads the raw field and set stores a single value on the copy. Every
// other field is copied verbatim. Rows with no non-blank value are dropped
// and counted in the second return value.
func Explode(rows []Row, get func(Row) string, set func(*Row, string)) ([]Row, int) {
	out := make([]Row, 0, len(rows))
	dropped := 0
	for _, r := range rows {
		values := SplitNames(get(r))
		if len(values) == 0 {
			dropped++
			continue
		}
		for _, v := range values {
			cp := r
			set(&cp, v)
			out = append(out, cp)
		}
	}
	return out, dropped
}

// NormalizeAuthors explodes the publication's own author-name string into one
// row per author. The joined author's name is deliberately not used: author
// filtering keys on the exploded string value.
func NormalizeAuthors(rows []Row) []Row {
	out, _ := explodeAuthors(rows)
	return out
}

func explodeAuthors(rows []Row) ([]Row, int) {
	return Explode(rows,
		func(r Row) string { return r.AuthorNames },
		func(r *Row, name string) { r.Author = name },
	)
}
