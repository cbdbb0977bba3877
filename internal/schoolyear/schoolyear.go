// Package schoolyear derives academic-year buckets from raw publication dates.
//
// A bucket is identified by its integer calendar year. The "SY y-y+1" label is
// for display only: ordering and range membership always use the year, so a
// bucket for year 9 sorts before a bucket for year 10.
package schoolyear

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrUnparseable is returned when a date string matches none of the accepted layouts.
var ErrUnparseable = errors.New("unparseable date")

// ErrSpanTooWide is returned for a range of more than MaxSpan years.
var ErrSpanTooWide = errors.New("year range too wide")

// MaxSpan is the widest range, in years, that can be enumerated into
// buckets. It covers every four-digit year.
const MaxSpan = 10000

// layouts are tried in order. Month and weekday names match case-insensitively.
var layouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	"2006/01/02",
	"2006/1/2",
	"2006-1-2",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"02-Jan-2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2006",
	"Jan 2006",
	"2006-01",
	"2006/01",
	"2006",
}

// Bucket is an academic-year partition key.
type Bucket struct {
	Year  int    `json:"year"`
	Label string `json:"label"`
}

// Label formats the display label for the academic year starting in year.
func Label(year int) string {
	return fmt.Sprintf("SY %d-%d", year, year+1)
}

// ForYear returns the bucket for a calendar year.
func ForYear(year int) Bucket {
	return Bucket{Year: year, Label: Label(year)}
}

// Less orders buckets by year. Labels are never compared.
func (b Bucket) Less(other Bucket) bool {
	return b.Year < other.Year
}

// ParseDate parses s using the first matching layout.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrUnparseable)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
}

// Derive parses a raw publication date and returns its bucket.
// ok is false when the date does not parse; such records are excluded
// from the view rather than defaulted.
func Derive(date string) (b Bucket, ok bool) {
	t, err := ParseDate(date)
	if err != nil {
		return Bucket{}, false
	}
	return ForYear(t.Year()), true
}

// YearRange is an inclusive range of calendar years.
type YearRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.From && year <= r.To
}

// Len returns the number of years in the range; zero when the range is
// inverted. Spans too large for an int report math.MaxInt.
func (r YearRange) Len() int {
	if r.To < r.From {
		return 0
	}
	d := uint(r.To) - uint(r.From)
	if d >= math.MaxInt {
		return math.MaxInt
	}
	return int(d) + 1
}

// Validate returns ErrSpanTooWide when the range holds more than MaxSpan
// years. An inverted range is valid and empty.
func (r YearRange) Validate() error {
	if r.Len() > MaxSpan {
		return fmt.Errorf("%w: %d to %d exceeds %d years", ErrSpanTooWide, r.From, r.To, MaxSpan)
	}
	return nil
}

// Buckets returns every bucket in the range in ascending year order. A range
// that fails Validate yields none.
func (r YearRange) Buckets() []Bucket {
	n := r.Len()
	if n == 0 || n > MaxSpan {
		return nil
	}
	out := make([]Bucket, 0, n)
	for y := r.From; ; y++ {
		out = append(out, ForYear(y))
		if y == r.To {
			break
		}
	}
	return out
}

// Range is shorthand for YearRange{From: from, To: to}.Buckets().
func Range(from, to int) []Bucket {
	return YearRange{From: from, To: to}.Buckets()
}
