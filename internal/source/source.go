// Package source defines where raw record sets come from and turns a fetch
// into a view snapshot.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tip-aru/rdmo/internal/record"
	"github.com/tip-aru/rdmo/internal/view"
)

// Kinds of record source.
const (
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindJSONL    = "jsonl"
	KindAPI      = "api"
)

// ErrUnknownKind is returned for a source kind other than the Kind constants.
var ErrUnknownKind = errors.New("unknown source kind")

// Kinds lists the supported source kinds.
var Kinds = []string{KindSQLite, KindPostgres, KindJSONL, KindAPI}

// ValidateKind returns ErrUnknownKind unless kind is supported.
func ValidateKind(kind string) error {
	for _, k := range Kinds {
		if k == kind {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Fetcher loads the six raw record sets.
type Fetcher interface {
	Fetch(ctx context.Context) (record.Sets, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) (record.Sets, error)

func (f FetcherFunc) Fetch(ctx context.Context) (record.Sets, error) {
	return f(ctx)
}

// Static is a Fetcher that always returns the same sets.
type Static record.Sets

func (s Static) Fetch(context.Context) (record.Sets, error) {
	return record.Sets(s), nil
}

// Build fetches from f and builds a view. The returned duration covers
// both the fetch and the build.
func Build(ctx context.Context, f Fetcher) (*view.View, time.Duration, error) {
	start := time.Now()
	sets, err := f.Fetch(ctx)
	if err != nil {
		return nil, time.Since(start), fmt.Errorf("fetching records: %w", err)
	}
	v := view.Build(sets)
	return v, time.Since(start), nil
}
