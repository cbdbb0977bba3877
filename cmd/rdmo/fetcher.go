package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tip-aru/rdmo/internal/config"
	"github.com/tip-aru/rdmo/internal/recordapi"
	"github.com/tip-aru/rdmo/internal/source"
	"github.com/tip-aru/rdmo/internal/storage"
)

// newFetcher returns the record fetcher for kind and a function releasing
// its resources.
func newFetcher(ctx context.Context, r *repo, kind string) (source.Fetcher, func(), error) {
	noop := func() {}

	switch kind {
	case source.KindJSONL:
		return storage.JSONLSource{Dir: config.RecordsPath(r.Root)}, noop, nil

	case source.KindSQLite:
		db, err := openCache(ctx, r)
		if err != nil {
			return nil, noop, err
		}
		return db, func() { db.Close() }, nil

	case source.KindPostgres:
		if r.Settings.DatabaseURL == "" {
			return nil, noop, fmt.Errorf("database_url is not configured (set it with 'rdmo config database-url' or %s)", config.EnvDatabaseURL)
		}
		db, err := storage.OpenDB(ctx, storage.DriverPostgres, r.Settings.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return db, func() { db.Close() }, nil

	case source.KindAPI:
		opts := []recordapi.ClientOption{recordapi.WithLogger(r.Log)}
		if r.Settings.APIURL != "" {
			opts = append(opts, recordapi.WithBaseURL(r.Settings.APIURL))
		}
		if r.Settings.APIKey != "" {
			opts = append(opts, recordapi.WithAPIKey(r.Settings.APIKey))
		}
		return recordapi.NewClient(opts...), noop, nil

	default:
		return nil, noop, source.ValidateKind(kind)
	}
}

// openCache opens the SQLite cache, rebuilding it from the JSONL records
// when the database file does not exist yet.
func openCache(ctx context.Context, r *repo) (*storage.DB, error) {
	if err := os.MkdirAll(config.CachePath(r.Root), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	path := config.DBPath(r.Root)
	_, statErr := os.Stat(path)
	fresh := errors.Is(statErr, os.ErrNotExist)

	db, err := storage.OpenDB(ctx, storage.DriverSQLite, path)
	if err != nil {
		return nil, err
	}
	if fresh {
		counts, err := db.RebuildFromJSONL(ctx, config.RecordsPath(r.Root))
		if err != nil {
			db.Close()
			return nil, err
		}
		r.Log.Info("cache rebuilt", "path", path, "researches", counts.Publications)
	}
	return db, nil
}
