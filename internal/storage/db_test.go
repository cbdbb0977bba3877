package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tip-aru/rdmo/internal/record"
)

// setupTestDB creates an SQLite database rebuilt from a JSONL records directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir := t.TempDir()
	recordsDir := filepath.Join(tmpDir, "records")
	if err := WriteSets(recordsDir, testSets()); err != nil {
		t.Fatalf("Failed to write test records: %v", err)
	}

	db, err := OpenDB(context.Background(), DriverSQLite, filepath.Join(tmpDir, "records.db"))
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	counts, err := db.RebuildFromJSONL(context.Background(), recordsDir)
	if err != nil {
		t.Fatalf("Failed to rebuild DB: %v", err)
	}
	if counts.Publications != 2 {
		t.Fatalf("RebuildFromJSONL() publications = %d, want 2", counts.Publications)
	}
	return db
}

func TestOpenDB_UnknownDriver(t *testing.T) {
	_, err := OpenDB(context.Background(), "mysql", "x")
	if !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("OpenDB() error = %v, want ErrUnknownDriver", err)
	}
}

func TestDB_FetchRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if diff := cmp.Diff(testSets(), got); diff != "" {
		t.Errorf("Fetch() mismatch (-want +got):\n%s", diff)
	}
}

func TestDB_RebuildReplacesContent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	smaller := record.Sets{Campuses: []record.Campus{{ID: 9, Name: "Only"}}}
	if err := db.ReplaceAll(ctx, smaller); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	counts, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	want := record.Counts{Campuses: 1}
	if counts != want {
		t.Errorf("Count() = %+v, want %+v", counts, want)
	}
}

func TestDB_KeepsDuplicateIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	dup := record.Sets{Colleges: []record.College{{ID: 1, Name: "A"}, {ID: 1, Name: "A again"}}}
	if err := db.ReplaceAll(ctx, dup); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	got, err := db.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got.Colleges) != 2 {
		t.Errorf("Fetch() colleges = %+v, want both duplicates", got.Colleges)
	}
}

func TestDB_PublicationsByAuthor(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	pubs, err := db.PublicationsByAuthor(ctx, 2)
	if err != nil {
		t.Fatalf("PublicationsByAuthor() error = %v", err)
	}
	if len(pubs) != 1 || pubs[0].Title != "Flood Modelling" {
		t.Errorf("PublicationsByAuthor(2) = %+v", pubs)
	}
	if pubs[0].Indexing != "" || pubs[0].DOI != "" {
		t.Errorf("NULL columns read back as %q, %q", pubs[0].Indexing, pubs[0].DOI)
	}

	pubs, err = db.PublicationsByAuthor(ctx, 99)
	if err != nil {
		t.Fatalf("PublicationsByAuthor() error = %v", err)
	}
	if len(pubs) != 0 {
		t.Errorf("PublicationsByAuthor(99) = %+v, want none", pubs)
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	lite := &DB{driver: DriverSQLite}
	q := "SELECT * FROM t WHERE a = ? AND b = ?"

	if got := pg.rebind(q); got != "SELECT * FROM t WHERE a = $1 AND b = $2" {
		t.Errorf("postgres rebind = %q", got)
	}
	if got := lite.rebind(q); got != q {
		t.Errorf("sqlite rebind = %q", got)
	}
}

func TestManagesSchema(t *testing.T) {
	if !managesSchema(DriverSQLite) {
		t.Error("SQLite cache schema should be created on open")
	}
	if managesSchema(DriverPostgres) {
		t.Error("PostgreSQL record database must not be altered on open")
	}
}

func TestPrefixColumns(t *testing.T) {
	if got := prefixColumns("r", "id, title,\n\tdoi"); got != "r.id, r.title, r.doi" {
		t.Errorf("prefixColumns() = %q", got)
	}
}

// TestDB_Postgres runs against a live PostgreSQL when RDMO_TEST_DATABASE_URL is set.
func TestDB_Postgres(t *testing.T) {
	dsn := os.Getenv("RDMO_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("RDMO_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	db, err := OpenDB(ctx, DriverPostgres, dsn)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	if err := db.CreateSchema(ctx); err != nil {
		t.Fatalf("CreateSchema() error = %v", err)
	}
	if err := db.ReplaceAll(ctx, testSets()); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	got, err := db.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if diff := cmp.Diff(testSets(), got); diff != "" {
		t.Errorf("Fetch() mismatch (-want +got):\n%s", diff)
	}
}
