package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"

	"github.com/tip-aru/rdmo/internal/record"
)

// Supported database drivers, named after the record source kinds.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned by OpenDB for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown database driver")

// DB wraps a database holding the six record tables.
type DB struct {
	db     *sql.DB
	driver string
}

// OpenDB opens the database. driver is DriverSQLite (dsn is a file path) or
// DriverPostgres (dsn is a connection URL). The SQLite cache is owned by
// rdmo, so its record tables are created when missing; a PostgreSQL record
// database is only read and is left untouched.
func OpenDB(ctx context.Context, driver, dsn string) (*DB, error) {
	var sqlDriver string
	switch driver {
	case DriverSQLite:
		sqlDriver = "sqlite"
	case DriverPostgres:
		sqlDriver = "pgx"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	d := &DB{db: db, driver: driver}
	if managesSchema(driver) {
		if err := d.CreateSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Driver returns the driver name the database was opened with.
func (d *DB) Driver() string {
	return d.driver
}

// The tables mirror the record API's database. Identities are not unique
// here: duplicates are kept so that ingestion validation can count them.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS campus (
		camp_id INTEGER NOT NULL,
		camp_name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS colleges (
		id INTEGER NOT NULL,
		college_name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS programs (
		id INTEGER NOT NULL,
		program_name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS authors (
		id INTEGER NOT NULL,
		author_name TEXT NOT NULL,
		campus_id INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS research_authors (
		research_id INTEGER NOT NULL,
		author_id INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_research_authors_author ON research_authors(author_id)`,
	`CREATE TABLE IF NOT EXISTS research_data (
		id INTEGER NOT NULL,
		school_year TEXT,
		type_of_research TEXT,
		title_of_research TEXT,
		abstract TEXT,
		keywords TEXT,
		doi TEXT,
		full_manuscript TEXT,
		journal_publisher TEXT,
		date_of_publication TEXT,
		indexing TEXT,
		apa_format TEXT,
		college_id INTEGER,
		program_id INTEGER,
		authors TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_research_data_id ON research_data(id)`,
}

// recordTables lists the tables cleared by ReplaceAll.
var recordTables = []string{"campus", "colleges", "programs", "authors", "research_authors", "research_data"}

func managesSchema(driver string) bool {
	return driver == DriverSQLite
}

// CreateSchema creates the record tables and indexes if they do not exist.
func (d *DB) CreateSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (d *DB) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RebuildFromJSONL clears the record tables and reloads them from the
// records directory dir.
func (d *DB) RebuildFromJSONL(ctx context.Context, dir string) (record.Counts, error) {
	sets, err := ReadSets(dir)
	if err != nil {
		return record.Counts{}, fmt.Errorf("reading JSONL: %w", err)
	}
	if err := d.ReplaceAll(ctx, sets); err != nil {
		return record.Counts{}, err
	}
	return sets.Counts(), nil
}

// ReplaceAll replaces the contents of every record table with sets in a
// single transaction.
func (d *DB) ReplaceAll(ctx context.Context, sets record.Sets) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range recordTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	insert := func(query string, n int, args func(i int) []any) error {
		stmt, err := tx.PrepareContext(ctx, d.rebind(query))
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()
		for i := 0; i < n; i++ {
			if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
				return fmt.Errorf("inserting row %d: %w", i, err)
			}
		}
		return nil
	}

	if err := insert(`INSERT INTO campus (camp_id, camp_name) VALUES (?, ?)`, len(sets.Campuses), func(i int) []any {
		c := sets.Campuses[i]
		return []any{c.ID, c.Name}
	}); err != nil {
		return fmt.Errorf("campus: %w", err)
	}
	if err := insert(`INSERT INTO colleges (id, college_name) VALUES (?, ?)`, len(sets.Colleges), func(i int) []any {
		c := sets.Colleges[i]
		return []any{c.ID, c.Name}
	}); err != nil {
		return fmt.Errorf("colleges: %w", err)
	}
	if err := insert(`INSERT INTO programs (id, program_name) VALUES (?, ?)`, len(sets.Programs), func(i int) []any {
		p := sets.Programs[i]
		return []any{p.ID, p.Name}
	}); err != nil {
		return fmt.Errorf("programs: %w", err)
	}
	if err := insert(`INSERT INTO authors (id, author_name, campus_id) VALUES (?, ?, ?)`, len(sets.Authors), func(i int) []any {
		a := sets.Authors[i]
		return []any{a.ID, a.Name, nullableID(a.CampusID)}
	}); err != nil {
		return fmt.Errorf("authors: %w", err)
	}
	if err := insert(`INSERT INTO research_authors (research_id, author_id) VALUES (?, ?)`, len(sets.Authorships), func(i int) []any {
		l := sets.Authorships[i]
		return []any{l.PublicationID, l.AuthorID}
	}); err != nil {
		return fmt.Errorf("research_authors: %w", err)
	}
	if err := insert(`INSERT INTO research_data (`+publicationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, len(sets.Publications), func(i int) []any {
		p := sets.Publications[i]
		return []any{
			p.ID, nullableString(p.SchoolYear), nullableString(p.Type), nullableString(p.Title),
			nullableString(p.Abstract), nullableString(p.Keywords), nullableString(p.DOI),
			nullableString(p.FullManuscript), nullableString(p.Journal), nullableString(p.PublishedOn),
			nullableString(p.Indexing), nullableString(p.APA),
			nullableID(p.CollegeID), nullableID(p.ProgramID), nullableString(p.Authors),
		}
	}); err != nil {
		return fmt.Errorf("research_data: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

const publicationColumns = `id, school_year, type_of_research, title_of_research,
	abstract, keywords, doi, full_manuscript, journal_publisher, date_of_publication,
	indexing, apa_format, college_id, program_id, authors`

// Fetch reads the six record sets.
func (d *DB) Fetch(ctx context.Context) (record.Sets, error) {
	var s record.Sets
	var err error
	if s.Campuses, err = d.campuses(ctx); err != nil {
		return record.Sets{}, fmt.Errorf("reading campus: %w", err)
	}
	if s.Colleges, err = d.colleges(ctx); err != nil {
		return record.Sets{}, fmt.Errorf("reading colleges: %w", err)
	}
	if s.Programs, err = d.programs(ctx); err != nil {
		return record.Sets{}, fmt.Errorf("reading programs: %w", err)
	}
	if s.Authors, err = d.authors(ctx); err != nil {
		return record.Sets{}, fmt.Errorf("reading authors: %w", err)
	}
	if s.Authorships, err = d.authorships(ctx); err != nil {
		return record.Sets{}, fmt.Errorf("reading research_authors: %w", err)
	}
	if s.Publications, err = d.publications(ctx, `SELECT `+publicationColumns+` FROM research_data ORDER BY id`); err != nil {
		return record.Sets{}, fmt.Errorf("reading research_data: %w", err)
	}
	return s, nil
}

// PublicationsByAuthor returns the publications linked to authorID.
func (d *DB) PublicationsByAuthor(ctx context.Context, authorID int64) ([]record.Publication, error) {
	pubs, err := d.publications(ctx, `
		SELECT `+prefixColumns("r", publicationColumns)+`
		FROM research_authors ra
		JOIN research_data r ON r.id = ra.research_id
		WHERE ra.author_id = ?
		ORDER BY r.id`, authorID)
	if err != nil {
		return nil, fmt.Errorf("reading publications of author %d: %w", authorID, err)
	}
	return pubs, nil
}

// Count returns the number of rows in each record table.
func (d *DB) Count(ctx context.Context) (record.Counts, error) {
	var c record.Counts
	targets := []struct {
		table string
		dst   *int
	}{
		{"authors", &c.Authors},
		{"research_authors", &c.Authorships},
		{"research_data", &c.Publications},
		{"campus", &c.Campuses},
		{"colleges", &c.Colleges},
		{"programs", &c.Programs},
	}
	for _, t := range targets {
		if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dst); err != nil {
			return record.Counts{}, fmt.Errorf("counting %s: %w", t.table, err)
		}
	}
	return c, nil
}

func (d *DB) campuses(ctx context.Context) ([]record.Campus, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT camp_id, camp_name FROM campus ORDER BY camp_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []record.Campus
	for rows.Next() {
		var c record.Campus
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) colleges(ctx context.Context) ([]record.College, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, college_name FROM colleges ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []record.College
	for rows.Next() {
		var c record.College
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) programs(ctx context.Context) ([]record.Program, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, program_name FROM programs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []record.Program
	for rows.Next() {
		var p record.Program
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (d *DB) authors(ctx context.Context) ([]record.Author, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, author_name, campus_id FROM authors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []record.Author
	for rows.Next() {
		var a record.Author
		var campus sql.NullInt64
		if err := rows.Scan(&a.ID, &a.Name, &campus); err != nil {
			return nil, err
		}
		a.CampusID = idFromNull(campus)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (d *DB) authorships(ctx context.Context) ([]record.Authorship, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT research_id, author_id FROM research_authors ORDER BY research_id, author_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []record.Authorship
	for rows.Next() {
		var l record.Authorship
		if err := rows.Scan(&l.PublicationID, &l.AuthorID); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (d *DB) publications(ctx context.Context, query string, args ...any) ([]record.Publication, error) {
	rows, err := d.db.QueryContext(ctx, d.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []record.Publication
	for rows.Next() {
		var p record.Publication
		var schoolYear, typ, title, abstract, keywords, doi, manuscript sql.NullString
		var journal, date, indexing, apa, authors sql.NullString
		var college, program sql.NullInt64
		err := rows.Scan(
			&p.ID, &schoolYear, &typ, &title,
			&abstract, &keywords, &doi, &manuscript, &journal, &date,
			&indexing, &apa, &college, &program, &authors,
		)
		if err != nil {
			return nil, err
		}
		p.SchoolYear = schoolYear.String
		p.Type = typ.String
		p.Title = title.String
		p.Abstract = abstract.String
		p.Keywords = keywords.String
		p.DOI = doi.String
		p.FullManuscript = manuscript.String
		p.Journal = journal.String
		p.PublishedOn = date.String
		p.Indexing = indexing.String
		p.APA = apa.String
		p.CollegeID = idFromNull(college)
		p.ProgramID = idFromNull(program)
		p.Authors = authors.String
		out = append(out, p)
	}
	return out, rows.Err()
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// nullableString converts a string to sql.NullString, treating empty as NULL.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idFromNull(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return record.ID(n.Int64)
}
