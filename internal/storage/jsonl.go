// Package storage persists raw record sets as JSONL files, the source of
// truth, and serves them from an SQL database (a local SQLite cache rebuilt
// from JSONL, or the PostgreSQL database the records originate from).
package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tip-aru/rdmo/internal/record"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// JSONL file names, one per record kind, inside a records directory.
const (
	AuthorsFile      = "authors.jsonl"
	AuthorshipsFile  = "research_authors.jsonl"
	PublicationsFile = "researches.jsonl"
	CampusesFile     = "campuses.jsonl"
	CollegesFile     = "colleges.jsonl"
	ProgramsFile     = "programs.jsonl"
)

// RecordFiles lists the JSONL files of a records directory.
var RecordFiles = []string{AuthorsFile, AuthorshipsFile, PublicationsFile, CampusesFile, CollegesFile, ProgramsFile}

// ReadAll reads every record from a JSONL file. A missing file reads as empty.
func ReadAll[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	var items []T
	scanner := bufio.NewScanner(f)

	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var item T
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", filepath.Base(path), lineNum, err)
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	return items, nil
}

// Append adds one record to the end of a JSONL file.
func Append[T any](path string, item T) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", filepath.Base(path), err)
	}
	defer f.Close()

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	data = append(data, '\n')
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}

// WriteAll writes records to a JSONL file, replacing existing content.
func WriteAll[T any](path string, items []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadSets reads the six record files of dir.
func ReadSets(dir string) (record.Sets, error) {
	var s record.Sets
	var err error
	if s.Authors, err = ReadAll[record.Author](filepath.Join(dir, AuthorsFile)); err != nil {
		return record.Sets{}, err
	}
	if s.Authorships, err = ReadAll[record.Authorship](filepath.Join(dir, AuthorshipsFile)); err != nil {
		return record.Sets{}, err
	}
	if s.Publications, err = ReadAll[record.Publication](filepath.Join(dir, PublicationsFile)); err != nil {
		return record.Sets{}, err
	}
	if s.Campuses, err = ReadAll[record.Campus](filepath.Join(dir, CampusesFile)); err != nil {
		return record.Sets{}, err
	}
	if s.Colleges, err = ReadAll[record.College](filepath.Join(dir, CollegesFile)); err != nil {
		return record.Sets{}, err
	}
	if s.Programs, err = ReadAll[record.Program](filepath.Join(dir, ProgramsFile)); err != nil {
		return record.Sets{}, err
	}
	return s, nil
}

// WriteSets replaces the six record files of dir, creating dir if needed.
func WriteSets(dir string, s record.Sets) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating records directory: %w", err)
	}
	if err := WriteAll(filepath.Join(dir, AuthorsFile), s.Authors); err != nil {
		return err
	}
	if err := WriteAll(filepath.Join(dir, AuthorshipsFile), s.Authorships); err != nil {
		return err
	}
	if err := WriteAll(filepath.Join(dir, PublicationsFile), s.Publications); err != nil {
		return err
	}
	if err := WriteAll(filepath.Join(dir, CampusesFile), s.Campuses); err != nil {
		return err
	}
	if err := WriteAll(filepath.Join(dir, CollegesFile), s.Colleges); err != nil {
		return err
	}
	return WriteAll(filepath.Join(dir, ProgramsFile), s.Programs)
}

// JSONLSource fetches record sets straight from a records directory.
type JSONLSource struct {
	Dir string
}

func (j JSONLSource) Fetch(ctx context.Context) (record.Sets, error) {
	if err := ctx.Err(); err != nil {
		return record.Sets{}, err
	}
	return ReadSets(j.Dir)
}
