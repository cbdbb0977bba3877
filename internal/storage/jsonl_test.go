package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tip-aru/rdmo/internal/record"
)

func testSets() record.Sets {
	return record.Sets{
		Campuses: []record.Campus{{ID: 1, Name: "Quezon City"}, {ID: 2, Name: "Manila"}},
		Colleges: []record.College{{ID: 10, Name: "Engineering"}},
		Programs: []record.Program{{ID: 100, Name: "Civil Engineering"}},
		Authors: []record.Author{
			{ID: 1, Name: "Ana Reyes", CampusID: record.ID(1)},
			{ID: 2, Name: "Ben Cruz"},
		},
		Authorships: []record.Authorship{{PublicationID: 1, AuthorID: 1}, {PublicationID: 1, AuthorID: 2}},
		Publications: []record.Publication{
			{
				ID:          1,
				Title:       "Flood Modelling",
				Type:        "Journal Article",
				Keywords:    "floods, hydrology",
				Journal:     "Water",
				PublishedOn: "2021-05-01",
				CollegeID:   record.ID(10),
				ProgramID:   record.ID(100),
				Authors:     "Ana Reyes, Ben Cruz",
			},
			{ID: 2, Title: "Orphan", PublishedOn: "2020", Authors: "Nobody"},
		},
	}
}

func TestReadAll_NonExistentFile(t *testing.T) {
	items, err := ReadAll[record.Author]("/nonexistent/path/authors.jsonl")
	if err != nil {
		t.Fatalf("ReadAll() error = %v (should return nil for nonexistent file)", err)
	}
	if len(items) != 0 {
		t.Errorf("ReadAll() returned %v, want empty", items)
	}
}

func TestReadAll_SkipsEmptyLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), AuthorsFile)
	content := `{"id":1,"name":"Ana","campus_id":1}

{"id":2,"name":"Ben","campus_id":null}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	authors, err := ReadAll[record.Author](path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	want := []record.Author{{ID: 1, Name: "Ana", CampusID: record.ID(1)}, {ID: 2, Name: "Ben"}}
	if diff := cmp.Diff(want, authors); diff != "" {
		t.Errorf("ReadAll() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadAll_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), CampusesFile)
	if err := os.WriteFile(path, []byte(`{"camp_id":1}`+"\n"+`{not json`+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := ReadAll[record.Campus](path); err == nil {
		t.Error("ReadAll() expected error for invalid JSON")
	}
}

func TestAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), CollegesFile)
	for _, c := range []record.College{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}} {
		if err := Append(path, c); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := ReadAll[record.College](path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != 2 || got[1].Name != "B" {
		t.Errorf("ReadAll() = %+v", got)
	}
}

func TestWriteSets_ReadSets(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "records")
	want := testSets()

	if err := WriteSets(dir, want); err != nil {
		t.Fatalf("WriteSets() error = %v", err)
	}
	for _, name := range RecordFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	got, err := JSONLSource{Dir: dir}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sets mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONLSource_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (JSONLSource{Dir: t.TempDir()}).Fetch(ctx); err == nil {
		t.Error("Fetch() expected error for canceled context")
	}
}
