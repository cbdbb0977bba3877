package source

import (
	"context"
	"errors"
	"testing"

	"github.com/tip-aru/rdmo/internal/record"
)

func TestBuild(t *testing.T) {
	sets := record.Sets{
		Campuses:     []record.Campus{{ID: 1, Name: "Main"}},
		Colleges:     []record.College{{ID: 1, Name: "Engineering"}},
		Programs:     []record.Program{{ID: 1, Name: "Civil"}},
		Authors:      []record.Author{{ID: 1, Name: "Ana", CampusID: record.ID(1)}},
		Authorships:  []record.Authorship{{PublicationID: 1, AuthorID: 1}},
		Publications: []record.Publication{{ID: 1, Title: "T", Authors: "Ana", PublishedOn: "2020", CollegeID: record.ID(1), ProgramID: record.ID(1)}},
	}

	v, _, err := Build(context.Background(), Static(sets))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if v.Len() != 1 {
		t.Errorf("Len() = %d, want 1", v.Len())
	}
}

func TestBuild_FetchError(t *testing.T) {
	boom := errors.New("boom")
	f := FetcherFunc(func(context.Context) (record.Sets, error) {
		return record.Sets{}, boom
	})

	v, _, err := Build(context.Background(), f)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if v != nil {
		t.Error("view returned alongside error")
	}
}

func TestValidateKind(t *testing.T) {
	for _, k := range Kinds {
		if err := ValidateKind(k); err != nil {
			t.Errorf("ValidateKind(%q): %v", k, err)
		}
	}
	if err := ValidateKind("mysql"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ValidateKind(mysql) = %v, want ErrUnknownKind", err)
	}
}
