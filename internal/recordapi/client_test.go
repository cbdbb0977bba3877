package recordapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"

	"github.com/tip-aru/rdmo/internal/record"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Bodies in the shape the record API serves them, nulls included.
var fixtures = map[string]string{
	PathAuthors:      `[{"id":1,"name":"Ana Reyes","campus_id":1},{"id":2,"name":"Ben Cruz","campus_id":null}]`,
	PathAuthorships:  `[{"research_id":1,"author_id":1}]`,
	PathPublications: `[{"id":1,"school_year":"2021-2022","type_of_research":"Journal","title_of_research":"Floods","abstract":null,"keywords":"water","doi":null,"full_manuscript":null,"journal_publisher":"Water","date_of_publication":"2021-05-01","indexing":null,"apa_format":null,"college_id":10,"program_id":100,"authors":"Ana Reyes, Ben Cruz"}]`,
	PathCampuses:     `[{"camp_id":1,"camp_name":"Quezon City"}]`,
	PathColleges:     `[{"id":10,"college_name":"Engineering"}]`,
	PathPrograms:     `[{"id":100,"program_name":"Civil Engineering"}]`,
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()), WithRateLimit(1000))
}

func fixtureHandler(w http.ResponseWriter, r *http.Request) {
	body, ok := fixtures[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestFetch(t *testing.T) {
	c := newTestServer(t, fixtureHandler)

	sets, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	want := record.Counts{Authors: 2, Authorships: 1, Publications: 1, Campuses: 1, Colleges: 1, Programs: 1}
	if got := sets.Counts(); got != want {
		t.Errorf("Counts() = %+v, want %+v", got, want)
	}
	if sets.Authors[1].CampusID != nil {
		t.Errorf("null campus_id decoded as %v", *sets.Authors[1].CampusID)
	}
	p := sets.Publications[0]
	if p.Title != "Floods" || p.PublishedOn != "2021-05-01" || p.DOI != "" || *p.CollegeID != 10 {
		t.Errorf("publication decoded as %+v", p)
	}
}

func TestFetch_SendsAPIKey(t *testing.T) {
	var missing atomic.Int32
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "secret" {
			missing.Add(1)
		}
		fixtureHandler(w, r)
	})
	WithAPIKey("secret")(c)

	if _, err := c.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if n := missing.Load(); n != 0 {
		t.Errorf("%d requests without api key", n)
	}
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"unauthorized", http.StatusUnauthorized, IsAuthError},
		{"rate limited", http.StatusTooManyRequests, IsRateLimited},
		{"not found", http.StatusNotFound, IsNotFound},
		{"server error", http.StatusInternalServerError, func(err error) bool { return errors.Is(err, ErrAPIError) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == PathPrograms {
					w.WriteHeader(tt.status)
					return
				}
				fixtureHandler(w, r)
			})

			sets, err := c.Fetch(context.Background())
			if err == nil {
				t.Fatal("Fetch() expected error")
			}
			if !tt.check(err) {
				t.Errorf("Fetch() error = %v, wrong kind", err)
			}
			if sets.Counts() != (record.Counts{}) {
				t.Errorf("partial sets returned: %+v", sets.Counts())
			}
		})
	}
}

func TestFetch_InvalidResponse(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == PathCampuses {
			_, _ = w.Write([]byte(`{"error":"not a list"}`))
			return
		}
		fixtureHandler(w, r)
	})

	_, err := c.Fetch(context.Background())
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("Fetch() error = %v, want ErrInvalidResponse", err)
	}
}

func TestFetch_CanceledContext(t *testing.T) {
	c := newTestServer(t, fixtureHandler)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Fetch(ctx); err == nil {
		t.Error("Fetch() expected error for canceled context")
	}
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 502, Path: PathAuthors, Message: "Bad Gateway"}
	if !errors.Is(err, ErrAPIError) {
		t.Error("APIError does not unwrap to ErrAPIError")
	}
	if got := err.Error(); got != "record API error (status 502, /authors): Bad Gateway" {
		t.Errorf("Error() = %q", got)
	}
	if IsNotFound(err) || IsAuthError(err) || IsRateLimited(err) {
		t.Error("502 classified as a specific error")
	}
}
