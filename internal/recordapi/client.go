// Package recordapi fetches raw record sets from the record API, the HTTP
// service that fronts the institutional publication database.
package recordapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tip-aru/rdmo/internal/logger"
	"github.com/tip-aru/rdmo/internal/record"
)

const (
	// DefaultBaseURL is where the record API listens by default.
	DefaultBaseURL = "http://localhost:5000"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is the default request rate, in requests per second.
	RateLimit = 10.0
)

// Endpoint paths, one per record kind.
const (
	PathAuthors      = "/authors"
	PathAuthorships  = "/research_authors"
	PathPublications = "/researches"
	PathCampuses     = "/campuses"
	PathColleges     = "/colleges"
	PathPrograms     = "/programs"
)

// Client is a rate-limited HTTP client for the record API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	log        *logger.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key sent in the x-api-key header.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a new record API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    DefaultBaseURL,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getList fetches path and decodes its JSON array body.
func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	c.log.Debug("record api request", "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if err := checkHTTPErrors(resp, path); err != nil {
		return nil, err
	}

	var items []T
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidResponse, path, err)
	}
	return items, nil
}

// Authors fetches every author.
func (c *Client) Authors(ctx context.Context) ([]record.Author, error) {
	return getList[record.Author](ctx, c, PathAuthors)
}

// Authorships fetches every authorship link.
func (c *Client) Authorships(ctx context.Context) ([]record.Authorship, error) {
	return getList[record.Authorship](ctx, c, PathAuthorships)
}

// Publications fetches every publication.
func (c *Client) Publications(ctx context.Context) ([]record.Publication, error) {
	return getList[record.Publication](ctx, c, PathPublications)
}

// Campuses fetches every campus.
func (c *Client) Campuses(ctx context.Context) ([]record.Campus, error) {
	return getList[record.Campus](ctx, c, PathCampuses)
}

// Colleges fetches every college.
func (c *Client) Colleges(ctx context.Context) ([]record.College, error) {
	return getList[record.College](ctx, c, PathColleges)
}

// Programs fetches every program.
func (c *Client) Programs(ctx context.Context) ([]record.Program, error) {
	return getList[record.Program](ctx, c, PathPrograms)
}

// Fetch loads the six record sets concurrently. The first failure cancels
// the remaining requests.
func (c *Client) Fetch(ctx context.Context) (record.Sets, error) {
	var s record.Sets
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		s.Authors, err = c.Authors(gctx)
		return err
	})
	g.Go(func() (err error) {
		s.Authorships, err = c.Authorships(gctx)
		return err
	})
	g.Go(func() (err error) {
		s.Publications, err = c.Publications(gctx)
		return err
	})
	g.Go(func() (err error) {
		s.Campuses, err = c.Campuses(gctx)
		return err
	})
	g.Go(func() (err error) {
		s.Colleges, err = c.Colleges(gctx)
		return err
	})
	g.Go(func() (err error) {
		s.Programs, err = c.Programs(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return record.Sets{}, err
	}
	c.log.Info("fetched records from api",
		"authors", len(s.Authors),
		"research_authors", len(s.Authorships),
		"researches", len(s.Publications),
		"campuses", len(s.Campuses),
		"colleges", len(s.Colleges),
		"programs", len(s.Programs),
	)
	return s, nil
}
