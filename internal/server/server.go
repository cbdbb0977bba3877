// Package server serves record sets, filter options and aggregates over
// HTTP from an in-memory view snapshot.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tip-aru/rdmo/internal/filter"
	"github.com/tip-aru/rdmo/internal/logger"
	"github.com/tip-aru/rdmo/internal/metrics"
	"github.com/tip-aru/rdmo/internal/record"
	"github.com/tip-aru/rdmo/internal/source"
	"github.com/tip-aru/rdmo/internal/view"
)

// ErrNoSnapshot is returned by handlers before the first successful rebuild.
var ErrNoSnapshot = errors.New("no view snapshot loaded")

// Config wires a Server. Fetcher is required; the rest may be zero.
type Config struct {
	Fetcher      source.Fetcher
	Logger       *logger.Logger
	Metrics      *metrics.Metrics
	AllowOrigins []string
}

// snapshot is everything derived from one fetch. It is replaced whole and
// never mutated.
type snapshot struct {
	sets    record.Sets
	view    *view.View
	hier    filter.Hierarchy
	builtAt time.Time
}

// Server holds the current snapshot. Queries read it without locking;
// rebuilds are serialized and swap it atomically.
type Server struct {
	fetcher source.Fetcher
	log     *logger.Logger
	metrics *metrics.Metrics
	origins []string

	snap      atomic.Pointer[snapshot]
	rebuildMu sync.Mutex
	engine    *gin.Engine
}

// New builds a server with its routes. No snapshot is loaded until Rebuild.
func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		fetcher: cfg.Fetcher,
		log:     log.With("component", "server"),
		metrics: cfg.Metrics,
		origins: cfg.AllowOrigins,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Rebuild fetches the record sets and swaps in a new snapshot. On error the
// previous snapshot stays in place.
func (s *Server) Rebuild(ctx context.Context) (view.Stats, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	start := time.Now()
	sets, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return view.Stats{}, fmt.Errorf("fetching records: %w", err)
	}
	v := view.Build(sets)
	elapsed := time.Since(start)

	s.snap.Store(&snapshot{
		sets:    sets,
		view:    v,
		hier:    filter.NewHierarchy(v),
		builtAt: time.Now(),
	})

	stats := v.Stats()
	s.metrics.ObserveBuild(stats, elapsed)
	s.log.Info("view rebuilt",
		"rows", stats.Rows,
		"publications", stats.Publications,
		"excluded", stats.Excluded.Total(),
		"duration", elapsed,
	)
	return stats, nil
}

func (s *Server) current() *snapshot {
	return s.snap.Load()
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}
