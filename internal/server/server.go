// Package server serves a read-only live view of one mind map over HTTP.
//
// The server owns its own [mindmap.Map] behind a sync.RWMutex. Handlers read
// under the read lock; [Server.Reload] swaps in a freshly loaded map under the
// write lock and pushes the new document to every websocket client.
//
// # Routes
//
//	GET /api/map        document JSON
//	GET /api/map/stats  node, edge and dropped-connection counts
//	GET /map.svg        neato rendering with pinned positions
//	GET /map.dot        Graphviz source
//	GET /map.html       echarts page
//	GET /ws             websocket; one document message per reload
//	GET /metrics        Prometheus metrics
//	GET /healthz        liveness
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/mapfile"
	"github.com/matzehuels/mindcraft/pkg/mindmap"
	"github.com/matzehuels/mindcraft/pkg/render"
	"github.com/matzehuels/mindcraft/pkg/store"
)

// Options configures a Server.
type Options struct {
	// Name is the map to serve.
	Name string
	// Store holds the map.
	Store store.Store
	// Map controls how documents are restored.
	Map mapfile.Options
	// Renderer renders SVG, optionally through a cache.
	Renderer render.Renderer
	// Metrics, if set, is exposed on /metrics.
	Metrics *Metrics
	// Logger receives request and reload logs. Nil discards them.
	Logger *log.Logger
}

// Stats summarizes the served map.
type Stats struct {
	Name     string    `json:"name"`
	Nodes    int       `json:"nodes"`
	Edges    int       `json:"edges"`
	Dropped  int       `json:"dropped"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Server is the HTTP live view.
type Server struct {
	name     string
	store    store.Store
	opts     mapfile.Options
	renderer render.Renderer
	metrics  *Metrics
	logger   *log.Logger
	hub      *hub

	mu       sync.RWMutex
	m        *mindmap.Map
	dropped  int
	loadedAt time.Time
}

// New creates a server and performs the initial load.
func New(ctx context.Context, opts Options) (*Server, error) {
	if err := errors.ValidateMapName(opts.Name); err != nil {
		return nil, err
	}
	if opts.Store == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "server needs a store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		name:     opts.Name,
		store:    opts.Store,
		opts:     opts.Map,
		renderer: opts.Renderer,
		metrics:  opts.Metrics,
		logger:   logger,
		hub:      newHub(),
		m:        mindmap.New(),
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Name returns the served map's name.
func (s *Server) Name() string { return s.name }

// Reload loads the map from the store, replaces the served map and notifies
// websocket clients. On failure the served map is left unchanged.
func (s *Server) Reload(ctx context.Context) error {
	fresh := mindmap.New()
	res, err := store.LoadMap(ctx, s.store, s.name, fresh, s.opts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.m = fresh
	s.dropped = len(res.Dropped)
	s.loadedAt = time.Now()
	s.mu.Unlock()

	data, err := s.document()
	if err != nil {
		return err
	}
	n := s.hub.broadcast(data)
	s.logger.Debug("reloaded map", "name", s.name, "nodes", fresh.NodeCount(), "edges", fresh.EdgeCount(), "clients", n)
	return nil
}

// Stats returns the current counts.
func (s *Server) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Name:     s.name,
		Nodes:    s.m.NodeCount(),
		Edges:    s.m.EdgeCount(),
		Dropped:  s.dropped,
		LoadedAt: s.loadedAt,
	}
}

func (s *Server) document() ([]byte, error) {
	s.mu.RLock()
	doc := mapfile.FromMap(s.m)
	s.mu.RUnlock()
	return mapfile.Marshal(doc)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Get("/api/map", s.handleDocument)
	r.Get("/api/map/stats", s.handleStats)

	for _, f := range []render.Format{render.FormatSVG, render.FormatDOT, render.FormatHTML} {
		r.Get("/map."+string(f), s.handleExport(f))
	}
	r.Get("/ws", s.handleWebsocket)

	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return errors.Wrap(errors.ErrCodeIOFailure, err, "listen on %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "shutdown")
	}
	return ctx.Err()
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	data, err := s.document()
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", render.FormatJSON.ContentType())
	_, _ = w.Write(data)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", render.FormatJSON.ContentType())
	_ = json.NewEncoder(w).Encode(s.Stats())
}

func (s *Server) handleExport(f render.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		s.mu.RLock()
		err := s.renderer.Export(r.Context(), &buf, s.m, f, render.Options{Title: s.name})
		s.mu.RUnlock()
		if err != nil {
			s.fail(w, err)
			return
		}
		w.Header().Set("Content-Type", f.ContentType())
		_, _ = w.Write(buf.Bytes())
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", "err", err)
	status := http.StatusInternalServerError
	if errors.Is(err, errors.ErrCodeNotFound) {
		status = http.StatusNotFound
	}
	http.Error(w, errors.UserMessage(err), status)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
		if s.metrics != nil {
			s.metrics.observeRequest(routePattern(r), ww.Status(), time.Since(start))
		}
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
