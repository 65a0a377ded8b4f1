package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/morph/pkg/dom"
	"github.com/vango-dev/morph/pkg/instrument"
	"github.com/vango-dev/morph/pkg/snapshot"
)

// Server holds live trees and serves them over HTTP.
type Server struct {
	config   Config
	store    snapshot.Store
	runner   *instrument.Runner
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	upgrader websocket.Upgrader
	router   chi.Router

	mu    sync.RWMutex
	trees map[string]*tree

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithStore persists trees to store. The default is a MemoryStore.
func WithStore(store snapshot.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithRunner reconciles through runner. The default runner has no metrics
// or tracing.
func WithRunner(runner *instrument.Runner) Option {
	return func(s *Server) {
		s.runner = runner
	}
}

// WithGatherer serves g at Config.MetricsPath.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server.
func New(config Config, opts ...Option) *Server {
	config.applyDefaults()
	s := &Server{
		config: config,
		trees:  make(map[string]*tree),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = snapshot.NewMemoryStore()
	}
	if s.runner == nil {
		s.runner = instrument.NewRunner()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "server")
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     config.CheckOrigin,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/trees", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Put("/", s.handleReconcile)
			r.Delete("/", s.handleDelete)
			r.Get("/watch", s.handleWatch)
		})
	})

	if s.gatherer != nil {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler for mounting in another router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Restore loads every snapshot in the store as a live tree and returns how
// many were loaded. Snapshots that no longer parse are skipped with a
// warning.
func (s *Server) Restore(ctx context.Context) (int, error) {
	ids, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		data, err := s.store.Get(ctx, id)
		if err != nil {
			return n, err
		}
		root, err := dom.ParseElement(string(data))
		if err != nil {
			s.logger.Warn("snapshot skipped", "tree", id, "error", err)
			continue
		}
		s.mu.Lock()
		if _, exists := s.trees[id]; !exists {
			s.trees[id] = newTree(id, root)
			s.metrics().TreeCreated()
			n++
		}
		s.mu.Unlock()
	}
	s.logger.Info("trees restored", "count", n)
	return n, nil
}

// Run listens on Config.Address until ctx is cancelled, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is like Run with an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown disconnects watchers and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.RLock()
	for _, t := range s.trees {
		t.closeWatchers()
	}
	s.mu.RUnlock()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}

// Len returns the number of live trees.
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trees)
}

func (s *Server) metrics() *instrument.Metrics {
	return s.runner.Metrics()
}

func (s *Server) lookup(id string) (*tree, bool) {
	s.mu.RLock()
	t, ok := s.trees[id]
	s.mu.RUnlock()
	return t, ok
}
