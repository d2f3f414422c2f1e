package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/ideagraph/internal/auth"
	"github.com/dgallion1/ideagraph/internal/config"
	"github.com/dgallion1/ideagraph/internal/metrics"
	"github.com/dgallion1/ideagraph/internal/mindmap"
	"github.com/dgallion1/ideagraph/internal/revisions"
)

// Server is the HTTP API server for ideagraph.
type Server struct {
	router    chi.Router
	builder   *mindmap.Builder
	revisions *revisions.Client
	auth      *auth.Provider // nil when OAuth is not configured
	metrics   *metrics.Metrics
	log       *slog.Logger
	cfg       config.Config
}

// Deps are the collaborators the server routes to.
type Deps struct {
	Builder   *mindmap.Builder
	Revisions *revisions.Client
	Auth      *auth.Provider
	Metrics   *metrics.Metrics
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		builder:   deps.Builder,
		revisions: deps.Revisions,
		auth:      deps.Auth,
		metrics:   deps.Metrics,
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Get("/auth/login", s.handleLogin)
	r.Get("/auth/callback", s.handleCallback)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/mindmap", s.handleMindmap)
		r.Post("/api/mindmap/batch", s.handleBatchMindmap)
		r.Get("/api/revisions", s.handleRevisions)
		r.Get("/api/stats/drive", s.handleDriveStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
