package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/explorers-hub/internal/catalog"
	"github.com/terra-clan/explorers-hub/internal/config"
	"github.com/terra-clan/explorers-hub/internal/progress"
	"github.com/terra-clan/explorers-hub/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	config  config.ServerConfig
	router  *chi.Mux
	catalog *catalog.Catalog
	tracker *progress.Tracker
	store   storage.Store
	stream  *streamHub
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	cat *catalog.Catalog,
	tracker *progress.Tracker,
	store storage.Store,
) *Server {
	s := &Server{
		config:  cfg,
		catalog: cat,
		tracker: tracker,
		store:   store,
		stream:  newStreamHub(),
	}
	tracker.OnChange(s.stream.broadcast)
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		// The stream is long-lived, so it stays outside the request timeout.
		r.Get("/progress/stream", s.handleProgressStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			// Catalog
			r.Get("/tiers", s.handleListTiers)
			r.Get("/tiers/{tier}/projects", s.handleListTierProjects)
			r.Get("/projects", s.handleListProjects)

			r.Route("/projects/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetProject)
				r.Get("/completion", s.handleGetCompletion)
				r.Post("/completion/toggle", s.handleToggleCompletion)
			})

			// Progress
			r.Route("/progress", func(r chi.Router) {
				r.Get("/", s.handleGetSummary)
				r.Delete("/", s.handleResetProgress)
				r.Get("/tiers/{tier}", s.handleGetTierProgress)
				r.Get("/level", s.handleGetLevelStanding)
			})
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
