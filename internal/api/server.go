package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/bookforge/internal/config"
	"github.com/dgallion1/bookforge/internal/export"
	"github.com/dgallion1/bookforge/internal/generate"
	"github.com/dgallion1/bookforge/internal/llm"
)

// Server is the HTTP API server for bookforge.
type Server struct {
	router       chi.Router
	orchestrator *generate.Orchestrator
	engine       *export.Engine
	llmClient    *llm.OpenAIClient
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *generate.Orchestrator, engine *export.Engine, client *llm.OpenAIClient, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		engine:       engine,
		llmClient:    client,
		log:          log,
		cfg:          cfg,
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

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.BookforgeAPIKey, s.log))

		r.Post("/api/books", s.handleGenerate)
		r.Get("/api/books/{sessionID}/status", s.handleStatus)
		r.Get("/api/books/{sessionID}/export", s.handleExport)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
