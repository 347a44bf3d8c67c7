package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/embed"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server is the HTTP API server for docoutline.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	embedStats   *embed.Stats // nil when the semantic scorer is off
	mcp          *mcp.Server
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, embedStats *embed.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		embedStats:   embedStats,
		log:          log,
		cfg:          cfg,
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{Name: "docoutline", Version: Version}, nil)
	RegisterMCP(s.mcp, orch.Outliner(), orch.Store(), cfg.MaxUploadBytes)
	s.setupRoutes()
	return s
}

// Version is reported by /health and the MCP handshake.
var Version = "dev"

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
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/outline", s.handleOutline)
		r.Post("/api/outline/batch", s.handleBatchOutline)
		r.Post("/api/outline/extract", s.handleExtract)
		r.Get("/api/outline/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/stats/embed", s.handleEmbedStats)

		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/documents/{docID}", s.handleGetDocument)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)

		r.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return s.mcp
		}, nil))
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{"status": "ok", "version": Version, "queue_depth": s.orchestrator.QueueDepth()}
	if err := s.orchestrator.Store().Ping(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["store"] = err.Error()
	}
	writeJSON(w, status, body)
}
