package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leadbase/leadbase/internal/config"
	"github.com/leadbase/leadbase/internal/dispatch"
	"github.com/leadbase/leadbase/internal/metrics"
	"github.com/leadbase/leadbase/internal/middleware"
	"github.com/leadbase/leadbase/internal/pipeline"
	"github.com/leadbase/leadbase/internal/repository"
)

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     *config.Config
	logger     *slog.Logger
	startTime  time.Time

	campaigns  *repository.CampaignRepository
	leads      *repository.LeadRepository
	pipeline   *pipeline.Pipeline
	dispatcher *dispatch.Dispatcher
}

// NewServer creates a new API server
func NewServer(
	cfg *config.Config,
	campaigns *repository.CampaignRepository,
	leads *repository.LeadRepository,
	p *pipeline.Pipeline,
	dispatcher *dispatch.Dispatcher,
	logger *slog.Logger,
) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		config:     cfg,
		logger:     logger.With("component", "api"),
		startTime:  time.Now(),
		campaigns:  campaigns,
		leads:      leads,
		pipeline:   p,
		dispatcher: dispatcher,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(metrics.HTTPMiddleware)

	s.router.Get("/health", s.handleHealth)

	if m := metrics.Global(); m != nil {
		s.router.Get("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}).ServeHTTP)
	}

	// Unsubscribe links are the one unauthenticated mutation path
	s.router.Get("/unsubscribe/{token}", s.handleUnsubscribeInfo)
	s.router.Post("/unsubscribe/{token}", s.handleUnsubscribeConfirm)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", s.handleCampaignList)
			r.Post("/upload", s.handleCampaignUpload)
			r.Post("/import", s.handleCampaignImport)
			r.Post("/merge", s.handleCampaignMerge)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleCampaignGet)
				r.Delete("/", s.handleCampaignDelete)
				r.Post("/approve", s.handleCampaignApprove)
				r.Get("/export", s.handleCampaignExport)
				r.Post("/dispatch", s.handleCampaignDispatch)
				r.Post("/leads", s.handleLeadAdd)
			})
		})

		r.Route("/leads", func(r chi.Router) {
			r.Post("/bulk", s.handleLeadBulk)
			r.Delete("/{id}", s.handleLeadDelete)
			r.Post("/{id}/toggle", s.handleLeadToggle)
			r.Put("/{id}/subscription", s.handleLeadSubscription)
		})
	})
}

// Router returns the configured handler, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:         s.config.Server.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP API server", "addr", s.config.Server.ListenAddr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP API server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// ErrorResponse is the error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response for GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: "0.1.0",
		Uptime:  time.Since(s.startTime).String(),
	})
}

// sendJSON sends a JSON response
func (s *Server) sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, ErrorResponse{Error: message})
}
