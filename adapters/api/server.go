// Package api exposes the calculation service over HTTP
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"clinsample/app"
	"clinsample/internal"
)

// maxBodyBytes bounds request bodies; a large batch plan is still well under it
const maxBodyBytes = 1 << 20

// Server wires the calculation service to HTTP routes
type Server struct {
	router  *chi.Mux
	service *app.CalculationService
	metrics *Metrics
	logger  *internal.Logger
}

// NewServer creates the API server and its routes
func NewServer(service *app.CalculationService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		metrics: NewMetrics(),
		logger:  logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP makes Server an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Metrics exposes the server's collectors
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	if s.logger.GetLevel() >= internal.LogLevelDebug {
		s.router.Use(middleware.Logger)
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/kinds", s.handleKinds)
		r.Get("/kinds/{kind}", s.handleKind)
		r.Post("/calculate", s.handleCalculate)
		r.Post("/batch", s.handleBatch)
	})
}
