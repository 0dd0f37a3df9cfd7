package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orders-dashboard/internal/handlers"
	"orders-dashboard/internal/services"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(dashboard *services.Dashboard, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(dashboard, logger),
		sseHandlers: handlers.NewSSEHandlers(dashboard, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("GET /api/options", s.apiHandlers.HandleOptions)
	s.mux.HandleFunc("GET /api/kpis", s.apiHandlers.HandleKPIs)
	s.mux.HandleFunc("GET /api/monthly", s.apiHandlers.HandleMonthly)
	s.mux.HandleFunc("GET /api/dimensions", s.apiHandlers.HandleDimensions)
	s.mux.HandleFunc("GET /api/rankings", s.apiHandlers.HandleRankings)
	s.mux.HandleFunc("GET /api/table", s.apiHandlers.HandleTable)
	s.mux.HandleFunc("GET /api/dashboard", s.apiHandlers.HandleDashboard)

	// Datastar sends signals as a query parameter on GET and in the body otherwise.
	s.mux.HandleFunc("GET /sse/dashboard", s.sseHandlers.HandleDashboard)
	s.mux.HandleFunc("POST /sse/dashboard", s.sseHandlers.HandleDashboard)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
