// Package server implements the subfile HTTP service: the range service
// that streams chunk bytes from local disk, and the availability
// advertisement (/status, /operator) the prober polls.
//
// A struct wraps chi.Router construction in a Handler() method, with the
// usual RequestID/RealIP/Recoverer middleware stack and a shared writeJSON
// helper.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/subfile-network/subfile/internal/health"
	"github.com/subfile-network/subfile/internal/subfile"
)

// Server is the subfile HTTP server.
type Server struct {
	state          *subfile.State
	health         *health.Checker
	metrics        *Metrics
	metricsEnabled bool
}

// NewServer returns a Server backed by state. health may be nil if no
// background health checker is running.
func NewServer(state *subfile.State, checker *health.Checker) *Server {
	return &Server{
		state:   state,
		health:  checker,
		metrics: NewMetrics(),
	}
}

// EnableMetrics turns on the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with every route of the subfile HTTP
// service mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Get("/operator", s.handleOperator)
	r.Get("/status", s.handleStatus)
	r.Get("/subfiles/id/{manifestHash}", s.handleFileService)

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	}

	return r
}
