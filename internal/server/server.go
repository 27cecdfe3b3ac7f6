// Package server exposes the analysis service over HTTP: job upload,
// job and detail reads, and the streaming analyze endpoint.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veridex/authenticity-analyzer/internal/auth"
	"github.com/veridex/authenticity-analyzer/internal/metrics"
	"github.com/veridex/authenticity-analyzer/internal/storage"
	"github.com/veridex/authenticity-analyzer/internal/store"
	"github.com/veridex/authenticity-analyzer/pkg/pipeline"
	"github.com/veridex/authenticity-analyzer/pkg/processing"
)

const defaultMaxUploadBytes = 20 << 20

// Runner executes one analysis run. Satisfied by pipeline.Orchestrator.
type Runner interface {
	Run(ctx context.Context, job pipeline.Job, sink pipeline.Sink) error
}

// Options wires the server's collaborators.
type Options struct {
	Jobs      store.JobStore
	Details   store.DetailStore
	Artifacts storage.Store
	Resolver  auth.Resolver
	Runner    Runner
	Metrics   *metrics.Metrics

	// MaxUploadBytes caps the multipart upload size; 20MB when zero.
	MaxUploadBytes int64
}

// Server is the HTTP front of the analysis service.
type Server struct {
	router         chi.Router
	jobs           store.JobStore
	details        store.DetailStore
	artifacts      storage.Store
	resolver       auth.Resolver
	runner         Runner
	metrics        *metrics.Metrics
	processor      *processing.Processor
	maxUploadBytes int64
}

func New(opts Options) *Server {
	s := &Server{
		jobs:           opts.Jobs,
		details:        opts.Details,
		artifacts:      opts.Artifacts,
		resolver:       opts.Resolver,
		runner:         opts.Runner,
		metrics:        opts.Metrics,
		processor:      processing.NewProcessor(),
		maxUploadBytes: opts.MaxUploadBytes,
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = defaultMaxUploadBytes
	}
	if s.metrics == nil {
		s.metrics = metrics.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/analysis", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Post("/", s.handleUpload)
		r.Get("/", s.handleListJobs)
		r.Get("/{analysisID}", s.handleGetJob)
		r.Get("/{analysisID}/details", s.handleListDetails)
		r.Post("/{analysisID}/analyze", s.handleAnalyze)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}
