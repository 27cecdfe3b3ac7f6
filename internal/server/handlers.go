package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/veridex/authenticity-analyzer/internal/auth"
	"github.com/veridex/authenticity-analyzer/internal/metrics"
	"github.com/veridex/authenticity-analyzer/internal/store"
	"github.com/veridex/authenticity-analyzer/pkg/events"
	"github.com/veridex/authenticity-analyzer/pkg/fault"
	"github.com/veridex/authenticity-analyzer/pkg/pipeline"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// handleUpload accepts a multipart image, stores it and creates the
// analysis job in pending state.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		respondError(w, "Failed to parse upload form", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		file, _, err = r.FormFile("file")
	}
	if err != nil {
		respondError(w, "No image uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, "Failed to read upload", http.StatusInternalServerError)
		return
	}

	img, err := s.processor.DecodeBytes(data)
	if err != nil {
		respondError(w, "Unsupported or corrupt image", http.StatusBadRequest)
		return
	}
	if err := s.processor.ValidateImage(img); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	jobID := uuid.NewString()
	key := "uploads/" + jobID + imageExt(data)
	url, err := s.artifacts.Put(r.Context(), key, data)
	if err != nil {
		log.Printf("[%s] upload store failed: %v", jobID, err)
		respondError(w, "Failed to store image", http.StatusInternalServerError)
		return
	}

	job := &store.AnalysisJob{
		ID:             jobID,
		UserID:         principal.UserID,
		SourceImageURL: url,
		IsPublic:       r.FormValue("is_public") == "true",
	}
	if err := s.jobs.CreateJob(r.Context(), job); err != nil {
		log.Printf("[%s] job insert failed: %v", jobID, err)
		respondError(w, "Failed to create analysis job", http.StatusInternalServerError)
		return
	}

	s.metrics.JobsCreated.Inc()
	log.Printf("[%s] job created for %s", jobID, principal.UserID)
	respondJSON(w, job, http.StatusCreated)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())

	jobs, err := s.jobs.ListJobsByUser(r.Context(), principal.UserID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if jobs == nil {
		jobs = []store.AnalysisJob{}
	}
	respondJSON(w, jobs, http.StatusOK)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())

	job, err := s.jobs.GetJob(r.Context(), chi.URLParam(r, "analysisID"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if !canRead(principal, job) {
		respondError(w, "You do not have access to this analysis", http.StatusForbidden)
		return
	}
	respondJSON(w, job, http.StatusOK)
}

func (s *Server) handleListDetails(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())

	job, err := s.jobs.GetJob(r.Context(), chi.URLParam(r, "analysisID"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if !canRead(principal, job) {
		respondError(w, "You do not have access to this analysis", http.StatusForbidden)
		return
	}

	details, err := s.details.ListDetails(r.Context(), job.ID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if details == nil {
		details = []store.AnalysisDetail{}
	}
	respondJSON(w, details, http.StatusOK)
}

// handleAnalyze authorizes the caller, then switches the response to an
// SSE stream and drives a full analysis run over it.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())

	job, err := s.jobs.GetJob(r.Context(), chi.URLParam(r, "analysisID"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if !principal.CanAccess(job.UserID) {
		respondError(w, "Only the owner may run analysis", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	enc := events.NewEncoder(w)
	sink := s.metrics.WrapSink(func(ev events.Event) error { return enc.Encode(ev) })

	// A client disconnect must not cancel in-flight inference calls; the
	// run notices the disconnect through sink errors and winds down at
	// the next sub-region boundary.
	runCtx := context.WithoutCancel(r.Context())

	start := time.Now()
	err = s.runner.Run(runCtx, pipeline.Job{ID: job.ID, UserID: job.UserID, ImageURL: job.SourceImageURL}, sink)

	outcome := metrics.OutcomeComplete
	switch {
	case errors.Is(err, pipeline.ErrConsumerGone):
		outcome = metrics.OutcomeAbandoned
	case err != nil:
		outcome = metrics.OutcomeFailed
	}
	s.metrics.ObserveRun(outcome, time.Since(start).Seconds())
	if err != nil {
		log.Printf("[%s] analyze run ended: %v", job.ID, err)
	}
}

func canRead(principal auth.Principal, job *store.AnalysisJob) bool {
	return job.IsPublic || principal.CanAccess(job.UserID)
}

func respondStoreError(w http.ResponseWriter, err error) {
	if fault.Is(err, fault.NotFound) {
		respondError(w, "Analysis not found", http.StatusNotFound)
		return
	}
	respondError(w, "Storage failure", http.StatusInternalServerError)
}

func imageExt(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
