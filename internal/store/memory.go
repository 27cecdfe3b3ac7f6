package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/veridex/authenticity-analyzer/pkg/fault"
)

// MemoryStore keeps jobs and details in process memory. It backs tests
// and the offline CLI, where a database would be dead weight.
type MemoryStore struct {
	mu      sync.RWMutex
	jobs    map[string]*AnalysisJob
	details map[string][]AnalysisDetail
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:    make(map[string]*AnalysisJob),
		details: make(map[string][]AnalysisDetail),
	}
}

func (s *MemoryStore) CreateJob(ctx context.Context, job *AnalysisJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fault.New(fault.Persistence, stage, fmt.Errorf("job %s already exists", job.ID))
	}
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	stored := *job
	s.jobs[job.ID] = &stored
	return nil
}

func (s *MemoryStore) GetJob(ctx context.Context, id string) (*AnalysisJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, fault.New(fault.NotFound, stage, fmt.Errorf("job %s not found", id))
	}
	copied := *job
	return &copied, nil
}

func (s *MemoryStore) ListJobsByUser(ctx context.Context, userID string) ([]AnalysisJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var jobs []AnalysisJob
	for _, job := range s.jobs {
		if job.UserID == userID {
			jobs = append(jobs, *job)
		}
	}
	return jobs, nil
}

func (s *MemoryStore) SaveAggregate(ctx context.Context, jobID string, confidence float64, result, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return fault.New(fault.NotFound, stage, fmt.Errorf("job %s not found", jobID))
	}
	job.AggregateConfidence = &confidence
	job.AggregateResult = &result
	job.AggregateSummary = &summary
	job.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) InsertDetail(ctx context.Context, detail *AnalysisDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *detail
	stored.CreatedAt = time.Now()
	s.details[detail.JobID] = append(s.details[detail.JobID], stored)
	return nil
}

func (s *MemoryStore) ListDetails(ctx context.Context, jobID string) ([]AnalysisDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	details := s.details[jobID]
	out := make([]AnalysisDetail, len(details))
	copy(out, details)
	return out, nil
}

var (
	_ JobStore    = (*MemoryStore)(nil)
	_ DetailStore = (*MemoryStore)(nil)
)
