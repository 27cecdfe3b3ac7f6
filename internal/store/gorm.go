package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/veridex/authenticity-analyzer/pkg/fault"
)

// GormStore backs JobStore and DetailStore with Postgres through GORM.
type GormStore struct {
	db *gorm.DB
}

// Open connects to Postgres and prepares a store.
func Open(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewGormStore(db), nil
}

// NewGormStore wraps an existing GORM handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the schema.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&AnalysisJob{}, &AnalysisDetail{})
}

func (s *GormStore) CreateJob(ctx context.Context, job *AnalysisJob) error {
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return fault.New(fault.Persistence, stage, err)
	}
	return nil
}

func (s *GormStore) GetJob(ctx context.Context, id string) (*AnalysisJob, error) {
	var job AnalysisJob
	err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.NotFound, stage, fmt.Errorf("job %s not found", id))
	}
	if err != nil {
		return nil, fault.New(fault.Persistence, stage, err)
	}
	return &job, nil
}

func (s *GormStore) ListJobsByUser(ctx context.Context, userID string) ([]AnalysisJob, error) {
	var jobs []AnalysisJob
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, fault.New(fault.Persistence, stage, err)
	}
	return jobs, nil
}

// SaveAggregate writes all verdict columns in one UPDATE so readers see
// either the full aggregate or none of it.
func (s *GormStore) SaveAggregate(ctx context.Context, jobID string, confidence float64, result, summary string) error {
	res := s.db.WithContext(ctx).
		Model(&AnalysisJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"aggregate_confidence": confidence,
			"aggregate_result":     result,
			"aggregate_summary":    summary,
		})
	if res.Error != nil {
		return fault.New(fault.Persistence, stage, res.Error)
	}
	if res.RowsAffected == 0 {
		return fault.New(fault.NotFound, stage, fmt.Errorf("job %s not found", jobID))
	}
	return nil
}

func (s *GormStore) InsertDetail(ctx context.Context, detail *AnalysisDetail) error {
	if err := s.db.WithContext(ctx).Create(detail).Error; err != nil {
		return fault.New(fault.Persistence, stage, err)
	}
	return nil
}

func (s *GormStore) ListDetails(ctx context.Context, jobID string) ([]AnalysisDetail, error) {
	var details []AnalysisDetail
	err := s.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC, segment_index ASC").
		Find(&details).Error
	if err != nil {
		return nil, fault.New(fault.Persistence, stage, err)
	}
	return details, nil
}

var (
	_ JobStore    = (*GormStore)(nil)
	_ DetailStore = (*GormStore)(nil)
)
