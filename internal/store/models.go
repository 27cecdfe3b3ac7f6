// Package store persists analysis jobs and their per-sub-region detail
// rows, with a Postgres-backed implementation for servers and an
// in-memory one for tests and offline runs.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/veridex/authenticity-analyzer/pkg/pipeline"
	"github.com/veridex/authenticity-analyzer/pkg/types"
)

// AnalysisJob is one uploaded image and, once a run has finished, its
// aggregate verdict. The aggregate columns stay NULL until the first
// run writes them in a single update.
type AnalysisJob struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string `gorm:"type:uuid;not null;index" json:"user_id"`
	SourceImageURL string `gorm:"not null" json:"source_image_url"`
	IsPublic       bool   `gorm:"not null;default:false" json:"is_public"`

	AggregateConfidence *float64 `json:"aggregate_confidence,omitempty"`
	AggregateResult     *string  `json:"aggregate_result,omitempty"`
	AggregateSummary    *string  `json:"aggregate_summary,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AnalysisJob) TableName() string { return "analysis_jobs" }

// Analyzed reports whether a run has written the aggregate verdict.
func (j *AnalysisJob) Analyzed() bool {
	return j.AggregateResult != nil
}

// AnalysisDetail is one persisted sub-region result. Result holds the
// full composed analysis as JSON; the flat columns are what list views
// need without unpacking it.
type AnalysisDetail struct {
	ID           string         `gorm:"type:uuid;primaryKey" json:"id"`
	JobID        string         `gorm:"type:uuid;not null;index" json:"job_id"`
	UserID       string         `gorm:"type:uuid;not null;index" json:"user_id"`
	ImageURL     string         `gorm:"not null" json:"image_url"`
	Label        string         `json:"label"`
	Description  string         `json:"description"`
	Confidence   float64        `json:"confidence"`
	SegmentIndex int            `json:"segment_index"`
	X            int            `json:"x"`
	Y            int            `json:"y"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	Fallback     bool           `gorm:"not null;default:false" json:"fallback"`
	Result       datatypes.JSON `gorm:"type:jsonb" json:"result,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (AnalysisDetail) TableName() string { return "analysis_details" }

// Coordinates reassembles the flat position columns.
func (d *AnalysisDetail) Coordinates() types.Coordinates {
	return types.Coordinates{X: d.X, Y: d.Y, Width: d.Width, Height: d.Height}
}

// detailFromPipeline converts the orchestrator's detail into a row,
// serializing the composed result as JSON.
func detailFromPipeline(d pipeline.Detail) (*AnalysisDetail, error) {
	result, err := json.Marshal(d.Result)
	if err != nil {
		return nil, fmt.Errorf("marshal detail result: %w", err)
	}
	return &AnalysisDetail{
		ID:           d.ID,
		JobID:        d.JobID,
		UserID:       d.UserID,
		ImageURL:     d.ImageURL,
		Label:        d.Label,
		Description:  d.Description,
		Confidence:   d.Confidence,
		SegmentIndex: d.SegmentIndex,
		X:            d.Coordinates.X,
		Y:            d.Coordinates.Y,
		Width:        d.Coordinates.Width,
		Height:       d.Coordinates.Height,
		Fallback:     d.Fallback,
		Result:       datatypes.JSON(result),
	}, nil
}
