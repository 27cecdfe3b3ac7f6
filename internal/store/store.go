package store

import (
	"context"

	"github.com/veridex/authenticity-analyzer/pkg/fault"
	"github.com/veridex/authenticity-analyzer/pkg/pipeline"
)

const stage = "store"

// JobStore persists analysis jobs. SaveAggregate matches the
// orchestrator's contract: a single atomic update of the verdict
// columns, so readers never observe a partial aggregate.
type JobStore interface {
	CreateJob(ctx context.Context, job *AnalysisJob) error
	GetJob(ctx context.Context, id string) (*AnalysisJob, error)
	ListJobsByUser(ctx context.Context, userID string) ([]AnalysisJob, error)
	SaveAggregate(ctx context.Context, jobID string, confidence float64, result, summary string) error
}

// DetailStore persists per-sub-region rows.
type DetailStore interface {
	InsertDetail(ctx context.Context, detail *AnalysisDetail) error
	ListDetails(ctx context.Context, jobID string) ([]AnalysisDetail, error)
}

// DetailRecorder adapts a DetailStore to the orchestrator's insert
// contract, serializing the composed result on the way in.
type DetailRecorder struct {
	Details DetailStore
}

func (r DetailRecorder) InsertDetail(ctx context.Context, d pipeline.Detail) error {
	row, err := detailFromPipeline(d)
	if err != nil {
		return fault.New(fault.Persistence, stage, err)
	}
	return r.Details.InsertDetail(ctx, row)
}

var _ pipeline.DetailStore = DetailRecorder{}
