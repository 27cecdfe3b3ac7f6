// Package pipeline drives the streaming analysis run for one job: region
// detection, per-region branching, segmentation, per-sub-region analysis,
// persistence and final aggregation, emitting progress events throughout.
package pipeline

import (
	"context"
	"image"
	"time"

	"github.com/veridex/authenticity-analyzer/pkg/cropper"
	"github.com/veridex/authenticity-analyzer/pkg/events"
	"github.com/veridex/authenticity-analyzer/pkg/processing"
	"github.com/veridex/authenticity-analyzer/pkg/types"
)

// RegionDetector finds candidate regions in a source image.
type RegionDetector interface {
	Detect(ctx context.Context, imageData []byte) ([]types.Detection, error)
}

// Segmenter splits a cropped human region into part sub-regions. It never
// returns an empty slice: failures degrade to a whole-crop fallback.
type Segmenter interface {
	Segment(ctx context.Context, crop image.Image, originalBox types.Box) []types.SubRegion
}

// SegmentAnalyzer produces the composed brand/authenticity/translation
// result for one sub-region image, reporting sub-steps through onStep.
type SegmentAnalyzer interface {
	Analyze(ctx context.Context, img image.Image, onStep func(step, message string)) types.SegmentResult
}

// ArtifactStore reads the source image and persists sub-region crops.
type ArtifactStore interface {
	Get(ctx context.Context, ref string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) (url string, err error)
}

// JobStore writes the final aggregate verdict onto the job row. The
// write must be atomic: readers never observe a partial aggregate.
type JobStore interface {
	SaveAggregate(ctx context.Context, jobID string, confidence float64, result, summary string) error
}

// DetailStore persists one row per successfully stored sub-region.
type DetailStore interface {
	InsertDetail(ctx context.Context, detail Detail) error
}

// Job is the orchestrator's view of the analysis job being run. The
// caller resolves authorization and existence before handing it over.
type Job struct {
	ID       string
	UserID   string
	ImageURL string
}

// Detail is one persisted sub-region result.
type Detail struct {
	ID           string
	JobID        string
	UserID       string
	ImageURL     string
	Label        string
	Description  string
	Confidence   float64
	SegmentIndex int
	Coordinates  types.Coordinates
	Fallback     bool
	Result       types.SegmentResult
}

// Sink receives each emitted event. A non-nil return marks the consumer
// as gone: the run finishes its in-flight sub-region, then stops without
// writing the job aggregate.
type Sink func(ev events.Event) error

// Config holds the orchestration policy knobs.
type Config struct {
	// ConfidenceThreshold excludes detections scoring below it
	ConfidenceThreshold float64
	// PersonLabel routes matching detections through segmentation
	PersonLabel string

	// Per-call deadlines. The clients themselves are timeout-free.
	DetectTimeout  time.Duration
	SegmentTimeout time.Duration
	AnalyzeTimeout time.Duration
	PersistTimeout time.Duration
}

// DefaultConfig returns the standard orchestration policy
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.62,
		PersonLabel:         "person",
		DetectTimeout:       60 * time.Second,
		SegmentTimeout:      60 * time.Second,
		AnalyzeTimeout:      300 * time.Second,
		PersistTimeout:      30 * time.Second,
	}
}

// Deps are the collaborators a run needs, constructed by the process
// entry point and injected here.
type Deps struct {
	Detector  RegionDetector
	Segmenter Segmenter
	Analyzer  SegmentAnalyzer
	Artifacts ArtifactStore
	Jobs      JobStore
	Details   DetailStore
}

// Orchestrator runs analysis jobs. One Orchestrator serves concurrent
// runs for different jobs; per-run state lives in the run, not here.
type Orchestrator struct {
	deps      Deps
	config    Config
	processor *processing.Processor
	cropper   *cropper.Cropper
}

// New creates an orchestrator with the default policy
func New(deps Deps) *Orchestrator {
	return NewWithConfig(deps, DefaultConfig())
}

// NewWithConfig creates an orchestrator with a custom policy. Zero
// fields fall back to the defaults.
func NewWithConfig(deps Deps, config Config) *Orchestrator {
	defaults := DefaultConfig()
	if config.ConfidenceThreshold <= 0 {
		config.ConfidenceThreshold = defaults.ConfidenceThreshold
	}
	if config.PersonLabel == "" {
		config.PersonLabel = defaults.PersonLabel
	}
	if config.DetectTimeout <= 0 {
		config.DetectTimeout = defaults.DetectTimeout
	}
	if config.SegmentTimeout <= 0 {
		config.SegmentTimeout = defaults.SegmentTimeout
	}
	if config.AnalyzeTimeout <= 0 {
		config.AnalyzeTimeout = defaults.AnalyzeTimeout
	}
	if config.PersistTimeout <= 0 {
		config.PersistTimeout = defaults.PersistTimeout
	}
	return &Orchestrator{
		deps:      deps,
		config:    config,
		processor: processing.NewProcessor(),
		cropper:   cropper.New(),
	}
}
