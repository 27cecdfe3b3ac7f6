// Package authanalyzer provides streaming image-authenticity analysis.
//
// An analysis run detects regions of interest in a source image, splits
// detected people into clothing/part sub-regions, identifies the brand
// and scores the authenticity of every sub-region with a vision LLM,
// translates the verdict, persists each result and aggregates a final
// confidence and classification. Progress is emitted as an ordered
// event stream while the run executes.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		authanalyzer "github.com/veridex/authenticity-analyzer"
//	)
//
//	func main() {
//		analyzer, err := authanalyzer.New()
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		img, err := analyzer.LoadImage("bag.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		report, err := analyzer.AnalyzeImage(context.Background(), img, nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Printf("%s (confidence %.2f, %d regions)\n",
//			report.Result, report.Confidence, len(report.Details))
//	}
//
// The package composes the pipeline components for library and CLI use:
//
// 1. Detector (pkg/detector): finds candidate regions via an external service
// 2. Segmenter (pkg/segmenter): splits human regions into part sub-regions
// 3. Analysis (pkg/analysis): brand, authenticity and translation per sub-region
// 4. Pipeline (pkg/pipeline): drives the run and emits the event stream
//
// The facade keeps artifacts and result rows in memory; servers that
// need Postgres or remote artifact storage wire pkg/pipeline directly
// with the internal/store and internal/storage implementations, as
// cmd/authenticity-server does.
package authanalyzer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/veridex/authenticity-analyzer/internal/config"
	"github.com/veridex/authenticity-analyzer/internal/storage"
	"github.com/veridex/authenticity-analyzer/internal/store"
	"github.com/veridex/authenticity-analyzer/pkg/analysis"
	"github.com/veridex/authenticity-analyzer/pkg/client"
	"github.com/veridex/authenticity-analyzer/pkg/detector"
	"github.com/veridex/authenticity-analyzer/pkg/events"
	"github.com/veridex/authenticity-analyzer/pkg/llamacpp"
	"github.com/veridex/authenticity-analyzer/pkg/ollama"
	"github.com/veridex/authenticity-analyzer/pkg/pipeline"
	"github.com/veridex/authenticity-analyzer/pkg/processing"
	"github.com/veridex/authenticity-analyzer/pkg/segmenter"
)

// Version of the authenticity analyzer library
const Version = "1.0.0"

// Analyzer is the high-level entry point for running analyses in-process
type Analyzer struct {
	config       *config.Config
	processor    *processing.Processor
	orchestrator *pipeline.Orchestrator
	artifacts    storage.Store
	jobs         store.JobStore
	details      store.DetailStore
}

// Report summarizes one finished run.
type Report struct {
	JobID      string                 `json:"jobId"`
	Result     string                 `json:"result"`
	Confidence float64                `json:"confidence"`
	Summary    string                 `json:"summary"`
	Details    []store.AnalysisDetail `json:"details"`
}

// New creates an Analyzer with the default configuration
func New() (*Analyzer, error) {
	return NewWithConfig(config.Default())
}

// NewWithConfig creates an Analyzer from an explicit configuration,
// constructing the LLM, detector and segmenter clients it names.
func NewWithConfig(cfg *config.Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var llm client.LLMClient
	var err error
	switch cfg.Services.LLMBackend {
	case "llamacpp":
		llm, err = llamacpp.NewClient(cfg.Services.LLMURL)
	default:
		llm, err = ollama.NewClient(cfg.Services.LLMURL)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Services.LLMBackend, err)
	}

	artifacts := storage.NewMemoryStore()
	rows := store.NewMemoryStore()

	orch := pipeline.NewWithConfig(pipeline.Deps{
		Detector:  detector.NewClient(cfg.Services.DetectorURL),
		Segmenter: segmenter.NewClientWithConfig(cfg.Services.SegmenterURL, segmenter.Config{MinCoverage: cfg.Pipeline.MinCoverage}),
		Analyzer:  analysis.NewUnitFromLLM(llm, cfg.Models.Vision, cfg.Models.Text, cfg.Models.TranslationLanguage),
		Artifacts: artifacts,
		Jobs:      rows,
		Details:   store.DetailRecorder{Details: rows},
	}, pipeline.Config{
		ConfidenceThreshold: cfg.Pipeline.ConfidenceThreshold,
		DetectTimeout:       time.Duration(cfg.Pipeline.DetectTimeoutSec) * time.Second,
		SegmentTimeout:      time.Duration(cfg.Pipeline.SegmentTimeoutSec) * time.Second,
		AnalyzeTimeout:      time.Duration(cfg.Pipeline.AnalyzeTimeoutSec) * time.Second,
		PersistTimeout:      time.Duration(cfg.Pipeline.PersistTimeoutSec) * time.Second,
	})

	return &Analyzer{
		config:       cfg,
		processor:    processing.NewProcessor(),
		orchestrator: orch,
		artifacts:    artifacts,
		jobs:         rows,
		details:      rows,
	}, nil
}

// LoadImage loads an image from a file path or URL
func (a *Analyzer) LoadImage(source string) (image.Image, error) {
	return a.processor.LoadImageSmart(source)
}

// ValidateImage checks if an image meets minimum requirements
func (a *Analyzer) ValidateImage(img image.Image) error {
	return a.processor.ValidateImage(img)
}

// AnalyzeImage runs the full pipeline against one image. Every emitted
// event is forwarded to sink when it is non-nil; a sink error stops the
// stream the same way a disconnected client would. The report carries
// the aggregate verdict and the persisted per-sub-region details.
func (a *Analyzer) AnalyzeImage(ctx context.Context, img image.Image, sink pipeline.Sink) (*Report, error) {
	if err := a.ValidateImage(img); err != nil {
		return nil, err
	}
	data, err := a.processor.EncodeJPEG(img)
	if err != nil {
		return nil, fmt.Errorf("encode source image: %w", err)
	}

	jobID := uuid.NewString()
	sourceURL, err := a.artifacts.Put(ctx, "uploads/"+jobID+".jpg", data)
	if err != nil {
		return nil, fmt.Errorf("store source image: %w", err)
	}
	if err := a.jobs.CreateJob(ctx, &store.AnalysisJob{ID: jobID, UserID: "local", SourceImageURL: sourceURL}); err != nil {
		return nil, fmt.Errorf("create analysis job: %w", err)
	}

	if sink == nil {
		sink = func(events.Event) error { return nil }
	}
	job := pipeline.Job{ID: jobID, UserID: "local", ImageURL: sourceURL}
	if err := a.orchestrator.Run(ctx, job, sink); err != nil {
		return nil, err
	}

	return a.report(ctx, jobID)
}

// AnalyzeFile loads, validates and analyzes an image from a path or URL
func (a *Analyzer) AnalyzeFile(ctx context.Context, source string, sink pipeline.Sink) (*Report, error) {
	img, err := a.LoadImage(source)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	return a.AnalyzeImage(ctx, img, sink)
}

// report assembles the final verdict and details for a finished job
func (a *Analyzer) report(ctx context.Context, jobID string) (*Report, error) {
	job, err := a.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	details, err := a.details.ListDetails(ctx, jobID)
	if err != nil {
		return nil, err
	}

	report := &Report{JobID: jobID, Details: details}
	if job.Analyzed() {
		report.Result = *job.AggregateResult
		report.Confidence = *job.AggregateConfidence
		report.Summary = *job.AggregateSummary
	}
	return report, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
