package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/veridex/authenticity-analyzer/internal/storage"
	"github.com/veridex/authenticity-analyzer/internal/store"
	"github.com/veridex/authenticity-analyzer/internal/utils"
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

// Runs the full analysis pipeline against one image without a server:
// artifacts land in a local directory, rows in an in-memory store, and
// every stream event is printed as a JSON line.
func main() {
	var in, outDir, backend, url string
	var visionModel, textModel, language string
	var detectorURL, segmenterURL string
	var threshold, coverage float64

	flag.StringVar(&in, "in", "", "input image path or URL (jpg/png/webp)")
	flag.StringVar(&outDir, "out", "out", "artifact output directory")
	flag.StringVar(&backend, "backend", "ollama", "LLM backend: ollama or llamacpp")
	flag.StringVar(&url, "url", "", "LLM server URL (defaults: ollama=http://localhost:11434, llamacpp=http://localhost:8080)")
	flag.StringVar(&visionModel, "vision", "qwen2.5vl:7b", "vision model name")
	flag.StringVar(&textModel, "text", "qwen3:8b", "text model name")
	flag.StringVar(&language, "lang", "ko", "translation target language code")
	flag.StringVar(&detectorURL, "detector", "http://localhost:8000", "object detection service URL")
	flag.StringVar(&segmenterURL, "segmenter", "http://localhost:8001", "human part segmentation service URL")
	flag.Float64Var(&threshold, "threshold", 0.62, "detection confidence cutoff")
	flag.Float64Var(&coverage, "coverage", 0.01, "minimum part coverage fraction")

	flag.Parse()
	if in == "" {
		log.Fatalf("usage: %s -in input.jpg|URL [-backend ollama|llamacpp] [-url server_url] [-out outdir]", filepath.Base(os.Args[0]))
	}

	var llm client.LLMClient
	var err error
	switch backend {
	case "ollama":
		if url == "" {
			url = "http://localhost:11434"
		}
		llm, err = ollama.NewClient(url)
		if err != nil {
			log.Fatalf("Failed to create Ollama client: %v", err)
		}
	case "llamacpp":
		if url == "" {
			url = "http://localhost:8080"
		}
		llm, err = llamacpp.NewClient(url)
		if err != nil {
			log.Fatalf("Failed to create llama.cpp client: %v", err)
		}
	default:
		log.Fatalf("Unknown backend: %s (use 'ollama' or 'llamacpp')", backend)
	}

	if !strings.HasPrefix(in, "http://") && !strings.HasPrefix(in, "https://") {
		if !utils.FileExists(in) {
			log.Fatalf("Input file not found: %s", in)
		}
		if !utils.IsImageFile(in) {
			log.Fatalf("Input does not look like an image file: %s", in)
		}
	}

	processor := processing.NewProcessor()
	img, err := processor.LoadImageSmart(in)
	if err != nil {
		log.Fatal(err)
	}
	if err := processor.ValidateImage(img); err != nil {
		log.Fatal(err)
	}
	sourceData, err := processor.EncodeJPEG(img)
	if err != nil {
		log.Fatal(err)
	}

	artifacts, err := storage.NewFilesystemStore(outDir, "")
	if err != nil {
		log.Fatal(err)
	}
	mem := store.NewMemoryStore()

	jobID := uuid.NewString()
	ctx := context.Background()

	sourceURL, err := artifacts.Put(ctx, "uploads/"+jobID+".jpg", sourceData)
	if err != nil {
		log.Fatal(err)
	}
	if err := mem.CreateJob(ctx, &store.AnalysisJob{ID: jobID, UserID: "cli", SourceImageURL: sourceURL}); err != nil {
		log.Fatal(err)
	}

	orch := pipeline.NewWithConfig(pipeline.Deps{
		Detector:  detector.NewClient(detectorURL),
		Segmenter: segmenter.NewClientWithConfig(segmenterURL, segmenter.Config{MinCoverage: coverage}),
		Analyzer:  analysis.NewUnitFromLLM(llm, visionModel, textModel, language),
		Artifacts: artifacts,
		Jobs:      mem,
		Details:   store.DetailRecorder{Details: mem},
	}, pipeline.Config{ConfidenceThreshold: threshold, PersonLabel: "person"})

	sink := func(ev events.Event) error {
		data, err := events.Marshal(ev)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if err := orch.Run(ctx, pipeline.Job{ID: jobID, UserID: "cli", ImageURL: sourceURL}, sink); err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	job, err := mem.GetJob(ctx, jobID)
	if err != nil {
		log.Fatal(err)
	}
	details, err := mem.ListDetails(ctx, jobID)
	if err != nil {
		log.Fatal(err)
	}

	if job.Analyzed() {
		log.Printf("result=%s confidence=%.2f details=%d", *job.AggregateResult, *job.AggregateConfidence, len(details))
		log.Printf("summary: %s", *job.AggregateSummary)
	}
	log.Printf("artifacts written under %s", outDir)
}
