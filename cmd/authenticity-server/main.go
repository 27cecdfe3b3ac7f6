package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veridex/authenticity-analyzer/internal/auth"
	"github.com/veridex/authenticity-analyzer/internal/config"
	"github.com/veridex/authenticity-analyzer/internal/metrics"
	"github.com/veridex/authenticity-analyzer/internal/server"
	"github.com/veridex/authenticity-analyzer/internal/storage"
	"github.com/veridex/authenticity-analyzer/internal/store"
	"github.com/veridex/authenticity-analyzer/pkg/analysis"
	"github.com/veridex/authenticity-analyzer/pkg/client"
	"github.com/veridex/authenticity-analyzer/pkg/detector"
	"github.com/veridex/authenticity-analyzer/pkg/llamacpp"
	"github.com/veridex/authenticity-analyzer/pkg/ollama"
	"github.com/veridex/authenticity-analyzer/pkg/pipeline"
	"github.com/veridex/authenticity-analyzer/pkg/segmenter"
)

func main() {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
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
		log.Fatalf("Failed to create %s client: %v", cfg.Services.LLMBackend, err)
	}
	log.Printf("Using %s at %s (vision=%s text=%s)",
		cfg.Services.LLMBackend, cfg.Services.LLMURL, cfg.Models.Vision, cfg.Models.Text)

	artifacts, err := newArtifactStore(cfg)
	if err != nil {
		log.Fatalf("Failed to set up artifact storage: %v", err)
	}

	jobs, details, err := newStores(cfg)
	if err != nil {
		log.Fatalf("Failed to set up database: %v", err)
	}

	tokens, err := auth.ParseTokens(cfg.Auth.Tokens)
	if err != nil {
		log.Fatalf("Invalid AUTH_TOKENS: %v", err)
	}
	if len(tokens) == 0 {
		log.Printf("Warning: AUTH_TOKENS is empty, every request will be rejected")
	}

	orch := pipeline.NewWithConfig(pipeline.Deps{
		Detector:  detector.NewClient(cfg.Services.DetectorURL),
		Segmenter: segmenter.NewClientWithConfig(cfg.Services.SegmenterURL, segmenter.Config{MinCoverage: cfg.Pipeline.MinCoverage}),
		Analyzer:  analysis.NewUnitFromLLM(llm, cfg.Models.Vision, cfg.Models.Text, cfg.Models.TranslationLanguage),
		Artifacts: artifacts,
		Jobs:      jobs,
		Details:   store.DetailRecorder{Details: details},
	}, pipeline.Config{
		ConfidenceThreshold: cfg.Pipeline.ConfidenceThreshold,
		PersonLabel:         "person",
		DetectTimeout:       time.Duration(cfg.Pipeline.DetectTimeoutSec) * time.Second,
		SegmentTimeout:      time.Duration(cfg.Pipeline.SegmentTimeoutSec) * time.Second,
		AnalyzeTimeout:      time.Duration(cfg.Pipeline.AnalyzeTimeoutSec) * time.Second,
		PersistTimeout:      time.Duration(cfg.Pipeline.PersistTimeoutSec) * time.Second,
	})

	srv := server.New(server.Options{
		Jobs:      jobs,
		Details:   details,
		Artifacts: artifacts,
		Resolver:  auth.NewStaticResolver(tokens),
		Runner:    orch,
		Metrics:   metrics.Default(),
	})

	mux := http.NewServeMux()
	if cfg.Storage.Backend == "filesystem" {
		mux.Handle("/artifacts/", http.StripPrefix("/artifacts/", http.FileServer(http.Dir(cfg.Storage.Dir))))
	}
	mux.Handle("/", srv)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	go func() {
		log.Printf("Authenticity analysis server starting on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func newArtifactStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "http":
		log.Printf("Using HTTP artifact store at %s", cfg.Storage.BaseURL)
		return storage.NewHTTPStore(cfg.Storage.BaseURL, cfg.Storage.PublicURL), nil
	case "memory":
		log.Printf("Using in-memory artifact store; artifacts are lost on restart")
		return storage.NewMemoryStore(), nil
	default:
		log.Printf("Using filesystem artifact store at %s", cfg.Storage.Dir)
		return storage.NewFilesystemStore(cfg.Storage.Dir, cfg.Storage.PublicURL)
	}
}

func newStores(cfg *config.Config) (store.JobStore, store.DetailStore, error) {
	if cfg.Database.DSN == "" {
		log.Printf("DATABASE_DSN is empty, using the in-memory store; jobs are lost on restart")
		mem := store.NewMemoryStore()
		return mem, mem, nil
	}

	gormStore, err := store.Open(cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := gormStore.Migrate(); err != nil {
		return nil, nil, err
	}
	log.Printf("Connected to Postgres")
	return gormStore, gormStore, nil
}
