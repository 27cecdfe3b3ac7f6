package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Storage  StorageConfig  `json:"storage"`
	Services ServicesConfig `json:"services"`
	Models   ModelsConfig   `json:"models"`
	Pipeline PipelineConfig `json:"pipeline"`
	Auth     AuthConfig     `json:"auth"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Addr      string `json:"addr"`
	PublicURL string `json:"public_url"`
}

// DatabaseConfig holds the Postgres connection settings. An empty DSN
// selects the in-memory store.
type DatabaseConfig struct {
	DSN string `json:"dsn"`
}

// StorageConfig holds artifact storage settings
type StorageConfig struct {
	// Backend selects the artifact store: filesystem, http or memory
	Backend   string `json:"backend"`
	Dir       string `json:"dir"`
	BaseURL   string `json:"base_url"`
	PublicURL string `json:"public_url"`
}

// ServicesConfig holds the external inference service endpoints
type ServicesConfig struct {
	// LLMBackend selects the completion client: ollama or llamacpp
	LLMBackend   string `json:"llm_backend"`
	LLMURL       string `json:"llm_url"`
	DetectorURL  string `json:"detector_url"`
	SegmenterURL string `json:"segmenter_url"`
}

// ModelsConfig names the models used per analysis step
type ModelsConfig struct {
	Vision              string `json:"vision"`
	Text                string `json:"text"`
	TranslationLanguage string `json:"translation_language"`
}

// PipelineConfig holds orchestration thresholds and per-call deadlines
type PipelineConfig struct {
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	MinCoverage         float64 `json:"min_coverage"`
	DetectTimeoutSec    int     `json:"detect_timeout_sec"`
	SegmentTimeoutSec   int     `json:"segment_timeout_sec"`
	AnalyzeTimeoutSec   int     `json:"analyze_timeout_sec"`
	PersistTimeoutSec   int     `json:"persist_timeout_sec"`
}

// AuthConfig holds the static token table, comma-separated
// token:user_id:role entries
type AuthConfig struct {
	Tokens string `json:"tokens"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			PublicURL: "http://localhost:8080",
		},
		Database: DatabaseConfig{
			DSN: "",
		},
		Storage: StorageConfig{
			Backend:   "filesystem",
			Dir:       "./data/artifacts",
			PublicURL: "http://localhost:8080/artifacts",
		},
		Services: ServicesConfig{
			LLMBackend:   "ollama",
			LLMURL:       "http://localhost:11434",
			DetectorURL:  "http://localhost:8000",
			SegmenterURL: "http://localhost:8001",
		},
		Models: ModelsConfig{
			Vision:              "qwen2.5vl:7b",
			Text:                "qwen3:8b",
			TranslationLanguage: "ko",
		},
		Pipeline: PipelineConfig{
			ConfidenceThreshold: 0.62,
			MinCoverage:         0.01,
			DetectTimeoutSec:    60,
			SegmentTimeoutSec:   60,
			AnalyzeTimeoutSec:   300,
			PersistTimeoutSec:   30,
		},
		Auth: AuthConfig{
			Tokens: "",
		},
	}
}

// FromEnv builds a configuration from environment variables on top of
// the defaults, loading a .env file first when one exists.
func FromEnv() *Config {
	_ = godotenv.Load()

	cfg := Default()
	cfg.Server.Addr = getEnv("SERVER_ADDR", cfg.Server.Addr)
	cfg.Server.PublicURL = getEnv("SERVER_PUBLIC_URL", cfg.Server.PublicURL)
	cfg.Database.DSN = getEnv("DATABASE_DSN", cfg.Database.DSN)
	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Dir = getEnv("STORAGE_DIR", cfg.Storage.Dir)
	cfg.Storage.BaseURL = getEnv("STORAGE_BASE_URL", cfg.Storage.BaseURL)
	cfg.Storage.PublicURL = getEnv("STORAGE_PUBLIC_URL", cfg.Storage.PublicURL)
	cfg.Services.LLMBackend = getEnv("LLM_BACKEND", cfg.Services.LLMBackend)
	cfg.Services.LLMURL = getEnv("LLM_URL", cfg.Services.LLMURL)
	cfg.Services.DetectorURL = getEnv("DETECTOR_URL", cfg.Services.DetectorURL)
	cfg.Services.SegmenterURL = getEnv("SEGMENTER_URL", cfg.Services.SegmenterURL)
	cfg.Models.Vision = getEnv("VISION_MODEL", cfg.Models.Vision)
	cfg.Models.Text = getEnv("TEXT_MODEL", cfg.Models.Text)
	cfg.Models.TranslationLanguage = getEnv("TRANSLATION_LANGUAGE", cfg.Models.TranslationLanguage)
	cfg.Pipeline.ConfidenceThreshold = getEnvFloat("CONFIDENCE_THRESHOLD", cfg.Pipeline.ConfidenceThreshold)
	cfg.Pipeline.MinCoverage = getEnvFloat("MIN_COVERAGE", cfg.Pipeline.MinCoverage)
	cfg.Pipeline.DetectTimeoutSec = getEnvInt("DETECT_TIMEOUT_SEC", cfg.Pipeline.DetectTimeoutSec)
	cfg.Pipeline.SegmentTimeoutSec = getEnvInt("SEGMENT_TIMEOUT_SEC", cfg.Pipeline.SegmentTimeoutSec)
	cfg.Pipeline.AnalyzeTimeoutSec = getEnvInt("ANALYZE_TIMEOUT_SEC", cfg.Pipeline.AnalyzeTimeoutSec)
	cfg.Pipeline.PersistTimeoutSec = getEnvInt("PERSIST_TIMEOUT_SEC", cfg.Pipeline.PersistTimeoutSec)
	cfg.Auth.Tokens = getEnv("AUTH_TOKENS", cfg.Auth.Tokens)
	return cfg
}

// LoadFromFile loads configuration from a JSON file over the defaults
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	switch c.Storage.Backend {
	case "filesystem", "http", "memory":
	default:
		return fmt.Errorf("storage.backend must be filesystem, http or memory")
	}
	if c.Storage.Backend == "filesystem" && c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir cannot be empty for the filesystem backend")
	}
	if c.Storage.Backend == "http" && c.Storage.BaseURL == "" {
		return fmt.Errorf("storage.base_url cannot be empty for the http backend")
	}

	switch c.Services.LLMBackend {
	case "ollama", "llamacpp":
	default:
		return fmt.Errorf("services.llm_backend must be ollama or llamacpp")
	}
	if c.Services.LLMURL == "" {
		return fmt.Errorf("services.llm_url cannot be empty")
	}
	if c.Services.DetectorURL == "" {
		return fmt.Errorf("services.detector_url cannot be empty")
	}
	if c.Services.SegmenterURL == "" {
		return fmt.Errorf("services.segmenter_url cannot be empty")
	}

	if c.Models.Vision == "" || c.Models.Text == "" {
		return fmt.Errorf("models.vision and models.text cannot be empty")
	}

	if c.Pipeline.ConfidenceThreshold < 0 || c.Pipeline.ConfidenceThreshold > 1 {
		return fmt.Errorf("pipeline.confidence_threshold must be between 0 and 1")
	}
	if c.Pipeline.MinCoverage < 0 || c.Pipeline.MinCoverage > 1 {
		return fmt.Errorf("pipeline.min_coverage must be between 0 and 1")
	}
	for name, sec := range map[string]int{
		"pipeline.detect_timeout_sec":  c.Pipeline.DetectTimeoutSec,
		"pipeline.segment_timeout_sec": c.Pipeline.SegmentTimeoutSec,
		"pipeline.analyze_timeout_sec": c.Pipeline.AnalyzeTimeoutSec,
		"pipeline.persist_timeout_sec": c.Pipeline.PersistTimeoutSec,
	} {
		if sec < 1 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
