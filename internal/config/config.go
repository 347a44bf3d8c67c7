package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Outline storage
	DBPath string

	// PDF
	PDFRepair bool

	// Semantic scorer; disabled when EmbedEndpoint is empty
	EmbedEndpoint    string
	EmbedModel       string
	EmbedAPIKey      string
	EmbedTimeout     time.Duration
	EmbedStatsWindow time.Duration

	// Tuning file
	ConfigFile string
	Analyzer   outline.Config
	Prototype  PrototypeConfig
}

// File is the YAML tuning file named by CONFIG_FILE.
type File struct {
	Analyzer  outline.Config  `yaml:"analyzer"`
	Prototype PrototypeConfig `yaml:"prototype"`
}

// PrototypeConfig overrides the example texts of the semantic scorer.
type PrototypeConfig struct {
	HeadingExamples []string `yaml:"heading_examples"`
	BodyExamples    []string `yaml:"body_examples"`
	Gain            float64  `yaml:"gain"`
}

func Load() (Config, error) {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCOUTLINE_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		DBPath: envOr("DB_PATH", "docoutline.db"),

		PDFRepair: envBool("PDF_REPAIR", true),

		EmbedEndpoint:    os.Getenv("EMBED_ENDPOINT"),
		EmbedModel:       os.Getenv("EMBED_MODEL"),
		EmbedAPIKey:      os.Getenv("EMBED_API_KEY"),
		EmbedTimeout:     envDuration("EMBED_TIMEOUT", 10*time.Second),
		EmbedStatsWindow: envDuration("EMBED_STATS_WINDOW", 1*time.Hour),

		ConfigFile: os.Getenv("CONFIG_FILE"),
		Analyzer:   outline.DefaultConfig(),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = 10 * time.Second
	}
	if cfg.EmbedStatsWindow <= 0 {
		cfg.EmbedStatsWindow = 1 * time.Hour
	}

	if cfg.ConfigFile != "" {
		f, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return cfg, err
		}
		cfg.Analyzer = f.Analyzer
		cfg.Prototype = f.Prototype
	}
	return cfg, nil
}

// LoadFile reads a tuning file. Keys it leaves out keep their defaults;
// unknown keys are an error.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes tuning YAML over the defaults.
func ParseFile(data []byte) (File, error) {
	f := File{Analyzer: outline.DefaultConfig()}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("parse config file: %w", err)
	}
	return f, nil
}

// Validate checks the settings the HTTP service needs.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCOUTLINE_API_KEY is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.Analyzer.MaxLevels < 0 {
		return fmt.Errorf("analyzer.max_levels must not be negative")
	}
	if c.Analyzer.MinScore <= 0 {
		return fmt.Errorf("analyzer.min_score must be positive")
	}
	return nil
}

// EmbedEnabled reports whether a semantic scorer should be built.
func (c Config) EmbedEnabled() bool {
	return c.EmbedEndpoint != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
