package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment   string             `toml:"environment"` // "development" or "production"
	Server        ServerConfig       `toml:"server"`
	Storage       StorageConfig      `toml:"storage"`
	Logging       LoggingConfig      `toml:"logging"`
	Vector        VectorConfig       `toml:"vector"`
	Ingest        IngestConfig       `toml:"ingest"`
	Tools         ToolsConfig        `toml:"tools"`
	Conversations ConversationConfig `toml:"conversations"`
	RateLimit     RateLimitConfig    `toml:"rate_limit"`
	Gemini        GeminiConfig       `toml:"gemini"`
	Claude        ClaudeConfig       `toml:"claude"`
	LLM           LLMConfig          `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

// VectorConfig contains vector index and retrieval configuration
type VectorConfig struct {
	Path             string  `toml:"path"`               // Directory holding the index blob
	Dimension        int     `toml:"dimension"`          // Embedding dimension, must match the embedding model
	TopK             int     `toml:"top_k"`              // Default number of search results
	MinScore         float64 `toml:"min_score"`          // Minimum similarity score threshold
	MaxContextTokens int     `toml:"max_context_tokens"` // Approximate token budget for the context block
}

// IngestConfig contains document chunking configuration
type IngestConfig struct {
	ChunkSize    int  `toml:"chunk_size"`     // Approximate chunk size in words
	ChunkOverlap int  `toml:"chunk_overlap"`  // Overlapping words between chunks
	SaveOnIngest bool `toml:"save_on_ingest"` // Persist the index blob after each ingest batch
}

// ToolsConfig contains capability registry configuration
type ToolsConfig struct {
	RegistryURL string `toml:"registry_url"` // Base URL of the remote capability registry
	Timeout     string `toml:"timeout"`      // Per-call timeout, e.g. "30s"
}

// ConversationConfig contains conversation store configuration
type ConversationConfig struct {
	TTL           string `toml:"ttl"`            // Durable entry time-to-live, e.g. "24h"
	SweepSchedule string `toml:"sweep_schedule"` // Cron schedule for in-memory fallback cleanup
	HistoryLimit  int    `toml:"history_limit"`  // Stored messages fed to prompt assembly
}

// RateLimitConfig contains per-user request rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerMinute float64 `toml:"requests_per_minute"`
	Burst             int     `toml:"burst"`
}

// GeminiConfig represents Google Gemini API configuration
type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`
	EmbeddingModel string  `toml:"embedding_model"`
	Temperature    float32 `toml:"temperature"`
	MaxTokens      int     `toml:"max_tokens"`
	Timeout        string  `toml:"timeout"`
}

// ClaudeConfig represents Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
}

// LLMConfig selects the default provider and answer budget
type LLMConfig struct {
	DefaultProvider  string `toml:"default_provider"`   // "gemini" or "claude"
	DefaultMaxTokens int    `toml:"default_max_tokens"` // Answer token budget when the request does not set one
	Offline          bool   `toml:"offline"`            // Use the deterministic offline embedder (no cloud calls)
}

// DefaultConfig returns a configuration populated with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "0.0.0.0",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/badger",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
		Vector: VectorConfig{
			Path:             "./data/vector",
			Dimension:        768,
			TopK:             5,
			MinScore:         0.0,
			MaxContextTokens: 2000,
		},
		Ingest: IngestConfig{
			ChunkSize:    500,
			ChunkOverlap: 50,
			SaveOnIngest: true,
		},
		Tools: ToolsConfig{
			RegistryURL: "http://localhost:3333",
			Timeout:     "30s",
		},
		Conversations: ConversationConfig{
			TTL:           "24h",
			SweepSchedule: "@every 10m",
			HistoryLimit:  10,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			Burst:             10,
		},
		Gemini: GeminiConfig{
			Model:          "gemini-2.5-flash",
			EmbeddingModel: "text-embedding-004",
			Temperature:    0.2,
			MaxTokens:      4096,
			Timeout:        "120s",
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			Temperature: 0.2,
			MaxTokens:   4096,
			Timeout:     "120s",
		},
		LLM: LLMConfig{
			DefaultProvider:  "gemini",
			DefaultMaxTokens: 1024,
		},
	}
}

// LoadConfig loads configuration with precedence: defaults -> file -> env.
// A missing file path is not an error; the defaults are used.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else {
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies ADJUTANT_* environment variables plus the
// conventional provider key variables over the loaded configuration.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("ADJUTANT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("ADJUTANT_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("ADJUTANT_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("ADJUTANT_STORAGE_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("ADJUTANT_VECTOR_PATH"); v != "" {
		config.Vector.Path = v
	}
	if v := os.Getenv("ADJUTANT_TOOL_REGISTRY_URL"); v != "" {
		config.Tools.RegistryURL = v
	}
	if v := os.Getenv("ADJUTANT_LLM_PROVIDER"); v != "" {
		config.LLM.DefaultProvider = v
	}

	// Provider API keys: project-scoped variables win over the conventional ones
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("ADJUTANT_GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("ADJUTANT_CLAUDE_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
}

// Validate checks configuration invariants that would otherwise surface as
// runtime failures deep inside a component.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Vector.Dimension <= 0 {
		return fmt.Errorf("vector dimension must be positive, got %d", c.Vector.Dimension)
	}
	if c.Vector.TopK <= 0 {
		return fmt.Errorf("vector top_k must be positive, got %d", c.Vector.TopK)
	}
	if c.LLM.DefaultProvider != "gemini" && c.LLM.DefaultProvider != "claude" {
		return fmt.Errorf("unknown default LLM provider: %s", c.LLM.DefaultProvider)
	}
	if _, err := time.ParseDuration(c.Tools.Timeout); err != nil {
		return fmt.Errorf("invalid tools timeout %q: %w", c.Tools.Timeout, err)
	}
	if _, err := time.ParseDuration(c.Conversations.TTL); err != nil {
		return fmt.Errorf("invalid conversation ttl %q: %w", c.Conversations.TTL, err)
	}
	return nil
}

// ToolTimeout returns the parsed per-call tool timeout.
func (c *ToolsConfig) ToolTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ConversationTTL returns the parsed conversation time-to-live.
func (c *ConversationConfig) ConversationTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
