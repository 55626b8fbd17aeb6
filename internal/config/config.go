// Package config provides centralized configuration for docsage.
// Values are layered: built-in defaults, an optional YAML config file
// discovered via XDG paths, then DOCSAGE_* environment variables.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	gfconfig "github.com/fulmenhq/gofulmen/config"
)

// AppName is the binary/config/env identity of the tool.
const AppName = "docsage"

// Config represents the complete application configuration.
type Config struct {
	Store     StoreConfig     `mapstructure:"store"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Search    SearchConfig    `mapstructure:"search"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// StoreConfig contains database configuration for libsql/Turso.
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// ProviderConfig selects and configures the embedding/LLM provider.
type ProviderConfig struct {
	// Name is the provider identifier: "openai" or "gemini".
	Name   string       `mapstructure:"name"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// OpenAIConfig configures the OpenAI driver.
type OpenAIConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	ChatModel  string        `mapstructure:"chat_model"`
	EmbedModel string        `mapstructure:"embed_model"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// GeminiConfig configures the Gemini driver.
type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	ChatModel  string `mapstructure:"chat_model"`
	EmbedModel string `mapstructure:"embed_model"`
}

// RateLimitConfig sizes the shared sliding-window throttle. The defaults
// match the free-tier Gemini quota of 15 requests per minute.
type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

// IngestConfig controls PDF chunking and batch sizing.
type IngestConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
	BatchSize    int `mapstructure:"batch_size"`
}

// SearchConfig controls similarity search.
type SearchConfig struct {
	TopK int `mapstructure:"top_k"`
}

// ChatConfig controls the RAG chat loop.
type ChatConfig struct {
	TopK        int     `mapstructure:"top_k"`
	Temperature float64 `mapstructure:"temperature"`
	PromptFile  string  `mapstructure:"prompt_file"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level: trace, debug, info, warn, error.
	Level string `mapstructure:"level"`
}

// Validate checks the configuration for fatal errors. An unsupported
// provider name is a configuration error, not a runtime one.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Provider.Name)) {
	case "", "openai", "gemini":
	default:
		return fmt.Errorf("unsupported provider: %s", c.Provider.Name)
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit.max_requests must be positive, got %d", c.RateLimit.MaxRequests)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive, got %s", c.RateLimit.Window)
	}
	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize && c.Ingest.ChunkSize > 0 {
		return fmt.Errorf("ingest.chunk_overlap (%d) must be smaller than ingest.chunk_size (%d)",
			c.Ingest.ChunkOverlap, c.Ingest.ChunkSize)
	}
	return nil
}

// DefaultStorePath returns the XDG-compliant path to the database file.
func DefaultStorePath() string {
	dataDir := gfconfig.GetAppDataDir(AppName)
	if strings.TrimSpace(dataDir) == "" {
		return "./" + AppName + ".db"
	}
	return filepath.Join(dataDir, AppName+".db")
}
