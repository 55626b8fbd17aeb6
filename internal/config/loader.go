package config

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Load decodes the current viper state into a typed Config and validates it.
// Callers are expected to have initialized viper (defaults, config file,
// environment) before calling; the root command does this once at startup.
func Load() (*Config, error) {
	var cfg Config

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := viper.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults installs the built-in configuration layer.
func SetDefaults() {
	// Store defaults
	viper.SetDefault("store.driver", "libsql")
	viper.SetDefault("store.path", DefaultStorePath())
	viper.SetDefault("store.url", "")
	viper.SetDefault("store.auth_token", "")

	// Provider defaults
	viper.SetDefault("provider.name", "openai")
	viper.SetDefault("provider.openai.base_url", "")
	viper.SetDefault("provider.openai.chat_model", "gpt-3.5-turbo")
	viper.SetDefault("provider.openai.embed_model", "text-embedding-3-small")
	viper.SetDefault("provider.openai.timeout", "60s")
	viper.SetDefault("provider.gemini.chat_model", "gemini-1.5-pro")
	viper.SetDefault("provider.gemini.embed_model", "text-embedding-004")

	// Rate limit defaults: the quota-constrained provider tier
	viper.SetDefault("rate_limit.max_requests", 15)
	viper.SetDefault("rate_limit.window", "60s")

	// Ingestion defaults
	viper.SetDefault("ingest.chunk_size", 1000)
	viper.SetDefault("ingest.chunk_overlap", 150)
	viper.SetDefault("ingest.batch_size", 5)

	// Search and chat defaults
	viper.SetDefault("search.top_k", 5)
	viper.SetDefault("chat.top_k", 3)
	viper.SetDefault("chat.temperature", 0.7)
	viper.SetDefault("chat.prompt_file", "")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.shutdown_timeout", "10s")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
}
