package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "libsql", cfg.Store.Driver)
	require.Equal(t, "openai", cfg.Provider.Name)
	require.Equal(t, "gpt-3.5-turbo", cfg.Provider.OpenAI.ChatModel)
	require.Equal(t, "text-embedding-3-small", cfg.Provider.OpenAI.EmbedModel)
	require.Equal(t, 15, cfg.RateLimit.MaxRequests)
	require.Equal(t, 60*time.Second, cfg.RateLimit.Window)
	require.Equal(t, 1000, cfg.Ingest.ChunkSize)
	require.Equal(t, 150, cfg.Ingest.ChunkOverlap)
	require.Equal(t, 5, cfg.Ingest.BatchSize)
	require.Equal(t, 5, cfg.Search.TopK)
	require.Equal(t, 3, cfg.Chat.TopK)
}

func TestLoadRejectsUnsupportedProvider(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.Set("provider.name", "cohere")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported provider")
}

func TestLoadRejectsNonPositiveQuota(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.Set("rate_limit.max_requests", 0)

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "rate_limit.max_requests")
}

func TestValidateRejectsOverlapNotSmallerThanChunk(t *testing.T) {
	cfg := &Config{
		RateLimit: RateLimitConfig{MaxRequests: 15, Window: time.Minute},
		Ingest:    IngestConfig{ChunkSize: 100, ChunkOverlap: 100},
	}
	require.Error(t, cfg.Validate())
}
