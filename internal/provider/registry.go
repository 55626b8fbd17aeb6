// Package provider resolves the configured embedding/LLM provider into a
// concrete driver. Exactly one provider serves both embeddings and chat, so
// a single rate limiter budget covers every call.
package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/docsage/docsage/internal/config"
	"github.com/docsage/docsage/internal/provider/driver"
	"github.com/docsage/docsage/internal/provider/driver/gemini"
	"github.com/docsage/docsage/internal/provider/driver/openai"
)

// EnvOpenAIAPIKey is the environment variable fallback for the OpenAI key.
const EnvOpenAIAPIKey = "OPENAI_API_KEY"

// Resolved is a configured provider ready for use.
type Resolved struct {
	ProviderID string
	Driver     driver.Driver
	ChatModel  string
}

// Resolve builds the driver selected by cfg. An unsupported provider name
// or a missing API key is a configuration error; callers treat it as fatal.
func Resolve(ctx context.Context, cfg config.ProviderConfig) (*Resolved, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Name))
	switch name {
	case "", "openai":
		return resolveOpenAI(cfg.OpenAI)
	case "gemini":
		return resolveGemini(ctx, cfg.Gemini)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Name)
	}
}

func resolveOpenAI(cfg config.OpenAIConfig) (*Resolved, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		apiKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required: set provider.openai.api_key or %s", EnvOpenAIAPIKey)
	}

	client := openai.NewClient(cfg.BaseURL, apiKey)
	if strings.TrimSpace(cfg.EmbedModel) != "" {
		client.EmbedModel = cfg.EmbedModel
	}
	client.Timeout = cfg.Timeout

	chatModel := strings.TrimSpace(cfg.ChatModel)
	if chatModel == "" {
		chatModel = "gpt-3.5-turbo"
	}

	return &Resolved{ProviderID: "openai", Driver: client, ChatModel: chatModel}, nil
}

func resolveGemini(ctx context.Context, cfg config.GeminiConfig) (*Resolved, error) {
	client, err := gemini.NewClient(ctx, cfg.APIKey, cfg.EmbedModel)
	if err != nil {
		return nil, err
	}

	chatModel := strings.TrimSpace(cfg.ChatModel)
	if chatModel == "" {
		chatModel = "gemini-1.5-pro"
	}

	return &Resolved{ProviderID: "gemini", Driver: client, ChatModel: chatModel}, nil
}
