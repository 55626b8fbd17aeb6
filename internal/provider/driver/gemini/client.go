// Package gemini implements the provider driver for Google Gemini using the
// official genai SDK.
package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/docsage/docsage/internal/provider/driver"
)

const (
	defaultChatModel  = "gemini-1.5-pro"
	defaultEmbedModel = "text-embedding-004"

	// EnvGoogleAPIKey is the environment variable name for the Google AI API key.
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
)

// Client implements the Gemini driver.
type Client struct {
	genAIClient *genai.Client
	embedModel  string
}

// NewClient creates a Gemini client. When apiKey is empty the
// GOOGLE_API_KEY environment variable is used.
func NewClient(ctx context.Context, apiKey, embedModel string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		apiKey = os.Getenv(EnvGoogleAPIKey)
		if apiKey == "" {
			return nil, fmt.Errorf("gemini api key is required: set provider.gemini.api_key or %s", EnvGoogleAPIKey)
		}
	}

	genAIClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if strings.TrimSpace(embedModel) == "" {
		embedModel = defaultEmbedModel
	}

	return &Client{
		genAIClient: genAIClient,
		embedModel:  embedModel,
	}, nil
}

// Name returns the driver identifier.
func (c *Client) Name() string {
	return "gemini"
}

// Capabilities describes supported features.
func (c *Client) Capabilities() driver.Capabilities {
	return driver.Capabilities{
		SupportsEmbeddings: true,
		SupportsStreaming:  false,
	}
}

// Complete sends a chat completion request.
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil || c.genAIClient == nil {
		return nil, fmt.Errorf("gemini client not configured")
	}
	if req == nil || len(req.Messages) == 0 {
		return nil, fmt.Errorf("messages are required")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = defaultChatModel
	}

	contents, config := convertRequest(req)

	resp, err := c.genAIClient.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, &driver.ProviderError{Provider: "gemini", Message: err.Error()}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response candidates")
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	return &driver.Response{
		Content:      text.String(),
		FinishReason: string(candidate.FinishReason),
	}, nil
}

// Embed returns one embedding per input text.
func (c *Client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if c == nil || c.genAIClient == nil {
		return nil, fmt.Errorf("gemini client not configured")
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("inputs are required")
	}

	contents := make([]*genai.Content, 0, len(inputs))
	for _, input := range inputs {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(input)},
		})
	}

	resp, err := c.genAIClient.Models.EmbedContent(ctx, c.embedModel, contents, nil)
	if err != nil {
		return nil, &driver.ProviderError{Provider: "gemini", Message: err.Error()}
	}
	if len(resp.Embeddings) != len(inputs) {
		return nil, fmt.Errorf("embedding count mismatch: want %d, got %d", len(inputs), len(resp.Embeddings))
	}

	vectors := make([][]float32, 0, len(resp.Embeddings))
	for _, embedding := range resp.Embeddings {
		if embedding == nil {
			return nil, fmt.Errorf("empty embedding in response")
		}
		vectors = append(vectors, embedding.Values)
	}
	return vectors, nil
}

// convertRequest maps the provider-agnostic request onto genai types.
// System messages become the system instruction; user/assistant turns map to
// the user/model roles.
func convertRequest(req *driver.Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{}
	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.MaxTokens != nil {
		config.MaxOutputTokens = int32(*req.MaxTokens)
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case driver.RoleSystem:
			config.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
			}
		case driver.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
			})
		}
	}
	return contents, config
}
