// Package driver defines the narrow seam between docsage and its
// embedding/LLM providers. Both calls consume provider quota; callers must
// be admitted by the shared rate limiter before invoking either.
package driver

import "context"

// Driver is implemented by each provider client.
type Driver interface {
	// Complete sends a chat completion request and returns the response.
	Complete(ctx context.Context, req *Request) (*Response, error)
	// Embed returns one embedding vector per input text, in input order.
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
	// Name returns the driver identifier (e.g., "openai").
	Name() string
	// Capabilities returns what this driver supports.
	Capabilities() Capabilities
}

// Capabilities describes driver features.
type Capabilities struct {
	SupportsEmbeddings bool
	SupportsStreaming  bool
	SupportedModels    []string
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat message roles shared by all drivers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Usage contains token usage statistics.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Request is a provider-agnostic completion request.
type Request struct {
	Model       string
	Messages    []Message
	Temperature *float64
	MaxTokens   *int
}

// Response is a provider-agnostic completion response.
type Response struct {
	Content      string
	FinishReason string
	Usage        *Usage
}
