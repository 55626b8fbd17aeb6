package openai

import (
	"fmt"

	"github.com/docsage/docsage/internal/provider/driver"
)

type chatCompletionResponse struct {
	Choices []choice `json:"choices"`
	Usage   *usage   `json:"usage,omitempty"`
}

type choice struct {
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"`
}

type chatResponseMessage struct {
	Content string `json:"content"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type embeddingsResponse struct {
	Data []embeddingEntry `json:"data"`
}

type embeddingEntry struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

func toDriverResponse(resp *chatCompletionResponse) (*driver.Response, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response choices")
	}

	choice := resp.Choices[0]
	response := &driver.Response{
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
	}

	if resp.Usage != nil {
		response.Usage = &driver.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return response, nil
}

func toEmbeddings(resp *embeddingsResponse, want int) ([][]float32, error) {
	if resp == nil || len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embeddings response")
	}
	if len(resp.Data) != want {
		return nil, fmt.Errorf("embedding count mismatch: want %d, got %d", want, len(resp.Data))
	}

	// The API documents data in input order, but index is authoritative.
	vectors := make([][]float32, want)
	for _, entry := range resp.Data {
		if entry.Index < 0 || entry.Index >= want {
			return nil, fmt.Errorf("embedding index out of range: %d", entry.Index)
		}
		vectors[entry.Index] = entry.Embedding
	}
	return vectors, nil
}
