package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docsage/docsage/internal/core"
	"github.com/docsage/docsage/internal/core/ratelimit"
	"github.com/docsage/docsage/internal/core/store"
	"github.com/docsage/docsage/internal/provider/driver"
)

// Chat defaults. Retrieval is narrower than search because the retrieved
// chunks feed straight into the completion prompt.
const (
	DefaultChatTopK        = 3
	DefaultChatTemperature = 0.7
)

// ChatSession answers questions grounded in stored chunks. Each Ask embeds
// the question, retrieves context, asks the model, and appends both turns
// to the conversation history.
type ChatSession struct {
	Store          *store.Store
	Driver         driver.Driver
	Limiter        *ratelimit.Limiter
	Prompt         *PromptTemplate
	Model          string
	TopK           int
	Temperature    float64
	ConversationID string
	Clock          func() time.Time
}

// Ask answers one question. Both provider calls (embed, complete) pass
// through the shared limiter.
func (c *ChatSession) Ask(ctx context.Context, question string) (string, error) {
	if c == nil || c.Store == nil || c.Driver == nil {
		return "", errors.New("chat session is not fully configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("question is required")
	}

	results, err := c.retrieve(ctx, question)
	if err != nil {
		return "", err
	}

	answer, err := c.complete(ctx, question, results)
	if err != nil {
		return "", err
	}

	// History persistence is best effort: the answer already exists and
	// should not be lost to a storage hiccup.
	now := c.now()
	_ = c.Store.SaveTurn(ctx, c.ConversationID, core.Turn{Role: core.RoleUser, Content: question, CreatedAt: now})
	_ = c.Store.SaveTurn(ctx, c.ConversationID, core.Turn{Role: core.RoleAssistant, Content: answer, CreatedAt: now.Add(time.Nanosecond)})

	return answer, nil
}

// History returns the last k turns of this conversation, oldest first.
func (c *ChatSession) History(ctx context.Context, k int) ([]core.Turn, error) {
	if c == nil || c.Store == nil {
		return nil, errors.New("chat session is not fully configured")
	}
	return c.Store.LoadRecentTurns(ctx, c.ConversationID, k)
}

func (c *ChatSession) retrieve(ctx context.Context, question string) ([]core.SearchResult, error) {
	if c.Limiter != nil {
		if _, err := c.Limiter.Acquire(ctx); err != nil {
			return nil, err
		}
	}

	vectors, err := c.Driver.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed question: got %d vectors for one input", len(vectors))
	}

	k := c.TopK
	if k <= 0 {
		k = DefaultChatTopK
	}
	return c.Store.SimilaritySearch(ctx, vectors[0], k)
}

func (c *ChatSession) complete(ctx context.Context, question string, results []core.SearchResult) (string, error) {
	if c.Limiter != nil {
		if _, err := c.Limiter.Acquire(ctx); err != nil {
			return "", err
		}
	}

	contexts := make([]string, len(results))
	for i, result := range results {
		contexts[i] = result.Chunk.Content
	}
	rendered := c.Prompt.Render(strings.Join(contexts, "\n\n"), question)

	temperature := c.Temperature
	if temperature == 0 {
		temperature = DefaultChatTemperature
	}

	resp, err := c.Driver.Complete(ctx, &driver.Request{
		Model:       c.Model,
		Messages:    []driver.Message{{Role: driver.RoleUser, Content: rendered}},
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", errors.New("provider returned an empty answer")
	}
	return resp.Content, nil
}

func (c *ChatSession) now() time.Time {
	if c != nil && c.Clock != nil {
		return c.Clock()
	}
	return time.Now().UTC()
}
