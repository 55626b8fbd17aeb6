package core

import "time"

// Document is one ingested source file.
type Document struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Pages      int       `json:"pages"`
	ChunkCount int       `json:"chunk_count"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Chunk is a contiguous span of document text together with its embedding.
// Seq orders chunks within a document; Page is the 1-based source page.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Seq        int       `json:"seq"`
	Page       int       `json:"page"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
}

// SearchResult pairs a chunk with its cosine similarity to the query.
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Turn is one message in a stored conversation.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
