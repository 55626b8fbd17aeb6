package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docsage/docsage/internal/core"
	"github.com/docsage/docsage/internal/core/ratelimit"
	"github.com/docsage/docsage/internal/core/store"
	"github.com/docsage/docsage/internal/provider/driver"
)

// DefaultSearchTopK is how many results a search returns when the caller
// does not say otherwise.
const DefaultSearchTopK = 5

// Searcher embeds a query and ranks stored chunks against it.
type Searcher struct {
	Store   *store.Store
	Driver  driver.Driver
	Limiter *ratelimit.Limiter
	TopK    int
}

// Search returns the k chunks most similar to query, best first. A
// non-positive k falls back to the configured default.
func (s *Searcher) Search(ctx context.Context, query string, k int) ([]core.SearchResult, error) {
	if s == nil || s.Store == nil || s.Driver == nil {
		return nil, errors.New("searcher is not fully configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is required")
	}
	if k <= 0 {
		k = s.TopK
	}
	if k <= 0 {
		k = DefaultSearchTopK
	}

	if s.Limiter != nil {
		if _, err := s.Limiter.Acquire(ctx); err != nil {
			return nil, err
		}
	}

	vectors, err := s.Driver.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors for one input", len(vectors))
	}

	return s.Store.SimilaritySearch(ctx, vectors[0], k)
}
