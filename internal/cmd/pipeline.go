package cmd

import (
	"context"
	"fmt"

	"github.com/docsage/docsage/internal/config"
	"github.com/docsage/docsage/internal/core/engine"
	"github.com/docsage/docsage/internal/core/ratelimit"
	"github.com/docsage/docsage/internal/core/store"
	"github.com/docsage/docsage/internal/provider"
)

// pipeline bundles the shared dependencies of every provider-facing command:
// typed config, open store, resolved driver, and the one process-wide rate
// limiter all provider calls flow through.
type pipeline struct {
	cfg      *config.Config
	store    *store.Store
	provider *provider.Resolved
	limiter  *ratelimit.Limiter
}

func newPipeline(ctx context.Context) (*pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	resolved, err := provider.Resolve(ctx, cfg.Provider)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &pipeline{
		cfg:      cfg,
		store:    db,
		provider: resolved,
		limiter:  ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window),
	}, nil
}

// openStoreOnly builds a pipeline without resolving a provider, for commands
// that never call the provider API.
func openStoreOnly(ctx context.Context) (*pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &pipeline{
		cfg:     cfg,
		store:   db,
		limiter: ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window),
	}, nil
}

func (p *pipeline) close() {
	if p != nil && p.store != nil {
		_ = p.store.Close()
	}
}

func (p *pipeline) newSearcher() *engine.Searcher {
	return &engine.Searcher{
		Store:   p.store,
		Driver:  p.provider.Driver,
		Limiter: p.limiter,
		TopK:    p.cfg.Search.TopK,
	}
}

func (p *pipeline) newIngestor() *engine.Ingestor {
	return &engine.Ingestor{
		Store:   p.store,
		Driver:  p.provider.Driver,
		Limiter: p.limiter,
		Splitter: &engine.Splitter{
			ChunkSize: p.cfg.Ingest.ChunkSize,
			Overlap:   p.cfg.Ingest.ChunkOverlap,
		},
		BatchSize: p.cfg.Ingest.BatchSize,
	}
}

func (p *pipeline) newChatSession(conversationID string) (*engine.ChatSession, error) {
	var prompt *engine.PromptTemplate
	if p.cfg.Chat.PromptFile != "" {
		loaded, err := engine.LoadPromptFile(p.cfg.Chat.PromptFile)
		if err != nil {
			return nil, err
		}
		prompt = loaded
	}

	return &engine.ChatSession{
		Store:          p.store,
		Driver:         p.provider.Driver,
		Limiter:        p.limiter,
		Prompt:         prompt,
		Model:          p.provider.ChatModel,
		TopK:           p.cfg.Chat.TopK,
		Temperature:    p.cfg.Chat.Temperature,
		ConversationID: conversationID,
	}, nil
}
