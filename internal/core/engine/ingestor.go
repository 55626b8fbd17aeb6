package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docsage/docsage/internal/core"
	"github.com/docsage/docsage/internal/core/ratelimit"
	"github.com/docsage/docsage/internal/core/store"
	"github.com/docsage/docsage/internal/provider/driver"
)

// DefaultBatchSize bounds how many chunks each embedding request carries.
// Small batches keep individual requests cheap and spread quota consumption
// across the limiter window.
const DefaultBatchSize = 5

// Ingestor loads a PDF, chunks it, embeds the chunks in rate-limited
// batches, and persists the result. Re-ingesting a path replaces its
// previous chunks.
type Ingestor struct {
	Store     *store.Store
	Driver    driver.Driver
	Limiter   *ratelimit.Limiter
	Splitter  *Splitter
	BatchSize int
	Clock     func() time.Time

	// Progress, when set, is called after each persisted batch.
	Progress func(batch, totalBatches int)
}

// IngestReport summarizes one completed ingestion.
type IngestReport struct {
	Document core.Document
	Chunks   int
	Batches  int
	Waited   time.Duration
}

// Ingest runs the full pipeline for the PDF at path.
func (in *Ingestor) Ingest(ctx context.Context, path string) (*IngestReport, error) {
	pages, err := LoadPDF(path)
	if err != nil {
		return nil, err
	}
	return in.IngestPages(ctx, path, pages)
}

// IngestPages ingests already-extracted pages. Split out from Ingest so the
// pipeline can run on any text source.
func (in *Ingestor) IngestPages(ctx context.Context, path string, pages []Page) (*IngestReport, error) {
	if in == nil || in.Store == nil || in.Driver == nil {
		return nil, errors.New("ingestor is not fully configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	doc := core.Document{
		ID:         uuid.NewString(),
		Path:       path,
		Pages:      len(pages),
		IngestedAt: in.now(),
	}

	chunks := in.chunkPages(doc.ID, pages)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %s produced no chunks", path)
	}

	if err := in.Store.ReplaceDocument(ctx, doc); err != nil {
		return nil, err
	}

	report := &IngestReport{Document: doc, Chunks: len(chunks)}
	batchSize := in.batchSize()
	totalBatches := (len(chunks) + batchSize - 1) / batchSize
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		if in.Limiter != nil {
			waited, err := in.Limiter.Acquire(ctx)
			if err != nil {
				return nil, fmt.Errorf("ingest batch %d: %w", report.Batches+1, err)
			}
			report.Waited += waited
		}

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}
		vectors, err := in.Driver.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed batch %d: %w", report.Batches+1, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embed batch %d: got %d vectors for %d chunks", report.Batches+1, len(vectors), len(batch))
		}
		for i := range batch {
			batch[i].Embedding = vectors[i]
		}

		if err := in.Store.AddChunks(ctx, batch); err != nil {
			return nil, fmt.Errorf("persist batch %d: %w", report.Batches+1, err)
		}
		report.Batches++
		if in.Progress != nil {
			in.Progress(report.Batches, totalBatches)
		}
	}

	report.Document.ChunkCount = report.Chunks
	return report, nil
}

// chunkPages splits every page and assigns stable per-document sequence
// numbers across page boundaries.
func (in *Ingestor) chunkPages(documentID string, pages []Page) []core.Chunk {
	splitter := in.Splitter
	if splitter == nil {
		splitter = &Splitter{}
	}

	var chunks []core.Chunk
	seq := 0
	for _, page := range pages {
		for _, content := range splitter.Split(page.Text) {
			if strings.TrimSpace(content) == "" {
				continue
			}
			chunks = append(chunks, core.Chunk{
				ID:         uuid.NewString(),
				DocumentID: documentID,
				Seq:        seq,
				Page:       page.Number,
				Content:    content,
			})
			seq++
		}
	}
	return chunks
}

func (in *Ingestor) batchSize() int {
	if in.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return in.BatchSize
}

func (in *Ingestor) now() time.Time {
	if in != nil && in.Clock != nil {
		return in.Clock()
	}
	return time.Now().UTC()
}
