package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/docsage/docsage/internal/core"
)

// ReplaceDocument removes any prior ingestion of the same path and inserts
// the document row. Chunks cascade-delete with the old document.
func (s *Store) ReplaceDocument(ctx context.Context, doc core.Document) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace document: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id IN (SELECT id FROM documents WHERE path = ?)`, doc.Path); err != nil {
		return fmt.Errorf("delete stale chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, doc.Path); err != nil {
		return fmt.Errorf("delete stale document: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (id, path, pages, chunk_count, ingested_at) VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.Path, doc.Pages, doc.ChunkCount, doc.IngestedAt.Unix(),
	); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	return tx.Commit()
}

// AddChunks inserts a batch of embedded chunks and bumps the owning
// document's chunk count.
func (s *Store) AddChunks(ctx context.Context, chunks []core.Chunk) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add chunks: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // no-op after commit

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("chunk %s has no embedding", chunk.ID)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chunks (id, document_id, seq, page, content, embedding) VALUES (?, ?, ?, ?, ?, ?)`,
			chunk.ID, chunk.DocumentID, chunk.Seq, chunk.Page, chunk.Content, encodeVector(chunk.Embedding),
		); err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET chunk_count = chunk_count + ? WHERE id = ?`,
		len(chunks), chunks[0].DocumentID,
	); err != nil {
		return fmt.Errorf("update chunk count: %w", err)
	}

	return tx.Commit()
}

// SimilaritySearch returns the k chunks most similar to the query embedding,
// best first. It is a brute-force cosine scan over all stored chunks, which
// is the right trade-off for single-document corpora.
func (s *Store) SimilaritySearch(ctx context.Context, query []float32, k int) ([]core.SearchResult, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if len(query) == 0 {
		return nil, errors.New("query embedding is required")
	}
	if k <= 0 {
		k = 5
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, document_id, seq, page, content, embedding FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("fetch chunks: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	var results []core.SearchResult
	for rows.Next() {
		var (
			chunk core.Chunk
			blob  []byte
		)
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Seq, &chunk.Page, &chunk.Content, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}

		embedding, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decode embedding for chunk %s: %w", chunk.ID, err)
		}
		if len(embedding) != len(query) {
			continue
		}

		results = append(results, core.SearchResult{
			Chunk: chunk,
			Score: cosineSimilarity(query, embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// GetDocument returns the document ingested from path, or nil when absent.
func (s *Store) GetDocument(ctx context.Context, path string) (*core.Document, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	row := s.DB.QueryRowContext(ctx,
		`SELECT id, path, pages, chunk_count, ingested_at FROM documents WHERE path = ?`, path)

	var (
		doc      core.Document
		ingested int64
	)
	if err := row.Scan(&doc.ID, &doc.Path, &doc.Pages, &doc.ChunkCount, &ingested); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	doc.IngestedAt = time.Unix(ingested, 0).UTC()
	return &doc, nil
}

// encodeVector packs a vector as little-endian float32s.
func encodeVector(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length: %d", len(blob))
	}
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector, nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
