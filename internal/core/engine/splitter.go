package engine

import "strings"

// Default chunking geometry. Sized for embedding models that work best on
// roughly paragraph-sized inputs.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 150
)

// splitter boundary preference, coarsest first. The empty string means a
// hard cut at the size limit.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter divides text into chunks of at most ChunkSize bytes, cutting at
// the latest paragraph, line, or word boundary available and carrying
// Overlap bytes of trailing context into the next chunk.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

// Split chunks text. Whitespace-only input yields no chunks.
func (s *Splitter) Split(text string) []string {
	size := s.chunkSize()
	overlap := s.overlapSize(size)

	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			if tail := text[start:]; strings.TrimSpace(tail) != "" {
				chunks = append(chunks, tail)
			}
			break
		}

		cut := findCut(text, start, end)
		if chunk := text[start:cut]; strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// findCut returns the end of the chunk starting at start, preferring the
// latest separator occurrence within the size limit and falling back to a
// hard cut.
func findCut(text string, start, end int) int {
	window := text[start:end]
	for _, sep := range defaultSeparators {
		if sep == "" {
			break
		}
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return start + idx + len(sep)
		}
	}
	return end
}

func (s *Splitter) chunkSize() int {
	if s == nil || s.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return s.ChunkSize
}

func (s *Splitter) overlapSize(size int) int {
	if s == nil || s.Overlap < 0 {
		return DefaultOverlap
	}
	if s.Overlap >= size {
		return size - 1
	}
	return s.Overlap
}
