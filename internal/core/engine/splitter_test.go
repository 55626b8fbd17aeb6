package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitEmptyInput(t *testing.T) {
	s := &Splitter{ChunkSize: 100, Overlap: 10}
	require.Nil(t, s.Split(""))
	require.Nil(t, s.Split("   \n\n  "))
}

func TestSplitShortInputIsSingleChunk(t *testing.T) {
	s := &Splitter{ChunkSize: 100, Overlap: 10}
	chunks := s.Split("a short paragraph")
	require.Equal(t, []string{"a short paragraph"}, chunks)
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	s := &Splitter{ChunkSize: 40, Overlap: 0}
	text := "first paragraph here.\n\nsecond paragraph follows after it."

	chunks := s.Split(text)
	require.GreaterOrEqual(t, len(chunks), 2)
	require.Equal(t, "first paragraph here.\n\n", chunks[0])
}

func TestSplitRespectsChunkSize(t *testing.T) {
	s := &Splitter{ChunkSize: 50, Overlap: 10}
	text := strings.Repeat("some words in a sentence that keeps going. ", 20)

	chunks := s.Split(text)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		require.LessOrEqual(t, len(chunk), 50)
	}
}

func TestSplitCarriesOverlap(t *testing.T) {
	s := &Splitter{ChunkSize: 50, Overlap: 10}
	text := strings.Repeat("alpha beta gamma delta epsilon zeta eta theta ", 10)

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	// Each chunk after the first starts with the tail of its predecessor.
	first, second := chunks[0], chunks[1]
	tail := first[len(first)-10:]
	require.True(t, strings.HasPrefix(second, tail))
}

func TestSplitHardCutsUnbrokenText(t *testing.T) {
	s := &Splitter{ChunkSize: 20, Overlap: 0}
	text := strings.Repeat("x", 55)

	chunks := s.Split(text)
	require.Equal(t, []string{
		strings.Repeat("x", 20),
		strings.Repeat("x", 20),
		strings.Repeat("x", 15),
	}, chunks)
}

func TestSplitDefaultsApplyWhenUnset(t *testing.T) {
	s := &Splitter{}
	text := strings.Repeat("word ", 500)

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		require.LessOrEqual(t, len(chunk), DefaultChunkSize)
	}
}
