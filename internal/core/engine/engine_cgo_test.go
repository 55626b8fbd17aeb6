//go:build cgo

package engine

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage/internal/config"
	"github.com/docsage/docsage/internal/core"
	"github.com/docsage/docsage/internal/core/ratelimit"
	"github.com/docsage/docsage/internal/core/store"
	"github.com/docsage/docsage/internal/provider/driver"
)

// fakeDriver derives deterministic embeddings from text content so retrieval
// order is predictable without a real provider.
type fakeDriver struct {
	mu          sync.Mutex
	embedCalls  [][]string
	completions []*driver.Request
	reply       string
	embedErr    error
}

func (f *fakeDriver) Complete(_ context.Context, req *driver.Request) (*driver.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completions = append(f.completions, req)
	return &driver.Response{Content: f.reply, FinishReason: "stop"}, nil
}

func (f *fakeDriver) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	f.embedCalls = append(f.embedCalls, inputs)
	vectors := make([][]float32, len(inputs))
	for i, input := range inputs {
		vectors[i] = embedText(input)
	}
	return vectors, nil
}

func (f *fakeDriver) Name() string { return "fake" }

func (f *fakeDriver) Capabilities() driver.Capabilities {
	return driver.Capabilities{SupportsEmbeddings: true}
}

// embedText maps text onto a 3-dimensional vector keyed by marker words, so
// tests can steer similarity by wording alone.
func embedText(text string) []float32 {
	switch {
	case strings.Contains(text, "apple"):
		return []float32{1, 0, 0}
	case strings.Contains(text, "banana"):
		return []float32{0, 1, 0}
	default:
		return []float32{0, 0, 1}
	}
}

func newEngineStore(t *testing.T) *store.Store {
	t.Helper()

	ctx := context.Background()
	db, err := store.Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestIngestPagesBatchesAndPersists(t *testing.T) {
	ctx := context.Background()
	db := newEngineStore(t)
	fake := &fakeDriver{reply: "ok"}
	limiter := ratelimit.New(100, time.Minute)

	pages := []Page{
		{Number: 1, Text: "apple orchard notes"},
		{Number: 2, Text: "banana plantation notes"},
		{Number: 3, Text: "general farming notes"},
		{Number: 4, Text: "more apple varieties"},
		{Number: 5, Text: "more banana varieties"},
		{Number: 6, Text: "irrigation schedules"},
		{Number: 7, Text: "harvest logistics"},
	}

	var progress [][2]int
	in := &Ingestor{
		Store:     db,
		Driver:    fake,
		Limiter:   limiter,
		Splitter:  &Splitter{ChunkSize: 1000, Overlap: 0},
		BatchSize: 5,
		Progress: func(batch, totalBatches int) {
			progress = append(progress, [2]int{batch, totalBatches})
		},
	}

	report, err := in.IngestPages(ctx, "farm.pdf", pages)
	require.NoError(t, err)
	require.Equal(t, 7, report.Chunks)
	require.Equal(t, 2, report.Batches)
	require.Equal(t, [][2]int{{1, 2}, {2, 2}}, progress)
	require.Equal(t, 7, report.Document.ChunkCount)

	// One limiter admission per embedding batch.
	require.Equal(t, 2, limiter.Status().CurrentRequests)
	require.Len(t, fake.embedCalls, 2)
	require.Len(t, fake.embedCalls[0], 5)
	require.Len(t, fake.embedCalls[1], 2)

	doc, err := db.GetDocument(ctx, "farm.pdf")
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Equal(t, 7, doc.Pages)
	require.Equal(t, 7, doc.ChunkCount)
}

func TestIngestPagesReplacesPreviousIngestion(t *testing.T) {
	ctx := context.Background()
	db := newEngineStore(t)
	fake := &fakeDriver{}

	in := &Ingestor{Store: db, Driver: fake, Splitter: &Splitter{ChunkSize: 1000}}

	_, err := in.IngestPages(ctx, "doc.pdf", []Page{{Number: 1, Text: "apple one"}, {Number: 2, Text: "apple two"}})
	require.NoError(t, err)

	report, err := in.IngestPages(ctx, "doc.pdf", []Page{{Number: 1, Text: "banana only"}})
	require.NoError(t, err)
	require.Equal(t, 1, report.Chunks)

	doc, err := db.GetDocument(ctx, "doc.pdf")
	require.NoError(t, err)
	require.Equal(t, 1, doc.ChunkCount)
	require.Equal(t, report.Document.ID, doc.ID)
}

func TestIngestPagesRejectsEmptyDocument(t *testing.T) {
	db := newEngineStore(t)
	in := &Ingestor{Store: db, Driver: &fakeDriver{}}

	_, err := in.IngestPages(context.Background(), "empty.pdf", []Page{{Number: 1, Text: "   "}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no chunks")
}

func TestSearchRanksByCosineSimilarity(t *testing.T) {
	ctx := context.Background()
	db := newEngineStore(t)
	fake := &fakeDriver{}

	in := &Ingestor{Store: db, Driver: fake, Splitter: &Splitter{ChunkSize: 1000}}
	_, err := in.IngestPages(ctx, "fruit.pdf", []Page{
		{Number: 1, Text: "apple tart recipe"},
		{Number: 2, Text: "banana bread recipe"},
		{Number: 3, Text: "plain sourdough recipe"},
	})
	require.NoError(t, err)

	limiter := ratelimit.New(100, time.Minute)
	s := &Searcher{Store: db, Driver: fake, Limiter: limiter, TopK: 5}

	results, err := s.Search(ctx, "tell me about the apple dish", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Contains(t, results[0].Chunk.Content, "apple")
	require.Equal(t, 1, limiter.Status().CurrentRequests)
}

func TestSearchRejectsBlankQuery(t *testing.T) {
	db := newEngineStore(t)
	s := &Searcher{Store: db, Driver: &fakeDriver{}}

	_, err := s.Search(context.Background(), "   ", 3)
	require.Error(t, err)
}

func TestChatAskGroundsPromptAndSavesHistory(t *testing.T) {
	ctx := context.Background()
	db := newEngineStore(t)
	fake := &fakeDriver{reply: "it is an apple tart"}

	in := &Ingestor{Store: db, Driver: fake, Splitter: &Splitter{ChunkSize: 1000}}
	_, err := in.IngestPages(ctx, "fruit.pdf", []Page{
		{Number: 1, Text: "apple tart recipe with cinnamon"},
		{Number: 2, Text: "banana bread recipe"},
	})
	require.NoError(t, err)

	limiter := ratelimit.New(100, time.Minute)
	session := &ChatSession{
		Store:          db,
		Driver:         fake,
		Limiter:        limiter,
		Model:          "gpt-3.5-turbo",
		TopK:           1,
		ConversationID: "conv-1",
	}

	answer, err := session.Ask(ctx, "what apple dessert is described?")
	require.NoError(t, err)
	require.Equal(t, "it is an apple tart", answer)

	// The rendered prompt carries the retrieved chunk and the question.
	require.Len(t, fake.completions, 1)
	prompt := fake.completions[0].Messages[0].Content
	require.Contains(t, prompt, "apple tart recipe with cinnamon")
	require.Contains(t, prompt, "what apple dessert is described?")
	require.NotContains(t, prompt, "banana bread")
	require.NotNil(t, fake.completions[0].Temperature)
	require.InDelta(t, DefaultChatTemperature, *fake.completions[0].Temperature, 1e-9)

	// Embed plus complete, each through the limiter.
	require.Equal(t, 2, limiter.Status().CurrentRequests)

	turns, err := session.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	require.Equal(t, core.RoleUser, turns[0].Role)
	require.Equal(t, "what apple dessert is described?", turns[0].Content)
	require.Equal(t, core.RoleAssistant, turns[1].Role)
	require.Equal(t, "it is an apple tart", turns[1].Content)
}

func TestChatAskRejectsBlankQuestion(t *testing.T) {
	db := newEngineStore(t)
	session := &ChatSession{Store: db, Driver: &fakeDriver{reply: "x"}, ConversationID: "c"}

	_, err := session.Ask(context.Background(), "  ")
	require.Error(t, err)
}
