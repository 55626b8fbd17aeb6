package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/docsage/docsage/internal/core"
	"github.com/docsage/docsage/internal/core/engine"
	"github.com/docsage/docsage/internal/core/ratelimit"
)

const snippetLimit = 200

// FormatSearchResults renders ranked results as an ASCII table.
func FormatSearchResults(results []core.SearchResult) string {
	if len(results) == 0 {
		return "No results found"
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Score", "Page", "Content"})

	for i, r := range results {
		t.AppendRow(table.Row{
			i + 1,
			fmt.Sprintf("%.4f", r.Score),
			r.Chunk.Page,
			snippet(r.Chunk.Content, snippetLimit),
		})
	}

	return t.Render()
}

// FormatStatus renders a rate limiter snapshot as a boxed panel.
func FormatStatus(st ratelimit.Status) string {
	lines := []string{"Rate Limiter Status", ""}
	lines = append(lines,
		fmt.Sprintf("Requests in window: %d/%d", st.CurrentRequests, st.MaxRequests),
		fmt.Sprintf("Remaining:          %d", st.RemainingRequests),
		fmt.Sprintf("Window:             %s", st.Window),
	)
	if st.ResetIn != nil {
		lines = append(lines, fmt.Sprintf("Next slot frees in: %s", st.ResetIn.Round(time.Second)))
	}
	if st.CanMakeRequest {
		lines = append(lines, "", "Ready: next request will not wait")
	} else {
		lines = append(lines, "", "Saturated: next request will wait")
	}

	return ascii.DrawBox(strings.Join(lines, "\n"), 0)
}

// FormatIngestReport renders an ingestion summary as a boxed panel.
func FormatIngestReport(report *engine.IngestReport) string {
	if report == nil {
		return ""
	}

	lines := []string{"Ingestion Complete", ""}
	lines = append(lines,
		fmt.Sprintf("Document: %s", report.Document.Path),
		fmt.Sprintf("Pages:    %d", report.Document.Pages),
		fmt.Sprintf("Chunks:   %d", report.Chunks),
		fmt.Sprintf("Batches:  %d", report.Batches),
	)
	if report.Waited > 0 {
		lines = append(lines, fmt.Sprintf("Throttled for: %s", report.Waited.Round(time.Millisecond)))
	}

	return ascii.DrawBox(strings.Join(lines, "\n"), 0)
}
