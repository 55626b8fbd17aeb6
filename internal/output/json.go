package output

import (
	"encoding/json"

	"github.com/docsage/docsage/internal/core"
	"github.com/docsage/docsage/internal/core/engine"
	"github.com/docsage/docsage/internal/core/ratelimit"
)

// statusView is the JSON shape of a limiter snapshot. Durations are
// reported in seconds.
type statusView struct {
	MaxRequests       int      `json:"max_requests"`
	TimeWindowSeconds float64  `json:"time_window_seconds"`
	CurrentRequests   int      `json:"current_requests"`
	RemainingRequests int      `json:"remaining_requests"`
	ResetSeconds      *float64 `json:"reset_seconds,omitempty"`
	CanMakeRequest    bool     `json:"can_make_request"`
}

type searchResultView struct {
	Rank    int     `json:"rank"`
	Score   float64 `json:"score"`
	Page    int     `json:"page"`
	Content string  `json:"content"`
}

type ingestReportView struct {
	Path           string  `json:"path"`
	Pages          int     `json:"pages"`
	Chunks         int     `json:"chunks"`
	Batches        int     `json:"batches"`
	WaitedSeconds  float64 `json:"waited_seconds"`
	DocumentID     string  `json:"document_id"`
	IngestedAtUnix int64   `json:"ingested_at"`
}

// StatusJSON renders a limiter snapshot as indented JSON.
func StatusJSON(st ratelimit.Status) (string, error) {
	view := statusView{
		MaxRequests:       st.MaxRequests,
		TimeWindowSeconds: st.Window.Seconds(),
		CurrentRequests:   st.CurrentRequests,
		RemainingRequests: st.RemainingRequests,
		CanMakeRequest:    st.CanMakeRequest,
	}
	if st.ResetIn != nil {
		seconds := st.ResetIn.Seconds()
		view.ResetSeconds = &seconds
	}
	return marshalIndent(view)
}

// SearchResultsJSON renders ranked results as indented JSON.
func SearchResultsJSON(results []core.SearchResult) (string, error) {
	views := make([]searchResultView, len(results))
	for i, r := range results {
		views[i] = searchResultView{
			Rank:    i + 1,
			Score:   r.Score,
			Page:    r.Chunk.Page,
			Content: r.Chunk.Content,
		}
	}
	return marshalIndent(views)
}

// IngestReportJSON renders an ingestion summary as indented JSON.
func IngestReportJSON(report *engine.IngestReport) (string, error) {
	if report == nil {
		return "null", nil
	}
	return marshalIndent(ingestReportView{
		Path:           report.Document.Path,
		Pages:          report.Document.Pages,
		Chunks:         report.Chunks,
		Batches:        report.Batches,
		WaitedSeconds:  report.Waited.Seconds(),
		DocumentID:     report.Document.ID,
		IngestedAtUnix: report.Document.IngestedAt.Unix(),
	})
}

func marshalIndent(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
