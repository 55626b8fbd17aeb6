package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/docsage/docsage/internal/core"
)

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/ratelimit", s.handleRateLimit)
		r.Get("/search", s.handleSearch)
	})
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: s.version})
}

type rateLimitResponse struct {
	MaxRequests       int      `json:"max_requests"`
	TimeWindowSeconds float64  `json:"time_window_seconds"`
	CurrentRequests   int      `json:"current_requests"`
	RemainingRequests int      `json:"remaining_requests"`
	ResetSeconds      *float64 `json:"reset_seconds,omitempty"`
	CanMakeRequest    bool     `json:"can_make_request"`
}

func (s *Server) handleRateLimit(w http.ResponseWriter, r *http.Request) {
	if s.limiter == nil {
		writeError(w, http.StatusServiceUnavailable, "rate limiter is not configured")
		return
	}

	st := s.limiter.Status()
	resp := rateLimitResponse{
		MaxRequests:       st.MaxRequests,
		TimeWindowSeconds: st.Window.Seconds(),
		CurrentRequests:   st.CurrentRequests,
		RemainingRequests: st.RemainingRequests,
		CanMakeRequest:    st.CanMakeRequest,
	}
	if st.ResetIn != nil {
		seconds := st.ResetIn.Seconds()
		resp.ResetSeconds = &seconds
	}
	writeJSON(w, http.StatusOK, resp)
}

type searchResponse struct {
	Query   string             `json:"query"`
	Results []searchResultBody `json:"results"`
}

type searchResultBody struct {
	Rank    int     `json:"rank"`
	Score   float64 `json:"score"`
	Page    int     `json:"page"`
	Content string  `json:"content"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		writeError(w, http.StatusServiceUnavailable, "search is not configured")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	k := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("k")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "query parameter k must be a positive integer")
			return
		}
		k = parsed
	}

	results, err := s.searcher.Search(r.Context(), query, k)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Query: query, Results: toSearchBodies(results)})
}

func toSearchBodies(results []core.SearchResult) []searchResultBody {
	bodies := make([]searchResultBody, len(results))
	for i, result := range results {
		bodies[i] = searchResultBody{
			Rank:    i + 1,
			Score:   result.Score,
			Page:    result.Chunk.Page,
			Content: result.Chunk.Content,
		}
	}
	return bodies
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
