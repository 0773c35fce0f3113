package memoapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/memoka/memoka-server/memo/search"
)

type searchResponse struct {
	Query   string              `json:"query"`
	Mode    search.Mode         `json:"mode"`
	Total   int                 `json:"total"`
	Results []searchResultEntry `json:"results"`
}

type searchResultEntry struct {
	ID            string                  `json:"id"`
	Content       string                  `json:"content"`
	Tags          []string                `json:"tags"`
	Category      string                  `json:"category,omitempty"`
	Summary       string                  `json:"summary,omitempty"`
	Keywords      []string                `json:"keywords,omitempty"`
	RankScore     float64                 `json:"rankScore"`
	MatchedFields []string                `json:"matchedFields"`
	SearchMode    search.Mode             `json:"searchMode"`
	Highlights    []search.FieldHighlight `json:"highlights,omitempty"`
}

// GET /api/search
//
// searchHandler runs one of the search modes over the user's memos.
// Query parameters:
//   - q: the query, or comma-separated tags in tag mode
//   - mode: text (default), tag, complex or hybrid
//   - tagmode: any (default), all or exact, tag mode only
//   - max: result cap
//   - fuzzy: set to 0 to disable the fuzzy match tier
//   - highlight: set to 0 to skip highlight spans
func (m *MemoAPI) searchHandler(w http.ResponseWriter, r *http.Request) {
	token := m.getAccessTokenDetails(w, r)
	if token == nil {
		return
	}

	query := r.URL.Query().Get("q")
	mode := search.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = search.ModeText
	}

	opts := search.DefaultTextOptions()
	if max, err := strconv.Atoi(r.URL.Query().Get("max")); err == nil && max > 0 {
		opts.MaxResults = max
	}
	if r.URL.Query().Get("fuzzy") == "0" {
		opts.Fuzzy = false
	}

	var results []search.Result
	var err error
	switch mode {
	case search.ModeText:
		results, err = m.memos.SearchText(r.Context(), token.UserID, query, opts)
	case search.ModeTag:
		tagMode := search.TagSearchMode(r.URL.Query().Get("tagmode"))
		if tagMode == "" {
			tagMode = search.TagSearchAny
		}
		results, err = m.memos.SearchTags(r.Context(), token.UserID, splitTags(query), tagMode, opts)
	case search.ModeComplex:
		results, err = m.memos.SearchComplex(r.Context(), token.UserID, query, opts)
	case search.ModeHybrid:
		results, err = m.memos.SearchHybrid(r.Context(), token.UserID, query, opts)
	default:
		http.Error(w, "unknown search mode", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "Search failed", http.StatusInternalServerError)
		return
	}

	withHighlights := r.URL.Query().Get("highlight") != "0" && mode != search.ModeTag

	response := searchResponse{
		Query:   query,
		Mode:    mode,
		Total:   len(results),
		Results: make([]searchResultEntry, 0, len(results)),
	}
	for _, result := range results {
		entry := searchResultEntry{
			ID:            result.Document.ID,
			Content:       result.Document.Content,
			Tags:          result.Document.Tags,
			Category:      result.Document.Category,
			Summary:       result.Document.Summary,
			Keywords:      result.Document.Keywords,
			RankScore:     result.RankScore,
			MatchedFields: result.MatchedFields,
			SearchMode:    result.Mode,
		}
		if withHighlights {
			entry.Highlights = search.Highlights(result.Document, query, opts.FuzzyOptions())
		}
		response.Results = append(response.Results, entry)
	}
	serveJSON(response, w)
}

// splitTags splits a comma or whitespace separated tag list.
func splitTags(query string) []string {
	var tags []string
	for _, part := range strings.FieldsFunc(query, func(r rune) bool {
		return r == ',' || r == ' ' || r == '　'
	}) {
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// GET /api/suggestions
func (m *MemoAPI) suggestionsHandler(w http.ResponseWriter, r *http.Request) {
	token := m.getAccessTokenDetails(w, r)
	if token == nil {
		return
	}

	opts := search.DefaultSuggestOptions()
	if order := r.URL.Query().Get("order"); order != "" {
		opts.Order = search.SuggestionOrder(order)
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}

	suggestions, err := m.memos.Suggestions(r.Context(), token.UserID, r.URL.Query().Get("q"), opts)
	if err != nil {
		http.Error(w, "Suggestions failed", http.StatusInternalServerError)
		return
	}
	serveJSON(map[string]any{"suggestions": suggestions}, w)
}

type historyEntry struct {
	Query       string    `json:"query"`
	Mode        string    `json:"mode"`
	ResultCount int       `json:"resultCount"`
	ExecutedAt  time.Time `json:"executedAt"`
}

// GET /api/history
func (m *MemoAPI) historyHandler(w http.ResponseWriter, r *http.Request) {
	token := m.getAccessTokenDetails(w, r)
	if token == nil {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := m.memos.History(r.Context(), token.UserID, limit)
	if err != nil {
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	response := make([]historyEntry, 0, len(entries))
	for _, e := range entries {
		response = append(response, historyEntry{
			Query:       e.Query,
			Mode:        e.Mode,
			ResultCount: e.ResultCount,
			ExecutedAt:  e.ExecutedAt,
		})
	}
	serveJSON(response, w)
}

// GET /api/tags
//
// tagStatsHandler returns the number of memos per tag.
func (m *MemoAPI) tagStatsHandler(w http.ResponseWriter, r *http.Request) {
	token := m.getAccessTokenDetails(w, r)
	if token == nil {
		return
	}

	stats, err := m.memos.TagStats(r.Context(), token.UserID)
	if err != nil {
		http.Error(w, "Failed to load tag stats", http.StatusInternalServerError)
		return
	}
	serveJSON(map[string]any{"tags": stats}, w)
}
