package memo

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/memoka/memoka-server/database/model"
	"github.com/memoka/memoka-server/memo/search"
)

// historyFetchLimit is how much search history feeds the suggestion sources.
const historyFetchLimit = 20

// minSemanticSimilarity gates embedding hits; anything below is noise.
const minSemanticSimilarity = 0.3

// SearchText runs the ranked text search over the user's memos and records
// the query in the search history.
func (m *MemoRepo) SearchText(ctx context.Context, userID, query string, opts search.TextOptions) ([]search.Result, error) {
	docs, _, err := m.documents(ctx, userID)
	if err != nil {
		return nil, err
	}
	results := search.TextSearch(docs, query, opts)
	m.recordHistory(ctx, userID, query, search.ModeText, len(results))
	return results, nil
}

// SearchTags runs the tag search over the user's memos.
func (m *MemoRepo) SearchTags(ctx context.Context, userID string, tags []string, mode search.TagSearchMode, opts search.TextOptions) ([]search.Result, error) {
	docs, _, err := m.documents(ctx, userID)
	if err != nil {
		return nil, err
	}
	results := search.TagSearch(docs, tags, mode, opts)
	m.recordHistory(ctx, userID, strings.Join(tags, " "), search.ModeTag, len(results))
	return results, nil
}

// SearchComplex evaluates a query with field clauses and boolean keywords.
func (m *MemoRepo) SearchComplex(ctx context.Context, userID, query string, opts search.TextOptions) ([]search.Result, error) {
	docs, _, err := m.documents(ctx, userID)
	if err != nil {
		return nil, err
	}
	results := search.ComplexSearch(docs, query, opts)
	m.recordHistory(ctx, userID, query, search.ModeComplex, len(results))
	return results, nil
}

// SearchHybrid merges embedding similarity with the lexical text search.
// Without an analyzer, or when embedding the query fails, it degrades to
// lexical results only.
func (m *MemoRepo) SearchHybrid(ctx context.Context, userID, query string, opts search.TextOptions) ([]search.Result, error) {
	docs, _, err := m.documents(ctx, userID)
	if err != nil {
		return nil, err
	}
	lexical := search.TextSearch(docs, query, opts)
	semantic := m.semanticHits(ctx, userID, query, docs)

	results := search.MergeHybrid(semantic, lexical, opts.MaxResults)
	m.recordHistory(ctx, userID, query, search.ModeHybrid, len(results))
	return results, nil
}

// semanticHits embeds the query and scores it against the user's stored
// memo vectors.
func (m *MemoRepo) semanticHits(ctx context.Context, userID, query string, docs []search.Document) []search.SemanticHit {
	if m.analyzer == nil || !m.analyzer.Enabled() || strings.TrimSpace(query) == "" {
		return nil
	}

	queryVector, err := m.analyzer.Embed(ctx, query)
	if err != nil {
		log.Printf("query embedding failed: %s\n", err)
		return nil
	}
	embeddings, err := m.db.GetEmbeddingsByUser(ctx, userID)
	if err != nil {
		log.Printf("loading embeddings failed: %s\n", err)
		return nil
	}

	docByID := make(map[string]search.Document, len(docs))
	for _, doc := range docs {
		docByID[doc.ID] = doc
	}

	var hits []search.SemanticHit
	for _, e := range embeddings {
		doc, ok := docByID[e.MemoID]
		if !ok {
			continue
		}
		if sim := search.Cosine(queryVector, e.Vector); sim >= minSemanticSimilarity {
			hits = append(hits, search.SemanticHit{Document: doc, Similarity: sim})
		}
	}
	return hits
}

// Suggestions builds autocomplete candidates from the user's search history
// and memo set.
func (m *MemoRepo) Suggestions(ctx context.Context, userID, query string, opts search.SuggestOptions) ([]search.Suggestion, error) {
	docs, _, err := m.documents(ctx, userID)
	if err != nil {
		return nil, err
	}

	var history []search.HistoryEntry
	entries, err := m.db.GetSearchHistory(ctx, userID, historyFetchLimit)
	if err != nil {
		// Suggestions still work from the memo set alone.
		log.Printf("loading search history failed: %s\n", err)
	}
	for _, e := range entries {
		history = append(history, search.HistoryEntry{Query: e.Query, ExecutedAt: e.ExecutedAt})
	}

	return search.Suggest(query, history, docs, opts), nil
}

// History returns the user's most recent searches, newest first.
func (m *MemoRepo) History(ctx context.Context, userID string, limit int) ([]model.SearchHistoryEntry, error) {
	if limit <= 0 {
		limit = historyFetchLimit
	}
	return m.db.GetSearchHistory(ctx, userID, limit)
}

// recordHistory appends an executed search. Failures are logged, never
// surfaced: history is an aid, not part of the search result.
func (m *MemoRepo) recordHistory(ctx context.Context, userID, query string, mode search.Mode, resultCount int) {
	if strings.TrimSpace(query) == "" {
		return
	}
	err := m.db.AddSearchHistory(ctx, &model.SearchHistoryEntry{
		UserID:      userID,
		Query:       query,
		Mode:        string(mode),
		ResultCount: resultCount,
		ExecutedAt:  time.Now().UTC(),
	})
	if err != nil {
		log.Printf("recording search history failed: %s\n", err)
	}
}
