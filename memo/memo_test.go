package memo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memoka/memoka-server/ai"
	"github.com/memoka/memoka-server/database"
	"github.com/memoka/memoka-server/database/model"
	"github.com/memoka/memoka-server/memo/search"
)

type fakeAnalyzer struct {
	analysis ai.Analysis
	vectors  map[string][]float32
	err      error
}

func (f *fakeAnalyzer) Enabled() bool { return true }

func (f *fakeAnalyzer) Analyze(ctx context.Context, content string) (*ai.Analysis, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.analysis, nil
}

func (f *fakeAnalyzer) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 1}, nil
}

func testMemoRepo(t *testing.T, analyzer Analyzer) *MemoRepo {
	t.Helper()
	db, err := database.New(&database.Options{
		Filename: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)

	m := New(&Options{
		Db:           db,
		Analyzer:     analyzer,
		AnalyzeDelay: 10 * time.Millisecond,
	})
	t.Cleanup(m.Stop)
	return m
}

func TestCreateGetList(t *testing.T) {
	m := testMemoRepo(t, nil)
	ctx := context.Background()

	memo, err := m.Create(ctx, "u1", "first memo")
	require.NoError(t, err)
	assert.NotEmpty(t, memo.ID)
	assert.False(t, memo.Analyzed)

	got, err := m.Get(ctx, "u1", memo.ID)
	require.NoError(t, err)
	assert.Equal(t, "first memo", got.Content)

	// Another user cannot see it.
	_, err = m.Get(ctx, "u2", memo.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	memos, err := m.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, memos, 1)
}

func TestUpdateResetsAnalysis(t *testing.T) {
	m := testMemoRepo(t, nil)
	ctx := context.Background()

	memo, err := m.Create(ctx, "u1", "before")
	require.NoError(t, err)

	// Simulate a completed analysis.
	memo.Analyzed = true
	memo.Tags = []string{"old"}
	require.NoError(t, m.db.UpsertMemo(ctx, memo))

	updated, err := m.Update(ctx, "u1", memo.ID, "after")
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Content)
	assert.False(t, updated.Analyzed)

	_, err = m.Update(ctx, "u2", memo.ID, "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDelete(t *testing.T) {
	m := testMemoRepo(t, nil)
	ctx := context.Background()

	memo, err := m.Create(ctx, "u1", "to delete")
	require.NoError(t, err)

	assert.ErrorIs(t, m.Delete(ctx, "u2", memo.ID), model.ErrNotFound)
	require.NoError(t, m.Delete(ctx, "u1", memo.ID))
	_, err = m.Get(ctx, "u1", memo.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSetPinnedOrdersList(t *testing.T) {
	m := testMemoRepo(t, nil)
	ctx := context.Background()

	first, err := m.Create(ctx, "u1", "first")
	require.NoError(t, err)
	second, err := m.Create(ctx, "u1", "second")
	require.NoError(t, err)

	pinned, err := m.SetPinned(ctx, "u1", first.ID, true)
	require.NoError(t, err)
	assert.True(t, pinned.Pinned)

	memos, err := m.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, memos, 2)
	assert.Equal(t, first.ID, memos[0].ID)
	assert.Equal(t, second.ID, memos[1].ID)

	_, err = m.SetPinned(ctx, "u2", first.ID, true)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestAnalysisEnriches(t *testing.T) {
	analyzer := &fakeAnalyzer{
		analysis: ai.Analysis{
			Tags:     []string{"AI"},
			Category: "技術",
			Summary:  "機械学習のメモ",
			Keywords: []string{"機械学習"},
		},
	}
	m := testMemoRepo(t, analyzer)
	ctx := context.Background()

	memo, err := m.Create(ctx, "u1", "機械学習について学んだ")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := m.Get(ctx, "u1", memo.ID)
		return err == nil && got.Analyzed
	}, 2*time.Second, 10*time.Millisecond)

	got, err := m.Get(ctx, "u1", memo.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"AI"}, got.Tags)
	assert.Equal(t, "技術", got.Category)

	embeddings, err := m.db.GetEmbeddingsByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, embeddings, 1)
}

func TestAnalysisFailureLeavesMemoUsable(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("model offline")}
	m := testMemoRepo(t, analyzer)
	ctx := context.Background()

	memo, err := m.Create(ctx, "u1", "機械学習について学んだ")
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	got, err := m.Get(ctx, "u1", memo.ID)
	require.NoError(t, err)
	assert.False(t, got.Analyzed)

	// Search over raw content still works.
	results, err := m.SearchText(ctx, "u1", "機械学習", search.DefaultTextOptions())
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchRecordsHistory(t *testing.T) {
	m := testMemoRepo(t, nil)
	ctx := context.Background()

	_, err := m.Create(ctx, "u1", "機械学習について学んだ")
	require.NoError(t, err)

	_, err = m.SearchText(ctx, "u1", "機械学習", search.DefaultTextOptions())
	require.NoError(t, err)

	entries, err := m.History(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "機械学習", entries[0].Query)
	assert.Equal(t, string(search.ModeText), entries[0].Mode)
	assert.Equal(t, 1, entries[0].ResultCount)
}

func TestSearchComplexAndTags(t *testing.T) {
	m := testMemoRepo(t, nil)
	ctx := context.Background()

	memo, err := m.Create(ctx, "u1", "機械学習について学んだ")
	require.NoError(t, err)
	memo.Tags = []string{"AI"}
	memo.Category = "技術"
	require.NoError(t, m.db.UpsertMemo(ctx, memo))

	results, err := m.SearchComplex(ctx, "u1", "tag:AI 機械学習", search.DefaultTextOptions())
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = m.SearchTags(ctx, "u1", []string{"AI"}, search.TagSearchAny, search.DefaultTextOptions())
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchHybrid(t *testing.T) {
	analyzer := &fakeAnalyzer{
		analysis: ai.Analysis{Tags: []string{"AI"}},
		vectors: map[string][]float32{
			"機械学習について学んだ": {1, 0},
			"似た意味の質問":      {1, 0},
		},
	}
	m := testMemoRepo(t, analyzer)
	ctx := context.Background()

	memo, err := m.Create(ctx, "u1", "機械学習について学んだ")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		embeddings, err := m.db.GetEmbeddingsByUser(ctx, "u1")
		return err == nil && len(embeddings) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The query shares no words with the memo; only the embedding connects
	// them.
	results, err := m.SearchHybrid(ctx, "u1", "似た意味の質問", search.DefaultTextOptions())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, memo.ID, results[0].Document.ID)
	assert.Equal(t, search.ModeHybrid, results[0].Mode)
	assert.InDelta(t, 0.7, results[0].RankScore, 1e-6)
}

func TestSuggestionsUseHistory(t *testing.T) {
	m := testMemoRepo(t, nil)
	ctx := context.Background()

	_, err := m.Create(ctx, "u1", "機械学習について学んだ")
	require.NoError(t, err)
	_, err = m.SearchText(ctx, "u1", "機械学習", search.DefaultTextOptions())
	require.NoError(t, err)

	suggestions, err := m.Suggestions(ctx, "u1", "", search.DefaultSuggestOptions())
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, search.SuggestionHistory, suggestions[0].Type)
	assert.Equal(t, "機械学習", suggestions[0].Text)
}

func TestTagStats(t *testing.T) {
	m := testMemoRepo(t, nil)
	ctx := context.Background()

	for _, tags := range [][]string{{"AI", "メモ"}, {"AI"}} {
		memo, err := m.Create(ctx, "u1", "content")
		require.NoError(t, err)
		memo.Tags = tags
		require.NoError(t, m.db.UpsertMemo(ctx, memo))
	}

	stats, err := m.TagStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"AI": 2, "メモ": 1}, stats)
}
