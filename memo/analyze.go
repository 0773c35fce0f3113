package memo

import (
	"context"
	"log"
	"time"

	"github.com/memoka/memoka-server/database/model"
)

// analyzeTimeout bounds one background analysis run.
const analyzeTimeout = 60 * time.Second

// scheduleAnalysis queues the memo for analysis once its edits settle.
// Without an analyzer the memo simply stays unanalyzed; search still works
// on the raw content.
func (m *MemoRepo) scheduleAnalysis(memoID string) {
	if m.analyzer == nil || !m.analyzer.Enabled() {
		return
	}
	m.debouncer.Trigger(memoID, func() {
		ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
		defer cancel()
		if err := m.analyzeMemo(ctx, memoID); err != nil {
			log.Printf("memo analysis failed for %s: %s\n", memoID, err)
		}
	})
}

// analyzeMemo runs the analyzer on the memo's current content and stores the
// enrichment fields and the embedding vector.
func (m *MemoRepo) analyzeMemo(ctx context.Context, memoID string) error {
	memo, err := m.db.GetMemo(ctx, memoID)
	if err != nil {
		// Deleted while waiting for the debounce.
		return nil
	}

	analysis, err := m.analyzer.Analyze(ctx, memo.Content)
	if err != nil {
		return err
	}

	memo.Tags = analysis.Tags
	memo.Category = analysis.Category
	memo.Summary = analysis.Summary
	memo.Keywords = analysis.Keywords
	memo.Analyzed = true
	if err := m.db.UpsertMemo(ctx, memo); err != nil {
		return err
	}

	// The embedding is nice to have; hybrid search degrades to lexical
	// results without it.
	vector, err := m.analyzer.Embed(ctx, memo.Content)
	if err != nil {
		log.Printf("embedding failed for %s: %s\n", memoID, err)
		return nil
	}
	return m.db.UpsertEmbedding(ctx, &model.Embedding{
		MemoID:  memo.ID,
		UserID:  memo.UserID,
		Vector:  vector,
		Updated: time.Now().UTC(),
	})
}
