// Package memo manages the memo store of the server. It is responsible for
// memo CRUD per user, scheduling analysis of changed memos, and running
// searches over a user's memo set.
package memo

import (
	"context"
	"time"

	"github.com/memoka/memoka-server/ai"
	"github.com/memoka/memoka-server/database"
	"github.com/memoka/memoka-server/database/model"
	"github.com/memoka/memoka-server/debounce"
	"github.com/memoka/memoka-server/idhash"
	"github.com/memoka/memoka-server/memo/search"
)

// DefaultAnalyzeDelay is how long a memo has to stay unchanged before it is
// sent to the analyzer. Rapid edits restart the clock.
const DefaultAnalyzeDelay = 2 * time.Second

// Analyzer produces memo enrichment and embeddings. Satisfied by ai.Client.
type Analyzer interface {
	Enabled() bool
	Analyze(ctx context.Context, content string) (*ai.Analysis, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// MemoRepo is a repository holding the memos of all users.
type MemoRepo struct {
	db        *database.DatabaseRepo
	analyzer  Analyzer
	debouncer *debounce.Debouncer
}

type Options struct {
	Db       *database.DatabaseRepo
	Analyzer Analyzer
	// AnalyzeDelay overrides DefaultAnalyzeDelay when non-zero.
	AnalyzeDelay time.Duration
}

// New creates a new MemoRepo with the provided options.
func New(options *Options) *MemoRepo {
	delay := options.AnalyzeDelay
	if delay == 0 {
		delay = DefaultAnalyzeDelay
	}
	return &MemoRepo{
		db:        options.Db,
		analyzer:  options.Analyzer,
		debouncer: debounce.New(delay),
	}
}

// Stop cancels pending analysis runs.
func (m *MemoRepo) Stop() {
	m.debouncer.Stop()
}

// Create stores a new memo for the user and schedules its analysis.
func (m *MemoRepo) Create(ctx context.Context, userID, content string) (*model.Memo, error) {
	now := time.Now().UTC()
	memo := &model.Memo{
		ID:      idhash.NewRandomID(),
		UserID:  userID,
		Content: content,
		Created: now,
		Updated: now,
	}
	if err := m.db.UpsertMemo(ctx, memo); err != nil {
		return nil, err
	}
	m.scheduleAnalysis(memo.ID)
	return memo, nil
}

// Get returns one memo of the user.
func (m *MemoRepo) Get(ctx context.Context, userID, memoID string) (*model.Memo, error) {
	memo, err := m.db.GetMemo(ctx, memoID)
	if err != nil {
		return nil, err
	}
	// Do not leak other users' memos.
	if memo.UserID != userID {
		return nil, model.ErrNotFound
	}
	return memo, nil
}

// List returns all memos of the user, newest first.
func (m *MemoRepo) List(ctx context.Context, userID string) ([]model.Memo, error) {
	return m.db.GetMemosByUser(ctx, userID)
}

// Update replaces the memo content. The enrichment fields reset until the
// analyzer has caught up with the new content.
func (m *MemoRepo) Update(ctx context.Context, userID, memoID, content string) (*model.Memo, error) {
	memo, err := m.Get(ctx, userID, memoID)
	if err != nil {
		return nil, err
	}

	memo.Content = content
	memo.Analyzed = false
	memo.Updated = time.Now().UTC()
	if err := m.db.UpsertMemo(ctx, memo); err != nil {
		return nil, err
	}
	m.scheduleAnalysis(memo.ID)
	return memo, nil
}

// SetPinned pins or unpins the memo. Pinned memos sort first in List.
func (m *MemoRepo) SetPinned(ctx context.Context, userID, memoID string, pinned bool) (*model.Memo, error) {
	memo, err := m.Get(ctx, userID, memoID)
	if err != nil {
		return nil, err
	}
	memo.Pinned = pinned
	if err := m.db.UpsertMemo(ctx, memo); err != nil {
		return nil, err
	}
	return memo, nil
}

// Delete removes the memo, its embedding and any pending analysis.
func (m *MemoRepo) Delete(ctx context.Context, userID, memoID string) error {
	if _, err := m.Get(ctx, userID, memoID); err != nil {
		return err
	}
	m.debouncer.Cancel(memoID)
	return m.db.DeleteMemo(ctx, memoID)
}

// TagStats returns the number of memos per tag for a user.
func (m *MemoRepo) TagStats(ctx context.Context, userID string) (map[string]int, error) {
	memos, err := m.db.GetMemosByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	tagCount := make(map[string]int)
	for _, memo := range memos {
		for _, tag := range memo.Tags {
			if tag != "" {
				tagCount[tag]++
			}
		}
	}
	return tagCount, nil
}

// documents projects a user's memos into their searchable form.
func (m *MemoRepo) documents(ctx context.Context, userID string) ([]search.Document, []model.Memo, error) {
	memos, err := m.db.GetMemosByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	docs := make([]search.Document, 0, len(memos))
	for _, memo := range memos {
		docs = append(docs, search.Document{
			ID:       memo.ID,
			Content:  memo.Content,
			Tags:     memo.Tags,
			Category: memo.Category,
			Summary:  memo.Summary,
			Keywords: memo.Keywords,
		})
	}
	return docs, memos, nil
}
