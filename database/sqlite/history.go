package sqlite

import (
	"context"

	"github.com/memoka/memoka-server/database/model"
)

// AddSearchHistory appends one executed search.
func (s *SqliteRepo) AddSearchHistory(ctx context.Context, entry *model.SearchHistoryEntry) error {
	tx, err := s.dbWriteHandle.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `INSERT INTO search_history (userid, query, mode, resultcount, executedat) VALUES (?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		entry.UserID,
		entry.Query,
		entry.Mode,
		entry.ResultCount,
		entry.ExecutedAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// GetSearchHistory returns the most recent searches of a user, newest first.
func (s *SqliteRepo) GetSearchHistory(ctx context.Context, userID string, limit int) ([]model.SearchHistoryEntry, error) {
	const query = `SELECT userid, query, mode, resultcount, executedat
		FROM search_history WHERE userid=? ORDER BY executedat DESC LIMIT ?`

	var entries []model.SearchHistoryEntry
	if err := s.dbReadHandle.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, err
	}
	return entries, nil
}
