package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/memoka/memoka-server/database/model"
)

const memoColumns = `id,
	userid,
	content,
	tags,
	category,
	summary,
	keywords,
	analyzed,
	pinned,
	created,
	updated`

// GetMemo retrieves one memo by its ID.
func (s *SqliteRepo) GetMemo(ctx context.Context, memoID string) (*model.Memo, error) {
	const query = `SELECT ` + memoColumns + ` FROM memos WHERE id=? LIMIT 1`
	return sqlScanMemo(s.dbReadHandle.QueryRowContext(ctx, query, memoID))
}

// GetMemosByUser retrieves all memos of a user, newest first.
func (s *SqliteRepo) GetMemosByUser(ctx context.Context, userID string) ([]model.Memo, error) {
	const query = `SELECT ` + memoColumns + ` FROM memos WHERE userid=? ORDER BY pinned DESC, updated DESC`
	rows, err := s.dbReadHandle.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memos []model.Memo
	for rows.Next() {
		memo, err := sqlScanMemoRow(rows)
		if err != nil {
			return nil, err
		}
		memos = append(memos, *memo)
	}
	return memos, rows.Err()
}

// UpsertMemo inserts or replaces a memo.
func (s *SqliteRepo) UpsertMemo(ctx context.Context, memo *model.Memo) error {
	tags, err := json.Marshal(stringList(memo.Tags))
	if err != nil {
		return err
	}
	keywords, err := json.Marshal(stringList(memo.Keywords))
	if err != nil {
		return err
	}

	tx, err := s.dbWriteHandle.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `REPLACE INTO memos (` + memoColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		memo.ID,
		memo.UserID,
		memo.Content,
		string(tags),
		memo.Category,
		memo.Summary,
		string(keywords),
		memo.Analyzed,
		memo.Pinned,
		memo.Created,
		memo.Updated)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteMemo removes a memo. The embedding goes with it via the foreign key.
func (s *SqliteRepo) DeleteMemo(ctx context.Context, memoID string) error {
	tx, err := s.dbWriteHandle.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM memos WHERE id=?`, memoID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func sqlScanMemo(row *sql.Row) (*model.Memo, error) {
	memo, err := sqlScanMemoRow(row)
	if err != nil {
		return nil, model.ErrNotFound
	}
	return memo, nil
}

func sqlScanMemoRow(row rowScanner) (*model.Memo, error) {
	var memo model.Memo
	var tags, keywords string
	if err := row.Scan(
		&memo.ID,
		&memo.UserID,
		&memo.Content,
		&tags,
		&memo.Category,
		&memo.Summary,
		&keywords,
		&memo.Analyzed,
		&memo.Pinned,
		&memo.Created,
		&memo.Updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &memo.Tags); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(keywords), &memo.Keywords); err != nil {
		return nil, err
	}
	return &memo, nil
}

// stringList makes nil slices marshal as [] instead of null.
func stringList(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
