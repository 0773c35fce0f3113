// Package database defines the storage interfaces of the server. The sqlite
// subpackage provides the implementation.
package database

import (
	"context"

	"github.com/memoka/memoka-server/database/model"
	"github.com/memoka/memoka-server/database/sqlite"
)

type (
	Options struct {
		Filename string
	}

	DatabaseRepo struct {
		MemoRepo
		UserRepo
		AccessTokenRepo
		SearchHistoryRepo
		EmbeddingRepo
	}

	// MemoRepo defines the interface for memo database operations.
	MemoRepo interface {
		// GetMemo retrieves one memo by its ID.
		GetMemo(ctx context.Context, memoID string) (*model.Memo, error)
		// GetMemosByUser retrieves all memos of a user, newest first.
		GetMemosByUser(ctx context.Context, userID string) ([]model.Memo, error)
		// UpsertMemo inserts or replaces a memo.
		UpsertMemo(ctx context.Context, memo *model.Memo) error
		// DeleteMemo removes a memo and its embedding.
		DeleteMemo(ctx context.Context, memoID string) error
	}

	// UserRepo defines the interface for user database operations.
	UserRepo interface {
		// GetUser retrieves a user by username.
		GetUser(ctx context.Context, username string) (*model.User, error)
		// GetUserByID retrieves a user by their ID.
		GetUserByID(ctx context.Context, userID string) (*model.User, error)
		// UpsertUser inserts or replaces a user.
		UpsertUser(ctx context.Context, user *model.User) error
	}

	AccessTokenRepo interface {
		// CreateAccessToken generates and stores a new token.
		CreateAccessToken(ctx context.Context, userID string) (string, error)
		// GetAccessToken returns accesstoken details based upon tokenid.
		GetAccessToken(ctx context.Context, token string) (*model.AccessToken, error)
	}

	// SearchHistoryRepo records executed searches per user.
	SearchHistoryRepo interface {
		// AddSearchHistory appends one executed search.
		AddSearchHistory(ctx context.Context, entry *model.SearchHistoryEntry) error
		// GetSearchHistory returns the most recent searches of a user,
		// newest first.
		GetSearchHistory(ctx context.Context, userID string, limit int) ([]model.SearchHistoryEntry, error)
	}

	// EmbeddingRepo stores memo embedding vectors.
	EmbeddingRepo interface {
		// UpsertEmbedding inserts or replaces the vector for a memo.
		UpsertEmbedding(ctx context.Context, embedding *model.Embedding) error
		// GetEmbeddingsByUser retrieves all stored vectors of a user.
		GetEmbeddingsByUser(ctx context.Context, userID string) ([]model.Embedding, error)
	}
)

// New opens the sqlite database and returns the combined repository.
func New(o *Options) (*DatabaseRepo, error) {
	repo, err := sqlite.New(&sqlite.Options{Filename: o.Filename})
	if err != nil {
		return nil, err
	}
	return &DatabaseRepo{
		MemoRepo:          repo,
		UserRepo:          repo,
		AccessTokenRepo:   repo,
		SearchHistoryRepo: repo,
		EmbeddingRepo:     repo,
	}, nil
}

// StartBackgroundJobs starts the periodic cache sync jobs of the
// implementation, if any.
func (d *DatabaseRepo) StartBackgroundJobs(ctx context.Context) {
	if s, ok := d.AccessTokenRepo.(*sqlite.SqliteRepo); ok {
		s.StartBackgroundJobs(ctx)
	}
}
