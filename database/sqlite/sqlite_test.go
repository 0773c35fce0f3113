package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memoka/memoka-server/database/model"
)

func testRepo(t *testing.T) *SqliteRepo {
	t.Helper()
	repo, err := New(&Options{Filename: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	return repo
}

func TestNewNoFilename(t *testing.T) {
	_, err := New(&Options{})
	assert.ErrorIs(t, err, model.ErrNoConfiguration)

	_, err = New(nil)
	assert.ErrorIs(t, err, model.ErrNoConfiguration)
}

func TestMemoRoundtrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	memo := &model.Memo{
		ID:       "m1",
		UserID:   "u1",
		Content:  "機械学習について学んだ",
		Tags:     []string{"AI", "学習"},
		Category: "技術",
		Summary:  "機械学習のメモ",
		Keywords: []string{"機械学習"},
		Analyzed: true,
		Created:  now,
		Updated:  now,
	}
	require.NoError(t, repo.UpsertMemo(ctx, memo))

	got, err := repo.GetMemo(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, memo.Content, got.Content)
	assert.Equal(t, memo.Tags, got.Tags)
	assert.Equal(t, memo.Keywords, got.Keywords)
	assert.True(t, got.Analyzed)

	_, err = repo.GetMemo(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemoNilSlices(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertMemo(ctx, &model.Memo{ID: "m1", UserID: "u1", Content: "x"}))

	got, err := repo.GetMemo(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
	assert.Empty(t, got.Keywords)
}

func TestGetMemosByUserOrder(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, repo.UpsertMemo(ctx, &model.Memo{
			ID:      id,
			UserID:  "u1",
			Content: id,
			Updated: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.UpsertMemo(ctx, &model.Memo{ID: "other", UserID: "u2", Content: "x"}))

	memos, err := repo.GetMemosByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, memos, 3)
	assert.Equal(t, "new", memos[0].ID)
	assert.Equal(t, "old", memos[2].ID)
}

func TestDeleteMemo(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertMemo(ctx, &model.Memo{ID: "m1", UserID: "u1", Content: "x"}))
	require.NoError(t, repo.UpsertEmbedding(ctx, &model.Embedding{
		MemoID:  "m1",
		UserID:  "u1",
		Model:   "test",
		Vector:  []float32{1, 2},
		Updated: time.Now().UTC(),
	}))

	require.NoError(t, repo.DeleteMemo(ctx, "m1"))
	_, err := repo.GetMemo(ctx, "m1")
	assert.ErrorIs(t, err, model.ErrNotFound)

	// Cascade removed the embedding.
	embeddings, err := repo.GetEmbeddingsByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, embeddings)

	assert.ErrorIs(t, repo.DeleteMemo(ctx, "m1"), model.ErrNotFound)
}

func TestUserRoundtrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	user := &model.User{
		ID:       "u1",
		Username: "erik",
		Password: "hashed",
		Created:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.UpsertUser(ctx, user))

	got, err := repo.GetUser(ctx, "erik")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	got, err = repo.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "erik", got.Username)

	_, err = repo.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestAccessToken(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	token, err := repo.CreateAccessToken(ctx, "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	got, err := repo.GetAccessToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	// Cold cache path.
	repo.accessTokenCache = map[string]*model.AccessToken{}
	got, err = repo.GetAccessToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	_, err = repo.GetAccessToken(ctx, "bogus")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSearchHistory(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, q := range []string{"first", "second", "third"} {
		require.NoError(t, repo.AddSearchHistory(ctx, &model.SearchHistoryEntry{
			UserID:      "u1",
			Query:       q,
			Mode:        "text",
			ResultCount: i,
			ExecutedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := repo.GetSearchHistory(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "third", entries[0].Query)
	assert.Equal(t, "second", entries[1].Query)
}

func TestEmbeddingRoundtrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertMemo(ctx, &model.Memo{ID: "m1", UserID: "u1", Content: "x"}))

	vector := []float32{0.25, -1.5, 3.75}
	require.NoError(t, repo.UpsertEmbedding(ctx, &model.Embedding{
		MemoID:  "m1",
		UserID:  "u1",
		Model:   "test-model",
		Vector:  vector,
		Updated: time.Now().UTC().Truncate(time.Second),
	}))

	embeddings, err := repo.GetEmbeddingsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, embeddings, 1)
	assert.Equal(t, vector, embeddings[0].Vector)
	assert.Equal(t, "test-model", embeddings[0].Model)
}

func TestVectorCodec(t *testing.T) {
	vector := []float32{1, 0.5, -2}
	decoded, err := decodeVector(encodeVector(vector))
	require.NoError(t, err)
	assert.Equal(t, vector, decoded)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
