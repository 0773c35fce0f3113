package sqlite

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/memoka/memoka-server/database/model"
)

// UpsertEmbedding inserts or replaces the vector for a memo.
func (s *SqliteRepo) UpsertEmbedding(ctx context.Context, embedding *model.Embedding) error {
	tx, err := s.dbWriteHandle.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `REPLACE INTO embeddings (memoid, userid, model, vector, updated) VALUES (?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		embedding.MemoID,
		embedding.UserID,
		embedding.Model,
		encodeVector(embedding.Vector),
		embedding.Updated)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// GetEmbeddingsByUser retrieves all stored vectors of a user.
func (s *SqliteRepo) GetEmbeddingsByUser(ctx context.Context, userID string) ([]model.Embedding, error) {
	const query = `SELECT memoid, userid, model, vector, updated FROM embeddings WHERE userid=?`
	rows, err := s.dbReadHandle.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var embeddings []model.Embedding
	for rows.Next() {
		var e model.Embedding
		var blob []byte
		if err := rows.Scan(&e.MemoID, &e.UserID, &e.Model, &blob, &e.Updated); err != nil {
			return nil, err
		}
		if e.Vector, err = decodeVector(blob); err != nil {
			return nil, err
		}
		embeddings = append(embeddings, e)
	}
	return embeddings, rows.Err()
}

// encodeVector packs a float32 vector into a little-endian blob.
func encodeVector(vector []float32) []byte {
	blob := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[4*i:], math.Float32bits(v))
	}
	return blob
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d not a multiple of 4", len(blob))
	}
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vector, nil
}
