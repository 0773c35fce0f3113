package sqlite

import (
	"context"
	"crypto/rand"
	"log"
	"time"

	"github.com/memoka/memoka-server/database/model"
)

// CreateAccessToken creates new token.
func (s *SqliteRepo) CreateAccessToken(ctx context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := rand.Text()
	t := &model.AccessToken{
		Token:    token,
		UserID:   userID,
		Created:  time.Now().UTC(),
		LastUsed: time.Now().UTC(),
	}
	// Store accesstoken in database
	if err := s.storeToken(ctx, *t); err != nil {
		return "", err
	}

	// Store accesstoken in memory
	s.accessTokenCache[token] = t

	return token, nil
}

// GetAccessToken returns accesstoken details based upon tokenid.
func (s *SqliteRepo) GetAccessToken(ctx context.Context, token string) (*model.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Try our in-memory store first
	if at, ok := s.accessTokenCache[token]; ok {
		// Update token timestamp so we can keep track of in-use tokens
		at.LastUsed = time.Now().UTC()
		return at, nil
	}

	// try database
	var t model.AccessToken
	const query = `SELECT userid, token, created, lastused FROM accesstokens WHERE token=? LIMIT 1`
	if err := s.dbReadHandle.GetContext(ctx, &t, query, token); err == nil {
		t.LastUsed = time.Now().UTC()
		// Store accesstoken in memory
		s.accessTokenCache[token] = &t
		return &t, nil
	}

	return nil, model.ErrNotFound
}

// accessTokenBackgroundJob writes changed accesstokens to database so last
// use dates survive a restart.
func (s *SqliteRepo) accessTokenBackgroundJob(ctx context.Context, interval time.Duration) {
	s.mu.Lock()
	s.accessTokenCacheSyncTime = time.Now().UTC()
	s.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.writeChangedAccessTokensToDB(ctx); err != nil {
				log.Printf("Error writing access tokens to db: %s\n", err)
			}
		}
	}
}

// writeChangedAccessTokensToDB writes updated access tokens to db to persist last use date.
func (s *SqliteRepo) writeChangedAccessTokensToDB(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, value := range s.accessTokenCache {
		if value.LastUsed.After(s.accessTokenCacheSyncTime) {
			if err := s.storeToken(ctx, *value); err != nil {
				return err
			}
		}
	}
	s.accessTokenCacheSyncTime = time.Now().UTC()
	return nil
}

// storeToken stores an access token in the database. Caller holds the mutex.
func (s *SqliteRepo) storeToken(ctx context.Context, t model.AccessToken) error {
	if s.dbWriteHandle == nil {
		return model.ErrNoDbHandle
	}
	tx, err := s.dbWriteHandle.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `REPLACE INTO accesstokens (userid, token, created, lastused) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, t.UserID, t.Token, t.Created, t.LastUsed); err != nil {
		return err
	}
	return tx.Commit()
}
