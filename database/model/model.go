package model

import (
	"errors"
	"time"
)

var (
	ErrNoConfiguration = errors.New("database filename not set")
	ErrNoDbHandle      = errors.New("db connection not available")
	ErrNotFound        = errors.New("not found")
	ErrInvalidPassword = errors.New("invalid password")
)

// User represents a user in the system.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Username is the username of the user.
	Username string
	// Password is the hashed password of the user.
	Password string
	// Created is the time the user was created.
	Created time.Time
	// LastLogin is the last time the user logged in.
	LastLogin time.Time
}

// AccessToken represents an access token for a user.
type AccessToken struct {
	// UserID is the ID of the user associated with the token.
	UserID string
	// Token is the access token string.
	Token string
	// Created is the time the token was created.
	Created time.Time
	// LastUsed is the last time the token was used.
	LastUsed time.Time
}

// Memo is one note with its analyzer-provided enrichment fields. Tags and
// Keywords are stored as JSON arrays in the database.
type Memo struct {
	ID       string
	UserID   string
	Content  string
	Tags     []string
	Category string
	Summary  string
	Keywords []string
	// Analyzed is true once the enrichment fields have been filled.
	Analyzed bool
	// Pinned memos sort before the rest.
	Pinned  bool
	Created time.Time
	Updated time.Time
}

// SearchHistoryEntry is one executed search of a user.
type SearchHistoryEntry struct {
	UserID string
	// Query is the raw search box input.
	Query string
	// Mode is the search mode the query ran in.
	Mode string
	// ResultCount is the number of results the search returned.
	ResultCount int
	ExecutedAt  time.Time
}

// Embedding is the stored vector for one memo.
type Embedding struct {
	MemoID string
	UserID string
	// Model that produced the vector.
	Model string
	// Vector is stored as a little-endian float32 blob.
	Vector  []float32
	Updated time.Time
}
