package sqlite

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/memoka/memoka-server/database/model"
)

type SqliteRepo struct {
	// Read db handle
	dbReadHandle *sqlx.DB
	// Handle specfically for writes
	dbWriteHandle *sqlx.DB
	// in-memory access token store, entries written to the database periodically.
	accessTokenCache map[string]*model.AccessToken
	// last time the access token cache was synced to the database
	accessTokenCacheSyncTime time.Time
	// mutex to protect access to in-memory stores
	mu sync.Mutex
}

// Options holds configuration options.
type Options struct {
	Filename string
}

// New initializes a sqlite database and creates schema if necessary.
func New(o *Options) (*SqliteRepo, error) {
	if o == nil || o.Filename == "" {
		return nil, model.ErrNoConfiguration
	}

	dbHandle, err := sqlx.Connect("sqlite3", o.Filename)
	if err != nil {
		return nil, err
	}
	dbHandle.SetMaxOpenConns(max(4, runtime.NumCPU()))

	writeDB, err := sqlx.Connect("sqlite3", o.Filename)
	if err != nil {
		return nil, err
	}
	// sqlite needs to have a single writer
	writeDB.SetMaxOpenConns(1)

	if err := dbInitSchema(writeDB); err != nil {
		return nil, err
	}

	return &SqliteRepo{
		dbReadHandle:     dbHandle,
		dbWriteHandle:    writeDB,
		accessTokenCache: make(map[string]*model.AccessToken),
	}, nil
}

// StartBackgroundJobs starts background jobs for the database repository.
// These handle periodic syncing of in-memory caches to the database.
func (s *SqliteRepo) StartBackgroundJobs(ctx context.Context) {
	syncInterval := 10 * time.Second

	go s.accessTokenBackgroundJob(ctx, syncInterval)
}
