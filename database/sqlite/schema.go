package sqlite

import (
	"log"

	"github.com/jmoiron/sqlx"
)

func dbInitSchema(d *sqlx.DB) error {
	schema := []string{
		// This is needed to improve concurrent reads and writes.
		`PRAGMA journal_mode = WAL;`,
		// Without this foreign key constraints won't be enforced and cascade deletes won't happen.
		`PRAGMA foreign_keys = ON;`,

		`CREATE TABLE IF NOT EXISTS users (
id TEXT NOT NULL PRIMARY KEY,
username TEXT NOT NULL,
password TEXT NOT NULL,
created DATETIME,
lastlogin DATETIME);`,

		`CREATE UNIQUE INDEX IF NOT EXISTS users_name_idx ON users (username);`,

		`CREATE TABLE IF NOT EXISTS accesstokens (
userid TEXT NOT NULL,
token TEXT NOT NULL,
created DATETIME,
lastused DATETIME);`,

		`CREATE UNIQUE INDEX IF NOT EXISTS accesstokens_idx ON accesstokens (userid, token);`,

		`CREATE TABLE IF NOT EXISTS memos (
id TEXT NOT NULL PRIMARY KEY,
userid TEXT NOT NULL,
content TEXT NOT NULL,
tags TEXT NOT NULL DEFAULT '[]',
category TEXT NOT NULL DEFAULT '',
summary TEXT NOT NULL DEFAULT '',
keywords TEXT NOT NULL DEFAULT '[]',
analyzed BOOLEAN NOT NULL DEFAULT 0,
pinned BOOLEAN NOT NULL DEFAULT 0,
created DATETIME,
updated DATETIME);`,

		`CREATE INDEX IF NOT EXISTS memos_userid_idx ON memos (userid);`,

		`CREATE TABLE IF NOT EXISTS search_history (
userid TEXT NOT NULL,
query TEXT NOT NULL,
mode TEXT NOT NULL,
resultcount INTEGER NOT NULL,
executedat DATETIME NOT NULL);`,

		`CREATE INDEX IF NOT EXISTS search_history_idx ON search_history (userid, executedat);`,

		`CREATE TABLE IF NOT EXISTS embeddings (
memoid TEXT NOT NULL PRIMARY KEY,
userid TEXT NOT NULL,
model TEXT NOT NULL,
vector BLOB NOT NULL,
updated DATETIME NOT NULL,
FOREIGN KEY (memoid) REFERENCES memos(id) ON DELETE CASCADE);`,

		`CREATE INDEX IF NOT EXISTS embeddings_userid_idx ON embeddings (userid);`,
	}

	for _, query := range schema {
		if _, err := d.Exec(query); err != nil {
			log.Printf("dbInitSchema error: %s\n", err)
			return err
		}
	}
	return nil
}
