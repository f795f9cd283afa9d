package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/glebarez/go-sqlite"
)

const sqliteScheme = "sqlite://"

// IsSQLite reports whether the configured DATABASE_URL points at a SQLite file.
func IsSQLite(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, sqliteScheme)
}

// SQLitePath strips the sqlite:// scheme from a database URL.
func SQLitePath(databaseURL string) string {
	return strings.TrimPrefix(databaseURL, sqliteScheme)
}

// OpenSQLite opens (or creates) a SQLite database and ensures the schema exists.
// It mirrors migrations/000001 for installs that run without Postgres.
func OpenSQLite(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single writer keeps the conditional MarkPosted update serialized.
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS work_items (
			id           TEXT PRIMARY KEY,
			sequence     INTEGER NOT NULL CHECK (sequence > 0),
			phase        TEXT NOT NULL,
			topic        TEXT NOT NULL,
			previous_day TEXT NOT NULL DEFAULT 'N/A',
			today_task   TEXT NOT NULL,
			challenges   TEXT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'posted')),
			posted_at    TEXT,
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS work_items_sequence_key ON work_items (sequence);`,
		`CREATE INDEX IF NOT EXISTS idx_work_items_status ON work_items (status, sequence);`,
	}
	for _, q := range schema {
		if _, err := conn.Exec(q); err != nil {
			conn.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	return conn, nil
}
