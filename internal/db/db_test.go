package db_test

import (
	"path/filepath"
	"testing"

	"github.com/ricirt/devlog-poster/internal/db"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost:5432/devlog", "pgx5://u:p@localhost:5432/devlog"},
		{"postgresql://u:p@localhost/devlog?sslmode=disable", "pgx5://u:p@localhost/devlog?sslmode=disable"},
		{"u:p@localhost/devlog", "pgx5://u:p@localhost/devlog"},
	}
	for _, tc := range tests {
		if got := db.MigrationURL(tc.in); got != tc.want {
			t.Fatalf("MigrationURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSQLiteURLHelpers(t *testing.T) {
	if !db.IsSQLite("sqlite://./data/devlog.db") {
		t.Fatal("expected sqlite:// URL to be detected")
	}
	if db.IsSQLite("postgres://localhost/devlog") {
		t.Fatal("postgres URL must not be treated as sqlite")
	}
	if got := db.SQLitePath("sqlite://./data/devlog.db"); got != "./data/devlog.db" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestOpenSQLite_CreatesSchemaIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devlog.db")

	for i := 0; i < 2; i++ {
		conn, err := db.OpenSQLite(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		var n int
		if err := conn.QueryRow(`SELECT COUNT(*) FROM work_items`).Scan(&n); err != nil {
			t.Fatalf("query work_items: %v", err)
		}
		conn.Close()
	}
}
