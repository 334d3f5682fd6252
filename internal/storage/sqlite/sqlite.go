// Package sqlite implements the snapshot and holder stores on a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"holder-flow/internal/storage/migrations"
)

// DB wraps the SQLite handle shared by the stores.
type DB struct {
	*sql.DB
}

// Open opens or creates the database at path and applies the schema.
// An empty path defaults to $TMPDIR/holder-flow/data.db.
func Open(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		path = filepath.Join(os.TempDir(), "holder-flow", "data.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}

	return &DB{DB: db}, nil
}

// isDuplicateKeyError reports primary key and unique constraint violations.
func isDuplicateKeyError(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
