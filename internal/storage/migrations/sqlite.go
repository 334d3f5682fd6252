package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// RunSQLiteMigrations applies all embedded SQLite files statement by statement.
func RunSQLiteMigrations(ctx context.Context, db *sql.DB) error {
	files, err := readMigrations(SQLiteFS, "sqlite")
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := validateNoSemicolonInStrings(f.SQL); err != nil {
			return fmt.Errorf("validate migration %s: %w", f.Name, err)
		}
		for _, stmt := range splitStatements(f.SQL) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", f.Name, err)
			}
		}
	}
	return nil
}
