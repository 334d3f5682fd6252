package migrations

import (
	"context"
	"fmt"

	"holder-flow/internal/storage/postgres"
)

// RunPostgresMigrations applies all embedded PostgreSQL files. pgx runs each file as one
// multi-statement exec.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := readMigrations(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, f := range files {
		if _, err := pool.Exec(ctx, f.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", f.Name, err)
		}
	}
	return nil
}
