package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresExecer is satisfied by *postgres.Pool and pgx.Tx.
type PostgresExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RunPostgres applies all embedded PostgreSQL files in lexical order.
// Every file uses IF NOT EXISTS so reruns are no-ops.
func RunPostgres(ctx context.Context, db PostgresExecer) error {
	files, err := load(postgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, m := range files {
		if _, err := db.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}
	return nil
}
