// Package postgres realizes the transactional store contract on PostgreSQL.
// Conditional writes become version-guarded UPDATE/INSERT statements executed
// inside a single transaction; a guard that matches zero rows aborts the
// whole commit with VERSION_CONFLICT.
package postgres

import (
	"context"
	_ "embed"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the slots and reservations tables if missing. Used by
// the slotctl CLI and integration tests; the service itself never alters
// schema.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}

// write is the postgres realization of store.Write: one guarded statement
// whose affected-row count proves the guard held.
type write struct {
	desc string
	stmt string
	args []any
}

func (w *write) Describe() string { return w.desc }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
