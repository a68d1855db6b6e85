package postgres

import (
	"context"
	"errors"
	"log/slog"

	"escaperoom-reservations/internal/infra"
	"escaperoom-reservations/internal/infra/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Committer applies a set of conditional writes as one transaction. Either
// every guard holds and every statement applies, or nothing does.
type Committer struct {
	pool *pgxpool.Pool
}

func NewCommitter(pool *pgxpool.Pool) *Committer {
	return &Committer{pool: pool}
}

func (c *Committer) Commit(ctx context.Context, writes ...store.Write) error {
	if len(writes) == 0 {
		return nil
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return infra.WrapRepoErr(infra.KindStoreFailure, "failed to begin commit transaction", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.Warn("rollback failed", "error", rollbackErr.Error())
		}
	}()

	for _, w := range writes {
		pw, ok := w.(*write)
		if !ok {
			return infra.NewRepoErr(infra.KindStoreFailure, "write was not built by the postgres backend")
		}

		tag, err := tx.Exec(ctx, pw.stmt, pw.args...)
		if err != nil {
			if isUniqueViolation(err) {
				return infra.WrapRepoErr(infra.KindVersionConflict, "record already exists: "+pw.desc, err)
			}
			return infra.WrapRepoErr(infra.KindStoreFailure, "failed to apply write: "+pw.desc, err)
		}
		if tag.RowsAffected() == 0 {
			return infra.NewRepoErr(infra.KindVersionConflict, "version guard rejected write: "+pw.desc)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return infra.WrapRepoErr(infra.KindStoreFailure, "failed to commit writes", err)
	}
	return nil
}
