package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// TxFn runs inside a transaction. Returning an error rolls the transaction
// back; returning nil commits it.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction executes fn inside a new transaction on db. A panic in fn
// rolls the transaction back and is re-raised.
func RunInTransaction(ctx context.Context, db TxBeginner, fn TxFn) (err error) {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %v", ErrTransactionFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", rbErr.Error()),
					slog.Any("panic", p))
			}
			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf("error rolling back transaction: %v (original error: %w)", rbErr, err)
		}
		log.Debug("rolled back transaction", slog.String("error", err.Error()))
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Error("failed to commit transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: commit: %v", ErrTransactionFailed, err)
	}

	return nil
}
