package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/biogames/biogames-api/internal/platform/logger"
	"github.com/biogames/biogames-api/internal/redact"
)

// TxFn runs inside a transaction opened by RunInTransaction.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction commits when fn returns nil and rolls back otherwise,
// including when fn panics. A game whose allocation fails is removed by
// this rollback rather than by a compensating delete.
//
// Errors returned by fn come back unchanged unless the rollback itself
// fails, in which case both errors are joined. Begin and commit failures
// wrap ErrTransactionFailed.
func RunInTransaction(ctx context.Context, db TxBeginner, fn TxFn) error {
	log := logger.FromContextOrDefault(ctx, nil).With(slog.String("component", "tx"))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("begin failed", redact.Attr(err))
		return fmt.Errorf("%w: begin: %w", ErrTransactionFailed, err)
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback after panic failed", redact.Attr(rbErr), slog.Any("panic", p))
		}
		// ALLOW-PANIC: re-raise after releasing the transaction
		panic(p)
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback failed", redact.Attr(rbErr))
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		log.Debug("rolled back", redact.Attr(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("commit failed", redact.Attr(err))
		return fmt.Errorf("%w: commit: %w", ErrTransactionFailed, err)
	}
	return nil
}
