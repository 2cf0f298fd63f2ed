package testdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

// WithTx runs fn inside a transaction that is always rolled back, so each
// test sees a clean database and leaves nothing behind.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*TestTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// InsertCore adds a core to the catalogue and returns its ID.
func InsertCore(t *testing.T, tx *sql.Tx, score int, fileName string) int64 {
	t.Helper()

	var id int64
	err := tx.QueryRow(
		`INSERT INTO her2_cores (score, file_name) VALUES ($1, $2) RETURNING id`,
		score, fileName,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert core: %v", err)
	}
	return id
}

// InsertCoreWithID adds a core with a fixed ID, for tests that depend on
// the evaluation set.
func InsertCoreWithID(t *testing.T, tx *sql.Tx, id int64, score int) {
	t.Helper()

	_, err := tx.Exec(
		`INSERT INTO her2_cores (id, score, file_name) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
		id, score, "core.png",
	)
	if err != nil {
		t.Fatalf("failed to insert core %d: %v", id, err)
	}
}
