package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestRunInTransaction(t *testing.T) {
	boom := errors.New("allocation failed")
	dbErr := errors.New("connection reset")

	tests := []struct {
		name    string
		expect  func(m sqlmock.Sqlmock)
		fn      TxFn
		wantErr []error
		ran     bool
	}{
		{
			name: "commit",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectCommit()
			},
			fn:  func(context.Context, *sql.Tx) error { return nil },
			ran: true,
		},
		{
			name: "fn error rolls back",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectRollback()
			},
			fn:      func(context.Context, *sql.Tx) error { return boom },
			wantErr: []error{boom},
			ran:     true,
		},
		{
			name: "rollback failure keeps fn error",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectRollback().WillReturnError(dbErr)
			},
			fn:      func(context.Context, *sql.Tx) error { return boom },
			wantErr: []error{boom, dbErr},
			ran:     true,
		},
		{
			name: "begin failure",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin().WillReturnError(dbErr)
			},
			fn:      func(context.Context, *sql.Tx) error { return nil },
			wantErr: []error{ErrTransactionFailed, dbErr},
		},
		{
			name: "commit failure",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectCommit().WillReturnError(dbErr)
			},
			fn:      func(context.Context, *sql.Tx) error { return nil },
			wantErr: []error{ErrTransactionFailed, dbErr},
			ran:     true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tc.expect(mock)

			ran := false
			err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
				ran = true
				return tc.fn(ctx, tx)
			})

			assert.Equal(t, tc.ran, ran)
			if len(tc.wantErr) == 0 {
				assert.NoError(t, err)
			}
			for _, want := range tc.wantErr {
				assert.ErrorIs(t, err, want)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunInTransaction_PanicRollsBack(t *testing.T) {
	for _, rbErr := range []error{nil, errors.New("rollback failed")} {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(rbErr)

		assert.PanicsWithValue(t, "allocator bug", func() {
			_ = RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
				panic("allocator bug")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}
