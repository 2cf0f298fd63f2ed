// Package testdb provides utilities for database integration tests.
//
// Tests obtain a migrated connection with Open, which skips the test when
// DATABASE_URL is not set, and then run inside WithTx, which rolls the
// transaction back when the test function returns:
//
//	db := testdb.Open(t)
//	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	    games := postgres.NewPostgresGameStore(tx, nil)
//	    // ...
//	})
package testdb
