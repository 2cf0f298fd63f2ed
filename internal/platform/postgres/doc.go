// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx driver. It also owns the embedded goose
// migrations that define the schema.
//
// Atomic rules of the game engine live in the SQL here: guarded single-row
// updates for challenge submission and start time, the aggregate UPDATE that
// finalizes a game once every challenge is scored, and the window query that
// selects each user's best training game.
package postgres
