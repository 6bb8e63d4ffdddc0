/*
Package db handles database connection and schema creation.

# Connecting

Connect picks the driver from the configured database type:

	conn, err := db.Connect(cfg) // cfg.DatabaseType: "sqlite" or "postgres"

PostgreSQL uses lib/pq; SQLite uses the CGo-free modernc.org/sqlite driver
(single-connection pool, foreign keys enabled).

# Schema

CreateSchema initializes all tables. Safe to call multiple times - uses
IF NOT EXISTS.

	poll 1──* option
	poll 1──* vote
	option 1──* vote

All foreign keys use ON DELETE CASCADE, so deleting a poll removes its
options and their votes.

The load-bearing constraint is vote's UNIQUE (poll_id, voter_key): the
database, not the application, is the final arbiter of
one-vote-per-identity-per-poll. vote.poll_id is denormalized from the
option for exactly this purpose.
*/
package db
