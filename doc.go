/*
Package main provides the entry point for the openballot API server.

openballot is a poll/vote API: polls with options, and votes with a hard
one-vote-per-voter-per-poll guarantee enforced by the database, not by
application code. Voters are either authenticated users (JWT bearer
tokens) or anonymous sessions (a cookie minted on first vote).

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=ballots.db JWT_SECRET=... go run main.go

Or with flags:

	go run main.go -p 3410 -d "postgres://..." -t postgres

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string or SQLite file path
  - JWT_SECRET (-jwt-secret): HS256 secret for verifying bearer tokens

Optional settings:

  - PORT (-p): Server port (default: 3410)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - SESSION_COOKIE (-session-cookie): anonymous session cookie name

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (polls, options, votes)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, error mapping
  - models: Domain types and the error taxonomy
  - identity: Voter identity resolution (JWT / session cookie)
  - policy: Access rules per action and resource
  - store: Poll and Option persistence
  - ledger: Vote records and the duplicate-vote constraint
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
