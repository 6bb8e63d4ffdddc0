/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first (godotenv), then CLI
flags, then plain environment variables. CLI flags take precedence.

# Config Fields

  - Port: Server listen port (default: 3410)
  - DatabaseURL: Connection string or SQLite file path (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - JWTSecret: HS256 secret for verifying bearer tokens (required)
  - SessionCookie: Anonymous session cookie name (default: voter_session)

# CLI Flags

	-p              Server port
	-d              Database URL or file path
	-t              Database type
	-jwt-secret     Bearer token secret
	-session-cookie Session cookie name

# Environment Variables

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	JWT_SECRET     → -jwt-secret
	SESSION_COOKIE → -session-cookie
*/
package cliparse
