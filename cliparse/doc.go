// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first (via godotenv), then
environment variables, then CLI flags. Flags take precedence.

# Config Fields

  - Port: Server listen port (default: 4117)
  - DatabaseURL: SQLite file path or PostgreSQL connection string (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - PasswordSalt: Secret for password HMAC (required)
  - SessionSecret: Secret for signing session tokens (required)

# CLI Flags

	-p, --port          Server port
	-d, --database-url  Database URL
	-t, --database-type Database type
	--password-salt     Password hash salt
	--session-secret    Session token secret

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	PASSWORD_SALT  → --password-salt
	SESSION_SECRET → --session-secret

# Validation

ParseFlags returns an error if required values are missing or if
DATABASE_TYPE is not one of "sqlite" or "postgres".
*/
package cliparse
