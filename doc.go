// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the SmartVote API server.

SmartVote is an election management service for student-government style
elections: admin-reviewed registration, candidacy applications, one vote per
voter per election with printable receipts, and deterministic ranked results.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=smartvote.db PASSWORD_SALT=... SESSION_SECRET=... go run main.go

Or with flags:

	go run main.go -p 4117 -t sqlite -d smartvote.db

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string
  - PASSWORD_SALT (--password-salt): Secret for password HMAC
  - SESSION_SECRET (--session-secret): Secret for signing session tokens

Optional settings:

  - PORT (-p): Server port (default: 4117)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"

# First Run

On an empty database the server seeds a bootstrap super-admin account
(username "admin", password "admin123"). Change the password salt per
deployment; the seeded hash depends on it.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (users, elections, applications, voting, results, export, notifications)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Password hashing, session tokens, ID generation
  - db: Driver selection, schema creation, bootstrap seed
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
