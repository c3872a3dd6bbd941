// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the configured backend. dbType is "postgres" or "sqlite";
// url is a postgres connection string or a sqlite path/URI respectively.
func Open(dbType, url string) (*sql.DB, error) {
	switch dbType {
	case "postgres":
		return sql.Open("postgres", url)
	case "sqlite":
		conn, err := sql.Open("sqlite", url)
		if err != nil {
			return nil, err
		}
		// sqlite allows a single writer; serialize through one connection
		// so concurrent handlers queue instead of failing with SQLITE_BUSY.
		conn.SetMaxOpenConns(1)
		return conn, nil
	default:
		return nil, fmt.Errorf("unsupported database type %q (want sqlite or postgres)", dbType)
	}
}
