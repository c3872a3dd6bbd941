// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Bootstrap super-admin account created when the user table is empty.
// The password behind passwordHash is chosen by the operator via config;
// only the hash ever reaches this package.
const (
	BootstrapAdminID             = "super-admin-1"
	BootstrapAdminUsername       = "admin"
	BootstrapAdminRegistrationID = "ADMIN001"
	BootstrapAdminBranch         = "Administration"
	BootstrapAdminEmail          = "admin@college.edu"
)

// SeedBootstrapAdmin inserts the default super-admin if and only if the user
// table is empty, and reports whether it did. Every startup path must run
// this so that an approved super-admin account always exists on a fresh
// database.
func SeedBootstrapAdmin(db *sql.DB, passwordHash string) (bool, error) {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	_, err := db.Exec(`
		INSERT INTO users (id, username, password_hash, registration_id, branch, role, approved, email, created_at)
		VALUES ($1, $2, $3, $4, $5, 'super-admin', TRUE, $6, $7)
	`, BootstrapAdminID, BootstrapAdminUsername, passwordHash,
		BootstrapAdminRegistrationID, BootstrapAdminBranch, BootstrapAdminEmail, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to seed bootstrap admin: %w", err)
	}

	return true, nil
}
