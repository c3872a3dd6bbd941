// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// The DDL sticks to the subset both backends (postgres via lib/pq, sqlite via
// modernc.org/sqlite) accept: no NOW() defaults, timestamps always written by
// the handlers. Referential cascades are executed by the command handlers
// inside a transaction, so the REFERENCES clauses here are documentation for
// postgres and inert under sqlite's default foreign_keys=off.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Users
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    registration_id TEXT NOT NULL UNIQUE,
    branch TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('voter', 'admin', 'super-admin')),
    approved BOOLEAN NOT NULL DEFAULT FALSE,
    email TEXT NOT NULL,
    bio TEXT,
    phone TEXT,
    year TEXT,
    achievements TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
CREATE INDEX IF NOT EXISTS idx_users_approved ON users(approved);

-- Elections
CREATE TABLE IF NOT EXISTS elections (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    name_lower TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    max_candidates INTEGER NOT NULL CHECK (max_candidates >= 1),
    max_voters INTEGER NOT NULL CHECK (max_voters >= 1),
    created_at TIMESTAMP NOT NULL,
    closed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_elections_active ON elections(active);

-- Candidacy applications
CREATE TABLE IF NOT EXISTS applications (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id),
    election_id TEXT NOT NULL REFERENCES elections(id),
    approved BOOLEAN NOT NULL DEFAULT FALSE,
    rejected BOOLEAN NOT NULL DEFAULT FALSE,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    election_closed BOOLEAN NOT NULL DEFAULT FALSE,
    applied_at TIMESTAMP NOT NULL,
    approved_at TIMESTAMP,
    approved_by TEXT,
    rejected_at TIMESTAMP,
    rejected_by TEXT,
    rejection_reason TEXT,
    promoted_by TEXT,
    message TEXT,
    qualifications TEXT,
    goals TEXT,
    closed_at TIMESTAMP,
    UNIQUE (user_id, election_id)
);

CREATE INDEX IF NOT EXISTS idx_applications_user_id ON applications(user_id);
CREATE INDEX IF NOT EXISTS idx_applications_election_id ON applications(election_id);

-- Votes
CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL REFERENCES users(id),
    election_id TEXT NOT NULL REFERENCES elections(id),
    candidate_id TEXT NOT NULL,
    voted_at TIMESTAMP NOT NULL,
    receipt_id TEXT NOT NULL UNIQUE,
    UNIQUE (voter_id, election_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_election_id ON votes(election_id);
CREATE INDEX IF NOT EXISTS idx_votes_candidate ON votes(election_id, candidate_id);
CREATE INDEX IF NOT EXISTS idx_votes_receipt_id ON votes(receipt_id);

-- Notification event log
CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id),
    type TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id);
`
