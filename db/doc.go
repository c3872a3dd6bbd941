// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles driver selection, schema creation, and the bootstrap seed.

# Opening a Database

Open selects the driver from configuration:

	conn, err := db.Open("sqlite", "smartvote.db")
	conn, err := db.Open("postgres", "postgres://...")

SQLite connections are capped at one open connection; the modernc driver
serializes writers anyway and a single connection avoids lock contention.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL sticks to the dialect both backends accept: no NOW() defaults
(timestamps are passed from Go), and cascades run in handler transactions
rather than foreign-key actions.

# Tables

The schema includes:

  - users: Accounts with static role and admin review state
  - elections: Two-state lifecycle with limits
  - applications: Candidacies with resolution history, one per user per election
  - votes: One per voter per election, with unique receipt IDs
  - notifications: Per-user event log

# Bootstrap Seed

SeedBootstrapAdmin guarantees a fresh installation has an approved
super-admin to approve everyone else:

	seeded, err := db.SeedBootstrapAdmin(conn, passwordHash)

It only fires when the users table is empty.
*/
package db
