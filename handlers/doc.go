// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the SmartVote API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - UserHandler: Registration, login, profiles, account approval
  - ElectionHandler: Election lifecycle (create, toggle, limits, history)
  - ApplicationHandler: Candidacy applications, promotion, review, removal
  - VoteHandler: Vote casting, vote lookup, receipts
  - ResultsHandler: Ranked tallies
  - ExportHandler: Full data export with summary
  - NotificationHandler: Per-user event log

Handlers are created via constructor functions that accept *sql.DB and Config:

	userHandler := handlers.NewUserHandler(db, cfg)

# Authentication

Handlers resolve the session themselves via the shared helpers:

	user, ok := currentUser(h.db, h.cfg, w, r)
	admin, ok := requireAdmin(h.db, h.cfg, w, r)

Both write the error response on failure, so callers just return.

# Election Lifecycle

Elections toggle between exactly two states, active and closed:

	POST /elections              → CreateElection (active by default)
	POST /elections/{id}/toggle  → ToggleElection

Closing marks every application inactive with election_closed set, so the
candidacy history survives. Reopening restores the election only; the
applications stay retired.

# Candidacy

Two paths onto the ballot:

	POST /elections/{id}/applications → Apply (voter, needs admin review)
	POST /elections/{id}/candidates   → Promote (admin, pre-approved)

Review is one-way: approve or reject resolves an application permanently.
Removal deletes the application and every vote cast for that candidate in
that election.

# Effective Roles

A voter's candidate status is derived, never stored:

	role, err := EffectiveRole(db, user)

The candidate role exists exactly while an approved, active application
references an active election. Closing the election withdraws it instantly.

# Tallying

ComputeTally in tally.go produces the ranked results:

	entries, err := ComputeTally(db, electionID)

Vote count descending, candidate ID ascending on ties, so rankings are
reproducible. The none-of-above sentinel tallies like any candidate.
*/
package handlers
