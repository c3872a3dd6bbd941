// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the SmartVote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Authentication:

	POST /auth/register - Create account (pending approval)
	POST /auth/login    - Obtain session token

User accounts:

	GET    /users/me           - Own profile with effective role
	PUT    /users/me           - Update profile
	GET    /users              - List users (admin)
	POST   /users/{id}/approve - Approve account (admin)
	DELETE /users/{id}         - Reject or remove account (admin)

Election management (admin):

	POST   /elections               - Create election
	POST   /elections/{id}/toggle   - Close or reopen
	PUT    /elections/{id}/limits   - Adjust candidate/voter limits
	DELETE /elections/{id}          - Delete with full cascade
	GET    /elections/{id}/history  - Audit view

Elections (authenticated):

	GET /elections      - List (?active=true)
	GET /elections/{id} - Details

Candidacy:

	POST   /elections/{id}/applications - Apply (voter)
	POST   /elections/{id}/candidates   - Promote voter (admin)
	GET    /applications                - List (admin)
	POST   /applications/{id}/approve   - Approve (admin)
	POST   /applications/{id}/reject    - Reject (admin)
	POST   /applications/{id}/toggle    - Soft enable/disable (admin)
	DELETE /applications/{id}           - Remove candidate and their votes (admin)

Voting:

	POST /elections/{id}/votes    - Cast vote
	GET  /elections/{id}/votes/me - Own vote
	GET  /votes/{id}/receipt      - Plain-text receipt

Results and export:

	GET /elections/{id}/results - Ranked tally
	GET /export                 - Full snapshot (admin)

Notifications:

	GET  /notifications           - Own notifications (?unread=true)
	POST /notifications/{id}/read - Mark one read
	POST /notifications/read-all  - Mark all read

# Handler Initialization

The router creates handler instances with dependency injection; all handlers
receive the database connection and configuration.
*/
package router
