// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/smartvote/auth"
	"github.com/danielhkuo/smartvote/cliparse"
	"github.com/danielhkuo/smartvote/middleware"
	"github.com/danielhkuo/smartvote/models"
)

// execer is satisfied by both *sql.DB and *sql.Tx so helpers can run inside
// or outside a transaction.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const userColumns = `id, username, password_hash, registration_id, branch, role, approved, email, bio, phone, year, achievements, created_at`

const electionColumns = `id, name, description, active, max_candidates, max_voters, created_at, closed_at`

const applicationColumns = `id, user_id, election_id, approved, rejected, active, election_closed, applied_at,
	approved_at, approved_by, rejected_at, rejected_by, rejection_reason, promoted_by,
	message, qualifications, goals, closed_at`

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.RegistrationID, &u.Branch,
		&u.Role, &u.Approved, &u.Email, &u.Bio, &u.Phone, &u.Year, &u.Achievements, &u.CreatedAt)
	return u, err
}

func scanElection(row rowScanner) (models.Election, error) {
	var e models.Election
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Active,
		&e.MaxCandidates, &e.MaxVoters, &e.CreatedAt, &e.ClosedAt)
	return e, err
}

func scanApplication(row rowScanner) (models.Application, error) {
	var a models.Application
	err := row.Scan(&a.ID, &a.UserID, &a.ElectionID, &a.Approved, &a.Rejected, &a.Active,
		&a.ElectionClosed, &a.AppliedAt, &a.ApprovedAt, &a.ApprovedBy, &a.RejectedAt,
		&a.RejectedBy, &a.RejectionReason, &a.PromotedBy, &a.Message, &a.Qualifications,
		&a.Goals, &a.ClosedAt)
	return a, err
}

func getUserByID(db *sql.DB, id string) (models.User, error) {
	return scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func getElectionByID(db *sql.DB, id string) (models.Election, error) {
	return scanElection(db.QueryRow(`SELECT `+electionColumns+` FROM elections WHERE id = $1`, id))
}

func getApplicationByID(db *sql.DB, id string) (models.Application, error) {
	return scanApplication(db.QueryRow(`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
}

// isUniqueViolation detects unique-constraint failures from either backend
// (lib/pq and modernc.org/sqlite report them only through the error text).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// currentUser resolves the session user from the Authorization header.
// Writes a 401 response and returns ok=false when the session is missing,
// invalid, or refers to a deleted account.
func currentUser(db *sql.DB, cfg cliparse.Config, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	token := middleware.BearerToken(r)
	if token == "" {
		middleware.ErrorCode(w, http.StatusUnauthorized, models.ErrUnauthorized, "Authorization header required")
		return models.User{}, false
	}

	claims, err := auth.ParseSessionToken(token, cfg.SessionSecret)
	if err != nil {
		middleware.ErrorCode(w, http.StatusUnauthorized, models.ErrUnauthorized, "Invalid session token")
		return models.User{}, false
	}

	user, err := getUserByID(db, claims.UserID)
	if err == sql.ErrNoRows {
		middleware.ErrorCode(w, http.StatusUnauthorized, models.ErrUnauthorized, "Session user no longer exists")
		return models.User{}, false
	}
	if err != nil {
		slog.Error("failed to query session user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.User{}, false
	}

	return user, true
}

// requireAdmin is currentUser plus a static-role check. Admin capability is
// never derived, so the stored role is authoritative here.
func requireAdmin(db *sql.DB, cfg cliparse.Config, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := currentUser(db, cfg, w, r)
	if !ok {
		return models.User{}, false
	}
	if user.Role != models.RoleAdmin && user.Role != models.RoleSuperAdmin {
		middleware.ErrorCode(w, http.StatusForbidden, models.ErrUnauthorized, "Admin access required")
		return models.User{}, false
	}
	return user, true
}

// insertNotification records a structured event for a user. Runs on the
// caller's execer so close cascades can emit inside their transaction.
func insertNotification(ex execer, userID, ntype, title, message string) error {
	id, err := auth.GenerateID(16)
	if err != nil {
		return err
	}
	_, err = ex.Exec(`
		INSERT INTO notifications (id, user_id, type, title, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
	`, id, userID, ntype, title, message, time.Now())
	return err
}
