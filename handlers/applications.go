// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/smartvote/auth"
	"github.com/danielhkuo/smartvote/cliparse"
	"github.com/danielhkuo/smartvote/middleware"
	"github.com/danielhkuo/smartvote/models"
)

type ApplicationHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewApplicationHandler(db *sql.DB, cfg cliparse.Config) *ApplicationHandler {
	return &ApplicationHandler{db: db, cfg: cfg}
}

// approvedCandidateCount returns how many approved applications an election
// currently has. Rejected and soft-disabled candidacies still hold their
// roster seat until removed.
func approvedCandidateCount(db *sql.DB, electionID string) (int, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM applications WHERE election_id = $1 AND approved = TRUE
	`, electionID).Scan(&count)
	return count, err
}

// Apply handles POST /elections/{id}/applications
// Self-application by a voter. The record starts unapproved; the active flag
// only matters once an admin approves it.
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	if user.Role != models.RoleVoter {
		middleware.ErrorCode(w, http.StatusForbidden, models.ErrUnauthorized, "Only voters can apply for candidacy")
		return
	}

	electionID := r.PathValue("id")
	election, err := getElectionByID(h.db, electionID)
	if err == sql.ErrNoRows {
		middleware.ErrorCode(w, http.StatusNotFound, models.ErrNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !election.Active {
		middleware.ErrorCode(w, http.StatusConflict, models.ErrElectionNotActive, "Election is not open for applications")
		return
	}

	var req models.ApplyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	applicationID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate application ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit application")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO applications (id, user_id, election_id, approved, rejected, active, election_closed,
			applied_at, message, qualifications, goals)
		VALUES ($1, $2, $3, FALSE, FALSE, TRUE, FALSE, $4, $5, $6, $7)
	`, applicationID, user.ID, electionID, time.Now(), req.Message, req.Qualifications, req.Goals)

	if err != nil {
		// UNIQUE (user_id, election_id) is the duplicate-application guard
		if isUniqueViolation(err) {
			middleware.ErrorCode(w, http.StatusConflict, models.ErrDuplicateApplication, "You have already applied to this election")
			return
		}
		slog.Error("failed to insert application", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit application")
		return
	}

	slog.Info("application submitted", "application_id", applicationID, "user_id", user.ID, "election_id", electionID)

	middleware.JSONResponse(w, http.StatusCreated, models.ApplyResponse{
		ApplicationID: applicationID,
		Message:       "Your application has been submitted for review",
	})
}

// Promote handles POST /elections/{id}/candidates (admin)
// The only path that creates a pre-approved candidacy: approved and active
// from the start, stamped with the promoting admin, no review step.
func (h *ApplicationHandler) Promote(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	electionID := r.PathValue("id")
	election, err := getElectionByID(h.db, electionID)
	if err == sql.ErrNoRows {
		middleware.ErrorCode(w, http.StatusNotFound, models.ErrNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var req models.PromoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	target, err := getUserByID(h.db, req.UserID)
	if err == sql.ErrNoRows {
		middleware.ErrorCode(w, http.StatusNotFound, models.ErrNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if target.Role != models.RoleVoter || !target.Approved {
		middleware.ErrorCode(w, http.StatusConflict, models.ErrConflict, "Only approved voters can be promoted to candidate")
		return
	}

	count, err := approvedCandidateCount(h.db, electionID)
	if err != nil {
		slog.Error("failed to count candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count >= election.MaxCandidates {
		middleware.ErrorCode(w, http.StatusConflict, models.ErrConflict, "Election has reached its candidate limit")
		return
	}

	applicationID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate application ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to promote voter")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO applications (id, user_id, election_id, approved, rejected, active, election_closed,
			applied_at, promoted_by, message)
		VALUES ($1, $2, $3, TRUE, FALSE, TRUE, FALSE, $4, $5, $6)
	`, applicationID, req.UserID, electionID, time.Now(), admin.ID, req.Message)

	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorCode(w, http.StatusConflict, models.ErrDuplicateApplication,
				target.Username+" is already a candidate for this election")
			return
		}
		slog.Error("failed to insert application", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to promote voter")
		return
	}

	if err := insertNotification(h.db, req.UserID, models.NotifPromotion,
		"Promoted to Candidate", "You have been promoted to candidate for "+election.Name); err != nil {
		slog.Warn("failed to record notification", "error", err)
	}

	slog.Info("voter promoted", "application_id", applicationID, "user_id", req.UserID,
		"election_id", electionID, "promoted_by", admin.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.ApplyResponse{
		ApplicationID: applicationID,
		Message:       target.Username + " has been promoted to candidate",
	})
}

// ApproveApplication handles POST /applications/{id}/approve (admin)
// One-way: an application already approved or rejected fails with
// AlreadyResolved rather than silently re-applying side effects.
func (h *ApplicationHandler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	applicationID := r.PathValue("id")
	app, err := getApplicationByID(h.db, applicationID)
	if err == sql.ErrNoRows {
		middleware.ErrorCode(w, http.StatusNotFound, models.ErrNotFound, "Application not found")
		return
	}
	if err != nil {
		slog.Error("failed to query application", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if app.Approved || app.Rejected {
		middleware.ErrorCode(w, http.StatusConflict, models.ErrAlreadyResolved, "Application has already been resolved")
		return
	}

	election, err := getElectionByID(h.db, app.ElectionID)
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	count, err := approvedCandidateCount(h.db, app.ElectionID)
	if err != nil {
		slog.Error("failed to count candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count >= election.MaxCandidates {
		middleware.ErrorCode(w, http.StatusConflict, models.ErrConflict, "Election has reached its candidate limit")
		return
	}

	_, err = h.db.Exec(`
		UPDATE applications SET approved = TRUE, active = TRUE, approved_at = $1, approved_by = $2 WHERE id = $3
	`, time.Now(), admin.ID, applicationID)
	if err != nil {
		slog.Error("failed to approve application", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to approve application")
		return
	}

	if err := insertNotification(h.db, app.UserID, models.NotifApplicationApproved,
		"Application Approved", "You have been approved as a candidate for "+election.Name); err != nil {
		slog.Warn("failed to record notification", "error", err)
	}

	slog.Info("application approved", "application_id", applicationID, "approved_by", admin.ID)

	updated, err := getApplicationByID(h.db, applicationID)
	if err != nil {
		slog.Error("failed to reload application", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, updated)
}

// RejectApplication handles POST /applications/{id}/reject (admin)
func (h *ApplicationHandler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	applicationID := r.PathValue("id")
	app, err := getApplicationByID(h.db, applicationID)
	if err == sql.ErrNoRows {
		middleware.ErrorCode(w, http.StatusNotFound, models.ErrNotFound, "Application not found")
		return
	}
	if err != nil {
		slog.Error("failed to query application", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if app.Approved || app.Rejected {
		middleware.ErrorCode(w, http.StatusConflict, models.ErrAlreadyResolved, "Application has already been resolved")
		return
	}

	var req models.RejectApplicationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	_, err = h.db.Exec(`
		UPDATE applications SET rejected = TRUE, active = FALSE, rejected_at = $1, rejected_by = $2, rejection_reason = $3
		WHERE id = $4
	`, time.Now(), admin.ID, req.Reason, applicationID)
	if err != nil {
		slog.Error("failed to reject application", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reject application")
		return
	}

	if err := insertNotification(h.db, app.UserID, models.NotifApplicationRejected,
		"Application Rejected", "Your candidate application has been rejected"); err != nil {
		slog.Warn("failed to record notification", "error", err)
	}

	slog.Info("application rejected", "application_id", applicationID, "rejected_by", admin.ID)

	updated, err := getApplicationByID(h.db, applicationID)
	if err != nil {
		slog.Error("failed to reload application", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, updated)
}

// RemoveCandidate handles DELETE /applications/{id} (admin)
//
// Deletes the application AND every vote cast for that candidate in that
// election, in one transaction. Tallies stay consistent with the current
// roster at the cost of vote-count non-monotonicity; votes for other
// candidates and the voter's own votes elsewhere are untouched.
func (h *ApplicationHandler) RemoveCandidate(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	applicationID := r.PathValue("id")
	app, err := getApplicationByID(h.db, applicationID)
	if err == sql.ErrNoRows {
		middleware.ErrorCode(w, http.StatusNotFound, models.ErrNotFound, "Application not found")
		return
	}
	if err != nil {
		slog.Error("failed to query application", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		DELETE FROM votes WHERE election_id = $1 AND candidate_id = $2
	`, app.ElectionID, app.UserID)
	if err != nil {
		slog.Error("failed to delete candidate votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove candidate")
		return
	}

	_, err = tx.Exec(`DELETE FROM applications WHERE id = $1`, applicationID)
	if err != nil {
		slog.Error("failed to delete application", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove candidate")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove candidate")
		return
	}

	slog.Info("candidate removed", "application_id", applicationID, "user_id", app.UserID,
		"election_id", app.ElectionID, "removed_by", admin.ID)

	w.WriteHeader(http.StatusNoContent)
}

// ToggleAccess handles POST /applications/{id}/toggle (admin)
// Soft disable orthogonal to rejection: flips active without touching the
// approved/rejected resolution.
func (h *ApplicationHandler) ToggleAccess(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	applicationID := r.PathValue("id")
	app, err := getApplicationByID(h.db, applicationID)
	if err == sql.ErrNoRows {
		middleware.ErrorCode(w, http.StatusNotFound, models.ErrNotFound, "Application not found")
		return
	}
	if err != nil {
		slog.Error("failed to query application", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	_, err = h.db.Exec(`UPDATE applications SET active = $1 WHERE id = $2`, !app.Active, applicationID)
	if err != nil {
		slog.Error("failed to toggle application access", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to toggle access")
		return
	}

	slog.Info("candidate access toggled", "application_id", applicationID, "active", !app.Active, "toggled_by", admin.ID)

	app.Active = !app.Active
	middleware.JSONResponse(w, http.StatusOK, app)
}

// ListApplications handles GET /applications (admin)
// Filters: ?election_id=... and ?pending=true (unresolved only).
func (h *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.db, h.cfg, w, r); !ok {
		return
	}

	query := `SELECT ` + applicationColumns + ` FROM applications`
	var conditions []string
	var args []interface{}

	if electionID := r.URL.Query().Get("election_id"); electionID != "" {
		conditions = append(conditions, `election_id = $1`)
		args = append(args, electionID)
	}
	if r.URL.Query().Get("pending") == "true" {
		conditions = append(conditions, `approved = FALSE AND rejected = FALSE`)
	}

	if len(conditions) > 0 {
		query += ` WHERE ` + conditions[0]
		for _, c := range conditions[1:] {
			query += ` AND ` + c
		}
	}
	query += ` ORDER BY applied_at`

	rows, err := h.db.Query(query, args...)
	if err != nil {
		slog.Error("failed to query applications", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	applications := []models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			slog.Error("failed to scan application", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		applications = append(applications, app)
	}

	middleware.JSONResponse(w, http.StatusOK, applications)
}
