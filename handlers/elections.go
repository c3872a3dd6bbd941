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

type ElectionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewElectionHandler(db *sql.DB, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{db: db, cfg: cfg}
}

// CreateElection handles POST /elections (admin)
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.MaxCandidates < 1 || req.MaxVoters < 1 {
		middleware.ErrorCode(w, http.StatusBadRequest, models.ErrInvalidLimit,
			"max_candidates and max_voters must be at least 1")
		return
	}

	// Start active unless the caller explicitly asks for a closed draft
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	electionID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate election ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO elections (id, name, name_lower, description, active, max_candidates, max_voters, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, electionID, req.Name, strings.ToLower(req.Name), req.Description, active,
		req.MaxCandidates, req.MaxVoters, time.Now())

	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorCode(w, http.StatusConflict, models.ErrConflict, "An election with this name already exists")
			return
		}
		slog.Error("failed to insert election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	slog.Info("election created", "election_id", electionID, "name", req.Name, "created_by", admin.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		ElectionID: electionID,
	})
}

// ListElections handles GET /elections
// ?active=true narrows to elections currently open.
func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	query := `SELECT ` + electionColumns + ` FROM elections ORDER BY created_at`
	if r.URL.Query().Get("active") == "true" {
		query = `SELECT ` + electionColumns + ` FROM elections WHERE active = TRUE ORDER BY created_at`
	}

	rows, err := h.db.Query(query)
	if err != nil {
		slog.Error("failed to query elections", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		election, err := scanElection(rows)
		if err != nil {
			slog.Error("failed to scan election", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		elections = append(elections, election)
	}

	middleware.JSONResponse(w, http.StatusOK, elections)
}

// GetElection handles GET /elections/{id}
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
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

	middleware.JSONResponse(w, http.StatusOK, election)
}

// ToggleElection handles POST /elections/{id}/toggle (admin)
//
// Closing marks every application for the election inactive in the same
// transaction (history stays queryable; nothing is deleted) and notifies the
// affected candidates. Reopening does NOT reactivate those applications -
// only a fresh approval or an explicit access toggle restores candidacy.
func (h *ElectionHandler) ToggleElection(w http.ResponseWriter, r *http.Request) {
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

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	if election.Active {
		closedAt := time.Now()

		_, err = tx.Exec(`UPDATE elections SET active = FALSE, closed_at = $1 WHERE id = $2`, closedAt, electionID)
		if err != nil {
			slog.Error("failed to close election", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to toggle election")
			return
		}

		_, err = tx.Exec(`
			UPDATE applications
			SET active = FALSE, election_closed = TRUE, closed_at = $1
			WHERE election_id = $2
		`, closedAt, electionID)
		if err != nil {
			slog.Error("failed to deactivate applications", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to toggle election")
			return
		}

		// Candidates lose their derived role the moment this commits;
		// tell them why.
		candidateRows, err := tx.Query(`
			SELECT user_id FROM applications WHERE election_id = $1 AND approved = TRUE
		`, electionID)
		if err != nil {
			slog.Error("failed to query affected candidates", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to toggle election")
			return
		}
		var affected []string
		for candidateRows.Next() {
			var userID string
			if err := candidateRows.Scan(&userID); err != nil {
				candidateRows.Close()
				slog.Error("failed to scan candidate", "error", err)
				middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to toggle election")
				return
			}
			affected = append(affected, userID)
		}
		candidateRows.Close()

		for _, userID := range affected {
			if err := insertNotification(tx, userID, models.NotifElectionClosed,
				"Candidate Status Updated",
				"Your candidate status has been updated due to the closure of "+election.Name); err != nil {
				slog.Warn("failed to record notification", "error", err)
			}
		}

		election.Active = false
		election.ClosedAt = &closedAt
	} else {
		_, err = tx.Exec(`UPDATE elections SET active = TRUE, closed_at = NULL WHERE id = $1`, electionID)
		if err != nil {
			slog.Error("failed to reopen election", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to toggle election")
			return
		}

		election.Active = true
		election.ClosedAt = nil
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to toggle election")
		return
	}

	slog.Info("election toggled", "election_id", electionID, "active", election.Active, "toggled_by", admin.ID)

	middleware.JSONResponse(w, http.StatusOK, models.ToggleElectionResponse{Election: election})
}

// UpdateLimits handles PUT /elections/{id}/limits (admin)
// Limit changes only gate future applications and votes; existing rows are
// never touched.
func (h *ElectionHandler) UpdateLimits(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	electionID := r.PathValue("id")

	var req models.UpdateLimitsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Field != models.FieldMaxCandidates && req.Field != models.FieldMaxVoters {
		middleware.ErrorResponse(w, http.StatusBadRequest, "field must be max_candidates or max_voters")
		return
	}
	if req.Value < 1 {
		middleware.ErrorCode(w, http.StatusBadRequest, models.ErrInvalidLimit, "limit must be at least 1")
		return
	}

	if _, err := getElectionByID(h.db, electionID); err == sql.ErrNoRows {
		middleware.ErrorCode(w, http.StatusNotFound, models.ErrNotFound, "Election not found")
		return
	} else if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// req.Field is validated against the two known columns above
	_, err := h.db.Exec(`UPDATE elections SET `+req.Field+` = $1 WHERE id = $2`, req.Value, electionID)
	if err != nil {
		slog.Error("failed to update limits", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update limits")
		return
	}

	slog.Info("election limits updated", "election_id", electionID, "field", req.Field, "value", req.Value, "updated_by", admin.ID)

	election, err := getElectionByID(h.db, electionID)
	if err != nil {
		slog.Error("failed to reload election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, election)
}

// DeleteElection handles DELETE /elections/{id} (admin)
// Cascades to the election's applications and votes in one transaction.
func (h *ElectionHandler) DeleteElection(w http.ResponseWriter, r *http.Request) {
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

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM votes WHERE election_id = $1`,
		`DELETE FROM applications WHERE election_id = $1`,
		`DELETE FROM elections WHERE id = $1`,
	} {
		if _, err := tx.Exec(stmt, electionID); err != nil {
			slog.Error("failed to delete election", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete election")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete election")
		return
	}

	slog.Info("election deleted", "election_id", electionID, "name", election.Name, "deleted_by", admin.ID)

	w.WriteHeader(http.StatusNoContent)
}

// GetHistory handles GET /elections/{id}/history (admin)
// Audit view: all applications (approved, pending, rejected, deactivated)
// plus the vote count.
func (h *ElectionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.db, h.cfg, w, r); !ok {
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

	rows, err := h.db.Query(`
		SELECT `+applicationColumns+` FROM applications WHERE election_id = $1 ORDER BY applied_at
	`, electionID)
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

	var voteCount int
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM votes WHERE election_id = $1`, electionID).Scan(&voteCount); err != nil {
		slog.Error("failed to count votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ElectionHistory{
		Election:     election,
		Applications: applications,
		VoteCount:    voteCount,
	})
}
