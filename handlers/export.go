// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/smartvote/cliparse"
	"github.com/danielhkuo/smartvote/middleware"
	"github.com/danielhkuo/smartvote/models"
)

type ExportHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewExportHandler(db *sql.DB, cfg cliparse.Config) *ExportHandler {
	return &ExportHandler{db: db, cfg: cfg}
}

// Export handles GET /export (admin)
//
// Full snapshot of elections, candidacies, and votes with a summary block.
// Votes are exported without voter identity; the receipt ID is the only
// correlation handle and it stays with the voter.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	export := models.ExportResponse{
		Elections:    []models.Election{},
		Applications: []models.ExportApplication{},
		Votes:        []models.ExportVote{},
	}

	rows, err := h.db.Query(`SELECT ` + electionColumns + ` FROM elections ORDER BY created_at`)
	if err != nil {
		slog.Error("failed to query elections", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	electionNames := map[string]string{}
	for rows.Next() {
		election, err := scanElection(rows)
		if err != nil {
			slog.Error("failed to scan election", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		export.Elections = append(export.Elections, election)
		electionNames[election.ID] = election.Name
		if election.Active {
			export.Summary.ActiveElections++
		}
	}
	rows.Close()

	appRows, err := h.db.Query(`
		SELECT ` + prefixedApplicationColumns + `, u.username
		FROM applications a
		JOIN users u ON a.user_id = u.id
		ORDER BY a.applied_at
	`)
	if err != nil {
		slog.Error("failed to query applications", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer appRows.Close()

	for appRows.Next() {
		var entry models.ExportApplication
		err := appRows.Scan(&entry.ID, &entry.UserID, &entry.ElectionID, &entry.Approved, &entry.Rejected,
			&entry.Active, &entry.ElectionClosed, &entry.AppliedAt, &entry.ApprovedAt, &entry.ApprovedBy,
			&entry.RejectedAt, &entry.RejectedBy, &entry.RejectionReason, &entry.PromotedBy,
			&entry.Message, &entry.Qualifications, &entry.Goals, &entry.ClosedAt, &entry.CandidateName)
		if err != nil {
			slog.Error("failed to scan application", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		entry.ElectionName = electionNames[entry.ElectionID]
		export.Applications = append(export.Applications, entry)
		if entry.Approved {
			export.Summary.TotalCandidates++
		}
	}
	appRows.Close()

	voteRows, err := h.db.Query(`
		SELECT election_id, candidate_id, voted_at, receipt_id
		FROM votes ORDER BY voted_at
	`)
	if err != nil {
		slog.Error("failed to query votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer voteRows.Close()

	for voteRows.Next() {
		var entry models.ExportVote
		if err := voteRows.Scan(&entry.ElectionID, &entry.CandidateID, &entry.VotedAt, &entry.ReceiptID); err != nil {
			slog.Error("failed to scan vote", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		entry.ElectionName = electionNames[entry.ElectionID]
		export.Votes = append(export.Votes, entry)
	}
	voteRows.Close()

	// Candidate name lookups run after the rows are drained; with sqlite the
	// pool holds a single connection and a nested query would block on it.
	usernames := map[string]string{models.NoneOfAbove: "None of the Above"}
	for i := range export.Votes {
		candidateID := export.Votes[i].CandidateID
		name, cached := usernames[candidateID]
		if !cached {
			user, err := getUserByID(h.db, candidateID)
			if err == sql.ErrNoRows {
				name = candidateID
			} else if err != nil {
				slog.Error("failed to query candidate", "error", err)
				middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
				return
			} else {
				name = user.Username
			}
			usernames[candidateID] = name
		}
		export.Votes[i].CandidateName = name
	}

	export.Summary.TotalElections = len(export.Elections)
	export.Summary.TotalVotes = len(export.Votes)
	export.Summary.ExportedAt = time.Now()

	slog.Info("data exported", "admin_id", admin.ID,
		"elections", export.Summary.TotalElections,
		"votes", humanize.Comma(int64(export.Summary.TotalVotes)))

	middleware.JSONResponse(w, http.StatusOK, export)
}
