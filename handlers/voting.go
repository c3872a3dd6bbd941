// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/smartvote/auth"
	"github.com/danielhkuo/smartvote/cliparse"
	"github.com/danielhkuo/smartvote/middleware"
	"github.com/danielhkuo/smartvote/models"
)

type VoteHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{db: db, cfg: cfg}
}

const voteColumns = `id, voter_id, election_id, candidate_id, voted_at, receipt_id`

func scanVote(row rowScanner) (models.Vote, error) {
	var v models.Vote
	err := row.Scan(&v.ID, &v.VoterID, &v.ElectionID, &v.CandidateID, &v.VotedAt, &v.ReceiptID)
	return v, err
}

// CastVote handles POST /elections/{id}/votes
//
// Check order is fixed: election exists, voter has not voted here, election
// is active, candidate is on the approved roster (none-of-above is exempt),
// voter limit not reached. The UNIQUE (voter_id, election_id) constraint
// backs the already-voted check against concurrent requests.
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.db, h.cfg, w, r)
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

	var existing int
	err = h.db.QueryRow(`
		SELECT COUNT(*) FROM votes WHERE voter_id = $1 AND election_id = $2
	`, user.ID, electionID).Scan(&existing)
	if err != nil {
		slog.Error("failed to query votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if existing > 0 {
		middleware.ErrorCode(w, http.StatusConflict, models.ErrAlreadyVoted, "You have already voted in this election")
		return
	}

	if !election.Active {
		middleware.ErrorCode(w, http.StatusConflict, models.ErrElectionNotActive, "Election is not open for voting")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.CandidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id is required")
		return
	}

	if req.CandidateID != models.NoneOfAbove {
		var onRoster int
		err = h.db.QueryRow(`
			SELECT COUNT(*) FROM applications
			WHERE election_id = $1 AND user_id = $2 AND approved = TRUE AND active = TRUE
		`, electionID, req.CandidateID).Scan(&onRoster)
		if err != nil {
			slog.Error("failed to query roster", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if onRoster == 0 {
			middleware.ErrorCode(w, http.StatusNotFound, models.ErrNotFound, "Candidate is not on the ballot for this election")
			return
		}
	}

	var voteCount int
	err = h.db.QueryRow(`SELECT COUNT(*) FROM votes WHERE election_id = $1`, electionID).Scan(&voteCount)
	if err != nil {
		slog.Error("failed to count votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if voteCount >= election.MaxVoters {
		middleware.ErrorCode(w, http.StatusConflict, models.ErrConflict, "Election has reached its voter limit")
		return
	}

	voteID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate vote ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}
	receiptID := auth.GenerateReceiptID()
	votedAt := time.Now()

	_, err = h.db.Exec(`
		INSERT INTO votes (id, voter_id, election_id, candidate_id, voted_at, receipt_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, voteID, user.ID, electionID, req.CandidateID, votedAt, receiptID)

	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorCode(w, http.StatusConflict, models.ErrAlreadyVoted, "You have already voted in this election")
			return
		}
		slog.Error("failed to insert vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	if err := insertNotification(h.db, user.ID, models.NotifVoteCast,
		"Vote Recorded", "Your vote in "+election.Name+" has been recorded. Receipt: "+receiptID); err != nil {
		slog.Warn("failed to record notification", "error", err)
	}

	slog.Info("vote cast", "vote_id", voteID, "election_id", electionID, "receipt_id", receiptID)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		VoteID:    voteID,
		ReceiptID: receiptID,
		VotedAt:   votedAt,
	})
}

// MyVote handles GET /elections/{id}/votes/me
// Lets a voter confirm their own ballot; 404 when they have not voted.
func (h *VoteHandler) MyVote(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	electionID := r.PathValue("id")
	vote, err := scanVote(h.db.QueryRow(`
		SELECT `+voteColumns+` FROM votes WHERE voter_id = $1 AND election_id = $2
	`, user.ID, electionID))
	if err == sql.ErrNoRows {
		middleware.ErrorCode(w, http.StatusNotFound, models.ErrNotFound, "You have not voted in this election")
		return
	}
	if err != nil {
		slog.Error("failed to query vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, vote)
}

// DownloadReceipt handles GET /votes/{id}/receipt
// Plain-text confirmation slip for the voter's own vote. Deliberately omits
// the chosen candidate so the slip proves participation, not the ballot.
func (h *VoteHandler) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	voteID := r.PathValue("id")
	vote, err := scanVote(h.db.QueryRow(`SELECT `+voteColumns+` FROM votes WHERE id = $1`, voteID))
	if err == sql.ErrNoRows {
		middleware.ErrorCode(w, http.StatusNotFound, models.ErrNotFound, "Vote not found")
		return
	}
	if err != nil {
		slog.Error("failed to query vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if vote.VoterID != user.ID {
		middleware.ErrorCode(w, http.StatusForbidden, models.ErrUnauthorized, "Receipts are only available to the voter")
		return
	}

	election, err := getElectionByID(h.db, vote.ElectionID)
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="receipt-`+vote.ReceiptID+`.txt"`)
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "VOTE RECEIPT\n")
	fmt.Fprintf(w, "============\n\n")
	fmt.Fprintf(w, "Receipt ID: %s\n", vote.ReceiptID)
	fmt.Fprintf(w, "Election:   %s\n", election.Name)
	fmt.Fprintf(w, "Voter:      %s\n", user.Username)
	fmt.Fprintf(w, "Cast:       %s (%s)\n", vote.VotedAt.Format(time.RFC1123), humanize.Time(vote.VotedAt))
	fmt.Fprintf(w, "\nThis receipt confirms your vote was recorded. It does not reveal your ballot.\n")
}
