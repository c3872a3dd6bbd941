// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/smartvote/cliparse"
	"github.com/danielhkuo/smartvote/middleware"
	"github.com/danielhkuo/smartvote/models"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// GetResults handles GET /elections/{id}/results
// Available to any authenticated user, for open and closed elections alike.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(h.db, h.cfg, w, r); !ok {
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

	results, err := ComputeTally(h.db, electionID)
	if err != nil {
		slog.Error("failed to compute tally", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		Election: election,
		Results:  results,
	})
}
