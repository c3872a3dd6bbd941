// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/smartvote/cliparse"
	"github.com/danielhkuo/smartvote/handlers"
	"github.com/danielhkuo/smartvote/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(db, cfg)
	electionHandler := handlers.NewElectionHandler(db, cfg)
	applicationHandler := handlers.NewApplicationHandler(db, cfg)
	voteHandler := handlers.NewVoteHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)
	exportHandler := handlers.NewExportHandler(db, cfg)
	notificationHandler := handlers.NewNotificationHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Authentication
	mux.HandleFunc("POST /auth/register", middleware.WithLogging(userHandler.Register))
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(userHandler.Login))

	// User accounts
	mux.HandleFunc("GET /users/me", middleware.WithLogging(userHandler.Me))
	mux.HandleFunc("PUT /users/me", middleware.WithLogging(userHandler.UpdateProfile))
	mux.HandleFunc("GET /users", middleware.WithLogging(userHandler.ListUsers))
	mux.HandleFunc("POST /users/{id}/approve", middleware.WithLogging(userHandler.ApproveUser))
	mux.HandleFunc("DELETE /users/{id}", middleware.WithLogging(userHandler.DeleteUser))

	// Election management (admin operations)
	mux.HandleFunc("POST /elections", middleware.WithLogging(electionHandler.CreateElection))
	mux.HandleFunc("GET /elections", middleware.WithLogging(electionHandler.ListElections))
	mux.HandleFunc("GET /elections/{id}", middleware.WithLogging(electionHandler.GetElection))
	mux.HandleFunc("POST /elections/{id}/toggle", middleware.WithLogging(electionHandler.ToggleElection))
	mux.HandleFunc("PUT /elections/{id}/limits", middleware.WithLogging(electionHandler.UpdateLimits))
	mux.HandleFunc("DELETE /elections/{id}", middleware.WithLogging(electionHandler.DeleteElection))
	mux.HandleFunc("GET /elections/{id}/history", middleware.WithLogging(electionHandler.GetHistory))

	// Candidacy
	mux.HandleFunc("POST /elections/{id}/applications", middleware.WithLogging(applicationHandler.Apply))
	mux.HandleFunc("POST /elections/{id}/candidates", middleware.WithLogging(applicationHandler.Promote))
	mux.HandleFunc("GET /applications", middleware.WithLogging(applicationHandler.ListApplications))
	mux.HandleFunc("POST /applications/{id}/approve", middleware.WithLogging(applicationHandler.ApproveApplication))
	mux.HandleFunc("POST /applications/{id}/reject", middleware.WithLogging(applicationHandler.RejectApplication))
	mux.HandleFunc("POST /applications/{id}/toggle", middleware.WithLogging(applicationHandler.ToggleAccess))
	mux.HandleFunc("DELETE /applications/{id}", middleware.WithLogging(applicationHandler.RemoveCandidate))

	// Voting
	mux.HandleFunc("POST /elections/{id}/votes", middleware.WithLogging(voteHandler.CastVote))
	mux.HandleFunc("GET /elections/{id}/votes/me", middleware.WithLogging(voteHandler.MyVote))
	mux.HandleFunc("GET /votes/{id}/receipt", middleware.WithLogging(voteHandler.DownloadReceipt))

	// Results
	mux.HandleFunc("GET /elections/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Administration
	mux.HandleFunc("GET /export", middleware.WithLogging(exportHandler.Export))

	// Notifications
	mux.HandleFunc("GET /notifications", middleware.WithLogging(notificationHandler.ListNotifications))
	mux.HandleFunc("POST /notifications/{id}/read", middleware.WithLogging(notificationHandler.MarkRead))
	mux.HandleFunc("POST /notifications/read-all", middleware.WithLogging(notificationHandler.MarkAllRead))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("smartvote API v1"))
	})

	return mux
}
