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

type NotificationHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewNotificationHandler(db *sql.DB, cfg cliparse.Config) *NotificationHandler {
	return &NotificationHandler{db: db, cfg: cfg}
}

const notificationColumns = `id, user_id, type, title, message, read, created_at`

// ListNotifications handles GET /notifications
// Own notifications only, newest first. ?unread=true filters to unread.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`
	if r.URL.Query().Get("unread") == "true" {
		query = `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 AND read = FALSE ORDER BY created_at DESC`
	}

	rows, err := h.db.Query(query, user.ID)
	if err != nil {
		slog.Error("failed to query notifications", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			slog.Error("failed to scan notification", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		notifications = append(notifications, n)
	}

	middleware.JSONResponse(w, http.StatusOK, notifications)
}

// MarkRead handles POST /notifications/{id}/read
// Only the owner can mark their notification; anything else is a 404.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	notificationID := r.PathValue("id")
	result, err := h.db.Exec(`
		UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2
	`, notificationID, user.ID)
	if err != nil {
		slog.Error("failed to mark notification read", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update notification")
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Error("failed to check rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	if affected == 0 {
		middleware.ErrorCode(w, http.StatusNotFound, models.ErrNotFound, "Notification not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "read"})
}

// MarkAllRead handles POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	if _, err := h.db.Exec(`UPDATE notifications SET read = TRUE WHERE user_id = $1`, user.ID); err != nil {
		slog.Error("failed to mark notifications read", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update notifications")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "read"})
}
