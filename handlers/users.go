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

type UserHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewUserHandler(db *sql.DB, cfg cliparse.Config) *UserHandler {
	return &UserHandler{db: db, cfg: cfg}
}

// Register handles POST /auth/register
// New accounts start unapproved and cannot log in until an admin approves
// them. Only voter and admin roles can be requested; super-admin exists
// solely through the bootstrap seed.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Username == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username is required")
		return
	}
	if req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "password is required")
		return
	}
	if req.Password != req.ConfirmPassword {
		middleware.ErrorResponse(w, http.StatusBadRequest, "passwords do not match")
		return
	}
	if req.RegistrationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "registration_id is required")
		return
	}
	if req.Branch == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "branch is required")
		return
	}
	if req.Role != models.RoleVoter && req.Role != models.RoleAdmin {
		middleware.ErrorResponse(w, http.StatusBadRequest, "role must be voter or admin")
		return
	}

	userID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate user ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	passwordHash := auth.HashPassword(req.Password, h.cfg.PasswordSalt)
	email := req.Username + "@college.edu"

	_, err = h.db.Exec(`
		INSERT INTO users (id, username, password_hash, registration_id, branch, role, approved, email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $8)
	`, userID, req.Username, passwordHash, req.RegistrationID, req.Branch, req.Role, email, time.Now())

	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorCode(w, http.StatusConflict, models.ErrConflict, "Username or registration ID already exists")
			return
		}
		slog.Error("failed to insert user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	slog.Info("user registered", "user_id", userID, "username", req.Username, "role", req.Role)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterResponse{
		UserID:  userID,
		Message: "Your account is pending approval",
	})
}

// Login handles POST /auth/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Username == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := scanUser(h.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = $1`, req.Username))
	if err == sql.ErrNoRows {
		middleware.ErrorCode(w, http.StatusUnauthorized, models.ErrUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := auth.VerifyPassword(req.Password, user.PasswordHash, h.cfg.PasswordSalt); err != nil {
		middleware.ErrorCode(w, http.StatusUnauthorized, models.ErrUnauthorized, "Invalid username or password")
		return
	}

	// Pending accounts cannot log in; the bootstrap super-admin is exempt
	if !user.Approved && user.Role != models.RoleSuperAdmin {
		middleware.ErrorCode(w, http.StatusForbidden, models.ErrUnauthorized, "Your account is pending approval")
		return
	}

	token, err := auth.NewSessionToken(user.ID, user.Role, h.cfg.SessionSecret)
	if err != nil {
		slog.Error("failed to sign session token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	effectiveRole, err := EffectiveRole(h.db, user)
	if err != nil {
		slog.Error("failed to compute effective role", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Token:         token,
		User:          user,
		EffectiveRole: effectiveRole,
	})
}

// Me handles GET /users/me
// Returns the profile plus the derived role and the candidacies conferring it.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	effectiveRole, err := EffectiveRole(h.db, user)
	if err != nil {
		slog.Error("failed to compute effective role", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	candidacies, err := ActiveCandidacies(h.db, user.ID)
	if err != nil {
		slog.Error("failed to query active candidacies", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MeResponse{
		User:              user,
		EffectiveRole:     effectiveRole,
		ActiveCandidacies: candidacies,
	})
}

// UpdateProfile handles PUT /users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	_, err := h.db.Exec(`
		UPDATE users SET bio = $1, phone = $2, year = $3, achievements = $4 WHERE id = $5
	`, req.Bio, req.Phone, req.Year, req.Achievements, user.ID)
	if err != nil {
		slog.Error("failed to update profile", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	slog.Info("profile updated", "user_id", user.ID)

	updated, err := getUserByID(h.db, user.ID)
	if err != nil {
		slog.Error("failed to reload user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, updated)
}

// ListUsers handles GET /users (admin)
// ?pending=true narrows to accounts awaiting approval.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.db, h.cfg, w, r); !ok {
		return
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	if r.URL.Query().Get("pending") == "true" {
		query = `SELECT ` + userColumns + ` FROM users WHERE approved = FALSE ORDER BY created_at`
	}

	rows, err := h.db.Query(query)
	if err != nil {
		slog.Error("failed to query users", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			slog.Error("failed to scan user", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		users = append(users, user)
	}

	middleware.JSONResponse(w, http.StatusOK, users)
}

// ApproveUser handles POST /users/{id}/approve (admin)
func (h *UserHandler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	userID := r.PathValue("id")
	user, err := getUserByID(h.db, userID)
	if err == sql.ErrNoRows {
		middleware.ErrorCode(w, http.StatusNotFound, models.ErrNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	_, err = h.db.Exec(`UPDATE users SET approved = TRUE WHERE id = $1`, userID)
	if err != nil {
		slog.Error("failed to approve user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to approve user")
		return
	}

	if err := insertNotification(h.db, userID, models.NotifAccountApproved,
		"Account Approved", "Your account has been approved. You can now log in."); err != nil {
		slog.Warn("failed to record notification", "error", err)
	}

	slog.Info("user approved", "user_id", userID, "username", user.Username, "approved_by", admin.ID)

	user.Approved = true
	middleware.JSONResponse(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /users/{id} (admin)
// Covers both rejection of a pending account and removal of an existing one.
// Cascades to the user's applications, their votes as a voter, and their
// notifications, in a single transaction. Votes cast FOR the user as a
// candidate survive; those only vanish through candidate removal.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, h.cfg, w, r)
	if !ok {
		return
	}

	userID := r.PathValue("id")
	user, err := getUserByID(h.db, userID)
	if err == sql.ErrNoRows {
		middleware.ErrorCode(w, http.StatusNotFound, models.ErrNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if user.Role == models.RoleSuperAdmin {
		middleware.ErrorCode(w, http.StatusConflict, models.ErrConflict, "Super admin accounts cannot be deleted")
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
		`DELETE FROM votes WHERE voter_id = $1`,
		`DELETE FROM applications WHERE user_id = $1`,
		`DELETE FROM notifications WHERE user_id = $1`,
		`DELETE FROM users WHERE id = $1`,
	} {
		if _, err := tx.Exec(stmt, userID); err != nil {
			slog.Error("failed to delete user", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete user")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	slog.Info("user deleted", "user_id", userID, "username", user.Username, "deleted_by", admin.ID)

	w.WriteHeader(http.StatusNoContent)
}
