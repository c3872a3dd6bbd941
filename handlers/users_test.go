// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/smartvote/auth"
	"github.com/danielhkuo/smartvote/cliparse"
	"github.com/danielhkuo/smartvote/db"
	"github.com/danielhkuo/smartvote/models"
)

// setupTestDB creates an in-memory database for testing
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

func getTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          4117,
		DatabaseURL:   ":memory:",
		DatabaseType:  "sqlite",
		PasswordSalt:  "test-password-salt",
		SessionSecret: "test-session-secret",
	}
}

// createTestUser inserts an account and returns its ID and session token
func createTestUser(t *testing.T, dbConn *sql.DB, cfg cliparse.Config, username, role string, approved bool) (string, string) {
	t.Helper()

	userID, _ := auth.GenerateID(16)
	_, err := dbConn.Exec(`
		INSERT INTO users (id, username, password_hash, registration_id, branch, role, approved, email, created_at)
		VALUES ($1, $2, $3, $4, 'Engineering', $5, $6, $7, $8)
	`, userID, username, auth.HashPassword("password123", cfg.PasswordSalt),
		"REG-"+username, role, approved, username+"@college.edu", time.Now())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	token, err := auth.NewSessionToken(userID, role, cfg.SessionSecret)
	if err != nil {
		t.Fatalf("Failed to create session token: %v", err)
	}

	return userID, token
}

func createTestAdmin(t *testing.T, dbConn *sql.DB, cfg cliparse.Config, username string) (string, string) {
	t.Helper()
	return createTestUser(t, dbConn, cfg, username, models.RoleAdmin, true)
}

// createTestElection inserts an election with generous default limits
func createTestElection(t *testing.T, dbConn *sql.DB, name string, active bool) string {
	t.Helper()

	electionID, _ := auth.GenerateID(16)
	_, err := dbConn.Exec(`
		INSERT INTO elections (id, name, name_lower, description, active, max_candidates, max_voters, created_at)
		VALUES ($1, $2, $3, 'A test election', $4, 10, 100, $5)
	`, electionID, name, strings.ToLower(name), active, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return electionID
}

func createTestApplication(t *testing.T, dbConn *sql.DB, userID, electionID string, approved bool) string {
	t.Helper()

	applicationID, _ := auth.GenerateID(16)
	_, err := dbConn.Exec(`
		INSERT INTO applications (id, user_id, election_id, approved, rejected, active, election_closed, applied_at)
		VALUES ($1, $2, $3, $4, FALSE, TRUE, FALSE, $5)
	`, applicationID, userID, electionID, approved, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test application: %v", err)
	}

	return applicationID
}

func castTestVote(t *testing.T, dbConn *sql.DB, voterID, electionID, candidateID string) string {
	t.Helper()

	voteID, _ := auth.GenerateID(16)
	_, err := dbConn.Exec(`
		INSERT INTO votes (id, voter_id, election_id, candidate_id, voted_at, receipt_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, voteID, voterID, electionID, candidateID, time.Now(), auth.GenerateReceiptID())
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}

	return voteID
}

func authedRequest(method, path string, body interface{}, token string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestRegister(t *testing.T) {
	dbConn := setupTestDB(t)
	defer dbConn.Close()

	cfg := getTestConfig()
	handler := NewUserHandler(dbConn, cfg)

	tests := []struct {
		name           string
		requestBody    models.RegisterRequest
		expectedStatus int
	}{
		{
			name: "valid voter registration",
			requestBody: models.RegisterRequest{
				Username:        "alice",
				Password:        "secret123",
				ConfirmPassword: "secret123",
				RegistrationID:  "REG-1001",
				Branch:          "Engineering",
				Role:            models.RoleVoter,
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "valid admin registration",
			requestBody: models.RegisterRequest{
				Username:        "bob",
				Password:        "secret123",
				ConfirmPassword: "secret123",
				RegistrationID:  "REG-1002",
				Branch:          "Science",
				Role:            models.RoleAdmin,
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "super-admin role rejected",
			requestBody: models.RegisterRequest{
				Username:        "mallory",
				Password:        "secret123",
				ConfirmPassword: "secret123",
				RegistrationID:  "REG-1003",
				Branch:          "Engineering",
				Role:            models.RoleSuperAdmin,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "password mismatch",
			requestBody: models.RegisterRequest{
				Username:        "carol",
				Password:        "secret123",
				ConfirmPassword: "different",
				RegistrationID:  "REG-1004",
				Branch:          "Engineering",
				Role:            models.RoleVoter,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing registration id",
			requestBody: models.RegisterRequest{
				Username:        "dave",
				Password:        "secret123",
				ConfirmPassword: "secret123",
				Branch:          "Engineering",
				Role:            models.RoleVoter,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate username",
			requestBody: models.RegisterRequest{
				Username:        "alice",
				Password:        "secret123",
				ConfirmPassword: "secret123",
				RegistrationID:  "REG-1005",
				Branch:          "Engineering",
				Role:            models.RoleVoter,
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest("POST", "/auth/register", tt.requestBody, "")
			w := httptest.NewRecorder()

			handler.Register(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus == http.StatusCreated {
				var resp models.RegisterResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if resp.UserID == "" {
					t.Error("Expected non-empty user_id")
				}

				// New accounts must start unapproved
				var approved bool
				err := dbConn.QueryRow(`SELECT approved FROM users WHERE id = $1`, resp.UserID).Scan(&approved)
				if err != nil {
					t.Fatalf("Failed to query user: %v", err)
				}
				if approved {
					t.Error("Expected new account to be unapproved")
				}
			}
		})
	}
}

func TestLoginPendingApproval(t *testing.T) {
	dbConn := setupTestDB(t)
	defer dbConn.Close()

	cfg := getTestConfig()
	handler := NewUserHandler(dbConn, cfg)

	createTestUser(t, dbConn, cfg, "pending", models.RoleVoter, false)

	req := authedRequest("POST", "/auth/login", models.LoginRequest{
		Username: "pending",
		Password: "password123",
	}, "")
	w := httptest.NewRecorder()

	handler.Login(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for pending account, got %d. Body: %s", w.Code, w.Body.String())
	}
}

func TestLogin(t *testing.T) {
	dbConn := setupTestDB(t)
	defer dbConn.Close()

	cfg := getTestConfig()
	handler := NewUserHandler(dbConn, cfg)

	userID, _ := createTestUser(t, dbConn, cfg, "alice", models.RoleVoter, true)

	tests := []struct {
		name           string
		requestBody    models.LoginRequest
		expectedStatus int
	}{
		{
			name:           "valid credentials",
			requestBody:    models.LoginRequest{Username: "alice", Password: "password123"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong password",
			requestBody:    models.LoginRequest{Username: "alice", Password: "wrong"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unknown username",
			requestBody:    models.LoginRequest{Username: "nobody", Password: "password123"},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest("POST", "/auth/login", tt.requestBody, "")
			w := httptest.NewRecorder()

			handler.Login(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus == http.StatusOK {
				var resp models.LoginResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if resp.Token == "" {
					t.Error("Expected non-empty token")
				}
				if resp.User.ID != userID {
					t.Errorf("Expected user ID %s, got %s", userID, resp.User.ID)
				}
				if resp.EffectiveRole != models.RoleVoter {
					t.Errorf("Expected effective role voter, got %s", resp.EffectiveRole)
				}
			}
		})
	}
}

func TestApproveUser(t *testing.T) {
	dbConn := setupTestDB(t)
	defer dbConn.Close()

	cfg := getTestConfig()
	handler := NewUserHandler(dbConn, cfg)

	_, adminToken := createTestAdmin(t, dbConn, cfg, "admin1")
	userID, _ := createTestUser(t, dbConn, cfg, "pending", models.RoleVoter, false)

	req := authedRequest("POST", "/users/"+userID+"/approve", nil, adminToken)
	req.SetPathValue("id", userID)
	w := httptest.NewRecorder()

	handler.ApproveUser(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var approved bool
	if err := dbConn.QueryRow(`SELECT approved FROM users WHERE id = $1`, userID).Scan(&approved); err != nil {
		t.Fatalf("Failed to query user: %v", err)
	}
	if !approved {
		t.Error("Expected user to be approved")
	}

	// Approval should leave a notification
	var count int
	err := dbConn.QueryRow(`
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND type = $2
	`, userID, models.NotifAccountApproved).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query notifications: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 approval notification, got %d", count)
	}
}

func TestApproveUserRequiresAdmin(t *testing.T) {
	dbConn := setupTestDB(t)
	defer dbConn.Close()

	cfg := getTestConfig()
	handler := NewUserHandler(dbConn, cfg)

	_, voterToken := createTestUser(t, dbConn, cfg, "voter1", models.RoleVoter, true)
	userID, _ := createTestUser(t, dbConn, cfg, "pending", models.RoleVoter, false)

	req := authedRequest("POST", "/users/"+userID+"/approve", nil, voterToken)
	req.SetPathValue("id", userID)
	w := httptest.NewRecorder()

	handler.ApproveUser(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	dbConn := setupTestDB(t)
	defer dbConn.Close()

	cfg := getTestConfig()
	handler := NewUserHandler(dbConn, cfg)

	_, adminToken := createTestAdmin(t, dbConn, cfg, "admin1")
	voterID, _ := createTestUser(t, dbConn, cfg, "voter1", models.RoleVoter, true)
	candidateID, _ := createTestUser(t, dbConn, cfg, "candidate1", models.RoleVoter, true)

	electionID := createTestElection(t, dbConn, "Spring Election", true)
	createTestApplication(t, dbConn, candidateID, electionID, true)
	createTestApplication(t, dbConn, voterID, electionID, false)
	castTestVote(t, dbConn, voterID, electionID, candidateID)

	req := authedRequest("DELETE", "/users/"+voterID, nil, adminToken)
	req.SetPathValue("id", voterID)
	w := httptest.NewRecorder()

	handler.DeleteUser(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d. Body: %s", w.Code, w.Body.String())
	}

	for _, check := range []struct {
		query string
		want  int
		desc  string
	}{
		{`SELECT COUNT(*) FROM users WHERE id = '` + voterID + `'`, 0, "user rows"},
		{`SELECT COUNT(*) FROM votes WHERE voter_id = '` + voterID + `'`, 0, "voter's votes"},
		{`SELECT COUNT(*) FROM applications WHERE user_id = '` + voterID + `'`, 0, "voter's applications"},
		{`SELECT COUNT(*) FROM applications WHERE user_id = '` + candidateID + `'`, 1, "other applications"},
	} {
		var count int
		if err := dbConn.QueryRow(check.query).Scan(&count); err != nil {
			t.Fatalf("Failed to query %s: %v", check.desc, err)
		}
		if count != check.want {
			t.Errorf("Expected %d %s, got %d", check.want, check.desc, count)
		}
	}
}

func TestDeleteSuperAdminRefused(t *testing.T) {
	dbConn := setupTestDB(t)
	defer dbConn.Close()

	cfg := getTestConfig()
	handler := NewUserHandler(dbConn, cfg)

	_, adminToken := createTestAdmin(t, dbConn, cfg, "admin1")
	superID, _ := createTestUser(t, dbConn, cfg, "root", models.RoleSuperAdmin, true)

	req := authedRequest("DELETE", "/users/"+superID, nil, adminToken)
	req.SetPathValue("id", superID)
	w := httptest.NewRecorder()

	handler.DeleteUser(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
}
