// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

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

// SetupTestDB creates a fresh in-memory SQLite database with the full schema.
// Each test gets its own database; t.Cleanup closes it.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          4117,
		DatabaseURL:   ":memory:",
		DatabaseType:  "sqlite",
		PasswordSalt:  "test-password-salt",
		SessionSecret: "test-session-secret",
	}
}

// CreateTestUser inserts an account and returns its ID and a valid session
// token. approved controls whether the account has passed admin review.
func CreateTestUser(t *testing.T, dbConn *sql.DB, cfg cliparse.Config, username, role string, approved bool) (userID, token string) {
	t.Helper()

	userID, _ = auth.GenerateID(16)
	passwordHash := auth.HashPassword("password123", cfg.PasswordSalt)

	_, err := dbConn.Exec(`
		INSERT INTO users (id, username, password_hash, registration_id, branch, role, approved, email, created_at)
		VALUES ($1, $2, $3, $4, 'Engineering', $5, $6, $7, $8)
	`, userID, username, passwordHash, "REG-"+username, role, approved, username+"@college.edu", time.Now())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	token, err = auth.NewSessionToken(userID, role, cfg.SessionSecret)
	if err != nil {
		t.Fatalf("Failed to create session token: %v", err)
	}

	return userID, token
}

// CreateTestAdmin inserts an approved admin account
func CreateTestAdmin(t *testing.T, dbConn *sql.DB, cfg cliparse.Config, username string) (userID, token string) {
	t.Helper()
	return CreateTestUser(t, dbConn, cfg, username, models.RoleAdmin, true)
}

// CreateTestElection inserts an election and returns its ID
func CreateTestElection(t *testing.T, dbConn *sql.DB, name string, active bool) string {
	t.Helper()

	electionID, _ := auth.GenerateID(16)
	var closedAt *time.Time
	if !active {
		now := time.Now()
		closedAt = &now
	}

	_, err := dbConn.Exec(`
		INSERT INTO elections (id, name, name_lower, description, active, max_candidates, max_voters, created_at, closed_at)
		VALUES ($1, $2, $3, 'A test election', $4, 10, 100, $5, $6)
	`, electionID, name, strings.ToLower(name), active, time.Now(), closedAt)
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return electionID
}

// CreateTestApplication inserts a candidacy application and returns its ID.
// approved also sets active, mirroring the approval flow.
func CreateTestApplication(t *testing.T, dbConn *sql.DB, userID, electionID string, approved bool) string {
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

// CastTestVote inserts a vote directly and returns its ID and receipt ID
func CastTestVote(t *testing.T, dbConn *sql.DB, voterID, electionID, candidateID string) (voteID, receiptID string) {
	t.Helper()

	voteID, _ = auth.GenerateID(16)
	receiptID = auth.GenerateReceiptID()

	_, err := dbConn.Exec(`
		INSERT INTO votes (id, voter_id, election_id, candidate_id, voted_at, receipt_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, voteID, voterID, electionID, candidateID, time.Now(), receiptID)
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}

	return voteID, receiptID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AuthHeader builds the Authorization header map for a session token
func AuthHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
