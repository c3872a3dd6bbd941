// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/smartvote/models"
)

func TestJSONResponse(t *testing.T) {
	w := httptest.NewRecorder()
	JSONResponse(w, http.StatusCreated, map[string]string{"hello": "world"})

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %s", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["hello"] != "world" {
		t.Errorf("Unexpected body: %v", body)
	}
}

func TestErrorCode(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorCode(w, http.StatusConflict, models.ErrAlreadyVoted, "You have already voted")

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if resp.Error != "Conflict" {
		t.Errorf("Expected error Conflict, got %s", resp.Error)
	}
	if resp.Code != models.ErrAlreadyVoted {
		t.Errorf("Expected code %s, got %s", models.ErrAlreadyVoted, resp.Code)
	}
	if resp.Message != "You have already voted" {
		t.Errorf("Unexpected message: %s", resp.Message)
	}
}

func TestErrorResponseOmitsCode(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")

	if strings.Contains(w.Body.String(), `"code"`) {
		t.Errorf("Expected code field omitted, got %s", w.Body.String())
	}
}

func TestParseJSONBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"candidate_id":"abc"}`))

	var body models.CastVoteRequest
	if err := ParseJSONBody(req, &body); err != nil {
		t.Fatalf("ParseJSONBody failed: %v", err)
	}
	if body.CandidateID != "abc" {
		t.Errorf("Expected candidate_id abc, got %s", body.CandidateID)
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{invalid`))
	if err := ParseJSONBody(req, &body); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"valid bearer", "Bearer abc123", "abc123"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"bare token", "abc123", ""},
		{"trailing space", "Bearer abc123 ", "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := BearerToken(req); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCORSPreflights(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Preflight should not reach the handler")
	}))

	req := httptest.NewRequest("OPTIONS", "/elections", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Expected origin echoed, got %s", got)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{
			name:     "x-forwarded-for single",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.5"},
			remote:   "10.0.0.1:1234",
			expected: "203.0.113.5",
		},
		{
			name:     "x-forwarded-for chain",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.2"},
			remote:   "10.0.0.1:1234",
			expected: "203.0.113.5",
		},
		{
			name:     "x-real-ip",
			headers:  map[string]string{"X-Real-IP": "203.0.113.9"},
			remote:   "10.0.0.1:1234",
			expected: "203.0.113.9",
		},
		{
			name:     "remote addr fallback",
			remote:   "10.0.0.1:1234",
			expected: "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := GetClientIP(req); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}
