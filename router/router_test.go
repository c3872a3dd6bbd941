// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/smartvote/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "smartvote API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	// Test that routes respond (handler is invoked)
	// Unauthenticated requests get 401/403/404 from handlers, never the
	// mux's own 404 page or a 405
	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/auth/register"},
		{"POST", "/auth/login"},

		{"GET", "/users/me"},
		{"PUT", "/users/me"},
		{"GET", "/users"},
		{"POST", "/users/test-id/approve"},
		{"DELETE", "/users/test-id"},

		{"POST", "/elections"},
		{"GET", "/elections"},
		{"GET", "/elections/test-id"},
		{"POST", "/elections/test-id/toggle"},
		{"PUT", "/elections/test-id/limits"},
		{"DELETE", "/elections/test-id"},
		{"GET", "/elections/test-id/history"},

		{"POST", "/elections/test-id/applications"},
		{"POST", "/elections/test-id/candidates"},
		{"GET", "/applications"},
		{"POST", "/applications/test-id/approve"},
		{"POST", "/applications/test-id/reject"},
		{"POST", "/applications/test-id/toggle"},
		{"DELETE", "/applications/test-id"},

		{"POST", "/elections/test-id/votes"},
		{"GET", "/elections/test-id/votes/me"},
		{"GET", "/votes/test-id/receipt"},

		{"GET", "/elections/test-id/results"},
		{"GET", "/export"},

		{"GET", "/notifications"},
		{"POST", "/notifications/test-id/read"},
		{"POST", "/notifications/read-all"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s not registered (405)", tc.method, tc.path)
			}
			if w.Code == http.StatusNotFound && w.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Route %s %s fell through to the mux 404", tc.method, tc.path)
			}
		})
	}
}
