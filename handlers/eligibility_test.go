// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"testing"

	"github.com/danielhkuo/smartvote/models"
)

func TestEffectiveRoleStaticRoles(t *testing.T) {
	dbConn := setupTestDB(t)
	defer dbConn.Close()

	cfg := getTestConfig()

	adminID, _ := createTestAdmin(t, dbConn, cfg, "admin1")
	superID, _ := createTestUser(t, dbConn, cfg, "root", models.RoleSuperAdmin, true)

	for _, id := range []string{adminID, superID} {
		user, err := getUserByID(dbConn, id)
		if err != nil {
			t.Fatalf("Failed to load user: %v", err)
		}
		role, err := EffectiveRole(dbConn, user)
		if err != nil {
			t.Fatalf("EffectiveRole failed: %v", err)
		}
		if role != user.Role {
			t.Errorf("Expected static role %s, got %s", user.Role, role)
		}
	}
}

func TestEffectiveRoleDerivedCandidate(t *testing.T) {
	dbConn := setupTestDB(t)
	defer dbConn.Close()

	cfg := getTestConfig()

	voterID, _ := createTestUser(t, dbConn, cfg, "voter1", models.RoleVoter, true)
	user, err := getUserByID(dbConn, voterID)
	if err != nil {
		t.Fatalf("Failed to load user: %v", err)
	}

	assertRole := func(expected, context string) {
		t.Helper()
		role, err := EffectiveRole(dbConn, user)
		if err != nil {
			t.Fatalf("EffectiveRole failed (%s): %v", context, err)
		}
		if role != expected {
			t.Errorf("Expected role %s %s, got %s", expected, context, role)
		}
	}

	assertRole(models.RoleVoter, "with no applications")

	electionID := createTestElection(t, dbConn, "Spring Election", true)
	appID := createTestApplication(t, dbConn, voterID, electionID, false)

	assertRole(models.RoleVoter, "with a pending application")

	if _, err := dbConn.Exec(`UPDATE applications SET approved = TRUE WHERE id = $1`, appID); err != nil {
		t.Fatalf("Failed to approve application: %v", err)
	}

	assertRole(models.RoleCandidate, "with an approved active candidacy")

	// Soft-disable withdraws the role
	if _, err := dbConn.Exec(`UPDATE applications SET active = FALSE WHERE id = $1`, appID); err != nil {
		t.Fatalf("Failed to deactivate application: %v", err)
	}
	assertRole(models.RoleVoter, "with a disabled candidacy")

	if _, err := dbConn.Exec(`UPDATE applications SET active = TRUE WHERE id = $1`, appID); err != nil {
		t.Fatalf("Failed to reactivate application: %v", err)
	}
	assertRole(models.RoleCandidate, "after re-enabling the candidacy")

	// Closing the election withdraws it too; the user row never changes
	if _, err := dbConn.Exec(`UPDATE elections SET active = FALSE WHERE id = $1`, electionID); err != nil {
		t.Fatalf("Failed to close election: %v", err)
	}
	assertRole(models.RoleVoter, "after the election closed")

	var storedRole string
	if err := dbConn.QueryRow(`SELECT role FROM users WHERE id = $1`, voterID).Scan(&storedRole); err != nil {
		t.Fatalf("Failed to query user: %v", err)
	}
	if storedRole != models.RoleVoter {
		t.Errorf("Expected stored role to stay voter, got %s", storedRole)
	}
}

func TestActiveCandidacies(t *testing.T) {
	dbConn := setupTestDB(t)
	defer dbConn.Close()

	cfg := getTestConfig()

	voterID, _ := createTestUser(t, dbConn, cfg, "voter1", models.RoleVoter, true)

	activeElection := createTestElection(t, dbConn, "Active Election", true)
	closedElection := createTestElection(t, dbConn, "Closed Election", false)

	createTestApplication(t, dbConn, voterID, activeElection, true)
	createTestApplication(t, dbConn, voterID, closedElection, true)

	candidacies, err := ActiveCandidacies(dbConn, voterID)
	if err != nil {
		t.Fatalf("ActiveCandidacies failed: %v", err)
	}
	if len(candidacies) != 1 {
		t.Fatalf("Expected 1 active candidacy, got %d", len(candidacies))
	}
	if candidacies[0].ElectionID != activeElection {
		t.Errorf("Expected candidacy in active election, got %s", candidacies[0].ElectionID)
	}
}
