// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"

	"github.com/danielhkuo/smartvote/models"
)

// ActiveCandidacies returns the user's applications that currently confer
// candidate capability: approved, not soft-disabled, and referencing an
// election that still exists and is active.
func ActiveCandidacies(db *sql.DB, userID string) ([]models.Application, error) {
	rows, err := db.Query(`
		SELECT `+prefixedApplicationColumns+`
		FROM applications a
		JOIN elections e ON a.election_id = e.id
		WHERE a.user_id = $1
		  AND a.approved = TRUE
		  AND a.active = TRUE
		  AND e.active = TRUE
		ORDER BY a.applied_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// EffectiveRole computes the role used for authorization decisions.
//
// Admin and super-admin are permanent static roles. A voter holds the
// candidate role exactly while at least one active candidacy exists; the
// capability appears and disappears with election state, with no mutation of
// the user row. Must be recomputed on demand - never cached.
func EffectiveRole(db *sql.DB, user models.User) (string, error) {
	if user.Role == models.RoleAdmin || user.Role == models.RoleSuperAdmin {
		return user.Role, nil
	}

	candidacies, err := ActiveCandidacies(db, user.ID)
	if err != nil {
		return "", err
	}
	if len(candidacies) > 0 {
		return models.RoleCandidate, nil
	}

	return user.Role, nil
}

// applicationColumns qualified with the "a." alias for joined queries
const prefixedApplicationColumns = `a.id, a.user_id, a.election_id, a.approved, a.rejected, a.active, a.election_closed, a.applied_at,
	a.approved_at, a.approved_by, a.rejected_at, a.rejected_by, a.rejection_reason, a.promoted_by,
	a.message, a.qualifications, a.goals, a.closed_at`
