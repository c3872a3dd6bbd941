// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"sort"

	"github.com/danielhkuo/smartvote/models"
)

// ComputeTally aggregates the votes of one election into a ranked list.
//
// Ordering is vote count descending with candidate ID ascending as the
// tie-break, so identical inputs always produce identical rankings. The
// none-of-above sentinel is tallied like any candidate but carries a fixed
// display name instead of a user lookup.
func ComputeTally(db *sql.DB, electionID string) ([]models.TallyEntry, error) {
	rows, err := db.Query(`
		SELECT candidate_id, COUNT(*)
		FROM votes
		WHERE election_id = $1
		GROUP BY candidate_id
	`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.TallyEntry{}
	for rows.Next() {
		var entry models.TallyEntry
		if err := rows.Scan(&entry.CandidateID, &entry.VoteCount); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].VoteCount != entries[j].VoteCount {
			return entries[i].VoteCount > entries[j].VoteCount
		}
		return entries[i].CandidateID < entries[j].CandidateID
	})

	for i := range entries {
		entries[i].Rank = i + 1

		if entries[i].CandidateID == models.NoneOfAbove {
			entries[i].Username = "None of the Above"
			continue
		}

		user, err := getUserByID(db, entries[i].CandidateID)
		if err == sql.ErrNoRows {
			// Candidate account deleted after votes were cast; keep the
			// count under the raw ID.
			entries[i].Username = entries[i].CandidateID
			continue
		}
		if err != nil {
			return nil, err
		}
		entries[i].Username = user.Username
		entries[i].Branch = user.Branch
	}

	return entries, nil
}
