// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterRequest: username, password, confirm_password, registration_id, branch, role
  - LoginRequest: username, password
  - UpdateProfileRequest: bio, phone, year, achievements
  - CreateElectionRequest: name, description, max_candidates, max_voters, active
  - UpdateLimitsRequest: field, value
  - ApplyRequest: message, qualifications, goals
  - PromoteRequest: user_id, message
  - RejectApplicationRequest: reason
  - CastVoteRequest: candidate_id

# Response Types

Types for JSON responses:

  - RegisterResponse: user_id, message
  - LoginResponse: token, user, effective_role
  - MeResponse: user, effective_role, active_candidacies
  - CastVoteResponse: vote_id, receipt_id, voted_at
  - ResultsResponse: election, results
  - ExportResponse: elections, applications, votes, summary
  - ErrorResponse: error, code, message

# Domain Types

Internal data structures:

  - User: account with static role and review state (password hash never serialized)
  - Election: two-state lifecycle with candidate and voter limits
  - Application: candidacy with full resolution history
  - Vote: immutable ballot with receipt ID
  - Notification: per-user event record
  - TallyEntry: one ranked row of a result

# Constants

Roles:

	RoleVoter      = "voter"
	RoleCandidate  = "candidate"  // derived, never stored
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"

Ballot sentinel:

	NoneOfAbove = "none-of-above"

Error kind codes (the "code" field of error responses):

	ErrNotFound, ErrDuplicateApplication, ErrAlreadyVoted,
	ErrAlreadyResolved, ErrElectionNotActive, ErrInvalidLimit,
	ErrUnauthorized, ErrConflict
*/
package models
