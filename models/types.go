// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Static role constants. "candidate" is never stored on a user row; it is
// derived from active approved candidacies (see handlers.EffectiveRole).
const (
	RoleVoter      = "voter"
	RoleCandidate  = "candidate"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
)

// NoneOfAbove is the sentinel candidate option. Votes for it require no
// corresponding user or application row.
const NoneOfAbove = "none-of-above"

// Election limit field names accepted by the limits endpoint
const (
	FieldMaxCandidates = "max_candidates"
	FieldMaxVoters     = "max_voters"
)

// Error kind codes returned in the "code" field of error responses
const (
	ErrNotFound             = "not_found"
	ErrDuplicateApplication = "duplicate_application"
	ErrAlreadyVoted         = "already_voted"
	ErrAlreadyResolved      = "already_resolved"
	ErrElectionNotActive    = "election_not_active"
	ErrInvalidLimit         = "invalid_limit"
	ErrUnauthorized         = "unauthorized"
	ErrConflict             = "conflict"
)

// Notification type constants
const (
	NotifVoteCast            = "vote-cast"
	NotifAccountApproved     = "account-approved"
	NotifApplicationApproved = "application-approved"
	NotifApplicationRejected = "application-rejected"
	NotifPromotion           = "promotion"
	NotifElectionClosed      = "election-closed"
)

// Request types

type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	RegistrationID  string `json:"registration_id"`
	Branch          string `json:"branch"`
	Role            string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Bio          string `json:"bio"`
	Phone        string `json:"phone"`
	Year         string `json:"year"`
	Achievements string `json:"achievements"`
}

type CreateElectionRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	MaxCandidates int    `json:"max_candidates"`
	MaxVoters     int    `json:"max_voters"`
	Active        *bool  `json:"active,omitempty"` // defaults to true
}

type UpdateLimitsRequest struct {
	Field string `json:"field"` // max_candidates or max_voters
	Value int    `json:"value"`
}

type ApplyRequest struct {
	Message        string `json:"message"`
	Qualifications string `json:"qualifications"`
	Goals          string `json:"goals"`
}

type PromoteRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type RejectApplicationRequest struct {
	Reason string `json:"reason"`
}

type CastVoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

// Response types

type RegisterResponse struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type LoginResponse struct {
	Token         string `json:"token"`
	User          User   `json:"user"`
	EffectiveRole string `json:"effective_role"`
}

type MeResponse struct {
	User              User          `json:"user"`
	EffectiveRole     string        `json:"effective_role"`
	ActiveCandidacies []Application `json:"active_candidacies"`
}

type CreateElectionResponse struct {
	ElectionID string `json:"election_id"`
}

type ToggleElectionResponse struct {
	Election Election `json:"election"`
}

type ApplyResponse struct {
	ApplicationID string `json:"application_id"`
	Message       string `json:"message"`
}

type CastVoteResponse struct {
	VoteID    string    `json:"vote_id"`
	ReceiptID string    `json:"receipt_id"`
	VotedAt   time.Time `json:"voted_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Domain types

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"` // Never expose in JSON
	RegistrationID string    `json:"registration_id"`
	Branch         string    `json:"branch"`
	Role           string    `json:"role"`
	Approved       bool      `json:"approved"`
	Email          string    `json:"email"`
	Bio            *string   `json:"bio,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	Year           *string   `json:"year,omitempty"`
	Achievements   *string   `json:"achievements,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Election struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Active        bool       `json:"active"`
	MaxCandidates int        `json:"max_candidates"`
	MaxVoters     int        `json:"max_voters"`
	CreatedAt     time.Time  `json:"created_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
}

type Application struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ElectionID      string     `json:"election_id"`
	Approved        bool       `json:"approved"`
	Rejected        bool       `json:"rejected"`
	Active          bool       `json:"active"`
	ElectionClosed  bool       `json:"election_closed"`
	AppliedAt       time.Time  `json:"applied_at"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	ApprovedBy      *string    `json:"approved_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectedBy      *string    `json:"rejected_by,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	PromotedBy      *string    `json:"promoted_by,omitempty"`
	Message         *string    `json:"message,omitempty"`
	Qualifications  *string    `json:"qualifications,omitempty"`
	Goals           *string    `json:"goals,omitempty"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
}

type Vote struct {
	ID          string    `json:"id"`
	VoterID     string    `json:"voter_id"`
	ElectionID  string    `json:"election_id"`
	CandidateID string    `json:"candidate_id"`
	VotedAt     time.Time `json:"voted_at"`
	ReceiptID   string    `json:"receipt_id"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Tally result types

type TallyEntry struct {
	CandidateID string `json:"candidate_id"`
	Username    string `json:"username"`
	Branch      string `json:"branch,omitempty"`
	VoteCount   int    `json:"vote_count"`
	Rank        int    `json:"rank"` // 1-indexed ranking
}

type ResultsResponse struct {
	Election Election     `json:"election"`
	Results  []TallyEntry `json:"results"`
}

// Election history (admin audit view)

type ElectionHistory struct {
	Election     Election      `json:"election"`
	Applications []Application `json:"applications"`
	VoteCount    int           `json:"vote_count"`
}

// Export types

type ExportApplication struct {
	Application
	CandidateName string `json:"candidate_name"`
	ElectionName  string `json:"election_name"`
}

type ExportVote struct {
	ElectionID    string    `json:"election_id"`
	ElectionName  string    `json:"election_name"`
	CandidateID   string    `json:"candidate_id"`
	CandidateName string    `json:"candidate_name"`
	VotedAt       time.Time `json:"voted_at"`
	ReceiptID     string    `json:"receipt_id"`
}

type ExportSummary struct {
	TotalElections  int       `json:"total_elections"`
	ActiveElections int       `json:"active_elections"`
	TotalVotes      int       `json:"total_votes"`
	TotalCandidates int       `json:"total_candidates"`
	ExportedAt      time.Time `json:"exported_at"`
}

type ExportResponse struct {
	Elections    []Election          `json:"elections"`
	Applications []ExportApplication `json:"applications"`
	Votes        []ExportVote        `json:"votes"`
	Summary      ExportSummary       `json:"summary"`
}
