// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, session tokens, and ID generation.

# Password Hashing

Passwords are hashed with HMAC-SHA256 under a deployment-wide salt:

	hash := auth.HashPassword(password, salt)
	err := auth.VerifyPassword(password, hash, salt)

Verification uses a constant-time comparison. The salt is operator
configuration, never stored next to the hashes.

# Session Tokens

Sessions are signed JWTs (HS256) carrying the user ID and static role:

	token, err := auth.NewSessionToken(userID, role, secret)
	claims, err := auth.ParseSessionToken(token, secret)

Tokens expire after SessionTTL (12 hours). ParseSessionToken rejects any
token not signed with HMAC, returning ErrInvalidToken.

The role claim is informational only; authorization re-reads the user row
on every request so revoked accounts lose access immediately.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# Vote Receipts

Receipt IDs are prefixed uppercase UUIDs:

	receiptID := auth.GenerateReceiptID()  // "RCP-4B1E..."

Receipts prove participation without revealing the ballot.
*/
package auth
