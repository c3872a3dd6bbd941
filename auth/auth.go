// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid session token")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashPassword derives a deterministic HMAC digest of the password.
// The salt comes from config and must stay stable across restarts,
// otherwise existing accounts can no longer log in.
func HashPassword(password, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(password))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner storage
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// VerifyPassword checks a candidate password against the stored hash
// in constant time.
func VerifyPassword(password, storedHash, salt string) error {
	expected := HashPassword(password, salt)
	if !hmac.Equal([]byte(storedHash), []byte(expected)) {
		return ErrInvalidPassword
	}
	return nil
}

// GenerateReceiptID creates the externally presentable proof-of-cast token
// for a vote. Uppercased UUID with an RCP prefix so receipts are visually
// distinct from internal entity IDs.
func GenerateReceiptID() string {
	return "RCP-" + strings.ToUpper(uuid.NewString())
}
