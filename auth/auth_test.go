// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateID(t *testing.T) {
	id, err := GenerateID(16)
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if len(id) != 32 {
		t.Errorf("Expected 32 hex characters, got %d", len(id))
	}

	other, err := GenerateID(16)
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if id == other {
		t.Error("Expected distinct IDs")
	}
}

func TestHashPassword(t *testing.T) {
	hash := HashPassword("secret123", "salt-a")

	if hash == "" {
		t.Fatal("Expected non-empty hash")
	}
	if strings.Contains(hash, "=") {
		t.Error("Expected padding to be trimmed")
	}
	if hash == "secret123" {
		t.Error("Hash must not equal the password")
	}

	// Deterministic for the same salt
	if HashPassword("secret123", "salt-a") != hash {
		t.Error("Expected deterministic hash for same password and salt")
	}

	// Different salt, different hash
	if HashPassword("secret123", "salt-b") == hash {
		t.Error("Expected different hash for different salt")
	}
}

func TestVerifyPassword(t *testing.T) {
	hash := HashPassword("secret123", "salt-a")

	if err := VerifyPassword("secret123", hash, "salt-a"); err != nil {
		t.Errorf("Expected valid password to verify: %v", err)
	}
	if err := VerifyPassword("wrong", hash, "salt-a"); err != ErrInvalidPassword {
		t.Errorf("Expected ErrInvalidPassword, got %v", err)
	}
	if err := VerifyPassword("secret123", hash, "salt-b"); err != ErrInvalidPassword {
		t.Errorf("Expected ErrInvalidPassword for wrong salt, got %v", err)
	}
}

func TestGenerateReceiptID(t *testing.T) {
	receipt := GenerateReceiptID()

	if !strings.HasPrefix(receipt, "RCP-") {
		t.Errorf("Expected RCP- prefix, got %s", receipt)
	}
	if receipt != strings.ToUpper(receipt) {
		t.Errorf("Expected uppercase receipt, got %s", receipt)
	}
	if GenerateReceiptID() == receipt {
		t.Error("Expected distinct receipt IDs")
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := NewSessionToken("user-1", "voter", "secret")
	if err != nil {
		t.Fatalf("NewSessionToken failed: %v", err)
	}

	claims, err := ParseSessionToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseSessionToken failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("Expected user ID user-1, got %s", claims.UserID)
	}
	if claims.Role != "voter" {
		t.Errorf("Expected role voter, got %s", claims.Role)
	}
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, err := NewSessionToken("user-1", "voter", "secret")
	if err != nil {
		t.Fatalf("NewSessionToken failed: %v", err)
	}

	if _, err := ParseSessionToken(token, "other-secret"); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionTokenGarbage(t *testing.T) {
	if _, err := ParseSessionToken("not-a-token", "secret"); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionTokenExpired(t *testing.T) {
	claims := SessionClaims{
		UserID: "user-1",
		Role:   "voter",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * SessionTTL)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-SessionTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	if _, err := ParseSessionToken(token, "secret"); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}
}
