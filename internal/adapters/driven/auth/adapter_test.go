package auth

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/custodia-labs/lexcore/internal/core/domain"
)

func newTestAdapter() *Adapter {
	return NewAdapterWithCost("test-secret", bcrypt.MinCost)
}

func TestHashAndVerifyAPIKey(t *testing.T) {
	a := newTestAdapter()

	hash, err := a.HashAPIKey("lx-secret-key")
	if err != nil {
		t.Fatalf("HashAPIKey failed: %v", err)
	}
	if hash == "lx-secret-key" {
		t.Error("hash should not equal the plaintext key")
	}

	if !a.VerifyAPIKey("lx-secret-key", hash) {
		t.Error("correct key should verify")
	}
	if a.VerifyAPIKey("lx-wrong-key", hash) {
		t.Error("wrong key should not verify")
	}
	if a.VerifyAPIKey("lx-secret-key", "not a bcrypt hash") {
		t.Error("garbage hash should not verify")
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	a := newTestAdapter()
	now := time.Now()

	claims := &domain.TokenClaims{
		Subject:   "lexcore-api",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}

	token, err := a.GenerateToken(claims)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	parsed, err := a.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if parsed.Subject != "lexcore-api" {
		t.Errorf("Subject = %s, want lexcore-api", parsed.Subject)
	}
	if parsed.ExpiresAt != claims.ExpiresAt {
		t.Errorf("ExpiresAt = %d, want %d", parsed.ExpiresAt, claims.ExpiresAt)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	a := newTestAdapter()
	other := NewAdapterWithCost("different-secret", bcrypt.MinCost)
	now := time.Now()

	token, err := a.GenerateToken(&domain.TokenClaims{
		Subject:   "lexcore-api",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := other.ParseToken(token); err == nil {
		t.Error("token signed with another secret should be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	a := newTestAdapter()
	now := time.Now()

	token, err := a.GenerateToken(&domain.TokenClaims{
		Subject:   "lexcore-api",
		IssuedAt:  now.Add(-2 * time.Hour).Unix(),
		ExpiresAt: now.Add(-time.Hour).Unix(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := a.ParseToken(token); err == nil {
		t.Error("expired token should be rejected")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	a := newTestAdapter()

	if _, err := a.ParseToken("not.a.token"); err == nil {
		t.Error("malformed token should be rejected")
	}
}
