package session

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	t.Setenv(secretEnvVariable, "unit-test-secret")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)

	token, err := GenerateToken("user-42", "profile-7", 30*time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseAndValidate(token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if claims.Subject != "user-42" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.ProfileID != "profile-7" {
		t.Fatalf("unexpected profile: %s", claims.ProfileID)
	}
	if claims.Issuer != issuer {
		t.Fatalf("unexpected issuer: %s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatalf("expected a token id")
	}
}

func TestGenerateTokenValidation(t *testing.T) {
	t.Setenv(secretEnvVariable, "unit-test-secret")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)

	if _, err := GenerateToken("", "profile-7", time.Minute); err == nil {
		t.Fatalf("expected error for empty user id")
	}
	if _, err := GenerateToken("user-42", "", time.Minute); err == nil {
		t.Fatalf("expected error for empty profile id")
	}
	if _, err := GenerateToken("user-42", "profile-7", 0); err == nil {
		t.Fatalf("expected error for non-positive ttl")
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	t.Setenv(secretEnvVariable, "unit-test-secret")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)

	token, err := GenerateToken("user-42", "profile-7", time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	tampered := parts[0] + "." + parts[1] + ".AAAA"
	if _, err := ParseAndValidate(tampered); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := ParseAndValidate(""); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	t.Setenv(secretEnvVariable, "unit-test-secret")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)

	token, err := GenerateToken("user-42", "profile-7", time.Nanosecond)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := ParseAndValidate(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestMissingSecret(t *testing.T) {
	t.Setenv(secretEnvVariable, "")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)

	if _, err := GenerateToken("user-42", "profile-7", time.Minute); err == nil {
		t.Fatalf("expected error when secret is unset")
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if _, ok := UserIDFromContext(ctx); ok {
		t.Fatalf("expected no user id in empty context")
	}
	if _, ok := ProfileIDFromContext(ctx); ok {
		t.Fatalf("expected no profile id in empty context")
	}

	ctx = ContextWithActor(ctx, " user-7 ", "profile-3")
	id, ok := UserIDFromContext(ctx)
	if !ok || id != "user-7" {
		t.Fatalf("unexpected user id: %q, ok=%v", id, ok)
	}
	pid, ok := ProfileIDFromContext(ctx)
	if !ok || pid != "profile-3" {
		t.Fatalf("unexpected profile id: %q, ok=%v", pid, ok)
	}
}
