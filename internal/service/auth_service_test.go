package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bazaar-next/internal/constants"
)

func TestRegisterLoginAndVerify(t *testing.T) {
	env := setupServiceTest(t)

	user, err := env.auth.Register(RegisterInput{
		Username: "alice",
		Password: "secret123",
		Role:     "Seller",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Role != constants.RoleSeller || user.Name != "alice" {
		t.Fatalf("unexpected registered user: %+v", user)
	}
	if user.PasswordHash == "secret123" {
		t.Fatalf("password must be hashed")
	}

	if _, _, _, err := env.auth.Login("alice", "wrong-pass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := env.auth.Login("nobody", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	loggedIn, token, expiresAt, err := env.auth.Login("alice", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loggedIn.LastLoginAt == nil || expiresAt.IsZero() || token == "" {
		t.Fatalf("login result incomplete: user=%+v token=%q expires=%v", loggedIn, token, expiresAt)
	}

	claims, err := env.auth.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != constants.RoleSeller {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if err := env.auth.VerifyClaims(context.Background(), claims); err != nil {
		t.Fatalf("verify claims failed: %v", err)
	}

	tampered := *claims
	tampered.Role = constants.RoleBuyer
	if err := env.auth.VerifyClaims(context.Background(), &tampered); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("role mismatch should be revoked, got %v", err)
	}
	stale := *claims
	stale.TokenVersion++
	if err := env.auth.VerifyClaims(context.Background(), &stale); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("token version mismatch should be revoked, got %v", err)
	}
}

func TestParseJWTRejectsForeignSignature(t *testing.T) {
	env := setupServiceTest(t)
	user := env.user(t, "bob", constants.RoleBuyer)
	token, _, err := env.auth.GenerateJWT(user)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	other := *env.auth
	otherCfg := *other.cfg
	otherCfg.JWT.SecretKey = "another-secret"
	other.cfg = &otherCfg
	if _, err := other.ParseJWT(token); err == nil {
		t.Fatalf("token signed with a different key must be rejected")
	}
}

func TestRegisterValidation(t *testing.T) {
	env := setupServiceTest(t)
	if _, err := env.auth.Register(RegisterInput{Username: "carol", Password: "secret123", Role: constants.RoleBuyer}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"duplicate", RegisterInput{Username: "carol", Password: "secret123", Role: constants.RoleBuyer}, ErrUsernameExists},
		{"short username", RegisterInput{Username: "ab", Password: "secret123", Role: constants.RoleBuyer}, ErrInvalidUsername},
		{"unknown role", RegisterInput{Username: "dave", Password: "secret123", Role: "admin"}, ErrInvalidRole},
		{"weak password", RegisterInput{Username: "erin", Password: "short", Role: constants.RoleBuyer}, ErrWeakPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.auth.Register(tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
