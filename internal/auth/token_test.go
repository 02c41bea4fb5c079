package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
)

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	if _, err := NewTokenService("", time.Hour); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	svc, err := NewTokenService("s3cret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := svc.Sign(TokenClaims{SubjectID: "acc-1", Role: entity.RoleMember})
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	claims, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.SubjectID != "acc-1" || claims.Role != entity.RoleMember {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.ExpiresAt.After(claims.IssuedAt) {
		t.Fatalf("expiry %v not after issue %v", claims.ExpiresAt, claims.IssuedAt)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	a, _ := NewTokenService("secret-a", time.Hour)
	b, _ := NewTokenService("secret-b", time.Hour)

	tok, _ := a.Sign(TokenClaims{SubjectID: "acc-1", Role: entity.RoleAdmin})
	if _, err := b.Verify(tok); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	svc, _ := NewTokenService("s3cret", time.Hour)
	for _, tok := range []string{"", "abc", "a.b.c", strings.Repeat("x", 40)} {
		if _, err := svc.Verify(tok); !errors.Is(err, apperr.ErrInvalidToken) {
			t.Errorf("Verify(%q) = %v, want invalid token", tok, err)
		}
	}
}

func TestVerifyRejectsOtherAlgorithm(t *testing.T) {
	svc, _ := NewTokenService("s3cret", time.Hour)
	claims := &jwtClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acc-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Verify(tok); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected invalid token for HS512, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	svc, _ := NewTokenService("s3cret", time.Minute)
	past := time.Now().Add(-2 * time.Hour)
	tok, err := svc.WithClock(func() time.Time { return past }).Sign(TokenClaims{SubjectID: "acc-1", Role: entity.RoleMember})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Verify(tok); !errors.Is(err, apperr.ErrTokenExpired) {
		t.Fatalf("expected expired, got %v", err)
	}
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	svc, _ := NewTokenService("s3cret", time.Hour)
	tok, _ := svc.Sign(TokenClaims{SubjectID: "acc-1", Role: entity.Role("root")})
	if _, err := svc.Verify(tok); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}
