package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
)

func TestGateAuthenticate(t *testing.T) {
	svc, _ := NewTokenService("s3cret", time.Hour)
	gate := NewGate(svc)

	valid, _ := svc.Sign(TokenClaims{SubjectID: "acc-9", Role: entity.RoleAdmin})
	expired, _ := svc.WithClock(func() time.Time { return time.Now().Add(-3 * time.Hour) }).
		Sign(TokenClaims{SubjectID: "acc-9", Role: entity.RoleAdmin})

	cases := []struct {
		name   string
		header string
		reason string
	}{
		{"missing", "", "missing_header"},
		{"basic scheme", "Basic dXNlcjpwYXNz", "malformed_header"},
		{"lowercase bearer", "bearer " + valid, "malformed_header"},
		{"empty token", "Bearer ", "malformed_header"},
		{"garbage token", "Bearer not-a-jwt", "invalid_token"},
		{"expired", "Bearer " + expired, "expired_token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, reason, err := gate.AuthenticateReason(tc.header)
			if !errors.Is(err, apperr.ErrUnauthenticated) {
				t.Fatalf("expected unauthenticated, got %v", err)
			}
			// the error itself never reveals why
			if err != apperr.ErrUnauthenticated {
				t.Fatalf("expected bare sentinel, got %v", err)
			}
			if reason != tc.reason {
				t.Fatalf("reason = %q, want %q", reason, tc.reason)
			}
		})
	}

	p, err := gate.Authenticate("Bearer " + valid)
	if err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if p.SubjectID != "acc-9" || !p.IsAdmin() {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := PrincipalFrom(ctx); ok {
		t.Fatal("empty context must not carry a principal")
	}
	ctx = WithPrincipal(ctx, Principal{SubjectID: "acc-1", Role: entity.RoleMember})
	p, ok := PrincipalFrom(ctx)
	if !ok || p.SubjectID != "acc-1" {
		t.Fatalf("principal not recovered: %+v ok=%v", p, ok)
	}
}
