package auth

import (
	"context"
	"strings"

	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
)

const bearerPrefix = "Bearer "

// Principal is the authenticated identity attached to a request.
type Principal struct {
	SubjectID string
	Role      entity.Role
}

func (p Principal) IsAdmin() bool { return p.Role == entity.RoleAdmin }

// TokenVerifier is the part of TokenService the gate needs.
type TokenVerifier interface {
	Verify(token string) (TokenClaims, error)
}

// Gate validates bearer tokens from inbound requests.
type Gate struct {
	tokens TokenVerifier
}

func NewGate(tokens TokenVerifier) *Gate {
	return &Gate{tokens: tokens}
}

// Authenticate turns a raw Authorization header value into a Principal.
// Every failure (missing header, wrong scheme, bad or expired token) is
// reported as apperr.ErrUnauthenticated without further detail.
func (g *Gate) Authenticate(header string) (Principal, error) {
	p, _, err := g.authenticate(header)
	return p, err
}

// AuthenticateReason behaves like Authenticate and also returns a short,
// internal-only reason for metrics and logs.
func (g *Gate) AuthenticateReason(header string) (Principal, string, error) {
	return g.authenticate(header)
}

func (g *Gate) authenticate(header string) (Principal, string, error) {
	if header == "" {
		return Principal{}, "missing_header", apperr.ErrUnauthenticated
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return Principal{}, "malformed_header", apperr.ErrUnauthenticated
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return Principal{}, "malformed_header", apperr.ErrUnauthenticated
	}
	claims, err := g.tokens.Verify(token)
	if err != nil {
		reason := "invalid_token"
		if apperr.Kind(err) == apperr.ErrTokenExpired {
			reason = "expired_token"
		}
		return Principal{}, reason, apperr.ErrUnauthenticated
	}
	return Principal{SubjectID: claims.SubjectID, Role: claims.Role}, "", nil
}

type principalKey struct{}

// WithPrincipal attaches p to ctx for the rest of request processing.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal attached by WithPrincipal.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
