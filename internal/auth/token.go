// Package auth issues and verifies bearer tokens and turns an Authorization
// header into an authenticated principal.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
)

// ErrMissingSecret is returned when the service is built without a signing secret.
var ErrMissingSecret = errors.New("jwt secret is required")

// TokenClaims is the identity carried inside a token.
type TokenClaims struct {
	SubjectID string
	Role      entity.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type jwtClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 tokens with one process-wide secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of the service that reads time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

// Sign encodes claims into a token. Zero IssuedAt means now; zero ExpiresAt
// means IssuedAt plus the configured TTL.
func (s *TokenService) Sign(claims TokenClaims) (string, error) {
	iat := claims.IssuedAt
	if iat.IsZero() {
		iat = s.now()
	}
	exp := claims.ExpiresAt
	if exp.IsZero() {
		exp = iat.Add(s.ttl)
	}
	c := &jwtClaims{
		Role: string(claims.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.SubjectID,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString(s.secret)
}

// Verify checks the signature and expiry of token and returns its claims.
// Expired tokens fail with apperr.ErrTokenExpired; anything else that does not
// verify fails with apperr.ErrInvalidToken.
func (s *TokenService) Verify(token string) (TokenClaims, error) {
	c := &jwtClaims{}
	_, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenClaims{}, apperr.ErrTokenExpired
		}
		return TokenClaims{}, fmt.Errorf("%w: %v", apperr.ErrInvalidToken, err)
	}

	role := entity.Role(c.Role)
	if c.Subject == "" || !role.Valid() {
		return TokenClaims{}, fmt.Errorf("%w: missing subject or role", apperr.ErrInvalidToken)
	}
	out := TokenClaims{SubjectID: c.Subject, Role: role}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out, nil
}
