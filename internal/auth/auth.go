// Package auth verifies bearer tokens issued by the identity service and
// carries the resulting identity through the request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

var ErrInvalidToken = errors.New("invalid or expired authentication token")

type Identity struct {
	LoginID string
	Roles   []string
}

func (i Identity) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if slices.Contains(i.Roles, role) {
			return true
		}
	}

	return false
}

type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(5*time.Second),
		),
	}
}

func (v *Verifier) Verify(raw string) (Identity, error) {
	var claims Claims

	_, err := v.parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return Identity{
		LoginID: claims.Subject,
		Roles:   claims.Roles,
	}, nil
}

// IssueToken signs an HS256 token for loginID. The service itself only verifies
// tokens; this is used by tooling and tests.
func IssueToken(secret, loginID string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   loginID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

type contextKey string

const identityContextKey = contextKey("identity")

func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	return identity, ok
}
