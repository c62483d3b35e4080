// Package auth validates Supabase-style HS256 bearer tokens and carries the
// authenticated principal through request contexts.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role and audience stamped on issued tokens
const (
	RoleAuthenticated     = "authenticated"
	AudienceAuthenticated = "authenticated"
)

// Claims are the token claims the API reads
type Claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
}

// Principal is the authenticated caller
type Principal struct {
	UserID    string
	Role      string
	Email     string
	ExpiresAt time.Time
}

type principalKey struct{}

// WithPrincipal stores p in ctx
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
