package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/n0roo/widget-kit/internal/config"
)

// Issuer mints HS256 tokens accepted by Validator
type Issuer struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// NewIssuer creates an issuer from the auth config
func NewIssuer(cfg config.AuthConfig) (*Issuer, error) {
	key, err := DecodeSecret(cfg.Secret)
	if err != nil {
		return nil, err
	}
	return &Issuer{key: key, issuer: cfg.Issuer, now: time.Now}, nil
}

// SetClock overrides the time source
func (i *Issuer) SetClock(now func() time.Time) {
	i.now = now
}

// Issue returns a token for userID valid for ttl
func (i *Issuer) Issue(userID uuid.UUID, ttl time.Duration) (string, error) {
	return i.IssueSubject(userID.String(), ttl)
}

// IssueSubject is Issue with an arbitrary subject
func (i *Issuer) IssueSubject(subject string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{AudienceAuthenticated},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: RoleAuthenticated,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("토큰 서명 실패: %w", err)
	}
	return signed, nil
}
