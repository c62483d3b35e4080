package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/n0roo/widget-kit/internal/config"
)

var (
	ErrMissingSecret = errors.New("JWT 시크릿이 설정되지 않았습니다")
	ErrNoSubject     = errors.New("token has no subject")
)

// DecodeSecret decodes a base64 secret (standard, then raw URL encoding)
func DecodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if key, err := base64.StdEncoding.DecodeString(secret); err == nil && len(key) > 0 {
		return key, nil
	}
	key, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(secret, "="))
	if err != nil || len(key) == 0 {
		return nil, fmt.Errorf("JWT 시크릿 base64 디코딩 실패: %w", err)
	}
	return key, nil
}

// Validator checks bearer tokens and caches accepted ones
type Validator struct {
	key   []byte
	cache *lru.Cache[string, *Principal]
	now   func() time.Time
}

// NewValidator creates a validator from the auth config
func NewValidator(cfg config.AuthConfig) (*Validator, error) {
	key, err := DecodeSecret(cfg.Secret)
	if err != nil {
		return nil, err
	}

	v := &Validator{key: key, now: time.Now}
	if cfg.TokenCacheSize > 0 {
		cache, err := lru.New[string, *Principal](cfg.TokenCacheSize)
		if err != nil {
			return nil, fmt.Errorf("토큰 캐시 생성 실패: %w", err)
		}
		v.cache = cache
	}
	return v, nil
}

// SetClock overrides the time source
func (v *Validator) SetClock(now func() time.Time) {
	v.now = now
}

// Validate parses token and returns its principal.
// Issuer and audience are not checked.
func (v *Validator) Validate(token string) (*Principal, error) {
	if v.cache != nil {
		if p, ok := v.cache.Get(token); ok {
			if v.now().Before(p.ExpiresAt) {
				return p, nil
			}
			v.cache.Remove(token)
			return nil, jwt.ErrTokenExpired
		}
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrNoSubject
	}

	p := &Principal{
		UserID:    claims.Subject,
		Role:      claims.Role,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if v.cache != nil {
		v.cache.Add(token, p)
	}
	return p, nil
}
