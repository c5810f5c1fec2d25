// Package token issues and verifies HS256 bearer tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/screengrabber/account-api/internal/core/domain"
	"github.com/screengrabber/account-api/internal/core/ports"
)

// DefaultTTL is the bearer token lifetime.
const DefaultTTL = 7 * 24 * time.Hour

type claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWT is a stateless token issuer/verifier. Validity depends only on the
// signature, the embedded expiry and the clock.
type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customises a JWT.
type Option func(*JWT)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(j *JWT) { j.now = now }
}

// NewJWT returns a JWT signing with secret. A non-positive ttl falls back to
// DefaultTTL.
func NewJWT(secret []byte, ttl time.Duration, opts ...Option) *JWT {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	j := &JWT{secret: secret, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

var _ ports.TokenIssuer = (*JWT)(nil)

// Issue signs a token for the user, expiring ttl after now.
func (j *JWT) Issue(userID, email string) (string, error) {
	now := j.now()
	c := claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry. It returns domain.ErrTokenExpired once
// now reaches the embedded expiry and domain.ErrTokenInvalid for any other
// defect.
func (j *JWT) Verify(token string) (*ports.TokenClaims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if c.UserID == "" || c.IssuedAt == nil {
		return nil, domain.ErrTokenInvalid
	}

	return &ports.TokenClaims{
		UserID:    c.UserID,
		Email:     c.Email,
		TokenID:   c.ID,
		IssuedAt:  c.IssuedAt.Time,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
