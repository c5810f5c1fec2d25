package ports

import (
	"context"
	"time"
)

// PasswordHasher is a one-way transform for stored passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
	// NeedsRehash reports whether digest was produced by an algorithm that
	// is no longer the primary one.
	NeedsRehash(digest string) bool
}

// TokenClaims is the identity carried by a bearer token.
type TokenClaims struct {
	UserID    string
	Email     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer creates and validates signed bearer tokens. Verify never
// touches storage.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
	Verify(token string) (*TokenClaims, error)
}

// TokenDenylist records bearer tokens revoked before their expiry.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Throttle limits how often an action may be taken for a key.
type Throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
}
