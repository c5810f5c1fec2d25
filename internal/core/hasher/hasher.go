// Package hasher provides password digests.
//
// Bcrypt is the primary algorithm. SHA256 is the unsalted digest written by
// the legacy backend and is only kept so those accounts can still sign in;
// Chain verifies against both and lets callers upgrade legacy digests.
package hasher

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/screengrabber/account-api/internal/core/ports"
)

// Bcrypt hashes passwords with bcrypt at a fixed cost.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a bcrypt hasher. Costs outside bcrypt's range fall back
// to bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(h), nil
}

func (b *Bcrypt) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// NeedsRehash is true for non-bcrypt digests and for bcrypt digests made
// with a different cost.
func (b *Bcrypt) NeedsRehash(digest string) bool {
	cost, err := bcrypt.Cost([]byte(digest))
	return err != nil || cost != b.cost
}

// SHA256 is the deterministic hex SHA-256 digest. Equal inputs always yield
// equal digests.
type SHA256 struct{}

func (SHA256) Hash(plaintext string) (string, error) {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:]), nil
}

func (s SHA256) Verify(plaintext, digest string) bool {
	h, _ := s.Hash(plaintext)
	return subtle.ConstantTimeCompare([]byte(h), []byte(digest)) == 1
}

func (SHA256) NeedsRehash(string) bool { return false }

// Chain hashes with primary and verifies against primary, then legacy.
type Chain struct {
	primary ports.PasswordHasher
	legacy  ports.PasswordHasher
}

func NewChain(primary, legacy ports.PasswordHasher) *Chain {
	return &Chain{primary: primary, legacy: legacy}
}

func (c *Chain) Hash(plaintext string) (string, error) {
	return c.primary.Hash(plaintext)
}

func (c *Chain) Verify(plaintext, digest string) bool {
	if c.primary.Verify(plaintext, digest) {
		return true
	}
	return c.legacy != nil && c.legacy.Verify(plaintext, digest)
}

func (c *Chain) NeedsRehash(digest string) bool {
	return c.primary.NeedsRehash(digest)
}

// Default is the hasher the service runs with.
func Default() *Chain {
	return NewChain(NewBcrypt(bcrypt.DefaultCost), SHA256{})
}
