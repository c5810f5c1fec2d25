package ports

import (
	"context"
	"time"

	"github.com/screengrabber/account-api/internal/core/domain"
)

// PasswordResetRepository persists reset tokens. Records are never deleted.
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *domain.PasswordReset) error
	// Claim reserves an unused token for one redemption. It returns
	// domain.ErrResetTokenInvalid when the token is unknown, used, or held by
	// another redemption whose claim is younger than domain.ResetClaimLease.
	Claim(ctx context.Context, token string, now time.Time) (*domain.PasswordReset, error)
	// Release drops a claim without consuming the token.
	Release(ctx context.Context, token string) error
	// MarkUsed flips used from false to true. It returns
	// domain.ErrResetTokenInvalid if the token was already consumed.
	MarkUsed(ctx context.Context, token string) error
}
