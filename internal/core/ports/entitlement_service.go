package ports

import (
	"context"

	"github.com/screengrabber/account-api/internal/core/domain"
)

// LicenseValidation is the outcome of a license check.
type LicenseValidation struct {
	Valid   bool
	Message string
}

type EntitlementService interface {
	// ValidateLicense checks key and, when caller is non-nil and the key is
	// active, grants the caller Pro.
	ValidateLicense(ctx context.Context, key string, caller *domain.User) (*LicenseValidation, error)
	IssueLicense(ctx context.Context, note string) (*domain.License, error)
	DeactivateLicense(ctx context.Context, key string) error
}

type StatusService interface {
	Record(ctx context.Context, clientName string) (*domain.StatusCheck, error)
	List(ctx context.Context) ([]*domain.StatusCheck, error)
}
