package ports

import (
	"context"

	"github.com/screengrabber/account-api/internal/core/domain"
)

type LicenseRepository interface {
	FindActive(ctx context.Context, key string) (*domain.License, error)
	Create(ctx context.Context, license *domain.License) error
	Deactivate(ctx context.Context, key string) error
}
