package ports

import (
	"context"

	"github.com/screengrabber/account-api/internal/core/domain"
)

type StatusRepository interface {
	Create(ctx context.Context, check *domain.StatusCheck) error
	List(ctx context.Context, limit int64) ([]*domain.StatusCheck, error)
}
