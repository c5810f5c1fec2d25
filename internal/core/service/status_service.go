package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/screengrabber/account-api/internal/core/domain"
	"github.com/screengrabber/account-api/internal/core/ports"
)

const statusListLimit = 1000

type StatusService struct {
	repo ports.StatusRepository
	now  func() time.Time
}

var _ ports.StatusService = (*StatusService)(nil)

func NewStatusService(repo ports.StatusRepository) *StatusService {
	return &StatusService{repo: repo, now: time.Now}
}

func (s *StatusService) Record(ctx context.Context, clientName string) (*domain.StatusCheck, error) {
	check := &domain.StatusCheck{
		ID:         uuid.NewString(),
		ClientName: clientName,
		Timestamp:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, check); err != nil {
		return nil, fmt.Errorf("record status: %w", err)
	}
	return check, nil
}

func (s *StatusService) List(ctx context.Context) ([]*domain.StatusCheck, error) {
	checks, err := s.repo.List(ctx, statusListLimit)
	if err != nil {
		return nil, fmt.Errorf("list status: %w", err)
	}
	return checks, nil
}
