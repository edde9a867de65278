package service

import (
	"context"

	"github.com/reshetovitsme/channel-relay/internal/modules/publication/domain"
	"github.com/reshetovitsme/channel-relay/internal/modules/publication/repository"
)

// Service handles the publication log
type Service struct {
	repo repository.Repository
}

// New creates a new publication service
func New(repo repository.Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// Record saves a publication
func (s *Service) Record(ctx context.Context, publication *domain.Publication) error {
	return s.repo.Record(ctx, publication)
}

// Recent retrieves the newest publications of an owner channel
func (s *Service) Recent(ctx context.Context, ownerID int64, limit int) ([]*domain.Publication, error) {
	return s.repo.ListByOwner(ctx, ownerID, limit)
}
