package repository

import (
	"context"

	"github.com/reshetovitsme/channel-relay/internal/modules/publication/domain"
)

// Repository defines the interface for publication log persistence
type Repository interface {
	// Record stores the publication once; recording the same (owner, source, post) again is a no-op.
	Record(ctx context.Context, publication *domain.Publication) error
	ListByOwner(ctx context.Context, ownerID int64, limit int) ([]*domain.Publication, error)
}
