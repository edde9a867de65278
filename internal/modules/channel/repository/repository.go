package repository

import (
	"context"

	"github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
)

// Repository defines the interface for source/owner channel persistence.
// SetStatus and AdvanceMarker are atomic: each runs as a single guarded write.
type Repository interface {
	CreateOwnerChannel(ctx context.Context, owner *domain.OwnerChannel) error
	GetOwnerChannel(ctx context.Context, ownerID int64) (*domain.OwnerChannel, error)
	GetOwnerChannelByIdentifier(ctx context.Context, identifier string) (*domain.OwnerChannel, error)
	ListOwnerChannels(ctx context.Context, ownerUserID int64) ([]*domain.OwnerChannel, error)

	// AddAssociation creates the source on first use and links it to the owner channel.
	AddAssociation(ctx context.Context, ownerID int64, sourceIdentifier string) (*domain.SourceChannel, error)
	// RemoveAssociation unlinks the pair and reclaims the source when nothing references it anymore.
	RemoveAssociation(ctx context.Context, ownerID, sourceID int64) (reclaimed bool, err error)
	OwnersForSource(ctx context.Context, sourceID int64) ([]*domain.OwnerChannel, error)
	SourcesForOwner(ctx context.Context, ownerID int64) ([]*domain.SourceChannel, error)

	GetSource(ctx context.Context, sourceID int64) (*domain.SourceChannel, error)
	GetSourceByIdentifier(ctx context.Context, identifier string) (*domain.SourceChannel, error)
	ListSources(ctx context.Context, statuses ...domain.SubscriptionStatus) ([]*domain.SourceChannel, error)
	SetStatus(ctx context.Context, sourceID int64, status domain.SubscriptionStatus, reason string) error
	// AdvanceMarker moves last-seen-post-id forward to postID and returns the stored value.
	// A postID at or below the current marker leaves it untouched.
	AdvanceMarker(ctx context.Context, sourceID int64, postID int64) (int64, error)
}
