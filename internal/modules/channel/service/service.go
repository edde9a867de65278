package service

import (
	"context"
	"log/slog"

	"github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/channel-relay/internal/modules/channel/repository"
	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// OwnerOverview groups an owner channel with the sources it watches
type OwnerOverview struct {
	Owner   *domain.OwnerChannel
	Sources []*domain.SourceChannel
}

// Service handles owner/source registration on behalf of the command layer
type Service struct {
	repo channelRepo.Repository
}

// New creates a new channel service
func New(repo channelRepo.Repository) *Service {
	return &Service{repo: repo}
}

// RegisterOwnerChannel stores a channel the user wants approved posts published to
func (s *Service) RegisterOwnerChannel(ctx context.Context, userID int64, raw string) (*domain.OwnerChannel, error) {
	identifier, err := domain.NormalizeOwnerIdentifier(raw)
	if err != nil {
		return nil, oops.In("channel-service").With("input", raw).Wrap(err)
	}

	owner := &domain.OwnerChannel{Identifier: identifier, OwnerUserID: userID}
	if err := s.repo.CreateOwnerChannel(ctx, owner); err != nil {
		return nil, err
	}

	slog.Info("Owner channel registered", "owner", owner.Identifier, "user_id", userID)
	return owner, nil
}

// Watch starts forwarding new posts of a source into the owner channel's moderation queue
func (s *Service) Watch(ctx context.Context, userID int64, ownerRaw, sourceRaw string) (*domain.SourceChannel, error) {
	owner, err := s.ownedChannel(ctx, userID, ownerRaw)
	if err != nil {
		return nil, err
	}

	identifier, err := domain.NormalizeSourceIdentifier(sourceRaw)
	if err != nil {
		return nil, oops.In("channel-service").With("input", sourceRaw).Wrap(err)
	}

	source, err := s.repo.AddAssociation(ctx, owner.ID, identifier)
	if err != nil {
		return nil, err
	}

	slog.Info("Source watched", "owner", owner.Identifier, "source", source.Identifier, "status", source.Status)
	return source, nil
}

// Unwatch removes the association. The source is reclaimed when no other owner channel watches it.
func (s *Service) Unwatch(ctx context.Context, userID int64, ownerRaw, sourceRaw string) (bool, error) {
	owner, err := s.ownedChannel(ctx, userID, ownerRaw)
	if err != nil {
		return false, err
	}

	source, err := s.lookupSource(ctx, sourceRaw)
	if err != nil {
		return false, err
	}

	reclaimed, err := s.repo.RemoveAssociation(ctx, owner.ID, source.ID)
	if err != nil {
		return false, err
	}

	slog.Info("Source unwatched", "owner", owner.Identifier, "source", source.Identifier, "reclaimed", reclaimed)
	return reclaimed, nil
}

// Retry puts an unreachable source back into the subscription queue.
// Only a user watching the source may do this. reset is false when the source was not unreachable.
func (s *Service) Retry(ctx context.Context, userID int64, sourceRaw string) (source *domain.SourceChannel, reset bool, err error) {
	source, err = s.lookupSource(ctx, sourceRaw)
	if err != nil {
		return nil, false, err
	}

	owners, err := s.repo.OwnersForSource(ctx, source.ID)
	if err != nil {
		return nil, false, err
	}
	if !lo.ContainsBy(owners, func(o *domain.OwnerChannel) bool { return o.OwnerUserID == userID }) {
		return nil, false, oops.In("channel-service").With("user_id", userID, "source", source.Identifier).Wrap(apperrors.ErrUnauthorized)
	}

	if source.Status != domain.SubscriptionStatusUnreachable {
		return source, false, nil
	}
	if err := s.repo.SetStatus(ctx, source.ID, domain.SubscriptionStatusUnsubscribed, ""); err != nil {
		return nil, false, err
	}
	source.Status = domain.SubscriptionStatusUnsubscribed
	source.StatusReason = ""
	return source, true, nil
}

// Overview lists the user's owner channels with their watched sources
func (s *Service) Overview(ctx context.Context, userID int64) ([]OwnerOverview, error) {
	owners, err := s.repo.ListOwnerChannels(ctx, userID)
	if err != nil {
		return nil, err
	}

	overview := make([]OwnerOverview, 0, len(owners))
	for _, owner := range owners {
		sources, err := s.repo.SourcesForOwner(ctx, owner.ID)
		if err != nil {
			return nil, err
		}
		overview = append(overview, OwnerOverview{Owner: owner, Sources: sources})
	}
	return overview, nil
}

// GetOwnerChannel retrieves an owner channel by ID
func (s *Service) GetOwnerChannel(ctx context.Context, ownerID int64) (*domain.OwnerChannel, error) {
	return s.repo.GetOwnerChannel(ctx, ownerID)
}

// GetAllSources retrieves every tracked source in store order
func (s *Service) GetAllSources(ctx context.Context) ([]*domain.SourceChannel, error) {
	return s.repo.ListSources(ctx)
}

// OwnedChannel returns the user's owner channel named by raw
func (s *Service) OwnedChannel(ctx context.Context, userID int64, raw string) (*domain.OwnerChannel, error) {
	return s.ownedChannel(ctx, userID, raw)
}

func (s *Service) ownedChannel(ctx context.Context, userID int64, raw string) (*domain.OwnerChannel, error) {
	identifier, err := domain.NormalizeOwnerIdentifier(raw)
	if err != nil {
		return nil, oops.In("channel-service").With("input", raw).Wrap(err)
	}

	owner, err := s.repo.GetOwnerChannelByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if owner.OwnerUserID != userID {
		return nil, oops.In("channel-service").With("user_id", userID, "owner", identifier).Wrap(apperrors.ErrUnauthorized)
	}
	return owner, nil
}

func (s *Service) lookupSource(ctx context.Context, raw string) (*domain.SourceChannel, error) {
	identifier, err := domain.NormalizeSourceIdentifier(raw)
	if err != nil {
		return nil, oops.In("channel-service").With("input", raw).Wrap(err)
	}
	return s.repo.GetSourceByIdentifier(ctx, identifier)
}
