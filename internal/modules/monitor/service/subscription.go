package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	channelDomain "github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/channel-relay/internal/modules/channel/repository"
	"github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
)

// SubscriptionManager brings every tracked source to the subscribed state
type SubscriptionManager struct {
	repo            channelRepo.Repository
	client          domain.ChannelClient
	peers           *PeerCache
	delay           time.Duration
	floodMaxRetries int
	sleep           SleepFunc
}

// NewSubscriptionManager creates a manager pacing join attempts by delay
func NewSubscriptionManager(repo channelRepo.Repository, client domain.ChannelClient, peers *PeerCache, delay time.Duration, floodMaxRetries int, sleep SleepFunc) *SubscriptionManager {
	if sleep == nil {
		sleep = Sleep
	}
	return &SubscriptionManager{
		repo:            repo,
		client:          client,
		peers:           peers,
		delay:           delay,
		floodMaxRetries: floodMaxRetries,
		sleep:           sleep,
	}
}

// SubscribeAll attempts every source that is not yet a member, one at a time
func (m *SubscriptionManager) SubscribeAll(ctx context.Context) error {
	sources, err := m.repo.ListSources(ctx, channelDomain.SubscriptionStatusUnsubscribed, channelDomain.SubscriptionStatusPendingJoin)
	if err != nil {
		return err
	}
	if len(sources) > 0 {
		slog.Info("Subscribing to sources", "count", len(sources))
	}

	for i, source := range sources {
		if i > 0 {
			if err := m.sleep(ctx, m.delay); err != nil {
				return err
			}
		}
		if _, err := m.Subscribe(ctx, source); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe joins one source and persists the outcome. It returns true when the session is a member.
// Network failures are logged and reported as false; the returned error is reserved for the store
// and for context cancellation.
func (m *SubscriptionManager) Subscribe(ctx context.Context, source *channelDomain.SourceChannel) (bool, error) {
	current, err := m.repo.GetSource(ctx, source.ID)
	if errors.Is(err, apperrors.ErrSourceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch current.Status {
	case channelDomain.SubscriptionStatusSubscribed:
		return true, nil
	case channelDomain.SubscriptionStatusUnreachable:
		return false, nil
	case channelDomain.SubscriptionStatusUnsubscribed:
		if err := m.repo.SetStatus(ctx, current.ID, channelDomain.SubscriptionStatusPendingJoin, ""); err != nil {
			return false, ignoreGone(err)
		}
	}

	log := slog.With("source", current.Display())

	resolution, err := withFloodRetry(ctx, m.floodMaxRetries, m.sleep, "resolve", func() (domain.Resolution, error) {
		return m.client.Resolve(ctx, current.Identifier)
	})
	if err != nil {
		log.Warn("Failed to resolve source", "error", err)
		return false, ctx.Err()
	}
	if resolution.Outcome != domain.ResolveOutcomeResolved {
		return false, m.markUnreachable(ctx, current, string(resolution.Outcome), resolution.Reason)
	}

	joined, err := withFloodRetry(ctx, m.floodMaxRetries, m.sleep, "join", func() (domain.JoinResult, error) {
		return m.client.Join(ctx, resolution.Peer)
	})
	if err != nil {
		log.Warn("Failed to join source", "error", err)
		return false, ctx.Err()
	}

	switch joined.Outcome {
	case domain.JoinOutcomeJoined, domain.JoinOutcomeAlreadyMember, domain.JoinOutcomeRequestSent:
		if err := m.repo.SetStatus(ctx, current.ID, channelDomain.SubscriptionStatusSubscribed, ""); err != nil {
			m.peers.Forget(current.ID)
			return false, ignoreGone(err)
		}
		if joined.Peer.Joined() {
			m.peers.Put(current.ID, joined.Peer)
		}
		// A request sent to a private channel is taken as membership; reads fail until it is approved
		log.Info("Subscribed to source", "outcome", joined.Outcome)
		return true, nil
	default:
		return false, m.markUnreachable(ctx, current, string(joined.Outcome), joined.Reason)
	}
}

func (m *SubscriptionManager) markUnreachable(ctx context.Context, source *channelDomain.SourceChannel, outcome, reason string) error {
	if reason == "" {
		reason = outcome
	}
	slog.Warn("Source is unreachable", "source", source.Display(), "reason", reason)
	m.peers.Forget(source.ID)
	return ignoreGone(m.repo.SetStatus(ctx, source.ID, channelDomain.SubscriptionStatusUnreachable, reason))
}

// ignoreGone drops ErrSourceNotFound. The last association of a source can be removed while
// the source is being checked, and a source that is gone has nothing left to update.
func ignoreGone(err error) error {
	if errors.Is(err, apperrors.ErrSourceNotFound) {
		slog.Debug("Source was removed while it was being checked", "error", err)
		return nil
	}
	return err
}
