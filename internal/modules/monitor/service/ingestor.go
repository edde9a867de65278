package service

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"

	channelDomain "github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/channel-relay/internal/modules/channel/repository"
	"github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Ingestor pulls posts a source published since its last-seen marker
type Ingestor struct {
	repo            channelRepo.Repository
	client          domain.ChannelClient
	subscriptions   *SubscriptionManager
	peers           *PeerCache
	pageSize        int
	floodMaxRetries int
	sleep           SleepFunc
}

// NewIngestor creates an ingestor reading pages of pageSize messages
func NewIngestor(repo channelRepo.Repository, client domain.ChannelClient, subscriptions *SubscriptionManager, peers *PeerCache, pageSize, floodMaxRetries int, sleep SleepFunc) *Ingestor {
	if sleep == nil {
		sleep = Sleep
	}
	return &Ingestor{
		repo:            repo,
		client:          client,
		subscriptions:   subscriptions,
		peers:           peers,
		pageSize:        pageSize,
		floodMaxRetries: floodMaxRetries,
		sleep:           sleep,
	}
}

// GetNewPosts returns the posts newer than the source's marker, oldest first, and moves the
// marker past everything the fetched page contained. Empty and already seen messages are dropped.
func (i *Ingestor) GetNewPosts(ctx context.Context, source *channelDomain.SourceChannel) ([]domain.Post, error) {
	current, err := i.repo.GetSource(ctx, source.ID)
	if errors.Is(err, apperrors.ErrSourceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	switch current.Status {
	case channelDomain.SubscriptionStatusUnreachable:
		return nil, nil
	case channelDomain.SubscriptionStatusSubscribed:
	default:
		ok, err := i.subscriptions.Subscribe(ctx, current)
		if err != nil || !ok {
			return nil, err
		}
	}

	peer, ok, err := i.peer(ctx, current)
	if err != nil || !ok {
		return nil, err
	}

	marker := current.LastSeenPostID
	page, err := withFloodRetry(ctx, i.floodMaxRetries, i.sleep, "fetch", func() ([]domain.Message, error) {
		return i.client.FetchMessages(ctx, peer, marker, i.pageSize)
	})
	if err != nil {
		if reason, fault := domain.AsChannelFault(err); fault {
			return nil, i.markUnreachable(ctx, current, reason)
		}
		return nil, oops.In("ingestor").With("source", current.Display()).Wrapf(err, "fetching history")
	}
	if len(page) == 0 {
		return nil, nil
	}

	posts := lo.FilterMap(page, func(msg domain.Message, _ int) (domain.Post, bool) {
		return domain.Post{SourceID: current.ID, Message: msg}, msg.ID > marker && !msg.IsNoise()
	})
	slices.SortFunc(posts, func(a, b domain.Post) int {
		return cmp.Compare(a.ID, b.ID)
	})

	newest := lo.MaxBy(page, func(a, b domain.Message) bool { return a.ID > b.ID })
	if _, err := i.repo.AdvanceMarker(ctx, current.ID, newest.ID); err != nil {
		i.peers.Forget(current.ID)
		return nil, ignoreGone(err)
	}

	if len(posts) > 0 {
		slog.Info("New posts found", "source", current.Display(), "count", len(posts), "marker", max(marker, newest.ID))
	}
	return posts, nil
}

// peer returns a readable peer for the source, resolving it when the cache has none
func (i *Ingestor) peer(ctx context.Context, source *channelDomain.SourceChannel) (domain.Peer, bool, error) {
	if peer, ok := i.peers.Get(source.ID); ok && peer.Joined() {
		return peer, true, nil
	}

	resolution, err := withFloodRetry(ctx, i.floodMaxRetries, i.sleep, "resolve", func() (domain.Resolution, error) {
		return i.client.Resolve(ctx, source.Identifier)
	})
	if err != nil {
		return domain.Peer{}, false, oops.In("ingestor").With("source", source.Display()).Wrapf(err, "resolving source")
	}
	if resolution.Outcome != domain.ResolveOutcomeResolved {
		reason := lo.CoalesceOrEmpty(resolution.Reason, string(resolution.Outcome))
		return domain.Peer{}, false, i.markUnreachable(ctx, source, reason)
	}
	if !resolution.Peer.Joined() {
		// Join request still waiting for approval
		slog.Debug("Source not readable yet", "source", source.Display())
		return domain.Peer{}, false, nil
	}

	i.peers.Put(source.ID, resolution.Peer)
	return resolution.Peer, true, nil
}

func (i *Ingestor) markUnreachable(ctx context.Context, source *channelDomain.SourceChannel, reason string) error {
	slog.Warn("Source is unreachable", "source", source.Display(), "reason", reason)
	i.peers.Forget(source.ID)
	return ignoreGone(i.repo.SetStatus(ctx, source.ID, channelDomain.SubscriptionStatusUnreachable, reason))
}
