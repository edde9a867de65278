package service

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	channelDomain "github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	"github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
)

func postIDs(posts []domain.Post) []int64 {
	return lo.Map(posts, func(p domain.Post, _ int) int64 { return p.ID })
}

func TestGetNewPosts_SortsAscendingAndAdvancesPastEmptyMessages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	source := f.source(t, "news", channelDomain.SubscriptionStatusSubscribed)

	f.client.fetchFn = func(_ domain.Peer, minID int64, _ int) ([]domain.Message, error) {
		if minID >= 4 {
			return nil, nil
		}
		return []domain.Message{
			{ID: 4},
			{ID: 3, Text: "third"},
			{ID: 1, Text: "first"},
			{ID: 2, HasMedia: true},
		}, nil
	}

	posts, err := f.ingest.GetNewPosts(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, postIDs(posts))
	assert.Equal(t, source.ID, posts[0].SourceID)
	assert.Equal(t, int64(4), f.status(t, source.ID).LastSeenPostID)

	posts, err = f.ingest.GetNewPosts(ctx, source)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, int64(4), f.status(t, source.ID).LastSeenPostID)

	require.Len(t, f.client.fetches, 2)
	assert.Equal(t, fetchCall{peerID: peerFor("news").ID, minID: 0, limit: 5}, f.client.fetches[0])
	assert.Equal(t, int64(4), f.client.fetches[1].minID)
}

func TestGetNewPosts_DropsAlreadySeenMessages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	source := f.source(t, "news", channelDomain.SubscriptionStatusSubscribed)
	_, err := f.repo.AdvanceMarker(ctx, source.ID, 10)
	require.NoError(t, err)

	f.client.fetchFn = func(domain.Peer, int64, int) ([]domain.Message, error) {
		return []domain.Message{{ID: 11, Text: "new"}, {ID: 9, Text: "old"}, {ID: 10, Text: "seen"}}, nil
	}

	posts, err := f.ingest.GetNewPosts(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, []int64{11}, postIDs(posts))
	assert.Equal(t, int64(11), f.status(t, source.ID).LastSeenPostID)
}

func TestGetNewPosts_SubscribesUnsubscribedSourceFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	source := f.source(t, "news", channelDomain.SubscriptionStatusUnsubscribed)
	f.client.fetchFn = func(domain.Peer, int64, int) ([]domain.Message, error) {
		return []domain.Message{{ID: 1, Text: "hello"}}, nil
	}

	posts, err := f.ingest.GetNewPosts(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, postIDs(posts))
	assert.Equal(t, []string{"news"}, f.client.joins)
	assert.Equal(t, channelDomain.SubscriptionStatusSubscribed, f.status(t, source.ID).Status)
	// peer came from the join, no second lookup
	assert.Len(t, f.client.resolves, 1)
}

func TestGetNewPosts_FailedSubscribeYieldsNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	source := f.source(t, "gone", channelDomain.SubscriptionStatusUnsubscribed)
	f.client.resolveFn = func(string) (domain.Resolution, error) {
		return domain.Resolution{Outcome: domain.ResolveOutcomeNotFound, Reason: "USERNAME_NOT_OCCUPIED"}, nil
	}

	posts, err := f.ingest.GetNewPosts(ctx, source)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Empty(t, f.client.fetches)
}

func TestGetNewPosts_UnreachableSourceIsSkipped(t *testing.T) {
	f := newFixture(t)
	source := f.source(t, "news", channelDomain.SubscriptionStatusUnreachable)

	posts, err := f.ingest.GetNewPosts(context.Background(), source)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Empty(t, f.client.resolves)
	assert.Empty(t, f.client.fetches)
}

func TestGetNewPosts_ChannelFaultMarksUnreachable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	source := f.source(t, "news", channelDomain.SubscriptionStatusSubscribed)
	f.client.fetchFn = func(domain.Peer, int64, int) ([]domain.Message, error) {
		return nil, &domain.ChannelFaultError{Reason: "CHANNEL_PRIVATE"}
	}

	posts, err := f.ingest.GetNewPosts(ctx, source)
	require.NoError(t, err)
	assert.Empty(t, posts)

	stored := f.status(t, source.ID)
	assert.Equal(t, channelDomain.SubscriptionStatusUnreachable, stored.Status)
	assert.Equal(t, "CHANNEL_PRIVATE", stored.StatusReason)
	_, cached := f.peers.Get(source.ID)
	assert.False(t, cached)
}

func TestGetNewPosts_TransientErrorKeepsMarker(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	source := f.source(t, "news", channelDomain.SubscriptionStatusSubscribed)
	f.client.fetchFn = func(domain.Peer, int64, int) ([]domain.Message, error) {
		return nil, assert.AnError
	}

	_, err := f.ingest.GetNewPosts(ctx, source)
	assert.ErrorIs(t, err, assert.AnError)

	stored := f.status(t, source.ID)
	assert.Equal(t, channelDomain.SubscriptionStatusSubscribed, stored.Status)
	assert.Zero(t, stored.LastSeenPostID)
}

func TestGetNewPosts_FetchFloodWaitRetried(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	source := f.source(t, "news", channelDomain.SubscriptionStatusSubscribed)

	calls := 0
	f.client.fetchFn = func(domain.Peer, int64, int) ([]domain.Message, error) {
		calls++
		if calls == 1 {
			return nil, &domain.FloodWaitError{Wait: 12 * time.Second}
		}
		return []domain.Message{{ID: 5, Text: "ok"}}, nil
	}

	posts, err := f.ingest.GetNewPosts(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, postIDs(posts))
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{12 * time.Second}, f.sleep.recorded())
}

func TestGetNewPosts_SourceRemovedDuringFetch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	source := f.source(t, "news", channelDomain.SubscriptionStatusSubscribed)

	f.client.fetchFn = func(domain.Peer, int64, int) ([]domain.Message, error) {
		_, err := f.repo.RemoveAssociation(ctx, f.owner.ID, source.ID)
		require.NoError(t, err)
		return []domain.Message{{ID: 1, Text: "late"}}, nil
	}

	posts, err := f.ingest.GetNewPosts(ctx, source)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
