package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	channelDomain "github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	"github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
)

func TestSubscribe_AlreadySubscribedIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	source := f.source(t, "news", channelDomain.SubscriptionStatusSubscribed)
	_, err := f.repo.AdvanceMarker(ctx, source.ID, 42)
	require.NoError(t, err)

	ok, err := f.subs.Subscribe(ctx, source)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, f.client.resolves)
	assert.Empty(t, f.client.joins)

	stored := f.status(t, source.ID)
	assert.Equal(t, channelDomain.SubscriptionStatusSubscribed, stored.Status)
	assert.Equal(t, int64(42), stored.LastSeenPostID)
}

func TestSubscribe_RereadsStatusBeforeJoining(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	source := f.source(t, "news", channelDomain.SubscriptionStatusUnsubscribed)
	require.NoError(t, f.repo.SetStatus(ctx, source.ID, channelDomain.SubscriptionStatusSubscribed, ""))

	// stale copy still says unsubscribed
	ok, err := f.subs.Subscribe(ctx, source)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, f.client.joins)
}

func TestSubscribe_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		resolution domain.Resolution
		join       domain.JoinResult
		wantOK     bool
		wantStatus channelDomain.SubscriptionStatus
		wantReason string
	}{
		{
			name:       "joined",
			resolution: domain.Resolution{Outcome: domain.ResolveOutcomeResolved, Peer: domain.Peer{ID: 1}},
			join:       domain.JoinResult{Outcome: domain.JoinOutcomeJoined, Peer: domain.Peer{ID: 1}},
			wantOK:     true,
			wantStatus: channelDomain.SubscriptionStatusSubscribed,
		},
		{
			name:       "already member",
			resolution: domain.Resolution{Outcome: domain.ResolveOutcomeResolved, Peer: domain.Peer{ID: 1}},
			join:       domain.JoinResult{Outcome: domain.JoinOutcomeAlreadyMember, Peer: domain.Peer{ID: 1}},
			wantOK:     true,
			wantStatus: channelDomain.SubscriptionStatusSubscribed,
		},
		{
			name:       "request sent",
			resolution: domain.Resolution{Outcome: domain.ResolveOutcomeResolved, Peer: domain.Peer{InviteHash: "AbC"}},
			join:       domain.JoinResult{Outcome: domain.JoinOutcomeRequestSent},
			wantOK:     true,
			wantStatus: channelDomain.SubscriptionStatusSubscribed,
		},
		{
			name:       "invalid handle",
			resolution: domain.Resolution{Outcome: domain.ResolveOutcomeInvalid, Reason: "USERNAME_INVALID"},
			wantStatus: channelDomain.SubscriptionStatusUnreachable,
			wantReason: "USERNAME_INVALID",
		},
		{
			name:       "not found",
			resolution: domain.Resolution{Outcome: domain.ResolveOutcomeNotFound},
			wantStatus: channelDomain.SubscriptionStatusUnreachable,
			wantReason: "not_found",
		},
		{
			name:       "private on join",
			resolution: domain.Resolution{Outcome: domain.ResolveOutcomeResolved, Peer: domain.Peer{ID: 1}},
			join:       domain.JoinResult{Outcome: domain.JoinOutcomePrivate, Reason: "CHANNEL_PRIVATE"},
			wantStatus: channelDomain.SubscriptionStatusUnreachable,
			wantReason: "CHANNEL_PRIVATE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			source := f.source(t, "news", channelDomain.SubscriptionStatusUnsubscribed)
			f.client.resolveFn = func(string) (domain.Resolution, error) { return tt.resolution, nil }
			f.client.joinFn = func(domain.Peer) (domain.JoinResult, error) { return tt.join, nil }

			ok, err := f.subs.Subscribe(context.Background(), source)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)

			stored := f.status(t, source.ID)
			assert.Equal(t, tt.wantStatus, stored.Status)
			assert.Equal(t, tt.wantReason, stored.StatusReason)
		})
	}
}

func TestSubscribe_FloodWaitSleepsAndRetriesOnce(t *testing.T) {
	f := newFixture(t)
	source := f.source(t, "news", channelDomain.SubscriptionStatusUnsubscribed)

	resolves := 0
	f.client.resolveFn = func(identifier string) (domain.Resolution, error) {
		resolves++
		if resolves == 1 {
			return domain.Resolution{}, &domain.FloodWaitError{Wait: 5 * time.Second}
		}
		return domain.Resolution{Outcome: domain.ResolveOutcomeResolved, Peer: peerFor(identifier)}, nil
	}

	ok, err := f.subs.Subscribe(context.Background(), source)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, resolves)
	assert.Equal(t, []time.Duration{5 * time.Second}, f.sleep.recorded())
	assert.Equal(t, channelDomain.SubscriptionStatusSubscribed, f.status(t, source.ID).Status)
}

func TestSubscribe_RepeatedFloodWaitGivesUp(t *testing.T) {
	f := newFixture(t)
	source := f.source(t, "news", channelDomain.SubscriptionStatusUnsubscribed)
	f.client.joinFn = func(domain.Peer) (domain.JoinResult, error) {
		return domain.JoinResult{}, &domain.FloodWaitError{Wait: 30 * time.Second}
	}

	ok, err := f.subs.Subscribe(context.Background(), source)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, f.client.joins, 2)
	assert.Equal(t, []time.Duration{30 * time.Second}, f.sleep.recorded())

	// left for the next pass
	assert.Equal(t, channelDomain.SubscriptionStatusPendingJoin, f.status(t, source.ID).Status)
}

func TestSubscribe_NetworkErrorLeavesStatus(t *testing.T) {
	f := newFixture(t)
	source := f.source(t, "news", channelDomain.SubscriptionStatusUnsubscribed)
	f.client.resolveFn = func(string) (domain.Resolution, error) { return domain.Resolution{}, assert.AnError }

	ok, err := f.subs.Subscribe(context.Background(), source)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, channelDomain.SubscriptionStatusPendingJoin, f.status(t, source.ID).Status)
}

func TestSubscribeAll_PacesAttemptsAndSkipsMembers(t *testing.T) {
	f := newFixture(t)
	f.source(t, "alpha", channelDomain.SubscriptionStatusUnsubscribed)
	f.source(t, "beta", channelDomain.SubscriptionStatusSubscribed)
	f.source(t, "gamma", channelDomain.SubscriptionStatusPendingJoin)
	f.source(t, "delta", channelDomain.SubscriptionStatusUnreachable)
	f.source(t, "omega", channelDomain.SubscriptionStatusUnsubscribed)

	require.NoError(t, f.subs.SubscribeAll(context.Background()))

	assert.Equal(t, []string{"alpha", "gamma", "omega"}, f.client.joins)
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, f.sleep.recorded())
}

func TestSubscribe_SourceRemovedDuringJoin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	source := f.source(t, "news", channelDomain.SubscriptionStatusUnsubscribed)

	f.client.joinFn = func(peer domain.Peer) (domain.JoinResult, error) {
		_, err := f.repo.RemoveAssociation(ctx, f.owner.ID, source.ID)
		require.NoError(t, err)
		return domain.JoinResult{Outcome: domain.JoinOutcomeJoined, Peer: peer}, nil
	}

	ok, err := f.subs.Subscribe(ctx, source)
	require.NoError(t, err)
	assert.False(t, ok)
	_, cached := f.peers.Get(source.ID)
	assert.False(t, cached)
}
