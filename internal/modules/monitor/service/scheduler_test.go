package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	channelDomain "github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	"github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
)

type recordingHandler struct {
	mu    sync.Mutex
	posts []domain.Post
	err   error
}

func (h *recordingHandler) ProcessPost(_ context.Context, post domain.Post, _ *channelDomain.SourceChannel) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.posts = append(h.posts, post)
	return h.err
}

var testOptions = SchedulerOptions{
	CheckInterval:  60 * time.Second,
	ErrorCooldown:  90 * time.Second,
	PostDelay:      time.Second,
	ReconnectEvery: 2,
}

func newTestScheduler(f *fixture, handler PostHandler) *Scheduler {
	sup := NewSupervisor(f.client, staticPrompter{}, 1, f.sleep.Sleep)
	return NewScheduler(f.repo, sup, f.subs, f.ingest, handler, testOptions, f.sleep.Sleep)
}

// cancelAfter cancels ctx once n pauses of length d were requested
func cancelAfter(f *fixture, cancel context.CancelFunc, d time.Duration, n int) {
	seen := 0
	f.sleep.onSleep = func(got time.Duration) {
		if got == d {
			seen++
			if seen == n {
				cancel()
			}
		}
	}
}

func TestScheduler_ReconnectsEveryNPasses(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelAfter(f, cancel, testOptions.CheckInterval, 4)

	sched := newTestScheduler(f, &recordingHandler{})
	sched.Run(ctx)

	assert.Equal(t, int64(4), sched.Passes())
	assert.Equal(t, 2, f.client.connects)
	assert.False(t, sched.Running())
}

func TestScheduler_FailedPassCoolsDown(t *testing.T) {
	f := newFixture(t)
	f.client.connectFn = func(context.Context, domain.AuthPrompter) error { return assert.AnError }
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelAfter(f, cancel, testOptions.ErrorCooldown, 2)

	sched := newTestScheduler(f, &recordingHandler{})
	sched.Run(ctx)

	assert.Zero(t, sched.Passes())
	assert.Equal(t, 2, f.client.connects)
	assert.Equal(t, []time.Duration{90 * time.Second, 90 * time.Second}, f.sleep.recorded())
}

func TestScheduler_DeliversPostsOldestFirstWithDelay(t *testing.T) {
	f := newFixture(t)
	source := f.source(t, "news", channelDomain.SubscriptionStatusSubscribed)
	f.client.fetchFn = func(_ domain.Peer, minID int64, _ int) ([]domain.Message, error) {
		if minID > 0 {
			return nil, nil
		}
		return []domain.Message{{ID: 2, Text: "second"}, {ID: 1, Text: "first"}}, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelAfter(f, cancel, testOptions.CheckInterval, 1)

	handler := &recordingHandler{}
	newTestScheduler(f, handler).Run(ctx)

	require.Len(t, handler.posts, 2)
	assert.Equal(t, []int64{1, 2}, postIDs(handler.posts))
	assert.Equal(t, source.ID, handler.posts[0].SourceID)
	assert.Equal(t, []time.Duration{time.Second, 60 * time.Second}, f.sleep.recorded())
}

func TestScheduler_SourceFailureIsIsolated(t *testing.T) {
	f := newFixture(t)
	broken := f.source(t, "broken", channelDomain.SubscriptionStatusSubscribed)
	f.source(t, "healthy", channelDomain.SubscriptionStatusSubscribed)
	f.client.fetchFn = func(peer domain.Peer, _ int64, _ int) ([]domain.Message, error) {
		if peer.ID == peerFor(broken.Identifier).ID {
			return nil, assert.AnError
		}
		return []domain.Message{{ID: 7, Text: "still here"}}, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelAfter(f, cancel, testOptions.ErrorCooldown, 1)

	handler := &recordingHandler{}
	sched := newTestScheduler(f, handler)
	sched.Run(ctx)

	assert.Equal(t, []int64{7}, postIDs(handler.posts))
	// the network failure still counts against the pass
	assert.Zero(t, sched.Passes())
	assert.Equal(t, []time.Duration{90 * time.Second}, f.sleep.recorded())
}

func TestScheduler_StorageFailureFromHandlerFailsPass(t *testing.T) {
	f := newFixture(t)
	f.source(t, "news", channelDomain.SubscriptionStatusSubscribed)
	f.client.fetchFn = func(_ domain.Peer, minID int64, _ int) ([]domain.Message, error) {
		return []domain.Message{{ID: minID + 1, Text: "post"}}, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelAfter(f, cancel, testOptions.ErrorCooldown, 1)

	handler := &recordingHandler{err: apperrors.ErrStorage}
	sched := newTestScheduler(f, handler)
	sched.Run(ctx)

	assert.Len(t, handler.posts, 1)
	assert.Zero(t, sched.Passes())
}

func TestScheduler_StartStop(t *testing.T) {
	f := newFixture(t)
	sup := NewSupervisor(f.client, staticPrompter{}, 1, nil)
	opts := testOptions
	opts.CheckInterval = time.Hour
	sched := NewScheduler(f.repo, sup, f.subs, f.ingest, &recordingHandler{}, opts, nil)

	sched.Start(context.Background())
	sched.Start(context.Background())
	require.Eventually(t, func() bool { return sched.Passes() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.True(t, sched.Running())

	sched.Stop()
	assert.False(t, sched.Running())
	assert.Equal(t, domain.ConnectionStateDisconnected, sup.State())
	assert.Equal(t, 1, f.client.connects)
	sched.Stop()
}
