package mtproto

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
)

// neverReady keeps reconnecting until its context ends, like gotd on an unreachable network
type neverReady struct {
	stopped chan struct{}
}

func (n *neverReady) Run(ctx context.Context, _ func(ctx context.Context) error) error {
	<-ctx.Done()
	close(n.stopped)
	return ctx.Err()
}

func TestDial_ReturnsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	base, stopBase := context.WithCancel(context.Background())
	defer stopBase()

	client := &neverReady{stopped: make(chan struct{})}
	stop, err := dial(ctx, base, stopBase, client)
	assert.Nil(t, stop)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-client.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("background run was not stopped")
	}
	assert.Error(t, base.Err())
}

func TestConnect_HonorsCancellation(t *testing.T) {
	client := NewClient(Options{
		AppID:       1,
		AppHash:     "test",
		SessionPath: filepath.Join(t.TempDir(), "session.json"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- client.Connect(ctx, NonInteractivePrompter{}) }()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Connect kept blocking after its context ended")
	}

	require.NoError(t, client.Disconnect())
	_, err := client.api()
	assert.ErrorIs(t, err, apperrors.ErrNotConnected)
}
