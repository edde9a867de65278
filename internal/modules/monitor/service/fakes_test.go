package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	channelDomain "github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/channel-relay/internal/modules/channel/repository"
	"github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
	"github.com/reshetovitsme/channel-relay/internal/shared/database"
)

type fetchCall struct {
	peerID int64
	minID  int64
	limit  int
}

// fakeClient answers with the configured funcs and resolves everything else to a joined peer
type fakeClient struct {
	mu sync.Mutex

	connectFn func(ctx context.Context, prompter domain.AuthPrompter) error
	resolveFn func(identifier string) (domain.Resolution, error)
	joinFn    func(peer domain.Peer) (domain.JoinResult, error)
	fetchFn   func(peer domain.Peer, minID int64, limit int) ([]domain.Message, error)

	connects    int
	disconnects int
	resolves    []string
	joins       []string
	fetches     []fetchCall
}

func peerFor(identifier string) domain.Peer {
	var id int64
	for _, r := range identifier {
		id = id*31 + int64(r)
	}
	return domain.Peer{ID: id, AccessHash: 1, Title: identifier}
}

func (c *fakeClient) Connect(ctx context.Context, prompter domain.AuthPrompter) error {
	c.mu.Lock()
	c.connects++
	fn := c.connectFn
	c.mu.Unlock()
	if fn != nil {
		return fn(ctx, prompter)
	}
	return nil
}

func (c *fakeClient) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnects++
	return nil
}

func (c *fakeClient) Resolve(_ context.Context, identifier string) (domain.Resolution, error) {
	c.mu.Lock()
	c.resolves = append(c.resolves, identifier)
	fn := c.resolveFn
	c.mu.Unlock()
	if fn != nil {
		return fn(identifier)
	}
	return domain.Resolution{Outcome: domain.ResolveOutcomeResolved, Peer: peerFor(identifier)}, nil
}

func (c *fakeClient) Join(_ context.Context, peer domain.Peer) (domain.JoinResult, error) {
	c.mu.Lock()
	c.joins = append(c.joins, peer.Title)
	fn := c.joinFn
	c.mu.Unlock()
	if fn != nil {
		return fn(peer)
	}
	return domain.JoinResult{Outcome: domain.JoinOutcomeJoined, Peer: peer}, nil
}

func (c *fakeClient) FetchMessages(_ context.Context, peer domain.Peer, minID int64, limit int) ([]domain.Message, error) {
	c.mu.Lock()
	c.fetches = append(c.fetches, fetchCall{peerID: peer.ID, minID: minID, limit: limit})
	fn := c.fetchFn
	c.mu.Unlock()
	if fn != nil {
		return fn(peer, minID, limit)
	}
	return nil, nil
}

func (c *fakeClient) DownloadMedia(context.Context, domain.Message) (domain.Media, error) {
	return domain.Media{}, nil
}

// sleeper records requested pauses without waiting
type sleeper struct {
	mu        sync.Mutex
	durations []time.Duration
	onSleep   func(d time.Duration)
}

func (s *sleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.durations = append(s.durations, d)
	hook := s.onSleep
	s.mu.Unlock()
	if hook != nil {
		hook(d)
	}
	return ctx.Err()
}

func (s *sleeper) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.durations...)
}

type fixture struct {
	repo   channelRepo.Repository
	client *fakeClient
	sleep  *sleeper
	peers  *PeerCache
	subs   *SubscriptionManager
	ingest *Ingestor
	owner  *channelDomain.OwnerChannel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "relay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := channelRepo.NewSQLiteStorage(db)
	owner := &channelDomain.OwnerChannel{Identifier: "@mine", OwnerUserID: 1}
	require.NoError(t, repo.CreateOwnerChannel(context.Background(), owner))

	f := &fixture{
		repo:   repo,
		client: &fakeClient{},
		sleep:  &sleeper{},
		peers:  NewPeerCache(),
		owner:  owner,
	}
	f.subs = NewSubscriptionManager(repo, f.client, f.peers, 3*time.Second, 1, f.sleep.Sleep)
	f.ingest = NewIngestor(repo, f.client, f.subs, f.peers, 5, 1, f.sleep.Sleep)
	return f
}

func (f *fixture) source(t *testing.T, identifier string, status channelDomain.SubscriptionStatus) *channelDomain.SourceChannel {
	t.Helper()
	ctx := context.Background()
	source, err := f.repo.AddAssociation(ctx, f.owner.ID, identifier)
	require.NoError(t, err)
	if status != channelDomain.SubscriptionStatusUnsubscribed {
		require.NoError(t, f.repo.SetStatus(ctx, source.ID, status, ""))
	}
	source, err = f.repo.GetSource(ctx, source.ID)
	require.NoError(t, err)
	return source
}

func (f *fixture) status(t *testing.T, sourceID int64) *channelDomain.SourceChannel {
	t.Helper()
	source, err := f.repo.GetSource(context.Background(), sourceID)
	require.NoError(t, err)
	return source
}
