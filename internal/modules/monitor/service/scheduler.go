package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	channelDomain "github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/channel-relay/internal/modules/channel/repository"
	"github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
)

// PostHandler receives every new post in source order
type PostHandler interface {
	ProcessPost(ctx context.Context, post domain.Post, source *channelDomain.SourceChannel) error
}

// SchedulerOptions holds the loop timings
type SchedulerOptions struct {
	CheckInterval  time.Duration
	ErrorCooldown  time.Duration
	PostDelay      time.Duration
	ReconnectEvery int
}

// Scheduler drives the polling loop: connect, subscribe, ingest, hand posts off, sleep
type Scheduler struct {
	repo          channelRepo.Repository
	supervisor    *Supervisor
	subscriptions *SubscriptionManager
	ingestor      *Ingestor
	handler       PostHandler
	opts          SchedulerOptions
	sleep         SleepFunc

	passes  atomic.Int64
	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler wires the loop components together
func NewScheduler(repo channelRepo.Repository, supervisor *Supervisor, subscriptions *SubscriptionManager, ingestor *Ingestor, handler PostHandler, opts SchedulerOptions, sleep SleepFunc) *Scheduler {
	if sleep == nil {
		sleep = Sleep
	}
	if opts.ReconnectEvery < 1 {
		opts.ReconnectEvery = 1
	}
	return &Scheduler{
		repo:          repo,
		supervisor:    supervisor,
		subscriptions: subscriptions,
		ingestor:      ingestor,
		handler:       handler,
		opts:          opts,
		sleep:         sleep,
	}
}

// Start runs the loop in the background until Stop is called or ctx ends
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(ctx)
	}()
}

// Stop cancels the loop and waits for it to close the session
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
}

// Running reports whether the loop is active
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Passes returns the number of completed passes since start
func (s *Scheduler) Passes() int64 {
	return s.passes.Load()
}

// Status is a snapshot of the loop for status surfaces
type Status struct {
	State   domain.ConnectionState `json:"state"`
	Running bool                   `json:"running"`
	Passes  int64                  `json:"passes"`
}

func (s *Scheduler) Status() Status {
	return Status{
		State:   s.supervisor.State(),
		Running: s.Running(),
		Passes:  s.Passes(),
	}
}

// Run blocks until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	s.running.Store(true)
	defer s.running.Store(false)
	defer s.supervisor.Close()

	slog.Info("Channel monitor started", "check_interval", s.opts.CheckInterval, "reconnect_every", s.opts.ReconnectEvery)

	cycle := 0
	subscribe := true
	for ctx.Err() == nil {
		err := s.pass(ctx, subscribe)
		if ctx.Err() != nil {
			break
		}

		if err != nil {
			slog.Error("Monitor pass failed", "error", err, "cooldown", s.opts.ErrorCooldown)
			s.supervisor.MarkDown()
			subscribe = true
			if s.sleep(ctx, s.opts.ErrorCooldown) != nil {
				break
			}
			continue
		}

		subscribe = false
		s.passes.Add(1)
		cycle++
		if cycle >= s.opts.ReconnectEvery {
			s.supervisor.ForceReconnect()
			cycle = 0
			subscribe = true
		}

		slog.Debug("Waiting for the next check", "interval", s.opts.CheckInterval)
		if s.sleep(ctx, s.opts.CheckInterval) != nil {
			break
		}
	}

	slog.Info("Channel monitor stopped")
}

// pass checks every reachable source once. Failures of single sources are isolated; a storage
// failure aborts the pass, and any network failure makes it count as failed after the other
// sources were served.
func (s *Scheduler) pass(ctx context.Context, subscribe bool) error {
	if !s.supervisor.EnsureConnection(ctx) {
		return apperrors.ErrNotConnected
	}

	if subscribe {
		if err := s.subscriptions.SubscribeAll(ctx); err != nil {
			return err
		}
	}

	sources, err := s.repo.ListSources(ctx,
		channelDomain.SubscriptionStatusUnsubscribed,
		channelDomain.SubscriptionStatusPendingJoin,
		channelDomain.SubscriptionStatusSubscribed,
	)
	if err != nil {
		return err
	}

	var networkErr error
	for _, source := range sources {
		posts, err := s.ingestor.GetNewPosts(ctx, source)
		if err != nil {
			if fatal(ctx, err) {
				return err
			}
			slog.Error("Failed to check source", "source", source.Display(), "error", err)
			networkErr = errors.Join(networkErr, err)
			continue
		}

		for i, post := range posts {
			if i > 0 {
				if err := s.sleep(ctx, s.opts.PostDelay); err != nil {
					return err
				}
			}
			if err := s.handler.ProcessPost(ctx, post, source); err != nil {
				if fatal(ctx, err) {
					return err
				}
				slog.Error("Failed to process post", "source", source.Display(), "post_id", post.ID, "error", err)
			}
		}
	}

	return networkErr
}

func fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, apperrors.ErrStorage)
}
