package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
)

// Supervisor owns the lifecycle of the single network session
type Supervisor struct {
	client          domain.ChannelClient
	prompter        domain.AuthPrompter
	floodMaxRetries int
	sleep           SleepFunc

	mu    sync.RWMutex
	state domain.ConnectionState
}

// NewSupervisor creates a supervisor in the disconnected state
func NewSupervisor(client domain.ChannelClient, prompter domain.AuthPrompter, floodMaxRetries int, sleep SleepFunc) *Supervisor {
	if sleep == nil {
		sleep = Sleep
	}
	return &Supervisor{
		client:          client,
		prompter:        prompter,
		floodMaxRetries: floodMaxRetries,
		sleep:           sleep,
		state:           domain.ConnectionStateDisconnected,
	}
}

// State returns the current connection state
func (s *Supervisor) State() domain.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Supervisor) setState(state domain.ConnectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// EnsureConnection returns true when a live session is available, connecting first if needed
func (s *Supervisor) EnsureConnection(ctx context.Context) bool {
	if s.State() == domain.ConnectionStateConnected {
		return true
	}

	// Whatever is left of a previous session is dropped before dialing again
	if err := s.client.Disconnect(); err != nil {
		slog.Debug("Stale session teardown failed", "error", err)
	}
	s.setState(domain.ConnectionStateConnecting)

	prompter := &challengePrompter{inner: s.prompter, supervisor: s}
	_, err := withFloodRetry(ctx, s.floodMaxRetries, s.sleep, "connect", func() (struct{}, error) {
		return struct{}{}, s.client.Connect(ctx, prompter)
	})
	if err != nil {
		slog.Error("Failed to connect to the channel network", "error", err)
		s.setState(domain.ConnectionStateDisconnected)
		return false
	}

	s.setState(domain.ConnectionStateConnected)
	slog.Info("Connected to the channel network")
	return true
}

// ForceReconnect drops the session so the next EnsureConnection dials a fresh one
func (s *Supervisor) ForceReconnect() {
	slog.Info("Reconnecting to refresh the session")
	s.teardown()
}

// MarkDown drops the session after a failed pass
func (s *Supervisor) MarkDown() {
	slog.Warn("Marking the session down")
	s.teardown()
}

// Close tears the session down on shutdown
func (s *Supervisor) Close() {
	s.teardown()
}

func (s *Supervisor) teardown() {
	if err := s.client.Disconnect(); err != nil {
		slog.Warn("Failed to disconnect", "error", err)
	}
	s.setState(domain.ConnectionStateDisconnected)
}

// challengePrompter reports auth challenges through the supervisor state
type challengePrompter struct {
	inner      domain.AuthPrompter
	supervisor *Supervisor
}

func (p *challengePrompter) Code(ctx context.Context) (string, error) {
	p.supervisor.setState(domain.ConnectionStateAuthChallenge)
	defer p.supervisor.setState(domain.ConnectionStateConnecting)
	return p.inner.Code(ctx)
}

func (p *challengePrompter) Password(ctx context.Context) (string, error) {
	p.supervisor.setState(domain.ConnectionStateAuthChallenge)
	defer p.supervisor.setState(domain.ConnectionStateConnecting)
	return p.inner.Password(ctx)
}
