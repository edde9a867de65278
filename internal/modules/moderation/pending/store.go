// Package pending holds posts that still wait for owner decisions.
// Entries live in memory only; a restart drops them.
package pending

import (
	"sync"

	"github.com/reshetovitsme/channel-relay/internal/modules/moderation/domain"
	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Claim is the result of removing one target from a pending post
type Claim struct {
	Found     bool
	Removed   bool
	Source    string
	Payload   domain.Payload
	Remaining int
	Evicted   bool
}

// Store is the set of open pending posts keyed by (source, post)
type Store struct {
	mu    sync.Mutex
	posts map[domain.Key]*domain.PendingPost
}

func New() *Store {
	return &Store{posts: make(map[domain.Key]*domain.PendingPost)}
}

// Register adds a new pending post. An existing entry is never overwritten.
func (s *Store) Register(post *domain.PendingPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[post.Key]; ok {
		return oops.In("pending-store").With("key", post.Key.String()).Wrap(apperrors.ErrPendingPostExists)
	}

	post.State = domain.PendingStateOpen
	post.Targets = lo.Assign(post.Targets)
	s.posts[post.Key] = post
	return nil
}

// Claim removes targetID from the post's targets. The post is marked resolved and evicted
// when its last target is removed. Claiming an absent target changes nothing.
func (s *Store) Claim(key domain.Key, targetID int64) Claim {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[key]
	if !ok {
		return Claim{}
	}

	claim := Claim{Found: true, Source: post.Source, Payload: post.Payload}
	if _, pending := post.Targets[targetID]; pending {
		delete(post.Targets, targetID)
		claim.Removed = true
	}

	claim.Remaining = len(post.Targets)
	if claim.Remaining == 0 {
		post.State = domain.PendingStateResolved
		delete(s.posts, key)
		claim.Evicted = true
	}
	return claim
}

// SetPayload replaces the payload of an open post. It reports false when the post is gone.
func (s *Store) SetPayload(key domain.Key, payload domain.Payload) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[key]
	if !ok {
		return false
	}
	post.Payload = payload
	return true
}

// Get returns a copy of the pending post
func (s *Store) Get(key domain.Key) (domain.PendingPost, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[key]
	if !ok {
		return domain.PendingPost{}, false
	}
	return snapshot(post), true
}

// List returns copies of every pending post
func (s *Store) List() []domain.PendingPost {
	s.mu.Lock()
	defer s.mu.Unlock()

	return lo.MapToSlice(s.posts, func(_ domain.Key, post *domain.PendingPost) domain.PendingPost {
		return snapshot(post)
	})
}

// Len returns the number of open pending posts
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

func snapshot(post *domain.PendingPost) domain.PendingPost {
	cp := *post
	cp.Targets = lo.Assign(post.Targets)
	return cp
}
