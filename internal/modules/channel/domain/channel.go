package domain

import (
	"strconv"
	"strings"
	"time"

	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
)

// SourceChannel is an external channel watched for new posts
type SourceChannel struct {
	ID             int64              `json:"id"`
	Identifier     string             `json:"identifier"`
	Status         SubscriptionStatus `json:"status"`
	StatusReason   string             `json:"status_reason,omitempty"`
	LastSeenPostID int64              `json:"last_seen_post_id"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// OwnerChannel is a channel on whose behalf approved posts are re-published
type OwnerChannel struct {
	ID          int64     `json:"id"`
	Identifier  string    `json:"identifier"`
	OwnerUserID int64     `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Association links one source channel to one owner channel
type Association struct {
	SourceID  int64     `json:"source_id"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// IsInvite reports whether the identifier is a private invite token.
func (s *SourceChannel) IsInvite() bool {
	return strings.HasPrefix(s.Identifier, "+")
}

// Display renders the identifier the way users type it.
func (s *SourceChannel) Display() string {
	if s.IsInvite() {
		return "t.me/" + s.Identifier
	}
	return "@" + s.Identifier
}

// ChatID returns the value the bot API accepts as chat_id for this owner channel.
func (o *OwnerChannel) ChatID() any {
	if id, err := strconv.ParseInt(o.Identifier, 10, 64); err == nil {
		return id
	}
	return o.Identifier
}

var transitions = map[SubscriptionStatus][]SubscriptionStatus{
	SubscriptionStatusUnsubscribed: {SubscriptionStatusPendingJoin, SubscriptionStatusSubscribed, SubscriptionStatusUnreachable},
	SubscriptionStatusPendingJoin:  {SubscriptionStatusSubscribed, SubscriptionStatusUnreachable},
	SubscriptionStatusSubscribed:   {SubscriptionStatusUnreachable},
	SubscriptionStatusUnreachable:  {SubscriptionStatusUnsubscribed},
}

// CanTransition reports whether a source may move from one status to another.
// Writing the current status again is always allowed.
func CanTransition(from, to SubscriptionStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NormalizeSourceIdentifier turns any accepted spelling of a channel reference into its canonical form:
// a lower-cased public handle without "@", or "+HASH" for invite links.
// Supports:
//   - https://t.me/channelname, t.me/channelname, @channelname, channelname
//   - https://t.me/+HASH, t.me/joinchat/HASH, +HASH
func NormalizeSourceIdentifier(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	for _, host := range []string{"t.me/", "telegram.me/", "telegram.dog/"} {
		s = strings.TrimPrefix(s, host)
	}
	s = strings.TrimSuffix(s, "/")

	if hash, ok := strings.CutPrefix(s, "joinchat/"); ok {
		s = "+" + hash
	}
	if hash, ok := strings.CutPrefix(s, "+"); ok {
		if hash == "" || strings.ContainsAny(hash, "/ ") {
			return "", apperrors.ErrInvalidIdentifier
		}
		return "+" + hash, nil
	}

	s = strings.TrimPrefix(s, "@")
	if !isHandle(s) {
		return "", apperrors.ErrInvalidIdentifier
	}
	return strings.ToLower(s), nil
}

// NormalizeOwnerIdentifier accepts "@handle", a t.me link or a numeric chat id ("-100...").
func NormalizeOwnerIdentifier(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return s, nil
	}
	handle, err := NormalizeSourceIdentifier(s)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(handle, "+") {
		// the bot can only post into channels it can address
		return "", apperrors.ErrInvalidIdentifier
	}
	return "@" + handle, nil
}

// isHandle checks Telegram's public username alphabet. Length is left to the network to judge.
func isHandle(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
