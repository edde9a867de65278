package domain

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	channelDomain "github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	monitorDomain "github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Key identifies a post of a source channel
type Key struct {
	SourceID int64
	PostID   int64
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d", k.SourceID, k.PostID)
}

// Payload is what gets re-published on approval
type Payload struct {
	Text string
	// Media is nil for text-only posts and when the download failed
	Media *monitorDomain.Media
}

// IsEmpty is true when there is neither text nor media to publish.
// Whitespace alone is rejected by the bot API, so it counts as no text.
func (p Payload) IsEmpty() bool {
	return strings.TrimSpace(p.Text) == "" && p.Media == nil
}

// PendingPost is a post waiting for decisions from its target owner channels
type PendingPost struct {
	Key       Key
	// Source is the canonical identifier of the source channel
	Source    string
	Payload   Payload
	// Origin is the source message, kept to download its media again
	Origin    monitorDomain.Message
	Targets   map[int64]struct{}
	State     PendingState
	CreatedAt time.Time
}

// TargetIDs returns the pending targets in ascending order
func (p *PendingPost) TargetIDs() []int64 {
	ids := lo.Keys(p.Targets)
	slices.Sort(ids)
	return ids
}

// Action is one button under a preview
type Action struct {
	Label string
	Data  string
}

const callbackPrefix = "mod"

// CallbackData encodes a decision for one target into button data
func CallbackData(decision Decision, key Key, targetID int64) string {
	code := "r"
	if decision == DecisionApprove {
		code = "a"
	}
	return fmt.Sprintf("%s:%s:%d:%d:%d", callbackPrefix, code, key.SourceID, key.PostID, targetID)
}

// IsCallbackData reports whether data belongs to moderation buttons
func IsCallbackData(data string) bool {
	return strings.HasPrefix(data, callbackPrefix+":")
}

// ParseCallbackData is the inverse of CallbackData
func ParseCallbackData(data string) (Decision, Key, int64, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 5 || parts[0] != callbackPrefix {
		return "", Key{}, 0, oops.In("moderation").With("data", data).Errorf("malformed callback data")
	}

	var decision Decision
	switch parts[1] {
	case "a":
		decision = DecisionApprove
	case "r":
		decision = DecisionReject
	default:
		return "", Key{}, 0, oops.In("moderation").With("data", data).Errorf("unknown decision code %q", parts[1])
	}

	nums := make([]int64, 3)
	for i, raw := range parts[2:] {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return "", Key{}, 0, oops.In("moderation").With("data", data).Wrapf(err, "parsing callback data")
		}
		nums[i] = n
	}

	return decision, Key{SourceID: nums[0], PostID: nums[1]}, nums[2], nil
}

// Actions builds the approve/reject pair for one target
func Actions(key Key, targetID int64) []Action {
	return []Action{
		{Label: "✅ Approve", Data: CallbackData(DecisionApprove, key, targetID)},
		{Label: "❌ Reject", Data: CallbackData(DecisionReject, key, targetID)},
	}
}

// Gateway delivers previews to owners and publishes approved posts
type Gateway interface {
	SendText(ctx context.Context, userID int64, text string, actions []Action) error
	SendPhoto(ctx context.Context, userID int64, photo []byte, filename, caption string, actions []Action) error
	SendDocument(ctx context.Context, userID int64, document []byte, filename, caption string, actions []Action) error
	Publish(ctx context.Context, owner *channelDomain.OwnerChannel, payload Payload) error
}

// Outcome reports what a decision did
type Outcome struct {
	// Found is false when no pending post exists for the key
	Found bool
	// Removed is false when the target had already decided
	Removed   bool
	Published bool
	Remaining int
	Evicted   bool
}
