package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
)

func TestNormalizeSourceIdentifier(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "bare handle", raw: "SomeChannel", want: "somechannel"},
		{name: "at handle", raw: "@some_channel", want: "some_channel"},
		{name: "https link", raw: "https://t.me/SomeChannel/", want: "somechannel"},
		{name: "telegram.me link", raw: "telegram.me/news", want: "news"},
		{name: "plus invite", raw: "https://t.me/+AbCdEf123", want: "+AbCdEf123"},
		{name: "joinchat invite", raw: "t.me/joinchat/AbCdEf123", want: "+AbCdEf123"},
		{name: "whitespace", raw: "  @news  ", want: "news"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeSourceIdentifier(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeSourceIdentifier_Invalid(t *testing.T) {
	for _, raw := range []string{"", "@", "t.me/+", "t.me/news/42", "bad name", "ник"} {
		_, err := NormalizeSourceIdentifier(raw)
		assert.ErrorIs(t, err, apperrors.ErrInvalidIdentifier, "input %q", raw)
	}
}

func TestNormalizeOwnerIdentifier(t *testing.T) {
	got, err := NormalizeOwnerIdentifier("https://t.me/MyChannel")
	require.NoError(t, err)
	assert.Equal(t, "@mychannel", got)

	got, err = NormalizeOwnerIdentifier("-1001234567890")
	require.NoError(t, err)
	assert.Equal(t, "-1001234567890", got)

	_, err = NormalizeOwnerIdentifier("t.me/+invite")
	assert.ErrorIs(t, err, apperrors.ErrInvalidIdentifier)
}

func TestOwnerChannel_ChatID(t *testing.T) {
	assert.Equal(t, int64(-1001234567890), (&OwnerChannel{Identifier: "-1001234567890"}).ChatID())
	assert.Equal(t, "@mychannel", (&OwnerChannel{Identifier: "@mychannel"}).ChatID())
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to SubscriptionStatus
		allowed  bool
	}{
		{SubscriptionStatusUnsubscribed, SubscriptionStatusPendingJoin, true},
		{SubscriptionStatusUnsubscribed, SubscriptionStatusSubscribed, true},
		{SubscriptionStatusPendingJoin, SubscriptionStatusSubscribed, true},
		{SubscriptionStatusPendingJoin, SubscriptionStatusUnreachable, true},
		{SubscriptionStatusSubscribed, SubscriptionStatusSubscribed, true},
		{SubscriptionStatusSubscribed, SubscriptionStatusUnreachable, true},
		{SubscriptionStatusSubscribed, SubscriptionStatusUnsubscribed, false},
		{SubscriptionStatusSubscribed, SubscriptionStatusPendingJoin, false},
		{SubscriptionStatusUnreachable, SubscriptionStatusSubscribed, false},
		{SubscriptionStatusUnreachable, SubscriptionStatusUnsubscribed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestSourceChannel_Display(t *testing.T) {
	assert.Equal(t, "@news", (&SourceChannel{Identifier: "news"}).Display())
	assert.Equal(t, "t.me/+AbC", (&SourceChannel{Identifier: "+AbC"}).Display())
}
