package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Peer is a resolved channel the session can talk to
type Peer struct {
	ID         int64
	AccessHash int64
	// InviteHash is set for private channels reached through an invite link
	InviteHash string
	Title      string
}

// Joined reports whether the peer carries a channel the session can read
func (p Peer) Joined() bool {
	return p.ID != 0
}

// Message is one entry of a channel history page
type Message struct {
	ID       int64
	Text     string
	HasMedia bool
	Date     time.Time
	// Ref is the client's own representation, handed back to DownloadMedia
	Ref any
}

// IsNoise reports a message with neither text nor media. Whitespace-only text is no text:
// the bot API refuses to send it.
func (m Message) IsNoise() bool {
	return strings.TrimSpace(m.Text) == "" && !m.HasMedia
}

// Post is a new message of a source channel, ready for moderation
type Post struct {
	SourceID int64
	Message
}

// Media is a downloaded attachment held in memory
type Media struct {
	Kind     MediaKind
	Data     []byte
	Filename string
}

// Resolution is the result of looking a source identifier up
type Resolution struct {
	Outcome ResolveOutcome
	Peer    Peer
	Reason  string
}

// JoinResult is the result of a join attempt
type JoinResult struct {
	Outcome JoinOutcome
	Peer    Peer
	Reason  string
}

// AuthPrompter answers the interactive challenges of a first login
type AuthPrompter interface {
	Code(ctx context.Context) (string, error)
	Password(ctx context.Context) (string, error)
}

// ChannelClient is the user session on the channel network.
// Any call may fail with *FloodWaitError.
type ChannelClient interface {
	Connect(ctx context.Context, prompter AuthPrompter) error
	Disconnect() error
	Resolve(ctx context.Context, identifier string) (Resolution, error)
	Join(ctx context.Context, peer Peer) (JoinResult, error)
	// FetchMessages returns the newest page of at most limit messages with id > minID
	FetchMessages(ctx context.Context, peer Peer, minID int64, limit int) ([]Message, error)
	DownloadMedia(ctx context.Context, msg Message) (Media, error)
}

// FloodWaitError is the network asking the caller to back off
type FloodWaitError struct {
	Wait time.Duration
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("flood wait for %s", e.Wait)
}

// AsFloodWait extracts the signalled wait from err
func AsFloodWait(err error) (time.Duration, bool) {
	var fw *FloodWaitError
	if errors.As(err, &fw) {
		return fw.Wait, true
	}
	return 0, false
}

// ChannelFaultError marks a fetch that found the channel gone or closed to the session
type ChannelFaultError struct {
	Reason string
}

func (e *ChannelFaultError) Error() string {
	return "channel unavailable: " + e.Reason
}

// AsChannelFault extracts the fault reason from err
func AsChannelFault(err error) (string, bool) {
	var fault *ChannelFaultError
	if errors.As(err, &fault) {
		return fault.Reason, true
	}
	return "", false
}
