// Package mtproto is the user session on the Telegram network, built on gotd.
package mtproto

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gotd/contrib/bg"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
)

// Options configures the session
type Options struct {
	AppID       int
	AppHash     string
	Phone       string
	SessionPath string
	Logger      *zap.Logger
	// Interactive allows the login flow to run. Without it a missing session fails with ErrLoginRequired.
	Interactive bool
}

// Client implements domain.ChannelClient on a gotd user session
type Client struct {
	opts Options

	mu   sync.Mutex
	conn *connection
}

// connection is one dial of the session. client and stop are set once it is authorized.
type connection struct {
	cancel context.CancelFunc
	client *telegram.Client
	stop   bg.StopFunc
}

var _ domain.ChannelClient = (*Client)(nil)

func NewClient(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{opts: opts}
}

// Connect dials the network in the background and authorizes the session if needed.
// The session lives on a context owned by the client; ctx only bounds the wait.
func (c *Client) Connect(ctx context.Context, prompter domain.AuthPrompter) error {
	c.mu.Lock()
	if c.conn != nil {
		connected := c.conn.client != nil
		c.mu.Unlock()
		if connected {
			return nil
		}
		return oops.In("mtproto").Wrapf(apperrors.ErrNotConnected, "connect already in progress")
	}
	base, cancel := context.WithCancel(context.Background())
	conn := &connection{cancel: cancel}
	c.conn = conn
	c.mu.Unlock()

	client := telegram.NewClient(c.opts.AppID, c.opts.AppHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: c.opts.SessionPath},
		Logger:         c.opts.Logger,
	})

	stop, err := dial(ctx, base, cancel, client)
	if err == nil {
		if err = c.authorize(ctx, client, prompter); err != nil {
			_ = stop()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil && c.conn != conn {
		// Disconnect ran while the session was coming up
		_ = stop()
		err = apperrors.ErrNotConnected
	}
	if err != nil {
		cancel()
		if c.conn == conn {
			c.conn = nil
		}
		return err
	}
	conn.client = client
	conn.stop = stop
	return nil
}

// dial starts the client on base and waits for it to come up or for ctx to end.
// gotd reconnects without limit, so cancelling base is the only way to stop a dial.
func dial(ctx, base context.Context, cancel context.CancelFunc, client bg.Client) (bg.StopFunc, error) {
	type result struct {
		stop bg.StopFunc
		err  error
	}
	done := make(chan result, 1)
	go func() {
		stop, err := bg.Connect(client, bg.WithContext(base))
		done <- result{stop: stop, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, wrap("connect", res.err)
		}
		return res.stop, nil
	case <-ctx.Done():
		cancel()
		if res := <-done; res.err == nil {
			_ = res.stop()
		}
		return nil, ctx.Err()
	}
}

func (c *Client) authorize(ctx context.Context, client *telegram.Client, prompter domain.AuthPrompter) error {
	status, err := client.Auth().Status(ctx)
	if err != nil {
		return wrap("auth status", err)
	}
	if status.Authorized {
		return nil
	}
	if !c.opts.Interactive {
		return apperrors.ErrLoginRequired
	}

	flow := auth.NewFlow(userAuthenticator{phone: c.opts.Phone, prompter: prompter}, auth.SendCodeOptions{})
	if err := client.Auth().IfNecessary(ctx, flow); err != nil {
		return wrap("login", err)
	}

	self, err := client.Self(ctx)
	if err != nil {
		return wrap("self", err)
	}
	slog.Info("Telegram session authorized", "user_id", self.ID, "username", self.Username)
	return nil
}

// Disconnect closes the session. It is a no-op when nothing is connected and
// aborts a Connect that is still dialing.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	var stop bg.StopFunc
	if conn != nil {
		stop = conn.stop
	}
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	conn.cancel()
	if stop == nil {
		return nil
	}
	return stop()
}

func (c *Client) api() (*tg.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.conn.client == nil {
		return nil, apperrors.ErrNotConnected
	}
	return c.conn.client.API(), nil
}

// Resolve looks up a public handle or an invite hash ("+HASH")
func (c *Client) Resolve(ctx context.Context, identifier string) (domain.Resolution, error) {
	api, err := c.api()
	if err != nil {
		return domain.Resolution{}, err
	}
	if hash, ok := strings.CutPrefix(identifier, "+"); ok {
		return c.resolveInvite(ctx, api, hash)
	}

	resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: identifier})
	if err != nil {
		if outcome, reason, ok := resolveOutcome(err); ok {
			return domain.Resolution{Outcome: outcome, Reason: reason}, nil
		}
		return domain.Resolution{}, wrap("resolve username", err)
	}

	peer, ok := firstChannel(resolved.Chats)
	if !ok {
		return domain.Resolution{Outcome: domain.ResolveOutcomeInvalid, Reason: "not a channel"}, nil
	}
	return domain.Resolution{Outcome: domain.ResolveOutcomeResolved, Peer: peer}, nil
}

func (c *Client) resolveInvite(ctx context.Context, api *tg.Client, hash string) (domain.Resolution, error) {
	invite, err := api.MessagesCheckChatInvite(ctx, hash)
	if err != nil {
		if outcome, reason, ok := resolveOutcome(err); ok {
			return domain.Resolution{Outcome: outcome, Reason: reason}, nil
		}
		return domain.Resolution{}, wrap("check invite", err)
	}

	switch inv := invite.(type) {
	case *tg.ChatInviteAlready:
		if peer, ok := channelPeer(inv.Chat); ok {
			return domain.Resolution{Outcome: domain.ResolveOutcomeResolved, Peer: peer}, nil
		}
	case *tg.ChatInvitePeek:
		if peer, ok := channelPeer(inv.Chat); ok {
			peer.InviteHash = hash
			return domain.Resolution{Outcome: domain.ResolveOutcomeResolved, Peer: peer}, nil
		}
	case *tg.ChatInvite:
		return domain.Resolution{
			Outcome: domain.ResolveOutcomeResolved,
			Peer:    domain.Peer{InviteHash: hash, Title: inv.Title},
		}, nil
	}
	return domain.Resolution{Outcome: domain.ResolveOutcomeInvalid, Reason: "invite does not lead to a channel"}, nil
}

// Join subscribes the session to the peer, importing its invite when it has one
func (c *Client) Join(ctx context.Context, peer domain.Peer) (domain.JoinResult, error) {
	api, err := c.api()
	if err != nil {
		return domain.JoinResult{}, err
	}

	if peer.InviteHash != "" {
		updates, err := api.MessagesImportChatInvite(ctx, peer.InviteHash)
		if err != nil {
			return c.joinFailed(ctx, err, peer)
		}
		if joined, ok := firstChannel(updateChats(updates)); ok {
			return domain.JoinResult{Outcome: domain.JoinOutcomeJoined, Peer: joined}, nil
		}
		return domain.JoinResult{Outcome: domain.JoinOutcomeJoined, Peer: peer}, nil
	}

	_, err = api.ChannelsJoinChannel(ctx, &tg.InputChannel{ChannelID: peer.ID, AccessHash: peer.AccessHash})
	if err != nil {
		return c.joinFailed(ctx, err, peer)
	}
	return domain.JoinResult{Outcome: domain.JoinOutcomeJoined, Peer: peer}, nil
}

func (c *Client) joinFailed(ctx context.Context, err error, peer domain.Peer) (domain.JoinResult, error) {
	outcome, reason, ok := joinOutcome(err)
	if !ok {
		return domain.JoinResult{}, wrap("join", err)
	}

	// An invite that is already accepted still has to yield the channel id
	if outcome == domain.JoinOutcomeAlreadyMember && !peer.Joined() && peer.InviteHash != "" {
		resolution, err := c.Resolve(ctx, "+"+peer.InviteHash)
		if err != nil {
			return domain.JoinResult{}, err
		}
		peer = resolution.Peer
	}
	return domain.JoinResult{Outcome: outcome, Peer: peer, Reason: reason}, nil
}

// FetchMessages reads the newest page of history above minID
func (c *Client) FetchMessages(ctx context.Context, peer domain.Peer, minID int64, limit int) ([]domain.Message, error) {
	api, err := c.api()
	if err != nil {
		return nil, err
	}

	res, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  &tg.InputPeerChannel{ChannelID: peer.ID, AccessHash: peer.AccessHash},
		MinID: int(minID),
		Limit: limit,
	})
	if err != nil {
		if fault := fetchFault(err); fault != nil {
			return nil, fault
		}
		return nil, wrap("get history", err)
	}
	return historyMessages(res)
}

// DownloadMedia loads the photo or document of msg into memory
func (c *Client) DownloadMedia(ctx context.Context, msg domain.Message) (domain.Media, error) {
	api, err := c.api()
	if err != nil {
		return domain.Media{}, err
	}
	raw, ok := msg.Ref.(*tg.Message)
	if !ok {
		return domain.Media{}, oops.In("mtproto").With("message_id", msg.ID).Errorf("message was not fetched by this client")
	}

	loc, err := locateMedia(raw)
	if err != nil {
		return domain.Media{}, err
	}
	if loc.size > maxMediaSize {
		return domain.Media{}, fmt.Errorf("message %d: %s is %d bytes, over the %d byte upload limit", msg.ID, loc.filename, loc.size, maxMediaSize)
	}

	var buf bytes.Buffer
	if _, err := downloader.NewDownloader().Download(api, loc.location).Stream(ctx, &buf); err != nil {
		return domain.Media{}, wrap("download", err)
	}
	slog.Debug("Media downloaded", "message_id", msg.ID, "kind", loc.kind, "size", buf.Len())

	return domain.Media{Kind: loc.kind, Data: buf.Bytes(), Filename: loc.filename}, nil
}

func channelPeer(chat tg.ChatClass) (domain.Peer, bool) {
	channel, ok := chat.(*tg.Channel)
	if !ok {
		return domain.Peer{}, false
	}
	return domain.Peer{ID: channel.ID, AccessHash: channel.AccessHash, Title: channel.Title}, true
}

func firstChannel(chats []tg.ChatClass) (domain.Peer, bool) {
	for _, chat := range chats {
		if peer, ok := channelPeer(chat); ok {
			return peer, true
		}
	}
	return domain.Peer{}, false
}

func updateChats(updates tg.UpdatesClass) []tg.ChatClass {
	switch u := updates.(type) {
	case *tg.Updates:
		return u.Chats
	case *tg.UpdatesCombined:
		return u.Chats
	}
	return nil
}
