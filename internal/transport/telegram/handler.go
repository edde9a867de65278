package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/lo"

	channelDomain "github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	channelService "github.com/reshetovitsme/channel-relay/internal/modules/channel/service"
	moderationDomain "github.com/reshetovitsme/channel-relay/internal/modules/moderation/domain"
	moderationService "github.com/reshetovitsme/channel-relay/internal/modules/moderation/service"
	monitorService "github.com/reshetovitsme/channel-relay/internal/modules/monitor/service"
	publicationService "github.com/reshetovitsme/channel-relay/internal/modules/publication/service"
	"github.com/reshetovitsme/channel-relay/internal/shared/config"
	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
)

const recentLimit = 5

// StatusProvider reports the state of the channel monitor
type StatusProvider interface {
	Status() monitorService.Status
}

// Handler handles Telegram bot interactions
type Handler struct {
	cfg                *config.Config
	channelService     *channelService.Service
	fanout             *moderationService.Fanout
	publicationService *publicationService.Service
	monitor            StatusProvider
}

// New creates a new Telegram handler
func New(cfg *config.Config, channelService *channelService.Service, fanout *moderationService.Fanout, publicationService *publicationService.Service, monitor StatusProvider) *Handler {
	return &Handler{
		cfg:                cfg,
		channelService:     channelService,
		fanout:             fanout,
		publicationService: publicationService,
		monitor:            monitor,
	}
}

// RegisterCommands registers bot commands and the approve/reject callbacks
func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/addowner", bot.MatchTypePrefix, h.handleAddOwner)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/watch", bot.MatchTypePrefix, h.handleWatch)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/unwatch", bot.MatchTypePrefix, h.handleUnwatch)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/sources", bot.MatchTypeExact, h.handleSources)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/retry", bot.MatchTypePrefix, h.handleRetry)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/recent", bot.MatchTypePrefix, h.handleRecent)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypeExact, h.handleStatus)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "mod:", bot.MatchTypePrefix, h.handleDecision)
}

// checkAuthorization lets everyone in when allowed_users is empty
func (h *Handler) checkAuthorization(userID int64) bool {
	return len(h.cfg.AllowedUsers) == 0 || lo.Contains(h.cfg.AllowedUsers, userID)
}

func (h *Handler) reply(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	}); err != nil {
		slog.Error("Failed to send reply", "error", err, "chat_id", update.Message.Chat.ID)
	}
}

// command checks access and splits the message into arguments.
// ok is false when a reply has already been sent.
func (h *Handler) command(ctx context.Context, b *bot.Bot, update *models.Update, want int, usage string) ([]string, bool) {
	if update.Message == nil || update.Message.From == nil {
		return nil, false
	}
	if !h.checkAuthorization(update.Message.From.ID) {
		h.reply(ctx, b, update, "❌ Unauthorized")
		return nil, false
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts)-1 < want {
		h.reply(ctx, b, update, usage)
		return nil, false
	}
	return parts[1:], true
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.command(ctx, b, update, 0, ""); !ok {
		return
	}

	text := `👋 Welcome to Channel Relay!

I watch Telegram channels for you and ask before re-posting anything into your own channels.

Available commands:
/help - Show this help message
/addowner <channel> - Register a channel you publish to (add me as its admin first)
/watch <owner> <source> - Send new posts of source to you for approval
/unwatch <owner> <source> - Stop watching a source
/sources - List your channels and their sources
/retry <source> - Try an unreachable source again
/recent <owner> - Show the latest approved posts
/status - Show monitor status

Example:
/addowner @my_channel
/watch @my_channel @example_channel`

	h.reply(ctx, b, update, text)
}

func (h *Handler) handleAddOwner(ctx context.Context, b *bot.Bot, update *models.Update) {
	args, ok := h.command(ctx, b, update, 1, "Usage: /addowner <channel>\nExample: /addowner @my_channel")
	if !ok {
		return
	}

	owner, err := h.channelService.RegisterOwnerChannel(ctx, update.Message.From.ID, args[0])
	if err != nil {
		h.reply(ctx, b, update, userMessage(err))
		return
	}

	h.reply(ctx, b, update, fmt.Sprintf("✅ Channel %s registered!\nMake sure the bot is an administrator there so it can publish approved posts.", owner.Identifier))
}

func (h *Handler) handleWatch(ctx context.Context, b *bot.Bot, update *models.Update) {
	args, ok := h.command(ctx, b, update, 2, "Usage: /watch <owner> <source>\nExample: /watch @my_channel @example_channel")
	if !ok {
		return
	}

	source, err := h.channelService.Watch(ctx, update.Message.From.ID, args[0], args[1])
	if err != nil {
		h.reply(ctx, b, update, userMessage(err))
		return
	}

	h.reply(ctx, b, update, fmt.Sprintf("✅ Watching %s for %s\nStatus: %s", source.Display(), args[0], source.Status))
}

func (h *Handler) handleUnwatch(ctx context.Context, b *bot.Bot, update *models.Update) {
	args, ok := h.command(ctx, b, update, 2, "Usage: /unwatch <owner> <source>")
	if !ok {
		return
	}

	reclaimed, err := h.channelService.Unwatch(ctx, update.Message.From.ID, args[0], args[1])
	if err != nil {
		h.reply(ctx, b, update, userMessage(err))
		return
	}

	text := fmt.Sprintf("✅ %s is no longer watched for %s", args[1], args[0])
	if reclaimed {
		text += "\nNo channel watches it anymore, it was removed from the monitor."
	}
	h.reply(ctx, b, update, text)
}

func (h *Handler) handleSources(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.command(ctx, b, update, 0, ""); !ok {
		return
	}

	overview, err := h.channelService.Overview(ctx, update.Message.From.ID)
	if err != nil {
		h.reply(ctx, b, update, userMessage(err))
		return
	}
	if len(overview) == 0 {
		h.reply(ctx, b, update, "📭 No channels registered yet.\nUse /addowner to add one.")
		return
	}

	h.reply(ctx, b, update, formatOverview(overview))
}

func formatOverview(overview []channelService.OwnerOverview) string {
	var text strings.Builder
	text.WriteString("📋 Your channels:\n")
	for _, entry := range overview {
		text.WriteString(fmt.Sprintf("\n📣 %s\n", entry.Owner.Identifier))
		if len(entry.Sources) == 0 {
			text.WriteString("   no sources\n")
			continue
		}
		for i, source := range entry.Sources {
			text.WriteString(fmt.Sprintf("   %d. %s %s %s", i+1, statusIcon(source.Status), source.Display(), source.Status))
			if source.StatusReason != "" {
				text.WriteString(fmt.Sprintf(" (%s)", source.StatusReason))
			}
			text.WriteString("\n")
		}
	}
	return text.String()
}

func statusIcon(status channelDomain.SubscriptionStatus) string {
	switch status {
	case channelDomain.SubscriptionStatusSubscribed:
		return "✅"
	case channelDomain.SubscriptionStatusUnreachable:
		return "⛔"
	default:
		return "⏳"
	}
}

func (h *Handler) handleRetry(ctx context.Context, b *bot.Bot, update *models.Update) {
	args, ok := h.command(ctx, b, update, 1, "Usage: /retry <source>")
	if !ok {
		return
	}

	source, reset, err := h.channelService.Retry(ctx, update.Message.From.ID, args[0])
	if err != nil {
		h.reply(ctx, b, update, userMessage(err))
		return
	}

	if !reset {
		h.reply(ctx, b, update, fmt.Sprintf("ℹ️ %s is %s, nothing to retry.", source.Display(), source.Status))
		return
	}
	h.reply(ctx, b, update, fmt.Sprintf("🔁 %s will be joined again on the next check.", source.Display()))
}

func (h *Handler) handleRecent(ctx context.Context, b *bot.Bot, update *models.Update) {
	args, ok := h.command(ctx, b, update, 1, "Usage: /recent <owner>")
	if !ok {
		return
	}

	owner, err := h.channelService.OwnedChannel(ctx, update.Message.From.ID, args[0])
	if err != nil {
		h.reply(ctx, b, update, userMessage(err))
		return
	}

	publications, err := h.publicationService.Recent(ctx, owner.ID, recentLimit)
	if err != nil {
		h.reply(ctx, b, update, userMessage(err))
		return
	}
	if len(publications) == 0 {
		h.reply(ctx, b, update, fmt.Sprintf("📭 Nothing published to %s yet.", owner.Identifier))
		return
	}

	var text strings.Builder
	text.WriteString(fmt.Sprintf("🗞 Latest posts published to %s:\n\n", owner.Identifier))
	for _, p := range publications {
		text.WriteString(fmt.Sprintf("%s %s #%d", p.PublishedAt.Format("2006-01-02 15:04"), p.SourceName, p.PostID))
		if link := p.Link(); link != "" {
			text.WriteString("\n" + link)
		}
		text.WriteString("\n\n")
	}
	text.WriteString(fmt.Sprintf("RSS: http://localhost:%s/rss/%d", h.cfg.HTTPPort, owner.ID))
	h.reply(ctx, b, update, text.String())
}

func (h *Handler) handleStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.command(ctx, b, update, 0, ""); !ok {
		return
	}

	sources, err := h.channelService.GetAllSources(ctx)
	if err != nil {
		h.reply(ctx, b, update, userMessage(err))
		return
	}
	counts := lo.CountValuesBy(sources, func(s *channelDomain.SourceChannel) channelDomain.SubscriptionStatus {
		return s.Status
	})

	status := h.monitor.Status()
	text := fmt.Sprintf(`📊 Bot Status:

Monitor: %s (running: %t)
Passes: %d
Pending approvals: %d
Sources: %d (subscribed: %d, joining: %d, unreachable: %d)
Check Interval: %s
HTTP Port: %s`,
		status.State, status.Running, status.Passes, h.fanout.PendingCount(),
		len(sources),
		counts[channelDomain.SubscriptionStatusSubscribed],
		counts[channelDomain.SubscriptionStatusUnsubscribed]+counts[channelDomain.SubscriptionStatusPendingJoin],
		counts[channelDomain.SubscriptionStatusUnreachable],
		h.cfg.CheckInterval, h.cfg.HTTPPort)

	h.reply(ctx, b, update, text)
}

// handleDecision applies an approve/reject button press
func (h *Handler) handleDecision(ctx context.Context, b *bot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil {
		return
	}
	answer := func(text string) {
		if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: query.ID,
			Text:            text,
		}); err != nil {
			slog.Warn("Failed to answer callback query", "error", err)
		}
	}

	if !h.checkAuthorization(query.From.ID) {
		answer("❌ Unauthorized")
		return
	}

	decision, key, targetID, err := moderationDomain.ParseCallbackData(query.Data)
	if err != nil {
		slog.Warn("Malformed moderation callback", "error", err, "user_id", query.From.ID)
		answer("❌ Unknown action")
		return
	}

	owner, err := h.channelService.GetOwnerChannel(ctx, targetID)
	if err != nil || owner.OwnerUserID != query.From.ID {
		answer("❌ This channel is not yours")
		return
	}

	outcome, err := h.fanout.ResolveDecision(ctx, key, targetID, decision)
	if errors.Is(err, apperrors.ErrNothingToPublish) {
		// The buttons stay so the owner can approve again or reject
		answer("⚠️ The media could not be downloaded yet, try again later")
		return
	}
	switch {
	case err != nil:
		slog.Error("Failed to apply decision", "error", err, "key", key.String(), "owner", owner.Identifier)
		answer("❌ Publishing failed")
	case !outcome.Found || !outcome.Removed:
		answer("ℹ️ Already decided")
	case outcome.Published:
		answer("✅ Published to " + owner.Identifier)
	default:
		answer("🗑 Rejected")
	}

	h.clearButtons(ctx, b, query)
}

// clearButtons removes the approve/reject pair from the preview
func (h *Handler) clearButtons(ctx context.Context, b *bot.Bot, query *models.CallbackQuery) {
	msg := query.Message.Message
	if msg == nil {
		return
	}
	if _, err := b.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{}},
	}); err != nil {
		slog.Debug("Failed to clear preview buttons", "error", err)
	}
}

// userMessage turns an error into a reply. Unexpected errors are logged and kept vague.
func userMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidIdentifier):
		return "❌ Invalid channel reference. Use @name, t.me/name or t.me/+invite"
	case errors.Is(err, apperrors.ErrOwnerNotFound):
		return "❌ Unknown owner channel. Register it with /addowner first."
	case errors.Is(err, apperrors.ErrOwnerExists):
		return "❌ This channel is already registered."
	case errors.Is(err, apperrors.ErrSourceNotFound):
		return "❌ This source is not watched."
	case errors.Is(err, apperrors.ErrAssociationExists):
		return "ℹ️ This source is already watched for that channel."
	case errors.Is(err, apperrors.ErrAssociationNotFound):
		return "❌ This source is not watched for that channel."
	case errors.Is(err, apperrors.ErrUnauthorized):
		return "❌ This channel is not yours."
	}
	slog.Error("Command failed", "error", err)
	return "❌ Something went wrong, try again later."
}
