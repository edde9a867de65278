package telegram

import (
	"bytes"
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/lo"
	"github.com/samber/oops"

	channelDomain "github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	moderationDomain "github.com/reshetovitsme/channel-relay/internal/modules/moderation/domain"
	moderationService "github.com/reshetovitsme/channel-relay/internal/modules/moderation/service"
	monitorDomain "github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
)

// Gateway delivers previews and publishes approved posts through the bot API
type Gateway struct {
	bot *bot.Bot
}

var _ moderationDomain.Gateway = (*Gateway)(nil)

func NewGateway(b *bot.Bot) *Gateway {
	return &Gateway{bot: b}
}

func (g *Gateway) SendText(ctx context.Context, userID int64, text string, actions []moderationDomain.Action) error {
	_, err := g.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      userID,
		Text:        text,
		ReplyMarkup: keyboard(actions),
	})
	return g.wrap(err, "sendMessage", userID)
}

func (g *Gateway) SendPhoto(ctx context.Context, userID int64, photo []byte, filename, caption string, actions []moderationDomain.Action) error {
	_, err := g.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:      userID,
		Photo:       &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(photo)},
		Caption:     caption,
		ReplyMarkup: keyboard(actions),
	})
	return g.wrap(err, "sendPhoto", userID)
}

func (g *Gateway) SendDocument(ctx context.Context, userID int64, document []byte, filename, caption string, actions []moderationDomain.Action) error {
	_, err := g.bot.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:      userID,
		Document:    &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(document)},
		Caption:     caption,
		ReplyMarkup: keyboard(actions),
	})
	return g.wrap(err, "sendDocument", userID)
}

// Publish posts the payload into the owner channel. Text that does not fit a caption
// follows the media as its own message.
func (g *Gateway) Publish(ctx context.Context, owner *channelDomain.OwnerChannel, payload moderationDomain.Payload) error {
	chatID := owner.ChatID()
	media := payload.Media

	if media == nil {
		_, err := g.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: payload.Text})
		return g.wrap(err, "sendMessage", chatID)
	}

	caption, rest := payload.Text, ""
	if moderationService.TextLen(caption) > moderationService.CaptionLimit {
		caption, rest = "", payload.Text
	}

	var err error
	upload := &models.InputFileUpload{Filename: media.Filename, Data: bytes.NewReader(media.Data)}
	switch media.Kind {
	case monitorDomain.MediaKindPhoto:
		_, err = g.bot.SendPhoto(ctx, &bot.SendPhotoParams{ChatID: chatID, Photo: upload, Caption: caption})
	default:
		_, err = g.bot.SendDocument(ctx, &bot.SendDocumentParams{ChatID: chatID, Document: upload, Caption: caption})
	}
	if err != nil {
		return g.wrap(err, "publish media", chatID)
	}

	if rest == "" {
		return nil
	}
	_, err = g.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: rest})
	return g.wrap(err, "sendMessage", chatID)
}

func (g *Gateway) wrap(err error, method string, chatID any) error {
	if err == nil {
		return nil
	}
	return oops.In("bot-gateway").With("method", method, "chat_id", chatID).Wrap(err)
}

// keyboard lays the actions out as one row of inline buttons
func keyboard(actions []moderationDomain.Action) models.ReplyMarkup {
	if len(actions) == 0 {
		return nil
	}
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			lo.Map(actions, func(a moderationDomain.Action, _ int) models.InlineKeyboardButton {
				return models.InlineKeyboardButton{Text: a.Label, CallbackData: a.Data}
			}),
		},
	}
}
