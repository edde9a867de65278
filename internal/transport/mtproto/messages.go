package mtproto

import (
	"fmt"
	"time"

	"github.com/gotd/td/tg"
	"github.com/samber/lo"

	"github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
)

// maxMediaSize is the largest upload the bot API accepts
const maxMediaSize = 50 * 1024 * 1024

// historyMessages unpacks a history response. Service messages are skipped.
func historyMessages(res tg.MessagesMessagesClass) ([]domain.Message, error) {
	var raw []tg.MessageClass
	switch m := res.(type) {
	case *tg.MessagesMessages:
		raw = m.Messages
	case *tg.MessagesMessagesSlice:
		raw = m.Messages
	case *tg.MessagesChannelMessages:
		raw = m.Messages
	case *tg.MessagesMessagesNotModified:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected messages type: %T", res)
	}

	return lo.FilterMap(raw, func(item tg.MessageClass, _ int) (domain.Message, bool) {
		msg, ok := item.(*tg.Message)
		if !ok {
			return domain.Message{}, false
		}
		return toMessage(msg), true
	}), nil
}

func toMessage(msg *tg.Message) domain.Message {
	return domain.Message{
		ID:       int64(msg.ID),
		Text:     msg.Message,
		HasMedia: hasAttachment(msg.Media),
		Date:     time.Unix(int64(msg.Date), 0),
		Ref:      msg,
	}
}

// hasAttachment is true for photos and documents. Link previews are not attachments.
func hasAttachment(media tg.MessageMediaClass) bool {
	switch media.(type) {
	case *tg.MessageMediaPhoto, *tg.MessageMediaDocument:
		return true
	}
	return false
}

// mediaLocation describes where an attachment lives and how it is re-sent
type mediaLocation struct {
	kind     domain.MediaKind
	location tg.InputFileLocationClass
	filename string
	size     int64
}

func locateMedia(msg *tg.Message) (mediaLocation, error) {
	switch media := msg.Media.(type) {
	case *tg.MessageMediaPhoto:
		photo, ok := media.Photo.(*tg.Photo)
		if !ok {
			return mediaLocation{}, fmt.Errorf("message %d: photo is empty or deleted", msg.ID)
		}
		thumb, ok := largestPhotoSize(photo.Sizes)
		if !ok {
			return mediaLocation{}, fmt.Errorf("message %d: no suitable photo size found", msg.ID)
		}
		return mediaLocation{
			kind: domain.MediaKindPhoto,
			location: &tg.InputPhotoFileLocation{
				ID:            photo.ID,
				AccessHash:    photo.AccessHash,
				FileReference: photo.FileReference,
				ThumbSize:     thumb,
			},
			filename: fmt.Sprintf("photo_%d.jpg", photo.ID),
		}, nil

	case *tg.MessageMediaDocument:
		doc, ok := media.Document.(*tg.Document)
		if !ok {
			return mediaLocation{}, fmt.Errorf("message %d: document is empty or deleted", msg.ID)
		}
		return mediaLocation{
			kind: domain.MediaKindDocument,
			location: &tg.InputDocumentFileLocation{
				ID:            doc.ID,
				AccessHash:    doc.AccessHash,
				FileReference: doc.FileReference,
			},
			filename: documentFilename(doc),
			size:     doc.Size,
		}, nil
	}
	return mediaLocation{}, fmt.Errorf("message %d: unsupported media %T", msg.ID, msg.Media)
}

// largestPhotoSize picks the thumb type with the most pixels
func largestPhotoSize(sizes []tg.PhotoSizeClass) (string, bool) {
	best, pixels := "", 0
	for _, sizeClass := range sizes {
		var typ string
		var w, h int
		switch size := sizeClass.(type) {
		case *tg.PhotoSize:
			typ, w, h = size.Type, size.W, size.H
		case *tg.PhotoSizeProgressive:
			typ, w, h = size.Type, size.W, size.H
		default:
			continue
		}
		if w*h > pixels {
			best, pixels = typ, w*h
		}
	}
	return best, best != ""
}

func documentFilename(doc *tg.Document) string {
	for _, attr := range doc.Attributes {
		if name, ok := attr.(*tg.DocumentAttributeFilename); ok && name.FileName != "" {
			return name.FileName
		}
	}
	return fmt.Sprintf("document_%d", doc.ID)
}
