package mtproto

import (
	"context"
	"strings"
	"testing"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
)

func TestHistoryMessages(t *testing.T) {
	res := &tg.MessagesChannelMessages{
		Messages: []tg.MessageClass{
			&tg.Message{ID: 12, Message: "newest", Date: 1700000100},
			&tg.MessageService{ID: 11},
			&tg.Message{ID: 10, Message: "", Media: &tg.MessageMediaPhoto{}, Date: 1700000000},
			&tg.Message{ID: 9, Message: "link", Media: &tg.MessageMediaWebPage{}},
		},
	}

	messages, err := historyMessages(res)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	assert.Equal(t, int64(12), messages[0].ID)
	assert.Equal(t, "newest", messages[0].Text)
	assert.False(t, messages[0].HasMedia)
	assert.Equal(t, int64(1700000100), messages[0].Date.Unix())

	assert.True(t, messages[1].HasMedia)
	assert.False(t, messages[2].HasMedia)
	assert.IsType(t, &tg.Message{}, messages[2].Ref)

	empty, err := historyMessages(&tg.MessagesMessagesNotModified{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLocateMedia(t *testing.T) {
	photo := &tg.Message{ID: 1, Media: &tg.MessageMediaPhoto{Photo: &tg.Photo{
		ID: 77,
		Sizes: []tg.PhotoSizeClass{
			&tg.PhotoSize{Type: "m", W: 320, H: 240},
			&tg.PhotoSizeProgressive{Type: "y", W: 1280, H: 960},
			&tg.PhotoSize{Type: "x", W: 800, H: 600},
		},
	}}}
	loc, err := locateMedia(photo)
	require.NoError(t, err)
	assert.Equal(t, domain.MediaKindPhoto, loc.kind)
	assert.Equal(t, "photo_77.jpg", loc.filename)
	assert.Equal(t, "y", loc.location.(*tg.InputPhotoFileLocation).ThumbSize)

	doc := &tg.Message{ID: 2, Media: &tg.MessageMediaDocument{Document: &tg.Document{
		ID:         88,
		Size:       2048,
		Attributes: []tg.DocumentAttributeClass{&tg.DocumentAttributeFilename{FileName: "report.pdf"}},
	}}}
	loc, err = locateMedia(doc)
	require.NoError(t, err)
	assert.Equal(t, domain.MediaKindDocument, loc.kind)
	assert.Equal(t, "report.pdf", loc.filename)
	assert.Equal(t, int64(2048), loc.size)

	_, err = locateMedia(&tg.Message{ID: 3, Media: &tg.MessageMediaPhoto{Photo: &tg.PhotoEmpty{ID: 1}}})
	assert.Error(t, err)
}

func TestDocumentFilename_Fallback(t *testing.T) {
	assert.Equal(t, "document_5", documentFilename(&tg.Document{ID: 5}))
}

func TestClient_RequiresConnection(t *testing.T) {
	c := NewClient(Options{})

	_, err := c.Resolve(context.Background(), "news")
	assert.ErrorIs(t, err, apperrors.ErrNotConnected)
	_, err = c.FetchMessages(context.Background(), domain.Peer{ID: 1}, 0, 10)
	assert.ErrorIs(t, err, apperrors.ErrNotConnected)
	assert.NoError(t, c.Disconnect())
}

func TestNonInteractivePrompter(t *testing.T) {
	_, err := NonInteractivePrompter{}.Code(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrLoginRequired)
}

func TestTerminalPrompter_ReadsCode(t *testing.T) {
	var out strings.Builder
	p := &TerminalPrompter{In: strings.NewReader(" 12345 \n"), Out: &out}

	code, err := p.Code(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "12345", code)
	assert.Contains(t, out.String(), "Enter code")
}
