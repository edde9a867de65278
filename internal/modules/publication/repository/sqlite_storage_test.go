package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	channelDomain "github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/channel-relay/internal/modules/channel/repository"
	"github.com/reshetovitsme/channel-relay/internal/modules/publication/domain"
	"github.com/reshetovitsme/channel-relay/internal/shared/database"
)

func TestRecordAndListByOwner(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "relay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	owner := &channelDomain.OwnerChannel{Identifier: "@mine", OwnerUserID: 1}
	require.NoError(t, channelRepo.NewSQLiteStorage(db).CreateOwnerChannel(ctx, owner))

	repo := NewSQLiteStorage(db)
	base := time.Unix(1_700_000_000, 0)
	for i, text := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Record(ctx, &domain.Publication{
			OwnerID:     owner.ID,
			SourceID:    5,
			SourceName:  "news",
			PostID:      int64(i + 1),
			Text:        text,
			PublishedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	// recording the same post again is a no-op
	require.NoError(t, repo.Record(ctx, &domain.Publication{OwnerID: owner.ID, SourceID: 5, PostID: 1, Text: "dup"}))

	got, err := repo.ListByOwner(ctx, owner.ID, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].Text)
	assert.Equal(t, "second", got[1].Text)
	assert.Equal(t, domain.MediaTypeNone, got[0].MediaType)
	assert.Equal(t, "https://t.me/news/3", got[0].Link())

	all, err := repo.ListByOwner(ctx, owner.ID, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPublicationLink_InviteSource(t *testing.T) {
	p := &domain.Publication{SourceName: "+AbCdEf", PostID: 3}
	assert.Empty(t, p.Link())
}
