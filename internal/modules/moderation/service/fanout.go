package service

import (
	"context"
	"log/slog"
	"time"

	channelDomain "github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/channel-relay/internal/modules/channel/repository"
	"github.com/reshetovitsme/channel-relay/internal/modules/moderation/domain"
	"github.com/reshetovitsme/channel-relay/internal/modules/moderation/pending"
	monitorDomain "github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
	publicationDomain "github.com/reshetovitsme/channel-relay/internal/modules/publication/domain"
	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// MediaDownloader fetches the attachment of a message into memory
type MediaDownloader interface {
	DownloadMedia(ctx context.Context, msg monitorDomain.Message) (monitorDomain.Media, error)
}

// PublicationRecorder keeps the log of approved posts
type PublicationRecorder interface {
	Record(ctx context.Context, publication *publicationDomain.Publication) error
}

// Fanout turns new posts into approval requests and applies the owners' decisions
type Fanout struct {
	repo         channelRepo.Repository
	downloader   MediaDownloader
	store        *pending.Store
	gateway      domain.Gateway
	publications PublicationRecorder
	previewLimit int
	now          func() time.Time
}

// NewFanout creates the approval fanout
func NewFanout(repo channelRepo.Repository, downloader MediaDownloader, store *pending.Store, gateway domain.Gateway, publications PublicationRecorder, previewLimit int) *Fanout {
	return &Fanout{
		repo:         repo,
		downloader:   downloader,
		store:        store,
		gateway:      gateway,
		publications: publications,
		previewLimit: previewLimit,
		now:          time.Now,
	}
}

// ProcessPost registers the post as pending for every owner channel watching the source and
// sends each owner a preview with approve/reject actions. A failed delivery only affects its target.
func (f *Fanout) ProcessPost(ctx context.Context, post monitorDomain.Post, source *channelDomain.SourceChannel) error {
	owners, err := f.repo.OwnersForSource(ctx, source.ID)
	if err != nil {
		return err
	}
	if len(owners) == 0 {
		return nil
	}

	key := domain.Key{SourceID: source.ID, PostID: post.ID}
	log := slog.With("source", source.Display(), "post_id", post.ID)

	payload := domain.Payload{Text: post.Text}
	if post.HasMedia {
		media, err := f.downloader.DownloadMedia(ctx, post.Message)
		if err != nil {
			log.Warn("Media download failed, continuing with text only", "error", err)
		} else {
			payload.Media = &media
		}
	}

	err = f.store.Register(&domain.PendingPost{
		Key:     key,
		Source:  source.Identifier,
		Payload: payload,
		Origin:  post.Message,
		Targets: lo.SliceToMap(owners, func(o *channelDomain.OwnerChannel) (int64, struct{}) {
			return o.ID, struct{}{}
		}),
		CreatedAt: f.now(),
	})
	if err != nil {
		return err
	}

	for _, owner := range owners {
		if err := f.deliver(ctx, key, source, owner, post.HasMedia, payload); err != nil {
			log.Error("Failed to deliver preview", "owner", owner.Identifier, "user_id", owner.OwnerUserID, "error", err)
		}
	}

	log.Info("Post sent for approval", "targets", len(owners))
	return nil
}

func (f *Fanout) deliver(ctx context.Context, key domain.Key, source *channelDomain.SourceChannel, owner *channelDomain.OwnerChannel, hadMedia bool, payload domain.Payload) error {
	actions := domain.Actions(key, owner.ID)
	media := payload.Media

	if media == nil {
		text := BuildPreview(source.Display(), owner.Identifier, payload.Text, hadMedia, false, f.previewLimit)
		return f.gateway.SendText(ctx, owner.OwnerUserID, text, actions)
	}

	caption := BuildPreview(source.Display(), owner.Identifier, payload.Text, true, true, f.previewLimit)
	var err error
	switch media.Kind {
	case monitorDomain.MediaKindPhoto:
		err = f.gateway.SendPhoto(ctx, owner.OwnerUserID, media.Data, media.Filename, caption, actions)
	default:
		err = f.gateway.SendDocument(ctx, owner.OwnerUserID, media.Data, media.Filename, caption, actions)
	}
	if err == nil {
		return nil
	}

	slog.Warn("Media preview failed, falling back to text", "owner", owner.Identifier, "error", err)
	return f.gateway.SendText(ctx, owner.OwnerUserID, caption, actions)
}

// ResolveDecision applies one owner's decision for one target. Deciding a target that is gone
// changes nothing. An approval publishes the payload into the target's owner channel.
// An approval with nothing to publish fails with ErrNothingToPublish and leaves the target pending.
func (f *Fanout) ResolveDecision(ctx context.Context, key domain.Key, targetID int64, decision domain.Decision) (domain.Outcome, error) {
	if decision == domain.DecisionApprove {
		if err := f.ensurePayload(ctx, key, targetID); err != nil {
			return domain.Outcome{Found: true}, err
		}
	}

	claim := f.store.Claim(key, targetID)
	outcome := domain.Outcome{
		Found:     claim.Found,
		Removed:   claim.Removed,
		Remaining: claim.Remaining,
		Evicted:   claim.Evicted,
	}
	if !claim.Removed {
		return outcome, nil
	}

	log := slog.With("key", key.String(), "target", targetID, "decision", decision)
	if decision != domain.DecisionApprove {
		log.Info("Post rejected")
		return outcome, nil
	}

	owner, err := f.repo.GetOwnerChannel(ctx, targetID)
	if err != nil {
		return outcome, err
	}

	if err := f.gateway.Publish(ctx, owner, claim.Payload); err != nil {
		return outcome, oops.In("moderation").With("key", key.String(), "owner", owner.Identifier).Wrapf(err, "failed to publish approved post")
	}
	outcome.Published = true

	publication := &publicationDomain.Publication{
		OwnerID:    owner.ID,
		SourceID:   key.SourceID,
		SourceName: claim.Source,
		PostID:     key.PostID,
		Text:       claim.Payload.Text,
		MediaType:  publicationDomain.MediaTypeNone,
	}
	if claim.Payload.Media != nil {
		publication.MediaType = publicationDomain.MediaType(claim.Payload.Media.Kind)
	}
	if err := f.publications.Record(ctx, publication); err != nil {
		return outcome, err
	}

	log.Info("Post approved and published", "owner", owner.Identifier)
	return outcome, nil
}

// ensurePayload downloads the media of a post again when the first download left it empty
func (f *Fanout) ensurePayload(ctx context.Context, key domain.Key, targetID int64) error {
	post, ok := f.store.Get(key)
	if !ok || !post.Payload.IsEmpty() {
		return nil
	}
	if _, pending := post.Targets[targetID]; !pending {
		return nil
	}

	if post.Origin.HasMedia {
		media, err := f.downloader.DownloadMedia(ctx, post.Origin)
		if err == nil {
			f.store.SetPayload(key, domain.Payload{Text: post.Payload.Text, Media: &media})
			return nil
		}
		slog.Warn("Media download failed again", "key", key.String(), "error", err)
	}
	return oops.In("moderation").With("key", key.String(), "target", targetID).Wrap(apperrors.ErrNothingToPublish)
}

// PendingCount returns the number of posts waiting for decisions
func (f *Fanout) PendingCount() int {
	return f.store.Len()
}
