package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/gorilla/feeds"
	channelRepo "github.com/reshetovitsme/channel-relay/internal/modules/channel/repository"
	"github.com/reshetovitsme/channel-relay/internal/modules/feed/domain"
	publicationDomain "github.com/reshetovitsme/channel-relay/internal/modules/publication/domain"
	publicationRepo "github.com/reshetovitsme/channel-relay/internal/modules/publication/repository"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Service renders the publication log of an owner channel as an RSS feed
type Service struct {
	cfg             domain.FeedConfig
	channelRepo     channelRepo.Repository
	publicationRepo publicationRepo.Repository
}

// New creates a new feed service
func New(cfg domain.FeedConfig, channelRepo channelRepo.Repository, publicationRepo publicationRepo.Repository) *Service {
	if cfg.Limit <= 0 {
		cfg.Limit = domain.DefaultLimit
	}
	return &Service{
		cfg:             cfg,
		channelRepo:     channelRepo,
		publicationRepo: publicationRepo,
	}
}

// GenerateFeed generates an RSS feed of everything approved into an owner channel
func (s *Service) GenerateFeed(ctx context.Context, ownerID int64) (*feeds.Feed, error) {
	owner, err := s.channelRepo.GetOwnerChannel(ctx, ownerID)
	if err != nil {
		return nil, oops.In("feed").With("owner_id", ownerID, "context", "owner channel not found").Wrap(err)
	}

	publications, err := s.publicationRepo.ListByOwner(ctx, ownerID, s.cfg.Limit)
	if err != nil {
		return nil, oops.In("feed").With("owner_id", ownerID, "context", "failed to get publications").Wrap(err)
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s - approved posts", owner.Identifier),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/rss/%d", strings.TrimSuffix(s.cfg.BaseURL, "/"), owner.ID)},
		Description: fmt.Sprintf("Posts approved for Telegram channel %s", owner.Identifier),
		Created:     owner.CreatedAt,
	}
	if len(publications) > 0 {
		feed.Updated = publications[0].PublishedAt
	}

	feed.Items = lo.Map(publications, func(p *publicationDomain.Publication, _ int) *feeds.Item {
		return publicationToFeedItem(p)
	})
	return feed, nil
}

func publicationToFeedItem(p *publicationDomain.Publication) *feeds.Item {
	description := p.Text
	if description == "" {
		description = "No text content"
	}
	if p.MediaType != publicationDomain.MediaTypeNone {
		description += fmt.Sprintf("\n\nMedia: %s", p.MediaType)
	}

	// HTML content for readers that do not render plain descriptions
	content := "<p>" + strings.ReplaceAll(html.EscapeString(description), "\n", "<br>") + "</p>"

	item := &feeds.Item{
		Title:       truncate(lo.CoalesceOrEmpty(p.Text, fmt.Sprintf("Post %d from %s", p.PostID, p.SourceName)), 100),
		Description: description,
		Content:     content,
		Author:      &feeds.Author{Name: p.SourceName},
		Created:     p.PublishedAt,
		Id:          fmt.Sprintf("%d-%d-%d", p.OwnerID, p.SourceID, p.PostID),
	}
	if link := p.Link(); link != "" {
		item.Link = &feeds.Link{Href: link}
	}
	return item
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
