package domain

import (
	"fmt"
	"strings"
	"time"
)

// Publication records an approved post published into an owner channel
type Publication struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	SourceID    int64     `json:"source_id"`
	SourceName  string    `json:"source_name"`
	PostID      int64     `json:"post_id"`
	Text        string    `json:"text"`
	MediaType   MediaType `json:"media_type"`
	PublishedAt time.Time `json:"published_at"`
}

// Link points at the original post. Sources joined through an invite link have no public URL.
func (p *Publication) Link() string {
	if p.SourceName == "" || strings.HasPrefix(p.SourceName, "+") {
		return ""
	}
	return fmt.Sprintf("https://t.me/%s/%d", p.SourceName, p.PostID)
}
