package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/reshetovitsme/channel-relay/internal/modules/publication/domain"
	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
	"github.com/samber/oops"
)

// SQLiteStorage implements publication.Repository on top of database/sql
type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStorage creates a publication repository over an opened database
func NewSQLiteStorage(db *sql.DB) Repository {
	return &SQLiteStorage{db: db, now: time.Now}
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
}

func (s *SQLiteStorage) Record(ctx context.Context, p *domain.Publication) error {
	if p.PublishedAt.IsZero() {
		p.PublishedAt = s.now()
	}
	if p.MediaType == "" {
		p.MediaType = domain.MediaTypeNone
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO publications (owner_id, source_id, source_name, post_id, text, media_kind, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, source_id, post_id) DO NOTHING
	`, p.OwnerID, p.SourceID, p.SourceName, p.PostID, p.Text, p.MediaType, p.PublishedAt.Unix())
	if err != nil {
		return oops.In("publication-repository").
			With("owner_id", p.OwnerID, "source_id", p.SourceID, "post_id", p.PostID).
			Wrapf(storageErr(err), "failed to record publication")
	}

	if id, err := res.LastInsertId(); err == nil {
		p.ID = id
	}
	return nil
}

func (s *SQLiteStorage) ListByOwner(ctx context.Context, ownerID int64, limit int) ([]*domain.Publication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, source_id, source_name, post_id, text, media_kind, published_at
		FROM publications
		WHERE owner_id = ?
		ORDER BY published_at DESC, id DESC
		LIMIT ?
	`, ownerID, limit)
	if err != nil {
		return nil, oops.In("publication-repository").With("owner_id", ownerID).Wrapf(storageErr(err), "failed to list publications")
	}
	defer rows.Close()

	var publications []*domain.Publication
	for rows.Next() {
		var (
			p         domain.Publication
			mediaType string
			published int64
		)
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.SourceID, &p.SourceName, &p.PostID, &p.Text, &mediaType, &published); err != nil {
			return nil, oops.In("publication-repository").Wrapf(storageErr(err), "failed to scan publication")
		}
		p.MediaType, err = domain.ParseMediaType(mediaType)
		if err != nil {
			p.MediaType = domain.MediaTypeNone
		}
		p.PublishedAt = time.Unix(published, 0)
		publications = append(publications, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.In("publication-repository").Wrapf(storageErr(err), "failed to iterate publications")
	}
	return publications, nil
}
