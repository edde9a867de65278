package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const sourceColumns = "id, identifier, status, status_reason, last_seen_post_id, created_at, updated_at"

// SQLiteStorage implements channel.Repository on top of database/sql
type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStorage creates a channel repository over an opened database
func NewSQLiteStorage(db *sql.DB) Repository {
	return &SQLiteStorage{db: db, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
}

func (s *SQLiteStorage) CreateOwnerChannel(ctx context.Context, owner *domain.OwnerChannel) error {
	if owner.CreatedAt.IsZero() {
		owner.CreatedAt = s.now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO owner_channels (identifier, owner_user_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(identifier) DO NOTHING
	`, owner.Identifier, owner.OwnerUserID, owner.CreatedAt.Unix())
	if err != nil {
		return oops.In("channel-repository").With("identifier", owner.Identifier).Wrapf(storageErr(err), "failed to insert owner channel")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return oops.In("channel-repository").Wrapf(storageErr(err), "failed to read affected rows")
	}
	if affected == 0 {
		return oops.In("channel-repository").With("identifier", owner.Identifier).Wrap(apperrors.ErrOwnerExists)
	}

	owner.ID, err = res.LastInsertId()
	if err != nil {
		return oops.In("channel-repository").Wrapf(storageErr(err), "failed to read owner channel id")
	}
	return nil
}

func (s *SQLiteStorage) GetOwnerChannel(ctx context.Context, ownerID int64) (*domain.OwnerChannel, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, identifier, owner_user_id, created_at FROM owner_channels WHERE id = ?", ownerID)
	owner, err := scanOwner(row)
	if err != nil {
		return nil, oops.In("channel-repository").With("owner_id", ownerID).Wrap(err)
	}
	return owner, nil
}

func (s *SQLiteStorage) GetOwnerChannelByIdentifier(ctx context.Context, identifier string) (*domain.OwnerChannel, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, identifier, owner_user_id, created_at FROM owner_channels WHERE identifier = ?", identifier)
	owner, err := scanOwner(row)
	if err != nil {
		return nil, oops.In("channel-repository").With("identifier", identifier).Wrap(err)
	}
	return owner, nil
}

func (s *SQLiteStorage) ListOwnerChannels(ctx context.Context, ownerUserID int64) ([]*domain.OwnerChannel, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, identifier, owner_user_id, created_at FROM owner_channels WHERE owner_user_id = ? ORDER BY id",
		ownerUserID)
	if err != nil {
		return nil, oops.In("channel-repository").With("owner_user_id", ownerUserID).Wrapf(storageErr(err), "failed to list owner channels")
	}
	defer rows.Close()

	return collectOwners(rows)
}

func (s *SQLiteStorage) AddAssociation(ctx context.Context, ownerID int64, sourceIdentifier string) (*domain.SourceChannel, error) {
	errs := oops.In("channel-repository").With("owner_id", ownerID, "source", sourceIdentifier)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errs.Wrapf(storageErr(err), "failed to begin transaction")
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM owner_channels WHERE id = ?", ownerID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.Wrap(apperrors.ErrOwnerNotFound)
	}
	if err != nil {
		return nil, errs.Wrapf(storageErr(err), "failed to check owner channel")
	}

	now := s.now().Unix()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO source_channels (identifier, status, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(identifier) DO NOTHING
	`, sourceIdentifier, domain.SubscriptionStatusUnsubscribed, now, now); err != nil {
		return nil, errs.Wrapf(storageErr(err), "failed to insert source channel")
	}

	source, err := scanSource(tx.QueryRowContext(ctx,
		"SELECT "+sourceColumns+" FROM source_channels WHERE identifier = ?", sourceIdentifier))
	if err != nil {
		return nil, errs.Wrap(err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO associations (source_id, owner_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(source_id, owner_id) DO NOTHING
	`, source.ID, ownerID, now)
	if err != nil {
		return nil, errs.Wrapf(storageErr(err), "failed to insert association")
	}
	if affected, err := res.RowsAffected(); err != nil {
		return nil, errs.Wrapf(storageErr(err), "failed to read affected rows")
	} else if affected == 0 {
		return nil, errs.Wrap(apperrors.ErrAssociationExists)
	}

	if err := tx.Commit(); err != nil {
		return nil, errs.Wrapf(storageErr(err), "failed to commit association")
	}
	return source, nil
}

func (s *SQLiteStorage) RemoveAssociation(ctx context.Context, ownerID, sourceID int64) (bool, error) {
	errs := oops.In("channel-repository").With("owner_id", ownerID, "source_id", sourceID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, errs.Wrapf(storageErr(err), "failed to begin transaction")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM associations WHERE source_id = ? AND owner_id = ?", sourceID, ownerID)
	if err != nil {
		return false, errs.Wrapf(storageErr(err), "failed to delete association")
	}
	if affected, err := res.RowsAffected(); err != nil {
		return false, errs.Wrapf(storageErr(err), "failed to read affected rows")
	} else if affected == 0 {
		return false, errs.Wrap(apperrors.ErrAssociationNotFound)
	}

	var remaining int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM associations WHERE source_id = ?", sourceID).Scan(&remaining); err != nil {
		return false, errs.Wrapf(storageErr(err), "failed to count associations")
	}

	reclaimed := remaining == 0
	if reclaimed {
		if _, err := tx.ExecContext(ctx, "DELETE FROM source_channels WHERE id = ?", sourceID); err != nil {
			return false, errs.Wrapf(storageErr(err), "failed to reclaim source channel")
		}
	}

	if err := tx.Commit(); err != nil {
		return false, errs.Wrapf(storageErr(err), "failed to commit association removal")
	}
	return reclaimed, nil
}

func (s *SQLiteStorage) OwnersForSource(ctx context.Context, sourceID int64) ([]*domain.OwnerChannel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.identifier, o.owner_user_id, o.created_at
		FROM owner_channels o
		JOIN associations a ON a.owner_id = o.id
		WHERE a.source_id = ?
		ORDER BY o.id
	`, sourceID)
	if err != nil {
		return nil, oops.In("channel-repository").With("source_id", sourceID).Wrapf(storageErr(err), "failed to list owners for source")
	}
	defer rows.Close()

	return collectOwners(rows)
}

func (s *SQLiteStorage) SourcesForOwner(ctx context.Context, ownerID int64) ([]*domain.SourceChannel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.identifier, s.status, s.status_reason, s.last_seen_post_id, s.created_at, s.updated_at
		FROM source_channels s
		JOIN associations a ON a.source_id = s.id
		WHERE a.owner_id = ?
		ORDER BY s.id
	`, ownerID)
	if err != nil {
		return nil, oops.In("channel-repository").With("owner_id", ownerID).Wrapf(storageErr(err), "failed to list sources for owner")
	}
	defer rows.Close()

	return collectSources(rows)
}

func (s *SQLiteStorage) GetSource(ctx context.Context, sourceID int64) (*domain.SourceChannel, error) {
	source, err := scanSource(s.db.QueryRowContext(ctx,
		"SELECT "+sourceColumns+" FROM source_channels WHERE id = ?", sourceID))
	if err != nil {
		return nil, oops.In("channel-repository").With("source_id", sourceID).Wrap(err)
	}
	return source, nil
}

func (s *SQLiteStorage) GetSourceByIdentifier(ctx context.Context, identifier string) (*domain.SourceChannel, error) {
	source, err := scanSource(s.db.QueryRowContext(ctx,
		"SELECT "+sourceColumns+" FROM source_channels WHERE identifier = ?", identifier))
	if err != nil {
		return nil, oops.In("channel-repository").With("identifier", identifier).Wrap(err)
	}
	return source, nil
}

func (s *SQLiteStorage) ListSources(ctx context.Context, statuses ...domain.SubscriptionStatus) ([]*domain.SourceChannel, error) {
	query := "SELECT " + sourceColumns + " FROM source_channels"
	args := lo.Map(statuses, func(status domain.SubscriptionStatus, _ int) any {
		return string(status)
	})
	if len(args) > 0 {
		query += " WHERE status IN (" + strings.TrimSuffix(strings.Repeat("?,", len(args)), ",") + ")"
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, oops.In("channel-repository").With("statuses", statuses).Wrapf(storageErr(err), "failed to list sources")
	}
	defer rows.Close()

	return collectSources(rows)
}

func (s *SQLiteStorage) SetStatus(ctx context.Context, sourceID int64, status domain.SubscriptionStatus, reason string) error {
	errs := oops.In("channel-repository").With("source_id", sourceID, "status", status)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrapf(storageErr(err), "failed to begin transaction")
	}
	defer tx.Rollback()

	var current domain.SubscriptionStatus
	err = tx.QueryRowContext(ctx, "SELECT status FROM source_channels WHERE id = ?", sourceID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(apperrors.ErrSourceNotFound)
	}
	if err != nil {
		return errs.Wrapf(storageErr(err), "failed to read source status")
	}

	if !domain.CanTransition(current, status) {
		return errs.With("current", current).Wrap(apperrors.ErrInvalidTransition)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE source_channels SET status = ?, status_reason = ?, updated_at = ? WHERE id = ?",
		status, reason, s.now().Unix(), sourceID); err != nil {
		return errs.Wrapf(storageErr(err), "failed to update source status")
	}

	if err := tx.Commit(); err != nil {
		return errs.Wrapf(storageErr(err), "failed to commit source status")
	}
	return nil
}

func (s *SQLiteStorage) AdvanceMarker(ctx context.Context, sourceID int64, postID int64) (int64, error) {
	errs := oops.In("channel-repository").With("source_id", sourceID, "post_id", postID)

	if _, err := s.db.ExecContext(ctx, `
		UPDATE source_channels
		SET last_seen_post_id = ?, updated_at = ?
		WHERE id = ? AND last_seen_post_id < ?
	`, postID, s.now().Unix(), sourceID, postID); err != nil {
		return 0, errs.Wrapf(storageErr(err), "failed to advance marker")
	}

	var marker int64
	err := s.db.QueryRowContext(ctx,
		"SELECT last_seen_post_id FROM source_channels WHERE id = ?", sourceID).Scan(&marker)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errs.Wrap(apperrors.ErrSourceNotFound)
	}
	if err != nil {
		return 0, errs.Wrapf(storageErr(err), "failed to read marker")
	}
	return marker, nil
}

func scanSource(row rowScanner) (*domain.SourceChannel, error) {
	var (
		source             domain.SourceChannel
		createdAt, updated int64
	)
	err := row.Scan(&source.ID, &source.Identifier, &source.Status, &source.StatusReason,
		&source.LastSeenPostID, &createdAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrSourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan source channel: %w", storageErr(err))
	}
	source.CreatedAt = time.Unix(createdAt, 0)
	source.UpdatedAt = time.Unix(updated, 0)
	return &source, nil
}

func scanOwner(row rowScanner) (*domain.OwnerChannel, error) {
	var (
		owner     domain.OwnerChannel
		createdAt int64
	)
	err := row.Scan(&owner.ID, &owner.Identifier, &owner.OwnerUserID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrOwnerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan owner channel: %w", storageErr(err))
	}
	owner.CreatedAt = time.Unix(createdAt, 0)
	return &owner, nil
}

func collectSources(rows *sql.Rows) ([]*domain.SourceChannel, error) {
	var sources []*domain.SourceChannel
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, oops.In("channel-repository").Wrap(err)
		}
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.In("channel-repository").Wrapf(storageErr(err), "failed to iterate source channels")
	}
	return sources, nil
}

func collectOwners(rows *sql.Rows) ([]*domain.OwnerChannel, error) {
	var owners []*domain.OwnerChannel
	for rows.Next() {
		owner, err := scanOwner(rows)
		if err != nil {
			return nil, oops.In("channel-repository").Wrap(err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.In("channel-repository").Wrapf(storageErr(err), "failed to iterate owner channels")
	}
	return owners, nil
}
