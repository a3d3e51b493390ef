package share

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domain "json-share-api/internal/domain/share"
	"json-share-api/internal/infrastructure/db/postgres"
)

// maxCreateAttempts bounds share id regeneration on a uniqueness collision.
const maxCreateAttempts = 3

type Repository struct {
	db         postgres.DB
	newShareID func() string
}

func NewRepository(db postgres.DB) domain.Repository {
	return &Repository{db: db, newShareID: NewShareID}
}

// NewShareID returns a 32 character alphanumeric public identifier.
func NewShareID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (r *Repository) CreateShare(ctx context.Context, req domain.Draft) (*domain.Share, error) {
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		s := new(Share)

		err := r.db.QueryRow(
			ctx,
			InsertShare,
			r.newShareID(), string(req.Content), req.OwnerID, req.CreatedAt, req.ExpiresAt,
		).Scan(
			&s.ID,
			&s.ShareID,
			&s.Content,
			&s.OwnerID,

			&s.CreatedAt,
			&s.UpdatedAt,
			&s.ExpiresAt,
		)
		if err == nil {
			return fromDBModel(s), nil
		}
		if !postgres.IsPgUniqueViolationOn(err, ShareIDConstraint) {
			return nil, err
		}
	}

	return nil, domain.ErrShareIDConflict
}

func (r *Repository) FetchShareByShareID(ctx context.Context, shareID string) (*domain.Share, error) {
	s := new(Share)
	err := r.db.QueryRow(ctx, SelectShareByShareID, shareID).Scan(
		&s.ID,
		&s.ShareID,
		&s.Content,
		&s.OwnerID,

		&s.CreatedAt,
		&s.UpdatedAt,
		&s.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(s), nil
}

func (r *Repository) FetchActiveSharesByOwner(ctx context.Context, ownerID string, now time.Time) (domain.Summaries, error) {
	rows, err := r.db.Query(ctx, SelectActiveSharesByOwner, ownerID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ss := Summaries{}
	for rows.Next() {
		s := new(Summary)

		if err = rows.Scan(
			&s.ID,
			&s.ShareID,
			&s.ExpiresAt,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}

		ss = append(ss, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBSummaries(ss), nil
}

func (r *Repository) DeleteShareByShareIDAndOwner(ctx context.Context, shareID, ownerID string) (bool, error) {
	tag, err := r.db.Exec(ctx, DeleteShareByShareIDAndOwner, shareID, ownerID)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *Repository) DeleteExpiredShares(ctx context.Context, before time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx, DeleteExpiredShares, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan swept share id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
