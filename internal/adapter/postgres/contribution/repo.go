// Package contribution implements the Contribution repository using PostgreSQL.
package contribution

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/heartmarshall/keepsake-backend/internal/adapter/postgres"
	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

const table = "contributions"

var columns = []string{
	"id", "event_id", "recipient_id", "contributor_token", "contributor_name",
	"content", "formatting", "media", "drawings", "stickers", "signature",
	"background_color", "created_at", "updated_at",
}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides contribution persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new contribution repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

type contributionRow struct {
	ID               uuid.UUID          `db:"id"`
	EventID          uuid.UUID          `db:"event_id"`
	RecipientID      uuid.UUID          `db:"recipient_id"`
	ContributorToken string             `db:"contributor_token"`
	ContributorName  *string            `db:"contributor_name"`
	Content          string             `db:"content"`
	Formatting       domain.Formatting  `db:"formatting"`
	Media            []domain.MediaItem `db:"media"`
	Drawings         []domain.Drawing   `db:"drawings"`
	Stickers         []domain.Sticker   `db:"stickers"`
	Signature        *domain.Signature  `db:"signature"`
	BackgroundColor  string             `db:"background_color"`
	CreatedAt        time.Time          `db:"created_at"`
	UpdatedAt        time.Time          `db:"updated_at"`
}

func (r contributionRow) toDomain() *domain.Contribution {
	return &domain.Contribution{
		ID:               r.ID,
		EventID:          r.EventID,
		RecipientID:      r.RecipientID,
		ContributorToken: r.ContributorToken,
		ContributorName:  r.ContributorName,
		Content:          r.Content,
		Formatting:       r.Formatting,
		Media:            r.Media,
		Drawings:         r.Drawings,
		Stickers:         r.Stickers,
		Signature:        r.Signature,
		BackgroundColor:  r.BackgroundColor,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// Create inserts a new contribution. The unique constraint on
// (contributor_token, recipient_id, event_id) turns a concurrent duplicate
// into domain.ErrAlreadyExists, which the upsert engine retries as an update.
func (r *Repo) Create(ctx context.Context, c *domain.Contribution) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Insert(table).
		Columns(columns...).
		Values(
			c.ID, c.EventID, c.RecipientID, c.ContributorToken, c.ContributorName,
			c.Content, c.Formatting, c.Media, c.Drawings, c.Stickers, c.Signature,
			c.BackgroundColor, c.CreatedAt, c.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return postgres.MapError(err, "contribution", c.ID.String())
	}

	_, err = q.Exec(ctx, sql, args...)
	return postgres.MapError(err, "contribution", c.ID.String())
}

// Update replaces the content fields of an existing contribution in place.
func (r *Repo) Update(ctx context.Context, c *domain.Contribution) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Update(table).
		Set("contributor_name", c.ContributorName).
		Set("content", c.Content).
		Set("formatting", c.Formatting).
		Set("media", c.Media).
		Set("drawings", c.Drawings).
		Set("stickers", c.Stickers).
		Set("signature", c.Signature).
		Set("background_color", c.BackgroundColor).
		Set("updated_at", c.UpdatedAt).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return postgres.MapError(err, "contribution", c.ID.String())
	}

	_, err = q.Exec(ctx, sql, args...)
	return postgres.MapError(err, "contribution", c.ID.String())
}

// GetByKey returns the contribution identified by the upsert key
// (contributor token, recipient, event).
func (r *Repo) GetByKey(ctx context.Context, token string, recipientID, eventID uuid.UUID) (*domain.Contribution, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns...).
		From(table).
		Where(sq.Eq{
			"contributor_token": token,
			"recipient_id":      recipientID,
			"event_id":          eventID,
		}).
		ToSql()
	if err != nil {
		return nil, postgres.MapError(err, "contribution", recipientID.String())
	}

	var row contributionRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "contribution", recipientID.String())
	}

	return row.toDomain(), nil
}

// ListByRecipient returns every contribution addressed to a recipient,
// oldest first, the page order of the compiled book.
func (r *Repo) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]domain.Contribution, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns...).
		From(table).
		Where(sq.Eq{"recipient_id": recipientID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, postgres.MapError(err, "contribution", recipientID.String())
	}

	var rows []contributionRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "contribution", recipientID.String())
	}

	out := make([]domain.Contribution, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toDomain())
	}
	return out, nil
}

// CountByEvent returns the total number of contributions on an event.
func (r *Repo) CountByEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select("count(*)").
		From(table).
		Where(sq.Eq{"event_id": eventID}).
		ToSql()
	if err != nil {
		return 0, postgres.MapError(err, "contribution", eventID.String())
	}

	var count int
	if err := q.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, postgres.MapError(err, "contribution", eventID.String())
	}

	return count, nil
}

// CountsByRecipient returns contribution counts keyed by recipient for one
// event. Recipients with zero contributions are absent from the map.
func (r *Repo) CountsByRecipient(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]int, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select("recipient_id", "count(*) AS n").
		From(table).
		Where(sq.Eq{"event_id": eventID}).
		GroupBy("recipient_id").
		ToSql()
	if err != nil {
		return nil, postgres.MapError(err, "contribution", eventID.String())
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "contribution", eventID.String())
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var recipientID uuid.UUID
		var n int
		if err := rows.Scan(&recipientID, &n); err != nil {
			return nil, postgres.MapError(err, "contribution", eventID.String())
		}
		counts[recipientID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "contribution", eventID.String())
	}

	return counts, nil
}

// DeleteByEvent removes every contribution of an event.
func (r *Repo) DeleteByEvent(ctx context.Context, eventID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Delete(table).
		Where(sq.Eq{"event_id": eventID}).
		ToSql()
	if err != nil {
		return postgres.MapError(err, "contribution", eventID.String())
	}

	_, err = q.Exec(ctx, sql, args...)
	return postgres.MapError(err, "contribution", eventID.String())
}
