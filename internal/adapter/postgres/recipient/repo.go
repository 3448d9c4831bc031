// Package recipient implements the Recipient repository using PostgreSQL.
package recipient

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/heartmarshall/keepsake-backend/internal/adapter/postgres"
	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

const table = "recipients"

var columns = []string{"id", "event_id", "name", "email", "access_token", "user_id", "created_at"}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides recipient persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new recipient repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

type recipientRow struct {
	ID          uuid.UUID  `db:"id"`
	EventID     uuid.UUID  `db:"event_id"`
	Name        string     `db:"name"`
	Email       string     `db:"email"`
	AccessToken string     `db:"access_token"`
	UserID      *uuid.UUID `db:"user_id"`
	CreatedAt   time.Time  `db:"created_at"`
}

func (r recipientRow) toDomain() domain.Recipient {
	return domain.Recipient{
		ID:          r.ID,
		EventID:     r.EventID,
		Name:        r.Name,
		Email:       r.Email,
		AccessToken: r.AccessToken,
		UserID:      r.UserID,
		CreatedAt:   r.CreatedAt,
	}
}

// Create inserts a new recipient. The (event_id, email) pair is unique;
// a duplicate surfaces as domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, rec *domain.Recipient) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Insert(table).
		Columns(columns...).
		Values(rec.ID, rec.EventID, rec.Name, rec.Email, rec.AccessToken, rec.UserID, rec.CreatedAt).
		ToSql()
	if err != nil {
		return postgres.MapError(err, "recipient", rec.ID.String())
	}

	_, err = q.Exec(ctx, sql, args...)
	return postgres.MapError(err, "recipient", rec.ID.String())
}

// GetByID returns a recipient by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipient, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns...).
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, postgres.MapError(err, "recipient", id.String())
	}

	var row recipientRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "recipient", id.String())
	}

	rec := row.toDomain()
	return &rec, nil
}

// GetByAccessToken returns the recipient owning a keepsake access token.
func (r *Repo) GetByAccessToken(ctx context.Context, token string) (*domain.Recipient, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns...).
		From(table).
		Where(sq.Eq{"access_token": token}).
		ToSql()
	if err != nil {
		return nil, postgres.MapError(err, "recipient", "by access token")
	}

	var row recipientRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "recipient", "by access token")
	}

	rec := row.toDomain()
	return &rec, nil
}

// ListByEvent returns every recipient of an event in creation order.
func (r *Repo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Recipient, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns...).
		From(table).
		Where(sq.Eq{"event_id": eventID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, postgres.MapError(err, "recipient", eventID.String())
	}

	var rows []recipientRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "recipient", eventID.String())
	}

	out := make([]domain.Recipient, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// ExistsByEventAndEmail reports whether the email is already registered as
// a recipient on the event.
func (r *Repo) ExistsByEventAndEmail(ctx context.Context, eventID uuid.UUID, email string) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select("1").
		From(table).
		Where(sq.Eq{"event_id": eventID, "email": email}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, postgres.MapError(err, "recipient", email)
	}

	var exists bool
	if err := q.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, postgres.MapError(err, "recipient", email)
	}

	return exists, nil
}

// DeleteByEvent removes every recipient of an event.
func (r *Repo) DeleteByEvent(ctx context.Context, eventID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Delete(table).
		Where(sq.Eq{"event_id": eventID}).
		ToSql()
	if err != nil {
		return postgres.MapError(err, "recipient", eventID.String())
	}

	_, err = q.Exec(ctx, sql, args...)
	return postgres.MapError(err, "recipient", eventID.String())
}
