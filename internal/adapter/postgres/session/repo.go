// Package session implements the ContributorSession repository using PostgreSQL.
package session

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/heartmarshall/keepsake-backend/internal/adapter/postgres"
	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

const table = "contributor_sessions"

var columns = []string{"token", "event_id", "user_id", "expires_at", "completed_recipients", "is_join_token", "created_at"}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides contributor-session persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new session repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

type sessionRow struct {
	Token               string      `db:"token"`
	EventID             uuid.UUID   `db:"event_id"`
	UserID              *uuid.UUID  `db:"user_id"`
	ExpiresAt           time.Time   `db:"expires_at"`
	CompletedRecipients []uuid.UUID `db:"completed_recipients"`
	IsJoinToken         bool        `db:"is_join_token"`
	CreatedAt           time.Time   `db:"created_at"`
}

func (r sessionRow) toDomain() *domain.ContributorSession {
	return &domain.ContributorSession{
		Token:               r.Token,
		EventID:             r.EventID,
		UserID:              r.UserID,
		ExpiresAt:           r.ExpiresAt,
		CompletedRecipients: r.CompletedRecipients,
		IsJoinToken:         r.IsJoinToken,
		CreatedAt:           r.CreatedAt,
	}
}

// tokenRef truncates a token for error messages. Full capability tokens
// never go into logs or error chains.
func tokenRef(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8] + "…"
}

// Create inserts a new contributor session.
func (r *Repo) Create(ctx context.Context, s *domain.ContributorSession) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	// A nil slice would encode as SQL NULL; the column is NOT NULL.
	completed := s.CompletedRecipients
	if completed == nil {
		completed = []uuid.UUID{}
	}

	sql, args, err := qb.Insert(table).
		Columns(columns...).
		Values(s.Token, s.EventID, s.UserID, s.ExpiresAt, completed, s.IsJoinToken, s.CreatedAt).
		ToSql()
	if err != nil {
		return postgres.MapError(err, "session", tokenRef(s.Token))
	}

	_, err = q.Exec(ctx, sql, args...)
	return postgres.MapError(err, "session", tokenRef(s.Token))
}

// GetByToken returns a session by its opaque token.
func (r *Repo) GetByToken(ctx context.Context, token string) (*domain.ContributorSession, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns...).
		From(table).
		Where(sq.Eq{"token": token}).
		ToSql()
	if err != nil {
		return nil, postgres.MapError(err, "session", tokenRef(token))
	}

	var row sessionRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "session", tokenRef(token))
	}

	return row.toDomain(), nil
}

// GetByUserAndEvent returns the user's own (non-join) session for an event.
func (r *Repo) GetByUserAndEvent(ctx context.Context, userID, eventID uuid.UUID) (*domain.ContributorSession, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns...).
		From(table).
		Where(sq.Eq{"user_id": userID, "event_id": eventID, "is_join_token": false}).
		ToSql()
	if err != nil {
		return nil, postgres.MapError(err, "session", userID.String())
	}

	var row sessionRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "session", userID.String())
	}

	return row.toDomain(), nil
}

// ListByEvent returns every session of an event.
func (r *Repo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.ContributorSession, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns...).
		From(table).
		Where(sq.Eq{"event_id": eventID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, postgres.MapError(err, "session", eventID.String())
	}

	var rows []sessionRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "session", eventID.String())
	}

	out := make([]domain.ContributorSession, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toDomain())
	}
	return out, nil
}

// AppendCompletedRecipient appends a recipient to the session's completed
// set if not already present. The guard lives in the WHERE clause so the
// set stays duplicate-free under concurrent submissions.
func (r *Repo) AppendCompletedRecipient(ctx context.Context, token string, recipientID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Update(table).
		Set("completed_recipients", sq.Expr("array_append(completed_recipients, ?)", recipientID)).
		Where(sq.Eq{"token": token}).
		Where(sq.Expr("NOT (? = ANY(completed_recipients))", recipientID)).
		ToSql()
	if err != nil {
		return postgres.MapError(err, "session", tokenRef(token))
	}

	_, err = q.Exec(ctx, sql, args...)
	return postgres.MapError(err, "session", tokenRef(token))
}

// SetExpiryByEvent cascades a new expiry to every session of an event, so
// write-capability never expires before the event itself.
func (r *Repo) SetExpiryByEvent(ctx context.Context, eventID uuid.UUID, expiresAt time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Update(table).
		Set("expires_at", expiresAt).
		Where(sq.Eq{"event_id": eventID}).
		ToSql()
	if err != nil {
		return postgres.MapError(err, "session", eventID.String())
	}

	_, err = q.Exec(ctx, sql, args...)
	return postgres.MapError(err, "session", eventID.String())
}

// DeleteByEvent removes every session of an event.
func (r *Repo) DeleteByEvent(ctx context.Context, eventID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Delete(table).
		Where(sq.Eq{"event_id": eventID}).
		ToSql()
	if err != nil {
		return postgres.MapError(err, "session", eventID.String())
	}

	_, err = q.Exec(ctx, sql, args...)
	return postgres.MapError(err, "session", eventID.String())
}
