// Package event implements the Event repository using PostgreSQL.
package event

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/heartmarshall/keepsake-backend/internal/adapter/postgres"
	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

const table = "events"

var columns = []string{"id", "title", "description", "event_type", "deadline", "status", "organizer_id", "created_at"}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides event persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new event repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

type eventRow struct {
	ID          uuid.UUID `db:"id"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	EventType   string    `db:"event_type"`
	Deadline    time.Time `db:"deadline"`
	Status      string    `db:"status"`
	OrganizerID uuid.UUID `db:"organizer_id"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r eventRow) toDomain() *domain.Event {
	return &domain.Event{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Type:        domain.EventType(r.EventType),
		Deadline:    r.Deadline,
		Status:      domain.EventStatus(r.Status),
		OrganizerID: r.OrganizerID,
		CreatedAt:   r.CreatedAt,
	}
}

func toDomainList(rows []eventRow) []domain.Event {
	out := make([]domain.Event, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r.toDomain())
	}
	return out
}

// Create inserts a new event.
func (r *Repo) Create(ctx context.Context, e *domain.Event) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Insert(table).
		Columns(columns...).
		Values(e.ID, e.Title, e.Description, e.Type.String(), e.Deadline, e.Status.String(), e.OrganizerID, e.CreatedAt).
		ToSql()
	if err != nil {
		return postgres.MapError(err, "event", e.ID.String())
	}

	_, err = q.Exec(ctx, sql, args...)
	return postgres.MapError(err, "event", e.ID.String())
}

// GetByID returns an event by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns...).
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, postgres.MapError(err, "event", id.String())
	}

	var row eventRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "event", id.String())
	}

	return row.toDomain(), nil
}

// ListByOrganizer returns all events owned by the given organizer, newest first.
func (r *Repo) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]domain.Event, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns...).
		From(table).
		Where(sq.Eq{"organizer_id": organizerID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, postgres.MapError(err, "event", organizerID.String())
	}

	var rows []eventRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "event", organizerID.String())
	}

	return toDomainList(rows), nil
}

// ListOwnedOpenByIDs returns the subset of the given events that belong to
// the organizer and are still OPEN. Batch operations use this as their
// silent pre-filter: non-matching ids are simply absent from the result.
func (r *Repo) ListOwnedOpenByIDs(ctx context.Context, organizerID uuid.UUID, ids []uuid.UUID) ([]domain.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns...).
		From(table).
		Where(sq.Eq{
			"id":           ids,
			"organizer_id": organizerID,
			"status":       domain.EventStatusOpen.String(),
		}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, postgres.MapError(err, "event", organizerID.String())
	}

	var rows []eventRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "event", organizerID.String())
	}

	return toDomainList(rows), nil
}

// Close transitions an event from OPEN to CLOSED. It is a compare-and-set:
// if the event is already CLOSED (or gone) no row matches and
// domain.ErrEventClosed is returned, so concurrent closers cannot both win.
func (r *Repo) Close(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Update(table).
		Set("status", domain.EventStatusClosed.String()).
		Where(sq.Eq{"id": id, "status": domain.EventStatusOpen.String()}).
		ToSql()
	if err != nil {
		return postgres.MapError(err, "event", id.String())
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "event", id.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event %s: %w", id, domain.ErrEventClosed)
	}

	return nil
}

// UpdateDeadline sets a new deadline on an OPEN event.
func (r *Repo) UpdateDeadline(ctx context.Context, id uuid.UUID, deadline time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Update(table).
		Set("deadline", deadline).
		Where(sq.Eq{"id": id, "status": domain.EventStatusOpen.String()}).
		ToSql()
	if err != nil {
		return postgres.MapError(err, "event", id.String())
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "event", id.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event %s: %w", id, domain.ErrEventClosed)
	}

	return nil
}

// Delete removes the event row. Child rows must already be gone; callers
// run the full cascade inside one transaction.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Delete(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return postgres.MapError(err, "event", id.String())
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "event", id.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
