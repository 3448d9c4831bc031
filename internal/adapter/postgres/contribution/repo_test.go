package contribution

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v2"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func sampleContribution() *domain.Contribution {
	name := "Sam"
	now := time.Now().Truncate(time.Second)
	return &domain.Contribution{
		ID:               uuid.New(),
		EventID:          uuid.New(),
		RecipientID:      uuid.New(),
		ContributorToken: "tok-abc",
		ContributorName:  &name,
		Content:          "<p>happy birthday</p>",
		Formatting:       domain.Formatting{Font: "serif"},
		Media:            []domain.MediaItem{{URL: "https://cdn.example.com/a.png"}},
		BackgroundColor:  "#fff8e7",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestRepo_Create(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	c := sampleContribution()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO contributions")).
		WithArgs(
			c.ID, c.EventID, c.RecipientID, c.ContributorToken, c.ContributorName,
			c.Content, c.Formatting, c.Media, c.Drawings, c.Stickers, c.Signature,
			c.BackgroundColor, c.CreatedAt, c.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := New(mock)
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepo_Create_DuplicateKeyMapsToAlreadyExists(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	c := sampleContribution()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO contributions")).
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := New(mock)
	err := repo.Create(context.Background(), c)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("unique violation should map to ErrAlreadyExists, got %v", err)
	}
}

func TestRepo_GetByKey(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	c := sampleContribution()

	rows := pgxmock.NewRows(columns).AddRow(
		c.ID, c.EventID, c.RecipientID, c.ContributorToken, c.ContributorName,
		c.Content, c.Formatting, c.Media, c.Drawings, c.Stickers, c.Signature,
		c.BackgroundColor, c.CreatedAt, c.UpdatedAt,
	)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, event_id, recipient_id, contributor_token")).
		WithArgs(c.ContributorToken, c.EventID.String(), c.RecipientID.String()).
		WillReturnRows(rows)

	repo := New(mock)
	got, err := repo.GetByKey(context.Background(), c.ContributorToken, c.RecipientID, c.EventID)
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if got.ID != c.ID || got.Content != c.Content {
		t.Errorf("unexpected row: %+v", got)
	}
	if got.Formatting.Font != "serif" {
		t.Errorf("formatting not round-tripped: %+v", got.Formatting)
	}
}

func TestRepo_GetByKey_NotFound(t *testing.T) {
	t.Parallel()

	mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(columns))

	repo := New(mock)
	_, err := repo.GetByKey(context.Background(), "tok", uuid.New(), uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("empty result should map to ErrNotFound, got %v", err)
	}
}

func TestRepo_CountsByRecipient(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	eventID := uuid.New()
	r1, r2 := uuid.New(), uuid.New()

	rows := pgxmock.NewRows([]string{"recipient_id", "n"}).
		AddRow(r1, 3).
		AddRow(r2, 1)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT recipient_id, count(*) AS n FROM contributions")).
		WithArgs(eventID.String()).
		WillReturnRows(rows)

	repo := New(mock)
	counts, err := repo.CountsByRecipient(context.Background(), eventID)
	if err != nil {
		t.Fatalf("CountsByRecipient: %v", err)
	}
	if counts[r1] != 3 || counts[r2] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
	if len(counts) != 2 {
		t.Errorf("expected 2 entries, got %d", len(counts))
	}
}

func TestRepo_DeleteByEvent(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	eventID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM contributions WHERE event_id = $1")).
		WithArgs(eventID.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	repo := New(mock)
	if err := repo.DeleteByEvent(context.Background(), eventID); err != nil {
		t.Fatalf("DeleteByEvent: %v", err)
	}
}
