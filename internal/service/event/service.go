// Package event implements the organizer side of the event lifecycle:
// creation, deadline management, deletion, keepsake-book delivery, and
// batch operations across many events.
package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/keepsake-backend/internal/auth"
	"github.com/heartmarshall/keepsake-backend/internal/config"
	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

// eventRepo defines the event repository interface needed by the event service.
type eventRepo interface {
	Create(ctx context.Context, e *domain.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]domain.Event, error)
	ListOwnedOpenByIDs(ctx context.Context, organizerID uuid.UUID, ids []uuid.UUID) ([]domain.Event, error)
	Close(ctx context.Context, id uuid.UUID) error
	UpdateDeadline(ctx context.Context, id uuid.UUID, deadline time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// recipientRepo defines the recipient repository interface needed by the event service.
type recipientRepo interface {
	Create(ctx context.Context, rec *domain.Recipient) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Recipient, error)
	DeleteByEvent(ctx context.Context, eventID uuid.UUID) error
}

// sessionRepo defines the contributor session repository interface needed by the event service.
type sessionRepo interface {
	Create(ctx context.Context, s *domain.ContributorSession) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.ContributorSession, error)
	SetExpiryByEvent(ctx context.Context, eventID uuid.UUID, expiresAt time.Time) error
	DeleteByEvent(ctx context.Context, eventID uuid.UUID) error
}

// contributionRepo defines the contribution repository interface needed by the event service.
type contributionRepo interface {
	CountByEvent(ctx context.Context, eventID uuid.UUID) (int, error)
	CountsByRecipient(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]int, error)
	DeleteByEvent(ctx context.Context, eventID uuid.UUID) error
}

// userRepo defines the user repository interface needed by the event service.
type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// txManager defines the transaction manager interface needed by the event service.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// mailSender defines the outgoing-mail interface needed by the event service.
type mailSender interface {
	SendKeepsakeBook(ctx context.Context, rcpt domain.Recipient, ev domain.Event) (messageID string, err error)
	SendReminder(ctx context.Context, email, name string, ev domain.Event, sessionToken, note string) (messageID string, err error)
}

// Service implements event lifecycle operations.
type Service struct {
	log           *slog.Logger
	events        eventRepo
	recipients    recipientRepo
	sessions      sessionRepo
	contributions contributionRepo
	users         userRepo
	tx            txManager
	mail          mailSender
	cfg           config.DeliveryConfig

	// newToken is swappable in tests.
	newToken func() (string, error)
}

// NewService creates a new event service instance.
func NewService(
	logger *slog.Logger,
	events eventRepo,
	recipients recipientRepo,
	sessions sessionRepo,
	contributions contributionRepo,
	users userRepo,
	tx txManager,
	mail mailSender,
	cfg config.DeliveryConfig,
) *Service {
	return &Service{
		log:           logger.With("service", "event"),
		events:        events,
		recipients:    recipients,
		sessions:      sessions,
		contributions: contributions,
		users:         users,
		tx:            tx,
		mail:          mail,
		cfg:           cfg,
		newToken:      auth.NewOpaqueToken,
	}
}

// getOwnedEvent loads an event and verifies ownership. Foreign events return
// ErrForbidden, not ErrNotFound: the id is real and the caller is not its
// organizer.
func (s *Service) getOwnedEvent(ctx context.Context, organizerID, eventID uuid.UUID) (*domain.Event, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !ev.IsOwnedBy(organizerID) {
		return nil, domain.ErrForbidden
	}
	return ev, nil
}
