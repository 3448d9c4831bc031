// Package contribution implements the contributor side: resolving session
// tokens into a writing view, joining Circle Notes events, and the
// submission upsert.
package contribution

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/keepsake-backend/internal/auth"
	"github.com/heartmarshall/keepsake-backend/internal/config"
	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

// sessionRepo defines the session repository interface needed by the contribution service.
type sessionRepo interface {
	Create(ctx context.Context, s *domain.ContributorSession) error
	GetByToken(ctx context.Context, token string) (*domain.ContributorSession, error)
	GetByUserAndEvent(ctx context.Context, userID, eventID uuid.UUID) (*domain.ContributorSession, error)
	AppendCompletedRecipient(ctx context.Context, token string, recipientID uuid.UUID) error
}

// eventRepo defines the event repository interface needed by the contribution service.
type eventRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
}

// recipientRepo defines the recipient repository interface needed by the contribution service.
type recipientRepo interface {
	Create(ctx context.Context, rec *domain.Recipient) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipient, error)
	GetByAccessToken(ctx context.Context, token string) (*domain.Recipient, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Recipient, error)
	ExistsByEventAndEmail(ctx context.Context, eventID uuid.UUID, email string) (bool, error)
}

// contributionRepo defines the contribution repository interface needed by the contribution service.
type contributionRepo interface {
	Create(ctx context.Context, c *domain.Contribution) error
	Update(ctx context.Context, c *domain.Contribution) error
	GetByKey(ctx context.Context, token string, recipientID, eventID uuid.UUID) (*domain.Contribution, error)
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]domain.Contribution, error)
}

// userRepo defines the user repository interface needed by the contribution service.
type userRepo interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// txManager defines the transaction manager interface needed by the contribution service.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements contributor-facing operations.
type Service struct {
	log           *slog.Logger
	sessions      sessionRepo
	events        eventRepo
	recipients    recipientRepo
	contributions contributionRepo
	users         userRepo
	tx            txManager
	cfg           config.AuthConfig

	// newToken is swappable in tests.
	newToken func() (string, error)
}

// NewService creates a new contribution service instance.
func NewService(
	logger *slog.Logger,
	sessions sessionRepo,
	events eventRepo,
	recipients recipientRepo,
	contributions contributionRepo,
	users userRepo,
	tx txManager,
	cfg config.AuthConfig,
) *Service {
	return &Service{
		log:           logger.With("service", "contribution"),
		sessions:      sessions,
		events:        events,
		recipients:    recipients,
		contributions: contributions,
		users:         users,
		tx:            tx,
		cfg:           cfg,
		newToken:      auth.NewOpaqueToken,
	}
}
