package contribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

// JoinInput holds parameters for joining a Circle Notes event.
type JoinInput struct {
	Name     string
	Email    string
	Password string
}

// Validate validates the join input.
func (i JoinInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if i.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "required"})
	} else if !strings.Contains(i.Email, "@") || len(i.Email) > 254 {
		errs = append(errs, domain.FieldError{Field: "email", Message: "invalid email"})
	}
	if len(i.Password) < 8 {
		errs = append(errs, domain.FieldError{Field: "password", Message: "must be at least 8 characters"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// JoinResult is returned by JoinCircle. ContributorToken is the new
// participant's personal writing session.
type JoinResult struct {
	ContributorToken string
	User             *domain.User
	Recipient        *domain.Recipient
}

// JoinCircle turns a visitor holding the invite link into a participant:
// a recipient row, a personal session, and an account if the email is new.
// An existing account's email can only be claimed with its password; a
// wrong password is ErrConflict, not ErrUnauthorized, because the caller
// is not logging in, they are colliding with someone else's identity.
func (s *Service) JoinCircle(ctx context.Context, eventID uuid.UUID, joinToken string, input JoinInput) (*JoinResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByToken(ctx, joinToken)
	if err != nil {
		return nil, fmt.Errorf("contribution.JoinCircle: %w", err)
	}
	if session.EventID != eventID || !session.IsJoinToken {
		return nil, fmt.Errorf("contribution.JoinCircle: %w", domain.ErrNotFound)
	}
	if session.IsExpired(time.Now()) {
		return nil, fmt.Errorf("contribution.JoinCircle: %w", domain.ErrExpired)
	}

	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("contribution.JoinCircle load event: %w", err)
	}
	if ev.Type != domain.EventTypeCircleNotes {
		return nil, domain.NewValidationError("eventId", "event does not accept participants")
	}
	if ev.IsClosed() {
		return nil, fmt.Errorf("contribution.JoinCircle: %w", domain.ErrEventClosed)
	}

	taken, err := s.recipients.ExistsByEventAndEmail(ctx, eventID, input.Email)
	if err != nil {
		return nil, fmt.Errorf("contribution.JoinCircle check email: %w", err)
	}
	if taken {
		return nil, domain.NewValidationError("email", "already a participant on this event")
	}

	user, created, err := s.resolveOrCreateUser(ctx, input)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("contribution.JoinCircle generate token: %w", err)
	}
	sessionToken, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("contribution.JoinCircle generate token: %w", err)
	}

	now := time.Now()
	rcpt := &domain.Recipient{
		ID:          uuid.New(),
		EventID:     eventID,
		Name:        input.Name,
		Email:       input.Email,
		AccessToken: accessToken,
		UserID:      &user.ID,
		CreatedAt:   now,
	}
	personal := &domain.ContributorSession{
		Token:     sessionToken,
		EventID:   eventID,
		UserID:    &user.ID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: now,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if created {
			if err := s.users.Create(txCtx, user); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
		}
		if err := s.recipients.Create(txCtx, rcpt); err != nil {
			return fmt.Errorf("create recipient: %w", err)
		}
		if err := s.sessions.Create(txCtx, personal); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	})
	if err != nil {
		// A concurrent join with the same email trips the unique constraint.
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewValidationError("email", "already a participant on this event")
		}
		return nil, fmt.Errorf("contribution.JoinCircle: %w", err)
	}

	s.log.InfoContext(ctx, "participant joined",
		slog.String("event_id", eventID.String()),
		slog.String("user_id", user.ID.String()),
		slog.Bool("account_created", created),
	)

	return &JoinResult{
		ContributorToken: personal.Token,
		User:             user,
		Recipient:        rcpt,
	}, nil
}

// resolveOrCreateUser matches the join email to an account. A fresh email
// gets a new account; an existing one must be unlocked with its password.
func (s *Service) resolveOrCreateUser(ctx context.Context, input JoinInput) (user *domain.User, created bool, err error) {
	existing, err := s.users.GetByEmail(ctx, input.Email)
	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(input.Password)) != nil {
			return nil, false, fmt.Errorf("email is registered to another account: %w", domain.ErrConflict)
		}
		return existing, false, nil

	case errors.Is(err, domain.ErrNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.PasswordHashCost)
		if err != nil {
			return nil, false, fmt.Errorf("hash password: %w", err)
		}
		return &domain.User{
			ID:           uuid.New(),
			Email:        input.Email,
			Name:         input.Name,
			PasswordHash: string(hash),
			CreatedAt:    time.Now(),
		}, true, nil

	default:
		return nil, false, fmt.Errorf("lookup user: %w", err)
	}
}
