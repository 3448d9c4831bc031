package event

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

// Create creates an event and issues its initial write credentials.
//
// Individual Tribute: one recipient (the honoree) plus one anonymous
// contributor session whose token is the shareable link.
//
// Circle Notes: the organizer joins their own event immediately as the
// first recipient with a personal session, and a distinguished join
// session is issued whose token is the invite link.
func (s *Service) Create(ctx context.Context, organizerID uuid.UUID, input CreateInput) (*CreateResult, error) {
	now := time.Now()
	if err := input.Validate(now); err != nil {
		return nil, err
	}

	ev := &domain.Event{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Type:        input.Type,
		Deadline:    input.Deadline,
		Status:      domain.EventStatusOpen,
		OrganizerID: organizerID,
		CreatedAt:   now,
	}

	var result *CreateResult
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.events.Create(txCtx, ev); err != nil {
			return fmt.Errorf("create event: %w", err)
		}

		switch input.Type {
		case domain.EventTypeIndividualTribute:
			r, err := s.createIndividualTribute(txCtx, ev, input)
			if err != nil {
				return err
			}
			result = r
		case domain.EventTypeCircleNotes:
			r, err := s.createCircleNotes(txCtx, ev, organizerID)
			if err != nil {
				return err
			}
			result = r
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("event.Create: %w", err)
	}

	s.log.InfoContext(ctx, "event created",
		slog.String("event_id", ev.ID.String()),
		slog.String("type", ev.Type.String()),
	)

	return result, nil
}

func (s *Service) createIndividualTribute(ctx context.Context, ev *domain.Event, input CreateInput) (*CreateResult, error) {
	accessToken, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	rcpt := &domain.Recipient{
		ID:          uuid.New(),
		EventID:     ev.ID,
		Name:        strings.TrimSpace(input.RecipientName),
		Email:       strings.ToLower(strings.TrimSpace(input.RecipientEmail)),
		AccessToken: accessToken,
		CreatedAt:   ev.CreatedAt,
	}
	if err := s.recipients.Create(ctx, rcpt); err != nil {
		return nil, fmt.Errorf("create recipient: %w", err)
	}

	session, err := s.issueSession(ctx, ev, nil, false)
	if err != nil {
		return nil, err
	}

	return &CreateResult{
		Event:            ev,
		Recipients:       []domain.Recipient{*rcpt},
		ContributorToken: session.Token,
	}, nil
}

func (s *Service) createCircleNotes(ctx context.Context, ev *domain.Event, organizerID uuid.UUID) (*CreateResult, error) {
	organizer, err := s.users.GetByID(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("load organizer: %w", err)
	}

	accessToken, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	rcpt := &domain.Recipient{
		ID:          uuid.New(),
		EventID:     ev.ID,
		Name:        organizer.Name,
		Email:       organizer.Email,
		AccessToken: accessToken,
		UserID:      &organizer.ID,
		CreatedAt:   ev.CreatedAt,
	}
	if err := s.recipients.Create(ctx, rcpt); err != nil {
		return nil, fmt.Errorf("create organizer recipient: %w", err)
	}

	organizerSession, err := s.issueSession(ctx, ev, &organizer.ID, false)
	if err != nil {
		return nil, err
	}

	joinSession, err := s.issueSession(ctx, ev, nil, true)
	if err != nil {
		return nil, err
	}

	return &CreateResult{
		Event:            ev,
		Recipients:       []domain.Recipient{*rcpt},
		ContributorToken: organizerSession.Token,
		JoinToken:        joinSession.Token,
	}, nil
}

// issueSession creates a contributor session expiring at the event deadline.
func (s *Service) issueSession(ctx context.Context, ev *domain.Event, userID *uuid.UUID, joinToken bool) (*domain.ContributorSession, error) {
	token, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	session := &domain.ContributorSession{
		Token:       token,
		EventID:     ev.ID,
		UserID:      userID,
		ExpiresAt:   ev.Deadline,
		IsJoinToken: joinToken,
		CreatedAt:   time.Now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}
