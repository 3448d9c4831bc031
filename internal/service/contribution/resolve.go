package contribution

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

// SessionView is everything a contributor's writing screen needs: the
// session itself, the event, and the recipients this session may write to.
// For Circle Notes a participant never sees themselves in the list.
// Contributor is set when the session is bound to an account.
type SessionView struct {
	Session     *domain.ContributorSession
	Event       *domain.Event
	Recipients  []domain.Recipient
	Contributor *domain.User
}

// ResolveSession validates an opaque session token and returns the writing
// view. Unknown tokens are ErrNotFound; expired sessions and closed events
// are distinguishable from unknown tokens so the UI can say "this link has
// expired" instead of "bad link".
func (s *Service) ResolveSession(ctx context.Context, token string) (*SessionView, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("contribution.ResolveSession: %w", err)
	}
	return s.buildView(ctx, session)
}

// ResolveByUserAndEvent finds the caller's personal writing session on an
// event, used when a logged-in Circle Notes participant navigates to the
// event without their tokenized link.
func (s *Service) ResolveByUserAndEvent(ctx context.Context, userID, eventID uuid.UUID) (*SessionView, error) {
	session, err := s.sessions.GetByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("contribution.ResolveByUserAndEvent: %w", err)
	}
	return s.buildView(ctx, session)
}

func (s *Service) buildView(ctx context.Context, session *domain.ContributorSession) (*SessionView, error) {
	if session.IsExpired(time.Now()) {
		return nil, fmt.Errorf("session %s: %w", tokenRef(session.Token), domain.ErrExpired)
	}

	ev, err := s.events.GetByID(ctx, session.EventID)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	if ev.IsClosed() {
		return nil, fmt.Errorf("event %s: %w", ev.ID, domain.ErrEventClosed)
	}

	recipients, err := s.recipients.ListByEvent(ctx, session.EventID)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}

	// A circle participant writes to everyone but themselves.
	if ev.Type == domain.EventTypeCircleNotes && session.UserID != nil {
		filtered := recipients[:0]
		for _, r := range recipients {
			if r.UserID != nil && *r.UserID == *session.UserID {
				continue
			}
			filtered = append(filtered, r)
		}
		recipients = filtered
	}

	view := &SessionView{
		Session:    session,
		Event:      ev,
		Recipients: recipients,
	}

	if session.UserID != nil {
		user, err := s.users.GetByID(ctx, *session.UserID)
		if err != nil {
			return nil, fmt.Errorf("load contributor: %w", err)
		}
		view.Contributor = user
	}

	return view, nil
}

// tokenRef truncates an opaque token for error messages and logs. Full
// tokens are credentials and must not leak into either.
func tokenRef(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8] + "…"
}
