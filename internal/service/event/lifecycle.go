package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

// Close transitions an owned event to CLOSED. Closing an already-closed
// event is a validation error, not a 410: the organizer addressed the event
// directly and should see why the request made no sense.
func (s *Service) Close(ctx context.Context, organizerID, eventID uuid.UUID) (*domain.Event, error) {
	ev, err := s.getOwnedEvent(ctx, organizerID, eventID)
	if err != nil {
		return nil, fmt.Errorf("event.Close: %w", err)
	}
	if ev.IsClosed() {
		return nil, domain.NewValidationError("status", "event is already closed")
	}

	// The UPDATE is conditional on status; a concurrent close loses here.
	if err := s.events.Close(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrEventClosed) {
			return nil, domain.NewValidationError("status", "event is already closed")
		}
		return nil, fmt.Errorf("event.Close: %w", err)
	}

	ev.Status = domain.EventStatusClosed
	s.log.InfoContext(ctx, "event closed", slog.String("event_id", eventID.String()))
	return ev, nil
}

// ExtendDeadline moves an open event's deadline into the future and extends
// every contributor session on the event to match, so links shared before
// the change keep working for the whole collection window.
func (s *Service) ExtendDeadline(ctx context.Context, organizerID, eventID uuid.UUID, deadline time.Time) (*domain.Event, error) {
	ev, err := s.getOwnedEvent(ctx, organizerID, eventID)
	if err != nil {
		return nil, fmt.Errorf("event.ExtendDeadline: %w", err)
	}
	if ev.IsClosed() {
		return nil, domain.NewValidationError("status", "event is already closed")
	}
	if !deadline.After(time.Now()) {
		return nil, domain.NewValidationError("deadline", "must be in the future")
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.events.UpdateDeadline(txCtx, eventID, deadline); err != nil {
			return fmt.Errorf("update deadline: %w", err)
		}
		if err := s.sessions.SetExpiryByEvent(txCtx, eventID, deadline); err != nil {
			return fmt.Errorf("extend sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrEventClosed) {
			return nil, domain.NewValidationError("status", "event is already closed")
		}
		return nil, fmt.Errorf("event.ExtendDeadline: %w", err)
	}

	ev.Deadline = deadline
	s.log.InfoContext(ctx, "deadline extended",
		slog.String("event_id", eventID.String()),
		slog.Time("deadline", deadline),
	)
	return ev, nil
}

// Delete removes an owned event and everything hanging off it. Closed
// events can be deleted too.
func (s *Service) Delete(ctx context.Context, organizerID, eventID uuid.UUID) error {
	if _, err := s.getOwnedEvent(ctx, organizerID, eventID); err != nil {
		return fmt.Errorf("event.Delete: %w", err)
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.contributions.DeleteByEvent(txCtx, eventID); err != nil {
			return fmt.Errorf("delete contributions: %w", err)
		}
		if err := s.sessions.DeleteByEvent(txCtx, eventID); err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}
		if err := s.recipients.DeleteByEvent(txCtx, eventID); err != nil {
			return fmt.Errorf("delete recipients: %w", err)
		}
		if err := s.events.Delete(txCtx, eventID); err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("event.Delete: %w", err)
	}

	s.log.InfoContext(ctx, "event deleted", slog.String("event_id", eventID.String()))
	return nil
}
