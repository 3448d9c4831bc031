package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

// loadBatch validates the id list and resolves it to events the organizer
// owns that are still OPEN. Ids that fail either check are dropped without
// a trace in the result; the batch surface never confirms or denies the
// existence of someone else's event.
func (s *Service) loadBatch(ctx context.Context, organizerID uuid.UUID, ids []uuid.UUID) ([]domain.Event, error) {
	if len(ids) == 0 {
		return nil, domain.NewValidationError("eventIds", "required")
	}
	if len(ids) > s.cfg.MaxBatchEvents {
		return nil, domain.NewValidationError("eventIds", fmt.Sprintf("at most %d events per batch", s.cfg.MaxBatchEvents))
	}
	return s.events.ListOwnedOpenByIDs(ctx, organizerID, ids)
}

// ExtendDeadlines moves the deadline of many owned open events at once.
// Each event is its own unit of work: one failure lands that event in
// Failed and the rest proceed.
func (s *Service) ExtendDeadlines(ctx context.Context, organizerID uuid.UUID, ids []uuid.UUID, deadline time.Time) (*BatchResult, error) {
	if !deadline.After(time.Now()) {
		return nil, domain.NewValidationError("deadline", "must be in the future")
	}

	events, err := s.loadBatch(ctx, organizerID, ids)
	if err != nil {
		return nil, fmt.Errorf("event.ExtendDeadlines: %w", err)
	}

	result := &BatchResult{}
	for _, ev := range events {
		item := BatchItem{EventID: ev.ID, Title: ev.Title}

		err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.events.UpdateDeadline(txCtx, ev.ID, deadline); err != nil {
				return fmt.Errorf("update deadline: %w", err)
			}
			if err := s.sessions.SetExpiryByEvent(txCtx, ev.ID, deadline); err != nil {
				return fmt.Errorf("extend sessions: %w", err)
			}
			return nil
		})
		if err != nil {
			item.Reason = err.Error()
			result.Failed = append(result.Failed, item)
			s.log.ErrorContext(ctx, "batch deadline extension failed",
				slog.String("event_id", ev.ID.String()),
				slog.Any("error", err),
			)
			continue
		}
		result.Successful = append(result.Successful, item)
	}

	result.Summary = fmt.Sprintf("extended %d of %d events", len(result.Successful), len(events))
	return result, nil
}

// SendReminders emails every identified contributor on the named Circle
// Notes events a nudge with an optional organizer note. Individual Tribute
// events have no tracked contributor roster and land in Skipped; anonymous
// circle sessions cannot be reached and are silently left out.
func (s *Service) SendReminders(ctx context.Context, organizerID uuid.UUID, ids []uuid.UUID, note string) (*BatchResult, error) {
	if len(note) > 1000 {
		return nil, domain.NewValidationError("message", "too long")
	}

	events, err := s.loadBatch(ctx, organizerID, ids)
	if err != nil {
		return nil, fmt.Errorf("event.SendReminders: %w", err)
	}

	result := &BatchResult{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrentSends)

	for _, ev := range events {
		if ev.Type == domain.EventTypeIndividualTribute {
			result.Skipped = append(result.Skipped, BatchItem{
				EventID: ev.ID,
				Title:   ev.Title,
				Reason:  "individual tribute events have no contributor roster",
			})
			continue
		}

		g.Go(func() error {
			item := s.remindEvent(gctx, ev, note)
			mu.Lock()
			defer mu.Unlock()
			if item.Reason != "" && item.RemindersSent == 0 {
				result.Failed = append(result.Failed, item)
			} else {
				result.Successful = append(result.Successful, item)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Summary = fmt.Sprintf("sent reminders for %d of %d events, %d skipped",
		len(result.Successful), len(events), len(result.Skipped))
	return result, nil
}

// remindEvent sends reminders for one circle event and reports the outcome
// as data. Per-send failures reduce the count; only a total failure (or a
// roster lookup error) marks the event failed.
func (s *Service) remindEvent(ctx context.Context, ev domain.Event, note string) BatchItem {
	item := BatchItem{EventID: ev.ID, Title: ev.Title}

	sessions, err := s.sessions.ListByEvent(ctx, ev.ID)
	if err != nil {
		item.Reason = fmt.Sprintf("list sessions: %v", err)
		return item
	}

	attempted := 0
	for _, sess := range sessions {
		if sess.UserID == nil || sess.IsJoinToken {
			continue
		}
		attempted++

		user, err := s.users.GetByID(ctx, *sess.UserID)
		if err != nil {
			s.log.ErrorContext(ctx, "reminder target lookup failed",
				slog.String("event_id", ev.ID.String()),
				slog.String("user_id", sess.UserID.String()),
				slog.Any("error", err),
			)
			continue
		}

		if _, err := s.mail.SendReminder(ctx, user.Email, user.Name, ev, sess.Token, note); err != nil {
			s.log.ErrorContext(ctx, "reminder send failed",
				slog.String("event_id", ev.ID.String()),
				slog.String("user_id", user.ID.String()),
				slog.Any("error", err),
			)
			continue
		}

		item.RemindersSent++
		item.Notified = append(item.Notified, user.Email)
	}

	if attempted > 0 && item.RemindersSent == 0 {
		item.Reason = "all reminder sends failed"
	}
	return item
}
