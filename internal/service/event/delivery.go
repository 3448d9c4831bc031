package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

// SendKeepsakeBooks compiles and emails a keepsake book to every recipient
// who has at least one contribution. Recipients with none are skipped, one
// failed send never blocks the others, and the event closes only when every
// attempted send succeeded and at least one book went out. A partially
// failed run leaves the event OPEN so it can be retried; recipients who
// already got their book just get a fresh link.
func (s *Service) SendKeepsakeBooks(ctx context.Context, organizerID, eventID uuid.UUID) (*DeliveryReport, error) {
	ev, err := s.getOwnedEvent(ctx, organizerID, eventID)
	if err != nil {
		return nil, fmt.Errorf("event.SendKeepsakeBooks: %w", err)
	}
	if ev.IsClosed() {
		return nil, domain.NewValidationError("status", "event is already closed")
	}

	recipients, err := s.recipients.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event.SendKeepsakeBooks list recipients: %w", err)
	}

	counts, err := s.contributions.CountsByRecipient(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event.SendKeepsakeBooks count contributions: %w", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return nil, domain.NewValidationError("contributions", "event has no contributions to deliver")
	}

	report := &DeliveryReport{
		EventID:    eventID,
		Recipients: make([]RecipientDelivery, len(recipients)),
	}

	// Settle-all fan-out: every goroutine records its outcome in its own
	// slot and returns nil, so Wait never short-circuits a sibling.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrentSends)

	for i, rcpt := range recipients {
		entry := RecipientDelivery{
			RecipientID: rcpt.ID,
			Name:        rcpt.Name,
			Email:       rcpt.Email,
		}

		if counts[rcpt.ID] == 0 {
			entry.Status = DeliverySkipped
			entry.Reason = "no contributions"
			report.Recipients[i] = entry
			continue
		}

		g.Go(func() error {
			messageID, err := s.mail.SendKeepsakeBook(gctx, rcpt, *ev)
			if err != nil {
				entry.Status = DeliveryFailed
				entry.Reason = err.Error()
				s.log.ErrorContext(gctx, "keepsake book send failed",
					slog.String("event_id", eventID.String()),
					slog.String("recipient_id", rcpt.ID.String()),
					slog.Any("error", err),
				)
			} else {
				entry.Status = DeliverySent
				entry.MessageID = messageID
			}
			report.Recipients[i] = entry
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range report.Recipients {
		switch r.Status {
		case DeliverySent:
			report.Sent++
		case DeliveryFailed:
			report.Failed++
		case DeliverySkipped:
			report.Skipped++
		}
	}

	if report.Failed == 0 && report.Sent > 0 {
		if err := s.events.Close(ctx, eventID); err != nil && !errors.Is(err, domain.ErrEventClosed) {
			return nil, fmt.Errorf("event.SendKeepsakeBooks close: %w", err)
		}
		report.Closed = true
	}

	s.log.InfoContext(ctx, "keepsake books delivered",
		slog.String("event_id", eventID.String()),
		slog.Int("sent", report.Sent),
		slog.Int("failed", report.Failed),
		slog.Int("skipped", report.Skipped),
		slog.Bool("closed", report.Closed),
	)

	return report, nil
}
