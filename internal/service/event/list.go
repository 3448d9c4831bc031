package event

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Get returns one owned event with its recipients and contribution counts.
func (s *Service) Get(ctx context.Context, organizerID, eventID uuid.UUID) (*View, error) {
	ev, err := s.getOwnedEvent(ctx, organizerID, eventID)
	if err != nil {
		return nil, fmt.Errorf("event.Get: %w", err)
	}

	recipients, err := s.recipients.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event.Get list recipients: %w", err)
	}

	counts, err := s.contributions.CountsByRecipient(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event.Get count contributions: %w", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	return &View{
		Event:             ev,
		Recipients:        recipients,
		ContributionCount: total,
		CountsByRecipient: counts,
	}, nil
}

// List returns all events organized by the user, each with recipient and
// contribution counts for the dashboard.
func (s *Service) List(ctx context.Context, organizerID uuid.UUID) ([]ListItem, error) {
	events, err := s.events.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("event.List: %w", err)
	}

	items := make([]ListItem, 0, len(events))
	for _, ev := range events {
		recipients, err := s.recipients.ListByEvent(ctx, ev.ID)
		if err != nil {
			return nil, fmt.Errorf("event.List recipients for %s: %w", ev.ID, err)
		}
		total, err := s.contributions.CountByEvent(ctx, ev.ID)
		if err != nil {
			return nil, fmt.Errorf("event.List contributions for %s: %w", ev.ID, err)
		}
		items = append(items, ListItem{
			Event:             ev,
			RecipientCount:    len(recipients),
			ContributionCount: total,
		})
	}
	return items, nil
}
