package contribution

import (
	"context"
	"fmt"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

// BookView is a recipient's compiled keepsake book: the event it belongs
// to, the recipient themselves, and every contribution addressed to them
// in page order.
type BookView struct {
	Event         *domain.Event
	Recipient     *domain.Recipient
	Contributions []domain.Contribution
}

// GetBook resolves a recipient access token into the keepsake book view.
// Unknown tokens are ErrNotFound. Books stay readable after the event
// closes; the delivery email is sent at closing time and the link in it
// must keep working.
func (s *Service) GetBook(ctx context.Context, accessToken string) (*BookView, error) {
	rcpt, err := s.recipients.GetByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("contribution.GetBook: %w", err)
	}

	ev, err := s.events.GetByID(ctx, rcpt.EventID)
	if err != nil {
		return nil, fmt.Errorf("contribution.GetBook: load event: %w", err)
	}

	contributions, err := s.contributions.ListByRecipient(ctx, rcpt.ID)
	if err != nil {
		return nil, fmt.Errorf("contribution.GetBook: list contributions: %w", err)
	}

	return &BookView{
		Event:         ev,
		Recipient:     rcpt,
		Contributions: contributions,
	}, nil
}
