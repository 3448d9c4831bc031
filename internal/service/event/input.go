package event

import (
	"strings"
	"time"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

// CreateInput holds parameters for event creation. RecipientName and
// RecipientEmail are required for Individual Tribute events and ignored for
// Circle Notes, where the organizer becomes the first recipient.
type CreateInput struct {
	Title          string
	Description    *string
	Type           domain.EventType
	Deadline       time.Time
	RecipientName  string
	RecipientEmail string
}

// Validate validates the creation input against the given clock reading.
func (i CreateInput) Validate(now time.Time) error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.Title) == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	} else if len(i.Title) > 200 {
		errs = append(errs, domain.FieldError{Field: "title", Message: "too long"})
	}

	if !i.Type.IsValid() {
		errs = append(errs, domain.FieldError{Field: "type", Message: "unknown event type"})
	}

	if !i.Deadline.After(now) {
		errs = append(errs, domain.FieldError{Field: "deadline", Message: "must be in the future"})
	}

	if i.Type == domain.EventTypeIndividualTribute {
		if strings.TrimSpace(i.RecipientName) == "" {
			errs = append(errs, domain.FieldError{Field: "recipientName", Message: "required"})
		}
		if !isPlausibleEmail(i.RecipientEmail) {
			errs = append(errs, domain.FieldError{Field: "recipientEmail", Message: "invalid email"})
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func isPlausibleEmail(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && strings.Contains(s, "@") && len(s) <= 254
}
