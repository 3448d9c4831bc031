package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is the aggregate root. Recipients, contributor sessions, and
// contributions are all keyed by EventID and die with the event.
type Event struct {
	ID          uuid.UUID
	Title       string
	Description *string
	Type        EventType
	Deadline    time.Time
	Status      EventStatus
	OrganizerID uuid.UUID
	CreatedAt   time.Time
}

// IsClosed reports whether the event has reached its terminal state.
func (e *Event) IsClosed() bool {
	return e.Status == EventStatusClosed
}

// IsOwnedBy reports whether the given user is the event's organizer.
func (e *Event) IsOwnedBy(userID uuid.UUID) bool {
	return e.OrganizerID == userID
}

// Recipient is one keepsake-book addressee. AccessToken grants read access
// to the compiled book; UserID is set for Circle Notes participants, who
// are recipients and contributors at once.
type Recipient struct {
	ID          uuid.UUID
	EventID     uuid.UUID
	Name        string
	Email       string
	AccessToken string
	UserID      *uuid.UUID
	CreatedAt   time.Time
}
