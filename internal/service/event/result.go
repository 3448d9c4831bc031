package event

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

// CreateResult is returned by Create. ContributorToken is the write
// credential issued at creation: the anonymous shareable session for an
// Individual Tribute, or the organizer's own session for Circle Notes.
// JoinToken is set only for Circle Notes.
type CreateResult struct {
	Event            *domain.Event
	Recipients       []domain.Recipient
	ContributorToken string
	JoinToken        string
}

// View is an event with its recipients and per-recipient contribution
// counts, as shown on the organizer dashboard.
type View struct {
	Event             *domain.Event
	Recipients        []domain.Recipient
	ContributionCount int
	CountsByRecipient map[uuid.UUID]int
}

// ListItem is one row of the organizer's event list.
type ListItem struct {
	Event             domain.Event
	RecipientCount    int
	ContributionCount int
}

// DeliveryStatus is the per-recipient outcome of a delivery run.
type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
	DeliverySkipped DeliveryStatus = "skipped"
)

// RecipientDelivery records one recipient's outcome in a delivery report.
type RecipientDelivery struct {
	RecipientID uuid.UUID
	Name        string
	Email       string
	Status      DeliveryStatus
	MessageID   string
	Reason      string
}

// DeliveryReport is the full outcome of SendKeepsakeBooks. Closed reports
// whether the run transitioned the event to its terminal state.
type DeliveryReport struct {
	EventID    uuid.UUID
	Sent       int
	Failed     int
	Skipped    int
	Closed     bool
	Recipients []RecipientDelivery
}

// BatchItem is one event's outcome inside a batch operation.
type BatchItem struct {
	EventID       uuid.UUID
	Title         string
	Reason        string
	RemindersSent int
	Notified      []string
}

// BatchResult partitions a batch operation's events by outcome. Events the
// caller named that are not owned by them or not OPEN are omitted entirely.
type BatchResult struct {
	Successful []BatchItem
	Failed     []BatchItem
	Skipped    []BatchItem
	Summary    string
}
