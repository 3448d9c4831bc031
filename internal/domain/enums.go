package domain

// EventType distinguishes the two collection modes.
type EventType string

const (
	// EventTypeIndividualTribute collects messages from many contributors
	// for a single recipient.
	EventTypeIndividualTribute EventType = "INDIVIDUAL_TRIBUTE"
	// EventTypeCircleNotes has every participant write to every other
	// participant; each receives their own book.
	EventTypeCircleNotes EventType = "CIRCLE_NOTES"
)

func (t EventType) String() string { return string(t) }

func (t EventType) IsValid() bool {
	switch t {
	case EventTypeIndividualTribute, EventTypeCircleNotes:
		return true
	}
	return false
}

// EventStatus is the lifecycle state of an event.
// The only legal transition is OPEN → CLOSED.
type EventStatus string

const (
	EventStatusOpen   EventStatus = "OPEN"
	EventStatusClosed EventStatus = "CLOSED"
)

func (s EventStatus) String() string { return string(s) }

func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusOpen, EventStatusClosed:
		return true
	}
	return false
}
