package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account: an organizer, or a Circle Notes
// participant created as a side effect of joining an event.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
