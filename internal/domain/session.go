package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContributorSession is the write-capability for one contributor on one
// event. The token is opaque; possession of it is the whole credential.
// UserID is nil for anonymous Individual Tribute contributors.
//
// CompletedRecipients is append-only: it records every recipient this
// session has ever successfully submitted to, even if the recipient is
// later removed. It drives UI completion state and is not load-bearing
// for access control.
type ContributorSession struct {
	Token               string
	EventID             uuid.UUID
	UserID              *uuid.UUID
	ExpiresAt           time.Time
	CompletedRecipients []uuid.UUID
	// IsJoinToken marks the distinguished Circle Notes session that only
	// gates the join flow and never writes contributions itself.
	IsJoinToken bool
	CreatedAt   time.Time
}

// IsExpired reports whether the session's expiry has passed.
func (s *ContributorSession) IsExpired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// HasCompleted reports whether the session has ever submitted to the
// given recipient.
func (s *ContributorSession) HasCompleted(recipientID uuid.UUID) bool {
	for _, id := range s.CompletedRecipients {
		if id == recipientID {
			return true
		}
	}
	return false
}
