package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestContributorSession_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := ContributorSession{ExpiresAt: now.Add(time.Hour)}
	if s.IsExpired(now) {
		t.Error("session expiring in an hour is not expired")
	}
	if !s.IsExpired(now.Add(2 * time.Hour)) {
		t.Error("session past its expiry should be expired")
	}
}

func TestContributorSession_HasCompleted(t *testing.T) {
	t.Parallel()

	done := uuid.New()
	pending := uuid.New()
	s := ContributorSession{CompletedRecipients: []uuid.UUID{done}}

	if !s.HasCompleted(done) {
		t.Error("recipient in the completed set should report completed")
	}
	if s.HasCompleted(pending) {
		t.Error("recipient outside the completed set should not report completed")
	}
}

func TestEvent_Guards(t *testing.T) {
	t.Parallel()

	organizer := uuid.New()
	e := Event{Status: EventStatusOpen, OrganizerID: organizer}

	if e.IsClosed() {
		t.Error("OPEN event reported closed")
	}
	if !e.IsOwnedBy(organizer) {
		t.Error("organizer ownership check failed")
	}
	if e.IsOwnedBy(uuid.New()) {
		t.Error("stranger passed ownership check")
	}

	e.Status = EventStatusClosed
	if !e.IsClosed() {
		t.Error("CLOSED event reported open")
	}
}
