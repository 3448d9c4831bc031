package contribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

// SubmitInput holds one submission. The structured sub-fields arrive raw
// and are decoded leniently; AttachmentURLs are final storage URLs for
// uploads sent alongside the submission, in the order the client placed
// pending entries in the media array.
type SubmitInput struct {
	ContributorName *string
	Content         string
	BackgroundColor string
	Raw             domain.RawContent
	AttachmentURLs  []string
}

// Validate validates the submission input.
func (i SubmitInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.Content) == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
	} else if len(i.Content) > 20000 {
		errs = append(errs, domain.FieldError{Field: "content", Message: "too long"})
	}
	if i.ContributorName != nil && len(*i.ContributorName) > 100 {
		errs = append(errs, domain.FieldError{Field: "contributorName", Message: "too long"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// SubmitResult is returned by Submit. Degraded lists structured fields
// that were dropped because they failed to decode.
type SubmitResult struct {
	Contribution *domain.Contribution
	IsUpdate     bool
	Degraded     []string
}

// Submit creates or replaces this session's contribution for one recipient.
// At most one contribution exists per (session, recipient, event); sending
// again overwrites the content but keeps the original row and its creation
// time. Completion bookkeeping on the session happens only on first create.
func (s *Service) Submit(ctx context.Context, token string, recipientID uuid.UUID, input SubmitInput) (*SubmitResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("contribution.Submit: %w", err)
	}
	if session.IsJoinToken {
		// The invite link only gates joining; it never writes.
		return nil, fmt.Errorf("contribution.Submit: %w", domain.ErrForbidden)
	}
	if session.IsExpired(time.Now()) {
		return nil, fmt.Errorf("contribution.Submit session %s: %w", tokenRef(token), domain.ErrExpired)
	}

	ev, err := s.events.GetByID(ctx, session.EventID)
	if err != nil {
		return nil, fmt.Errorf("contribution.Submit load event: %w", err)
	}
	if ev.IsClosed() {
		return nil, fmt.Errorf("contribution.Submit: %w", domain.ErrEventClosed)
	}

	rcpt, err := s.recipients.GetByID(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("contribution.Submit load recipient: %w", err)
	}
	if rcpt.EventID != session.EventID {
		return nil, fmt.Errorf("contribution.Submit: recipient not on event: %w", domain.ErrNotFound)
	}
	if ev.Type == domain.EventTypeCircleNotes && session.UserID != nil &&
		rcpt.UserID != nil && *rcpt.UserID == *session.UserID {
		return nil, domain.NewValidationError("recipientId", "cannot write a note to yourself")
	}

	decoded := domain.DecodeContent(input.Raw)
	decoded.Media = resolvePendingUploads(decoded.Media, input.AttachmentURLs)

	contrib := &domain.Contribution{
		EventID:          session.EventID,
		RecipientID:      recipientID,
		ContributorToken: token,
		ContributorName:  input.ContributorName,
		Content:          input.Content,
		Formatting:       decoded.Formatting,
		Media:            decoded.Media,
		Drawings:         decoded.Drawings,
		Stickers:         decoded.Stickers,
		Signature:        decoded.Signature,
		BackgroundColor:  input.BackgroundColor,
	}

	isUpdate, err := s.upsert(ctx, session, contrib)
	if err != nil {
		return nil, fmt.Errorf("contribution.Submit: %w", err)
	}

	s.log.InfoContext(ctx, "contribution submitted",
		slog.String("event_id", session.EventID.String()),
		slog.String("recipient_id", recipientID.String()),
		slog.Bool("update", isUpdate),
		slog.Int("degraded_fields", len(decoded.Degraded)),
	)

	return &SubmitResult{
		Contribution: contrib,
		IsUpdate:     isUpdate,
		Degraded:     decoded.Degraded,
	}, nil
}

// upsert writes the contribution, preferring an in-place update of the
// existing row. Two concurrent first submissions race on the unique key;
// the loser sees ErrAlreadyExists and retries as an update.
func (s *Service) upsert(ctx context.Context, session *domain.ContributorSession, contrib *domain.Contribution) (isUpdate bool, err error) {
	now := time.Now()

	existing, err := s.contributions.GetByKey(ctx, contrib.ContributorToken, contrib.RecipientID, contrib.EventID)
	switch {
	case err == nil:
		return true, s.replace(ctx, existing, contrib, now)

	case errors.Is(err, domain.ErrNotFound):
		contrib.ID = uuid.New()
		contrib.CreatedAt = now
		contrib.UpdatedAt = now

		err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.contributions.Create(txCtx, contrib); err != nil {
				return err
			}
			return s.sessions.AppendCompletedRecipient(txCtx, session.Token, contrib.RecipientID)
		})
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return false, err
		}

		// Lost the race: the row exists now, replace it.
		existing, err = s.contributions.GetByKey(ctx, contrib.ContributorToken, contrib.RecipientID, contrib.EventID)
		if err != nil {
			return false, err
		}
		return true, s.replace(ctx, existing, contrib, now)

	default:
		return false, err
	}
}

// replace overwrites an existing row's content in place, preserving its
// identity and creation time.
func (s *Service) replace(ctx context.Context, existing, contrib *domain.Contribution, now time.Time) error {
	contrib.ID = existing.ID
	contrib.CreatedAt = existing.CreatedAt
	contrib.UpdatedAt = now
	return s.contributions.Update(ctx, contrib)
}

// resolvePendingUploads substitutes final storage URLs for placeholder
// media entries, matching by position among the pending entries only.
// Leftover placeholders stay as-is; extra URLs are ignored.
func resolvePendingUploads(media []domain.MediaItem, urls []string) []domain.MediaItem {
	if len(urls) == 0 {
		return media
	}
	next := 0
	for i := range media {
		if !media[i].IsPendingUpload() {
			continue
		}
		if next >= len(urls) {
			break
		}
		media[i].URL = urls[next]
		next++
	}
	return media
}
