// Package mailer implements the outgoing-email collaborator over SMTP.
//
// The core services hand it validated domain data; everything
// presentation-related (subjects, HTML bodies, links) stays here.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/heartmarshall/keepsake-backend/internal/config"
	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

// SMTP sends mail through a gomail dialer.
type SMTP struct {
	dialer    *gomail.Dialer
	from      string
	fromName  string
	publicURL string
	log       *slog.Logger
}

// New creates an SMTP mailer from config.
func New(cfg config.MailConfig, logger *slog.Logger) *SMTP {
	return &SMTP{
		dialer:    gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:      cfg.FromAddress,
		fromName:  cfg.FromName,
		publicURL: cfg.PublicURL,
		log:       logger.With("adapter", "mailer"),
	}
}

// SendKeepsakeBook emails a recipient the link to their compiled book and
// returns the message id recorded in the Message-ID header.
func (s *SMTP) SendKeepsakeBook(ctx context.Context, rcpt domain.Recipient, ev domain.Event) (string, error) {
	subject, html, text := keepsakeBookBody(rcpt, ev, s.bookURL(rcpt))
	return s.send(ctx, rcpt.Email, subject, html, text)
}

// SendReminder emails a participant a nudge to finish their contributions.
// note is an optional organizer-supplied message included verbatim (escaped).
func (s *SMTP) SendReminder(ctx context.Context, email, name string, ev domain.Event, sessionToken, note string) (string, error) {
	subject, html, text := reminderBody(name, ev, s.writeURL(sessionToken), note)
	return s.send(ctx, email, subject, html, text)
}

func (s *SMTP) bookURL(rcpt domain.Recipient) string {
	return fmt.Sprintf("%s/books/%s", s.publicURL, rcpt.AccessToken)
}

func (s *SMTP) writeURL(sessionToken string) string {
	return fmt.Sprintf("%s/write/%s", s.publicURL, sessionToken)
}

// send builds and dispatches one message. SMTP has no async provider ack;
// the generated Message-ID header doubles as the provider message id.
func (s *SMTP) send(ctx context.Context, to, subject, htmlBody, textBody string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	messageID := fmt.Sprintf("<%s@keepsake>", uuid.New())

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetHeader("Message-ID", messageID)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("send mail to %s: %w", to, err)
	}

	s.log.InfoContext(ctx, "mail sent",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("message_id", messageID),
	)

	return messageID, nil
}
