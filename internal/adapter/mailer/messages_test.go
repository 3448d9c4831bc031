package mailer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

func TestKeepsakeBookBody(t *testing.T) {
	t.Parallel()

	rcpt := domain.Recipient{Name: "Maria", Email: "maria@example.com"}
	ev := domain.Event{Title: "Maria's Retirement"}

	subject, html, text := keepsakeBookBody(rcpt, ev, "https://keepsake.example/books/abc123")

	assert.Contains(t, subject, "Maria's Retirement")
	assert.Contains(t, html, "https://keepsake.example/books/abc123")
	assert.Contains(t, html, "Maria")
	assert.Contains(t, text, "https://keepsake.example/books/abc123")
}

func TestReminderBody(t *testing.T) {
	t.Parallel()

	ev := domain.Event{
		Title:    "Team Offsite Notes",
		Deadline: time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC),
	}

	t.Run("with organizer note", func(t *testing.T) {
		t.Parallel()

		subject, html, text := reminderBody("Alex", ev, "https://keepsake.example/write/tok", "Last call!")

		assert.Contains(t, subject, "Team Offsite Notes")
		assert.Contains(t, html, "September 15, 2026")
		assert.Contains(t, html, "Last call!")
		assert.Contains(t, text, "Last call!")
	})

	t.Run("note is escaped in html", func(t *testing.T) {
		t.Parallel()

		_, html, _ := reminderBody("Alex", ev, "https://keepsake.example/write/tok", `<script>alert("x")</script>`)

		assert.NotContains(t, html, "<script>")
		assert.Contains(t, html, "&lt;script&gt;")
	})

	t.Run("without note", func(t *testing.T) {
		t.Parallel()

		_, html, text := reminderBody("Alex", ev, "https://keepsake.example/write/tok", "")

		assert.NotContains(t, html, "blockquote")
		assert.Contains(t, text, "https://keepsake.example/write/tok")
	})
}
