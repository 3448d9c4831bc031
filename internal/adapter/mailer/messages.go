package mailer

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

var keepsakeBookTmpl = template.Must(template.New("keepsake_book").Parse(`<html>
<body style="font-family: Georgia, serif; color: #333;">
  <h2>{{.Title}}</h2>
  <p>Hi {{.Name}},</p>
  <p>Friends and loved ones have written something special for you.
     Your keepsake book is ready to read.</p>
  <p><a href="{{.Link}}" style="display:inline-block;padding:12px 24px;background:#b5651d;color:#fff;text-decoration:none;border-radius:6px;">Open your keepsake book</a></p>
  <p>With warm wishes,<br>The Keepsake team</p>
</body>
</html>`))

var reminderTmpl = template.Must(template.New("reminder").Parse(`<html>
<body style="font-family: Georgia, serif; color: #333;">
  <p>Hi {{.Name}},</p>
  <p>A friendly reminder that <strong>{{.Title}}</strong> is still collecting notes.
     The deadline is {{.Deadline}}.</p>
  {{if .Note}}<blockquote style="border-left:3px solid #b5651d;padding-left:12px;color:#555;">{{.Note}}</blockquote>{{end}}
  <p><a href="{{.Link}}">Finish your notes</a></p>
</body>
</html>`))

func keepsakeBookBody(rcpt domain.Recipient, ev domain.Event, link string) (subject, html, text string) {
	subject = fmt.Sprintf("Your keepsake book from %q is ready", ev.Title)

	var b strings.Builder
	_ = keepsakeBookTmpl.Execute(&b, map[string]string{
		"Title": ev.Title,
		"Name":  rcpt.Name,
		"Link":  link,
	})
	html = b.String()

	text = fmt.Sprintf("Hi %s,\n\nYour keepsake book from %q is ready to read:\n%s\n",
		rcpt.Name, ev.Title, link)
	return subject, html, text
}

func reminderBody(name string, ev domain.Event, link, note string) (subject, html, text string) {
	subject = fmt.Sprintf("Reminder: %q closes soon", ev.Title)
	deadline := ev.Deadline.Format("January 2, 2006")

	var b strings.Builder
	_ = reminderTmpl.Execute(&b, map[string]string{
		"Title":    ev.Title,
		"Name":     name,
		"Deadline": deadline,
		"Link":     link,
		"Note":     note,
	})
	html = b.String()

	text = fmt.Sprintf("Hi %s,\n\n%q is still collecting notes until %s.\n", name, ev.Title, deadline)
	if note != "" {
		text += fmt.Sprintf("\n%s\n", note)
	}
	text += fmt.Sprintf("\nFinish your notes: %s\n", link)
	return subject, html, text
}
