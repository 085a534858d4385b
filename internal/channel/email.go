package channel

import (
	"bytes"
	"context"
	"errors"
	"html/template"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

// Mail is a rendered outbound email.
type Mail struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers rendered mail. A nil error means the mail provider
// accepted the message.
type Mailer interface {
	Deliver(ctx context.Context, mail Mail) error
}

var errMailerNotConfigured = errors.New("mailer is not configured")

var emailTemplate = template.Must(template.New("alert").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1d1c1d;">
  <div style="border-left: 6px solid {{.Color}}; padding: 12px 16px;">
    <h2 style="margin: 0 0 8px 0;">{{.Title}}</h2>
    <p>{{.Text}}</p>
    <table cellpadding="4" style="border-collapse: collapse;">
      {{range .Fields}}<tr><td><strong>{{.Name}}</strong></td><td>{{.Value}}</td></tr>
      {{end}}
    </table>
    <p style="color: #616061; font-size: 12px;">Urgency: {{.Urgency}}</p>
  </div>
</body>
</html>
`))

type emailView struct {
	Title   string
	Text    string
	Color   string
	Urgency string
	Fields  []field
}

// EmailChannel renders a text and HTML email and hands it to a Mailer.
type EmailChannel struct {
	mailer Mailer
	from   string
}

func NewEmailChannel(mailer Mailer, from string) *EmailChannel {
	return &EmailChannel{mailer: mailer, from: from}
}

func (c *EmailChannel) Type() domain.ChannelType { return domain.ChannelTypeEmail }

func (c *EmailChannel) Send(ctx context.Context, cfg Config, msg Message) error {
	emailCfg, err := expectConfig[EmailConfig](c.Type(), cfg)
	if err != nil {
		return err
	}
	if c.mailer == nil {
		return &Error{Channel: c.Type(), Cause: errMailerNotConfigured}
	}

	htmlBody, err := renderEmailHTML(msg)
	if err != nil {
		return &Error{Channel: c.Type(), Message: "render html", Cause: err}
	}

	subject := msg.Subject
	if subject == "" {
		subject = title(msg)
	}

	err = c.mailer.Deliver(ctx, Mail{
		From:    c.from,
		To:      emailCfg.To,
		Subject: subject,
		Text:    msg.Text,
		HTML:    htmlBody,
	})
	if err == nil {
		return nil
	}

	var channelErr *Error
	if errors.As(err, &channelErr) {
		return err
	}
	return &Error{Channel: c.Type(), Message: "deliver", Transient: IsTransient(err), Cause: err}
}

func renderEmailHTML(msg Message) (string, error) {
	urgency := msg.Urgency()
	view := emailView{
		Title:   title(msg),
		Text:    msg.Text,
		Color:   colorHex(urgency),
		Urgency: urgency.String(),
		Fields:  fields(msg),
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
