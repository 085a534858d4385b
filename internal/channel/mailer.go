package channel

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

// APIMailer delivers mail through a transactional email HTTP API. The
// provider must answer 200 with a JSON body carrying a non-empty id.
type APIMailer struct {
	client   *resty.Client
	endpoint string
	apiKey   string
}

func NewAPIMailer(client *resty.Client, endpoint, apiKey string) *APIMailer {
	return &APIMailer{
		client:   ensureClient(client),
		endpoint: strings.TrimSpace(endpoint),
		apiKey:   apiKey,
	}
}

type apiMailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
}

type apiMailResponse struct {
	ID string `json:"id"`
}

func (m *APIMailer) Deliver(ctx context.Context, msg Mail) error {
	if m.endpoint == "" {
		return &Error{Channel: domain.ChannelTypeEmail, Cause: errMailerNotConfigured}
	}

	headers := map[string]string{}
	if m.apiKey != "" {
		headers["Authorization"] = "Bearer " + m.apiKey
	}

	req := apiMailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	}

	response, err := postJSON(ctx, m.client, domain.ChannelTypeEmail, m.endpoint, req, headers, http.StatusOK)
	if err != nil {
		return err
	}

	var ack apiMailResponse
	if err := json.Unmarshal(response.Body(), &ack); err != nil {
		return &Error{Channel: domain.ChannelTypeEmail, StatusCode: response.StatusCode(), Message: "invalid mail api response", Cause: err}
	}
	if strings.TrimSpace(ack.ID) == "" {
		return &Error{Channel: domain.ChannelTypeEmail, StatusCode: response.StatusCode(), Message: "mail api response has no message id"}
	}
	return nil
}

// SMTPConfig holds relay connection settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	// TLS selects implicit TLS; otherwise STARTTLS is negotiated when the
	// server offers it.
	TLS     bool
	Timeout time.Duration
}

// SMTPMailer delivers multipart/alternative mail through an SMTP relay.
type SMTPMailer struct {
	cfg SMTPConfig
	now func() time.Time
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &SMTPMailer{cfg: cfg, now: time.Now}
}

func (m *SMTPMailer) Deliver(ctx context.Context, msg Mail) error {
	body, err := m.compose(msg)
	if err != nil {
		return &Error{Channel: domain.ChannelTypeEmail, Message: "compose message", Cause: err}
	}

	if err := m.send(ctx, msg.From, msg.To, body); err != nil {
		return &Error{
			Channel:   domain.ChannelTypeEmail,
			Message:   "smtp delivery failed",
			Transient: isTransientSMTPError(err),
			Cause:     err,
		}
	}
	return nil
}

func (m *SMTPMailer) compose(msg Mail) ([]byte, error) {
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return nil, fmt.Errorf("parse from address: %w", err)
	}
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return nil, fmt.Errorf("parse to address: %w", err)
	}

	var h mail.Header
	h.SetDate(m.now())
	h.SetAddressList("From", []*mail.Address{from})
	h.SetAddressList("To", []*mail.Address{to})
	h.SetSubject(msg.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generate message id: %w", err)
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create writer: %w", err)
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("create inline: %w", err)
	}

	parts := []struct {
		contentType string
		body        string
	}{
		{contentType: "text/plain", body: msg.Text},
		{contentType: "text/html", body: msg.HTML},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		var ph mail.InlineHeader
		ph.SetContentType(p.contentType, map[string]string{"charset": "utf-8"})
		w, err := tw.CreatePart(ph)
		if err != nil {
			return nil, fmt.Errorf("create %s part: %w", p.contentType, err)
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, fmt.Errorf("write %s part: %w", p.contentType, err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("close %s part: %w", p.contentType, err)
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("close inline: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (m *SMTPMailer) send(ctx context.Context, from, to string, body []byte) error {
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	dialer := &net.Dialer{Timeout: m.cfg.Timeout}
	tlsConfig := &tls.Config{ServerName: m.cfg.Host}

	var (
		conn net.Conn
		err  error
	)
	if m.cfg.TLS {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	deadline := time.Now().Add(m.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("create smtp client: %w", err)
	}
	defer client.Close()

	if !m.cfg.TLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := client.Mail(bareAddress(from)); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(bareAddress(to)); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	return client.Quit()
}

func bareAddress(addr string) string {
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return addr
	}
	return parsed.Address
}

// isTransientSMTPError treats 4xx replies and network timeouts as retryable.
func isTransientSMTPError(err error) bool {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code >= 400 && protoErr.Code < 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
