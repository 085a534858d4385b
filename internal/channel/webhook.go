package channel

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

const (
	webhookEvent           = "domain.expiration"
	webhookSignatureHeader = "X-Signature-256"
)

type webhookPayload struct {
	Event            string         `json:"event"`
	NotificationType string         `json:"notification_type"`
	Message          string         `json:"message"`
	Urgency          string         `json:"urgency"`
	Timestamp        string         `json:"timestamp"`
	Data             map[string]any `json:"data"`
}

// WebhookChannel POSTs a generic JSON document to an arbitrary endpoint.
type WebhookChannel struct {
	client *resty.Client
	now    func() time.Time
}

func NewWebhookChannel(client *resty.Client) *WebhookChannel {
	return &WebhookChannel{client: ensureClient(client), now: time.Now}
}

func (c *WebhookChannel) Type() domain.ChannelType { return domain.ChannelTypeWebhook }

func (c *WebhookChannel) Send(ctx context.Context, cfg Config, msg Message) error {
	webhookCfg, err := expectConfig[WebhookConfig](c.Type(), cfg)
	if err != nil {
		return err
	}

	payload := webhookPayload{
		Event:            webhookEvent,
		NotificationType: msg.NotificationType.String(),
		Message:          msg.Text,
		Urgency:          msg.Urgency().String(),
		Timestamp:        c.now().UTC().Format(time.RFC3339),
		Data:             msg.Context(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Channel: c.Type(), Message: "marshal payload", Cause: err}
	}

	headers := map[string]string{}
	if webhookCfg.Secret != "" {
		headers[webhookSignatureHeader] = "sha256=" + sign(webhookCfg.Secret, body)
	}

	_, err = postJSON(ctx, c.client, c.Type(), webhookCfg.URL, body, headers, http.StatusOK)
	return err
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
