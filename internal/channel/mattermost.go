package channel

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

type mattermostField struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

type mattermostAttachment struct {
	Fallback string            `json:"fallback"`
	Color    string            `json:"color"`
	Title    string            `json:"title"`
	Text     string            `json:"text"`
	Fields   []mattermostField `json:"fields"`
}

type mattermostPayload struct {
	Text        string                 `json:"text,omitempty"`
	Channel     string                 `json:"channel,omitempty"`
	Username    string                 `json:"username,omitempty"`
	Attachments []mattermostAttachment `json:"attachments"`
}

// MattermostChannel posts attachment-structured messages to a Mattermost
// incoming webhook.
type MattermostChannel struct {
	client *resty.Client
}

func NewMattermostChannel(client *resty.Client) *MattermostChannel {
	return &MattermostChannel{client: ensureClient(client)}
}

func (c *MattermostChannel) Type() domain.ChannelType { return domain.ChannelTypeMattermost }

func (c *MattermostChannel) Send(ctx context.Context, cfg Config, msg Message) error {
	mmCfg, err := expectConfig[MattermostConfig](c.Type(), cfg)
	if err != nil {
		return err
	}

	payload := mattermostPayloadFor(msg, mmCfg)
	_, err = postJSON(ctx, c.client, c.Type(), mmCfg.WebhookURL, payload, nil, http.StatusOK)
	return err
}

func mattermostPayloadFor(msg Message, cfg MattermostConfig) mattermostPayload {
	urgency := msg.Urgency()

	attachmentFields := make([]mattermostField, 0, 4)
	for _, f := range fields(msg) {
		attachmentFields = append(attachmentFields, mattermostField{Short: true, Title: f.Name, Value: f.Value})
	}

	return mattermostPayload{
		Channel:  cfg.Channel,
		Username: cfg.Username,
		Attachments: []mattermostAttachment{{
			Fallback: msg.Text,
			Color:    colorHex(urgency),
			Title:    marker(urgency) + " " + title(msg),
			Text:     msg.Text,
			Fields:   attachmentFields,
		}},
	}
}
