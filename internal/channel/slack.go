package channel

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Fields   []slackText `json:"fields,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Blocks []slackBlock `json:"blocks"`
}

type slackPayload struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

// SlackChannel posts block-structured messages to a Slack incoming webhook.
type SlackChannel struct {
	client *resty.Client
}

func NewSlackChannel(client *resty.Client) *SlackChannel {
	return &SlackChannel{client: ensureClient(client)}
}

func (c *SlackChannel) Type() domain.ChannelType { return domain.ChannelTypeSlack }

func (c *SlackChannel) Send(ctx context.Context, cfg Config, msg Message) error {
	slackCfg, err := expectConfig[SlackConfig](c.Type(), cfg)
	if err != nil {
		return err
	}

	_, err = postJSON(ctx, c.client, c.Type(), slackCfg.WebhookURL, slackPayloadFor(msg), nil, http.StatusOK)
	return err
}

func slackPayloadFor(msg Message) slackPayload {
	urgency := msg.Urgency()

	blockFields := make([]slackText, 0, 4)
	for _, f := range fields(msg) {
		blockFields = append(blockFields, slackText{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*%s:*\n%s", f.Name, f.Value),
		})
	}

	return slackPayload{
		// Top-level text is the notification fallback.
		Text: msg.Text,
		Attachments: []slackAttachment{{
			Color: colorHex(urgency),
			Blocks: []slackBlock{
				{Type: "header", Text: &slackText{Type: "plain_text", Text: title(msg)}},
				{Type: "section", Text: &slackText{Type: "mrkdwn", Text: msg.Text}},
				{Type: "section", Fields: blockFields},
				{Type: "context", Elements: []slackText{{Type: "mrkdwn", Text: fmt.Sprintf("%s Urgency: *%s*", marker(urgency), urgency)}}},
			},
		}},
	}
}
