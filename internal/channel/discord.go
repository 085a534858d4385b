package channel

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Color       int                 `json:"color"`
	Fields      []discordEmbedField `json:"fields"`
	Footer      *discordFooter      `json:"footer,omitempty"`
	Timestamp   string              `json:"timestamp"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds"`
}

// DiscordChannel posts embed-structured messages to a Discord webhook.
// Discord acknowledges webhook executions with 204 No Content.
type DiscordChannel struct {
	client *resty.Client
	now    func() time.Time
}

func NewDiscordChannel(client *resty.Client) *DiscordChannel {
	return &DiscordChannel{client: ensureClient(client), now: time.Now}
}

func (c *DiscordChannel) Type() domain.ChannelType { return domain.ChannelTypeDiscord }

func (c *DiscordChannel) Send(ctx context.Context, cfg Config, msg Message) error {
	discordCfg, err := expectConfig[DiscordConfig](c.Type(), cfg)
	if err != nil {
		return err
	}

	payload := discordPayloadFor(msg, c.now())
	_, err = postJSON(ctx, c.client, c.Type(), discordCfg.WebhookURL, payload, nil, http.StatusNoContent)
	return err
}

func discordPayloadFor(msg Message, now time.Time) discordPayload {
	urgency := msg.Urgency()

	embedFields := make([]discordEmbedField, 0, 4)
	for _, f := range fields(msg) {
		embedFields = append(embedFields, discordEmbedField{Name: f.Name, Value: f.Value, Inline: true})
	}

	return discordPayload{
		Embeds: []discordEmbed{{
			Title:       marker(urgency) + " " + title(msg),
			Description: msg.Text,
			Color:       colorInt(urgency),
			Fields:      embedFields,
			Footer:      &discordFooter{Text: "Urgency: " + urgency.String()},
			Timestamp:   now.UTC().Format(time.RFC3339),
		}},
	}
}
