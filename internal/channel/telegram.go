package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

const defaultTelegramAPIBaseURL = "https://api.telegram.org"

type telegramRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// TelegramChannel sends alerts through the Telegram Bot API, addressed by
// bot token and chat id.
type TelegramChannel struct {
	client  *resty.Client
	baseURL string
}

func NewTelegramChannel(client *resty.Client, baseURL string) *TelegramChannel {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultTelegramAPIBaseURL
	}
	return &TelegramChannel{client: ensureClient(client), baseURL: baseURL}
}

func (c *TelegramChannel) Type() domain.ChannelType { return domain.ChannelTypeTelegram }

func (c *TelegramChannel) Send(ctx context.Context, cfg Config, msg Message) error {
	tgCfg, err := expectConfig[TelegramConfig](c.Type(), cfg)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, tgCfg.BotToken)
	req := telegramRequest{
		ChatID:                tgCfg.ChatID,
		Text:                  telegramText(msg),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}

	response, err := postJSON(ctx, c.client, c.Type(), endpoint, req, nil, http.StatusOK)
	if err != nil {
		return err
	}

	var ack telegramResponse
	if err := json.Unmarshal(response.Body(), &ack); err != nil {
		return &Error{Channel: c.Type(), StatusCode: response.StatusCode(), Message: "invalid bot api response", Cause: err}
	}
	if !ack.OK {
		return &Error{Channel: c.Type(), StatusCode: response.StatusCode(), Message: "bot api rejected message: " + ack.Description}
	}
	return nil
}

func telegramText(msg Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s</b>\n\n", marker(msg.Urgency()), html.EscapeString(title(msg)))
	b.WriteString(html.EscapeString(msg.Text))
	b.WriteString("\n")
	for _, f := range fields(msg) {
		fmt.Fprintf(&b, "\n<b>%s:</b> %s", html.EscapeString(f.Name), html.EscapeString(f.Value))
	}
	return b.String()
}
