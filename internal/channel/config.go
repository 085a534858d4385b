package channel

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

// Config is the validated, typed configuration of one stored channel. Each
// channel type has exactly one variant.
type Config interface {
	Type() domain.ChannelType
	Validate() error
}

type EmailConfig struct {
	To string
}

func (EmailConfig) Type() domain.ChannelType { return domain.ChannelTypeEmail }

func (c EmailConfig) Validate() error {
	if strings.TrimSpace(c.To) == "" {
		return invalidConfig(c.Type(), "email is required")
	}
	if _, err := mail.ParseAddress(c.To); err != nil {
		return invalidConfig(c.Type(), "invalid email %q", c.To)
	}
	return nil
}

type WebhookConfig struct {
	URL string
	// Secret, when set, signs the body with HMAC-SHA256.
	Secret string
}

func (WebhookConfig) Type() domain.ChannelType { return domain.ChannelTypeWebhook }

func (c WebhookConfig) Validate() error {
	return validateEndpoint(c.Type(), "url", c.URL)
}

type SlackConfig struct {
	WebhookURL string
}

func (SlackConfig) Type() domain.ChannelType { return domain.ChannelTypeSlack }

func (c SlackConfig) Validate() error {
	return validateEndpoint(c.Type(), "webhook_url", c.WebhookURL)
}

type DiscordConfig struct {
	WebhookURL string
}

func (DiscordConfig) Type() domain.ChannelType { return domain.ChannelTypeDiscord }

func (c DiscordConfig) Validate() error {
	return validateEndpoint(c.Type(), "webhook_url", c.WebhookURL)
}

type MattermostConfig struct {
	WebhookURL string
	Channel    string
	Username   string
}

func (MattermostConfig) Type() domain.ChannelType { return domain.ChannelTypeMattermost }

func (c MattermostConfig) Validate() error {
	return validateEndpoint(c.Type(), "webhook_url", c.WebhookURL)
}

type TelegramConfig struct {
	BotToken string
	ChatID   string
}

func (TelegramConfig) Type() domain.ChannelType { return domain.ChannelTypeTelegram }

func (c TelegramConfig) Validate() error {
	if strings.TrimSpace(c.BotToken) == "" {
		return invalidConfig(c.Type(), "bot_token is required")
	}
	if strings.TrimSpace(c.ChatID) == "" {
		return invalidConfig(c.Type(), "chat_id is required")
	}
	return nil
}

// ParseConfig converts a stored key/value channel config into its typed
// variant and validates it.
func ParseConfig(channelType domain.ChannelType, raw map[string]string) (Config, error) {
	get := func(key string) string {
		return strings.TrimSpace(raw[key])
	}

	var cfg Config
	switch channelType {
	case domain.ChannelTypeEmail:
		cfg = EmailConfig{To: get("email")}
	case domain.ChannelTypeWebhook:
		cfg = WebhookConfig{URL: get("url"), Secret: get("secret")}
	case domain.ChannelTypeSlack:
		cfg = SlackConfig{WebhookURL: get("webhook_url")}
	case domain.ChannelTypeDiscord:
		cfg = DiscordConfig{WebhookURL: get("webhook_url")}
	case domain.ChannelTypeMattermost:
		cfg = MattermostConfig{
			WebhookURL: get("webhook_url"),
			Channel:    get("channel"),
			Username:   get("username"),
		}
	case domain.ChannelTypeTelegram:
		cfg = TelegramConfig{BotToken: get("bot_token"), ChatID: get("chat_id")}
	default:
		return nil, fmt.Errorf("%w: unknown channel type %q", ErrInvalidConfig, channelType)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateEndpoint(channelType domain.ChannelType, key string, endpoint string) error {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return invalidConfig(channelType, "%s is required", key)
	}
	u, err := url.ParseRequestURI(trimmed)
	if err != nil {
		return invalidConfig(channelType, "invalid %s", key)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalidConfig(channelType, "%s must use http or https, got %q", key, u.Scheme)
	}
	if u.Host == "" {
		return invalidConfig(channelType, "%s must include a host", key)
	}
	return nil
}

// expectConfig asserts the config variant a channel needs and validates it
// before any network I/O happens.
func expectConfig[T Config](channelType domain.ChannelType, cfg Config) (T, error) {
	var zero T
	typed, ok := cfg.(T)
	if !ok {
		return zero, invalidConfig(channelType, "unexpected config type %T", cfg)
	}
	if err := typed.Validate(); err != nil {
		return zero, err
	}
	return typed, nil
}
