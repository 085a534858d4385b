package channel

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

// Channel is the outbound alert delivery port. Implementations are stateless
// across calls and safe for concurrent use. A nil error means the provider
// acknowledged the alert.
type Channel interface {
	Type() domain.ChannelType
	Send(ctx context.Context, cfg Config, msg Message) error
}

// Message is the alert handed to every channel. Text is the plain rendering
// used by media without rich formatting.
type Message struct {
	Text             string
	Subject          string
	Domain           string
	DaysLeft         *int
	ExpirationDate   *time.Time
	Registrar        string
	NotificationType domain.NotificationType
}

func (m Message) Urgency() domain.Urgency {
	return domain.UrgencyFor(m.DaysLeft)
}

// Context returns the structured alert context exposed to formatters.
func (m Message) Context() map[string]any {
	ctx := map[string]any{
		"domain":          m.Domain,
		"days_left":       nil,
		"expiration_date": nil,
		"registrar":       m.Registrar,
	}
	if m.DaysLeft != nil {
		ctx["days_left"] = *m.DaysLeft
	}
	if m.ExpirationDate != nil {
		ctx["expiration_date"] = m.ExpirationDate.UTC().Format(time.DateOnly)
	}
	return ctx
}

// Registry resolves a channel implementation from its type tag.
type Registry struct {
	channels map[domain.ChannelType]Channel
}

func NewRegistry(channels ...Channel) *Registry {
	r := &Registry{channels: make(map[domain.ChannelType]Channel, len(channels))}
	for _, ch := range channels {
		if ch != nil {
			r.channels[ch.Type()] = ch
		}
	}
	return r
}

func (r *Registry) Lookup(channelType domain.ChannelType) (Channel, error) {
	if r == nil {
		return nil, fmt.Errorf("channel registry is not initialized")
	}
	ch, ok := r.channels[channelType]
	if !ok {
		return nil, fmt.Errorf("%w: no channel registered for type %q", ErrInvalidConfig, channelType)
	}
	return ch, nil
}

func (r *Registry) Types() []domain.ChannelType {
	if r == nil {
		return nil
	}
	types := make([]domain.ChannelType, 0, len(r.channels))
	for t := range r.channels {
		types = append(types, t)
	}
	slices.SortFunc(types, func(a, b domain.ChannelType) int {
		return strings.Compare(a.String(), b.String())
	})
	return types
}

// Options configures the default channel set.
type Options struct {
	Timeout            time.Duration
	UserAgent          string
	Mailer             Mailer
	MailFrom           string
	TelegramAPIBaseURL string
}

// NewDefaultRegistry builds all six channel implementations sharing one
// HTTP client configuration.
func NewDefaultRegistry(opts Options) *Registry {
	client := NewHTTPClient(opts.Timeout, opts.UserAgent)

	return NewRegistry(
		NewEmailChannel(opts.Mailer, opts.MailFrom),
		NewWebhookChannel(client),
		NewSlackChannel(client),
		NewDiscordChannel(client),
		NewTelegramChannel(client, opts.TelegramAPIBaseURL),
		NewMattermostChannel(client),
	)
}
