package channel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func sampleMessage(daysLeft int) Message {
	exp := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	nt := domain.ExpiringInType(daysLeft)
	if daysLeft <= 0 {
		nt = domain.NotificationTypeExpired
	}
	return Message{
		Text:             "Domain example.com expires in 7 days (2026-03-01). Registrar: Example Registrar",
		Subject:          "Domain expiration alert: example.com",
		Domain:           "example.com",
		DaysLeft:         intPtr(daysLeft),
		ExpirationDate:   &exp,
		Registrar:        "Example Registrar",
		NotificationType: nt,
	}
}

// countingServer answers every request with status and body and counts hits.
func countingServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestRegistryLookup(t *testing.T) {
	t.Parallel()

	registry := NewDefaultRegistry(Options{Timeout: time.Second})

	types := registry.Types()
	assert.ElementsMatch(t, domain.ChannelTypes, types)
	assert.True(t, slices.IsSortedFunc(types, func(a, b domain.ChannelType) int {
		return strings.Compare(a.String(), b.String())
	}))

	for _, ct := range domain.ChannelTypes {
		ch, err := registry.Lookup(ct)
		require.NoError(t, err)
		assert.Equal(t, ct, ch.Type())
	}

	_, err := registry.Lookup(domain.ChannelType("pager"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestMessageContext(t *testing.T) {
	t.Parallel()

	msg := sampleMessage(7)
	got := msg.Context()

	assert.Equal(t, "example.com", got["domain"])
	assert.Equal(t, 7, got["days_left"])
	assert.Equal(t, "2026-03-01", got["expiration_date"])
	assert.Equal(t, "Example Registrar", got["registrar"])

	empty := Message{Domain: "example.org"}.Context()
	assert.Nil(t, empty["days_left"])
	assert.Nil(t, empty["expiration_date"])
}

func TestMessageUrgency(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		daysLeft *int
		want     domain.Urgency
	}{
		{daysLeft: nil, want: domain.UrgencyNominal},
		{daysLeft: intPtr(-2), want: domain.UrgencySevere},
		{daysLeft: intPtr(0), want: domain.UrgencySevere},
		{daysLeft: intPtr(1), want: domain.UrgencyHigh},
		{daysLeft: intPtr(7), want: domain.UrgencyMedium},
		{daysLeft: intPtr(15), want: domain.UrgencyLow},
		{daysLeft: intPtr(90), want: domain.UrgencyNominal},
	}

	for _, tc := range testCases {
		got := Message{DaysLeft: tc.daysLeft}.Urgency()
		assert.Equal(t, tc.want, got)
	}
}

func TestChannelsRejectMismatchedConfigWithoutIO(t *testing.T) {
	t.Parallel()

	server, hits := countingServer(t, http.StatusOK, `{"ok":true,"id":"x"}`)
	client := NewHTTPClient(time.Second, "")
	mailer := &fakeMailer{}

	channels := []Channel{
		NewEmailChannel(mailer, "alerts@example.com"),
		NewWebhookChannel(client),
		NewSlackChannel(client),
		NewDiscordChannel(client),
		NewTelegramChannel(client, server.URL),
		NewMattermostChannel(client),
	}

	wrong := WebhookConfig{URL: server.URL}
	for _, ch := range channels {
		cfg := Config(wrong)
		if ch.Type() == domain.ChannelTypeWebhook {
			cfg = SlackConfig{WebhookURL: server.URL}
		}

		err := ch.Send(context.Background(), cfg, sampleMessage(7))
		require.Error(t, err, ch.Type())
		assert.True(t, errors.Is(err, ErrInvalidConfig), ch.Type())
		assert.False(t, IsTransient(err), ch.Type())
	}

	assert.Zero(t, hits.Load())
	assert.Zero(t, mailer.calls.Load())
}

func TestChannelsRejectInvalidConfigWithoutIO(t *testing.T) {
	t.Parallel()

	server, hits := countingServer(t, http.StatusOK, `{"ok":true}`)
	client := NewHTTPClient(time.Second, "")

	testCases := []struct {
		ch  Channel
		cfg Config
	}{
		{ch: NewWebhookChannel(client), cfg: WebhookConfig{URL: "ftp://example.com/hook"}},
		{ch: NewSlackChannel(client), cfg: SlackConfig{}},
		{ch: NewDiscordChannel(client), cfg: DiscordConfig{WebhookURL: "not a url"}},
		{ch: NewMattermostChannel(client), cfg: MattermostConfig{WebhookURL: "http://"}},
		{ch: NewTelegramChannel(client, server.URL), cfg: TelegramConfig{BotToken: "t"}},
		{ch: NewEmailChannel(&fakeMailer{}, "a@example.com"), cfg: EmailConfig{To: "nope"}},
	}

	for _, tc := range testCases {
		err := tc.ch.Send(context.Background(), tc.cfg, sampleMessage(3))
		require.Error(t, err, tc.ch.Type())
		assert.True(t, errors.Is(err, ErrInvalidConfig), tc.ch.Type())
	}
	assert.Zero(t, hits.Load())
}

func TestFailureReason(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", FailureReason(nil))
	assert.Equal(t, "invalid_config", FailureReason(invalidConfig(domain.ChannelTypeSlack, "bad")))
	assert.Equal(t, "transient_error", FailureReason(&Error{Transient: true}))
	assert.Equal(t, "transient_error", FailureReason(context.DeadlineExceeded))
	assert.Equal(t, "permanent_error", FailureReason(&Error{StatusCode: http.StatusBadRequest}))
}
