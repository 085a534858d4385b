package app

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/channel"
	"github.com/kursadbilgin/domain-alerts/internal/config"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
	"github.com/kursadbilgin/domain-alerts/internal/observability"
	"github.com/kursadbilgin/domain-alerts/internal/repository"
	"github.com/kursadbilgin/domain-alerts/internal/service"
	"go.uber.org/zap"
)

func TestBaseRunConfig(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		DefaultThresholds:    "60, 30,7",
		DefaultCooldownHours: 12,
		WorkerConcurrency:    4,
		LookupTimeout:        15 * time.Second,
		ChannelTimeout:       5 * time.Second,
		BatchTimeout:         time.Hour,
	}

	runCfg, err := BaseRunConfig(cfg)
	if err != nil {
		t.Fatalf("BaseRunConfig() error = %v", err)
	}
	if !slices.Equal(runCfg.Policy.Days(), []int{60, 30, 7}) {
		t.Fatalf("thresholds = %v, want [60 30 7]", runCfg.Policy.Days())
	}
	if runCfg.Cooldown != 12*time.Hour {
		t.Fatalf("cooldown = %s, want 12h", runCfg.Cooldown)
	}
	if runCfg.Concurrency != 4 || runCfg.BatchTimeout != time.Hour {
		t.Fatalf("run config = %+v", runCfg)
	}

	cfg.DefaultThresholds = "30,x"
	if _, err := BaseRunConfig(cfg); err == nil {
		t.Fatalf("BaseRunConfig() with malformed thresholds error = nil, want error")
	}
}

func TestNewMailer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{name: "none", cfg: config.Config{}, want: "<nil>"},
		{name: "api", cfg: config.Config{MailAPIURL: "https://mail.example.test/send", MailSMTPHost: "smtp.example.test"}, want: "*channel.APIMailer"},
		{name: "smtp", cfg: config.Config{MailSMTPHost: "smtp.example.test", MailSMTPPort: "587"}, want: "*channel.SMTPMailer"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mailer := NewMailer(&tt.cfg)
			got := "<nil>"
			switch mailer.(type) {
			case *channel.APIMailer:
				got = "*channel.APIMailer"
			case *channel.SMTPMailer:
				got = "*channel.SMTPMailer"
			}
			if got != tt.want {
				t.Fatalf("NewMailer() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewHTTPServerMountsRoutes(t *testing.T) {
	t.Parallel()

	a := &App{
		cfg:     &config.Config{},
		logger:  zap.NewNop(),
		metrics: observability.NewMetrics(),
		domains: repository.NewGormDomainRepo(nil),
		ledger:  repository.NewGormLedgerRepo(nil),
	}
	scheduler, err := service.NewScheduler(a, time.Hour, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	server, err := a.NewHTTPServer(scheduler)
	if err != nil {
		t.Fatalf("NewHTTPServer() error = %v", err)
	}

	for _, tc := range []struct {
		method string
		path   string
		want   int
	}{
		{method: http.MethodGet, path: "/livez", want: http.StatusOK},
		{method: http.MethodGet, path: "/metrics", want: http.StatusOK},
		{method: http.MethodGet, path: "/v1/runs/last", want: http.StatusNotFound},
	} {
		resp, err := server.Test(httptest.NewRequest(tc.method, tc.path, nil))
		if err != nil {
			t.Fatalf("%s %s error = %v", tc.method, tc.path, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != tc.want {
			t.Fatalf("%s %s status = %d, want %d", tc.method, tc.path, resp.StatusCode, tc.want)
		}
	}
}

func TestChannelTypeNames(t *testing.T) {
	t.Parallel()

	got := channelTypeNames([]domain.ChannelType{domain.ChannelTypeDiscord, domain.ChannelTypeEmail})
	if !slices.Equal(got, []string{"discord", "email"}) {
		t.Fatalf("channelTypeNames() = %v", got)
	}
}
