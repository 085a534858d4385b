package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

const defaultThresholds = "30,15,7,3,1"

type Config struct {
	DatabaseDSN string `env:"DATABASE_DSN,required=true"`
	// RedisURL is optional; without it rate limiting and key locks are
	// process-local.
	RedisURL string `env:"REDIS_URL"`
	LogLevel string `env:"LOG_LEVEL,default=info"`
	LogFile  string `env:"LOG_FILE,default=logs/domain-alerts.log"`

	WorkerConcurrency      int           `env:"WORKER_CONCURRENCY,default=10"`
	LookupTimeout          time.Duration `env:"LOOKUP_TIMEOUT,default=30s"`
	ChannelTimeout         time.Duration `env:"CHANNEL_TIMEOUT,default=10s"`
	BatchTimeout           time.Duration `env:"BATCH_TIMEOUT,default=2h"`
	LookupRatePerSec       int           `env:"LOOKUP_RATE_PER_SEC,default=5"`
	ChannelRateLimitPerSec int           `env:"CHANNEL_RATE_LIMIT_PER_SEC,default=10"`
	RDAPBaseURL            string        `env:"RDAP_BASE_URL,default=https://rdap.org"`
	TelegramAPIBaseURL     string        `env:"TELEGRAM_API_BASE_URL,default=https://api.telegram.org"`

	MailFrom         string `env:"MAIL_FROM,default=domain-alerts@localhost"`
	MailAPIURL       string `env:"MAIL_API_URL"`
	MailAPIKey       string `env:"MAIL_API_KEY"`
	MailSMTPHost     string `env:"MAIL_SMTP_HOST"`
	MailSMTPPort     string `env:"MAIL_SMTP_PORT,default=587"`
	MailSMTPUsername string `env:"MAIL_SMTP_USERNAME"`
	MailSMTPPassword string `env:"MAIL_SMTP_PASSWORD"`
	MailSMTPTLS      bool   `env:"MAIL_SMTP_TLS,default=false"`

	PushgatewayURL string `env:"PUSHGATEWAY_URL"`

	APIPort             int           `env:"API_PORT,default=8080"`
	RunInterval         time.Duration `env:"RUN_INTERVAL,default=24h"`
	LedgerRetentionDays int           `env:"LEDGER_RETENTION_DAYS,default=365"`

	// DefaultThresholds is a comma separated day list; empty means
	// defaultThresholds.
	DefaultThresholds    string `env:"DEFAULT_THRESHOLDS"`
	DefaultCooldownHours int    `env:"DEFAULT_COOLDOWN_HOURS,default=23"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if strings.TrimSpace(cfg.DefaultThresholds) == "" {
		cfg.DefaultThresholds = defaultThresholds
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.DatabaseDSN) == "":
		return fmt.Errorf("DATABASE_DSN is required")
	case c.WorkerConcurrency < 1:
		return fmt.Errorf("WORKER_CONCURRENCY must be at least 1, got %d", c.WorkerConcurrency)
	case c.LookupTimeout <= 0:
		return fmt.Errorf("LOOKUP_TIMEOUT must be positive, got %s", c.LookupTimeout)
	case c.ChannelTimeout <= 0:
		return fmt.Errorf("CHANNEL_TIMEOUT must be positive, got %s", c.ChannelTimeout)
	case c.BatchTimeout < 0:
		return fmt.Errorf("BATCH_TIMEOUT must not be negative, got %s", c.BatchTimeout)
	case c.RunInterval <= 0:
		return fmt.Errorf("RUN_INTERVAL must be positive, got %s", c.RunInterval)
	case c.DefaultCooldownHours < 0:
		return fmt.Errorf("DEFAULT_COOLDOWN_HOURS must not be negative, got %d", c.DefaultCooldownHours)
	case c.LedgerRetentionDays < 1:
		return fmt.Errorf("LEDGER_RETENTION_DAYS must be at least 1, got %d", c.LedgerRetentionDays)
	}
	return nil
}
