package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

const (
	SettingNotificationThresholds    = "notification_thresholds"
	SettingNotificationCooldownHours = "notification_cooldown_hours"

	DefaultCooldown       = 23 * time.Hour
	DefaultConcurrency    = 10
	DefaultLookupTimeout  = 30 * time.Second
	DefaultChannelTimeout = 10 * time.Second
	DefaultBatchTimeout   = 2 * time.Hour
	defaultLockTTL        = 2 * time.Minute
)

// RunConfig is the explicit configuration of one batch run.
type RunConfig struct {
	Policy         domain.ThresholdPolicy
	Cooldown       time.Duration
	Concurrency    int
	LookupTimeout  time.Duration
	ChannelTimeout time.Duration
	// BatchTimeout bounds when new domains may start; zero disables it.
	BatchTimeout time.Duration
	LockTTL      time.Duration
}

func DefaultRunConfig() RunConfig {
	policy, _ := domain.NewThresholdPolicy(domain.DefaultThresholdDays)
	return RunConfig{
		Policy:         policy,
		Cooldown:       DefaultCooldown,
		Concurrency:    DefaultConcurrency,
		LookupTimeout:  DefaultLookupTimeout,
		ChannelTimeout: DefaultChannelTimeout,
		BatchTimeout:   DefaultBatchTimeout,
		LockTTL:        defaultLockTTL,
	}
}

func (c RunConfig) withDefaults() RunConfig {
	def := DefaultRunConfig()
	if len(c.Policy.Days()) == 0 {
		c.Policy = def.Policy
	}
	if c.Cooldown < 0 {
		c.Cooldown = def.Cooldown
	}
	if c.Concurrency < 1 {
		c.Concurrency = def.Concurrency
	}
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = def.LookupTimeout
	}
	if c.ChannelTimeout <= 0 {
		c.ChannelTimeout = def.ChannelTimeout
	}
	if c.BatchTimeout < 0 {
		c.BatchTimeout = 0
	}
	if c.LockTTL <= 0 {
		// The lock must outlive the slowest dispatch of one bucket.
		c.LockTTL = max(defaultLockTTL, 2*c.ChannelTimeout)
	}
	return c
}

// LoadRunConfig overlays the threshold list and cooldown stored in settings
// on base. Unset keys keep base values; unreadable or malformed settings
// are startup failures.
func LoadRunConfig(ctx context.Context, settings SettingsStore, base RunConfig) (RunConfig, error) {
	cfg := base.withDefaults()
	if settings == nil {
		return cfg, nil
	}

	raw, err := settings.Get(ctx, SettingNotificationThresholds)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return RunConfig{}, fmt.Errorf("failed to read %s: %w", SettingNotificationThresholds, err)
	default:
		days, err := domain.ParseThresholdDays(raw)
		if err != nil {
			return RunConfig{}, fmt.Errorf("invalid %s setting: %w", SettingNotificationThresholds, err)
		}
		policy, err := domain.NewThresholdPolicy(days)
		if err != nil {
			return RunConfig{}, fmt.Errorf("invalid %s setting: %w", SettingNotificationThresholds, err)
		}
		cfg.Policy = policy
	}

	raw, err = settings.Get(ctx, SettingNotificationCooldownHours)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return RunConfig{}, fmt.Errorf("failed to read %s: %w", SettingNotificationCooldownHours, err)
	default:
		hours, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || hours < 0 {
			return RunConfig{}, fmt.Errorf("%w: invalid %s setting %q", domain.ErrValidation, SettingNotificationCooldownHours, raw)
		}
		cfg.Cooldown = time.Duration(hours) * time.Hour
	}

	return cfg, nil
}
