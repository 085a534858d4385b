package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

func TestRunConfigWithDefaults(t *testing.T) {
	t.Parallel()

	cfg := RunConfig{Cooldown: -time.Hour, BatchTimeout: -time.Second, ChannelTimeout: 5 * time.Minute}.withDefaults()

	if !slices.Equal(cfg.Policy.Days(), domain.DefaultThresholdDays) {
		t.Fatalf("thresholds = %v, want %v", cfg.Policy.Days(), domain.DefaultThresholdDays)
	}
	if cfg.Cooldown != DefaultCooldown {
		t.Fatalf("cooldown = %s, want %s", cfg.Cooldown, DefaultCooldown)
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Fatalf("concurrency = %d, want %d", cfg.Concurrency, DefaultConcurrency)
	}
	if cfg.LookupTimeout != DefaultLookupTimeout {
		t.Fatalf("lookup timeout = %s, want %s", cfg.LookupTimeout, DefaultLookupTimeout)
	}
	if cfg.BatchTimeout != 0 {
		t.Fatalf("batch timeout = %s, want disabled", cfg.BatchTimeout)
	}
	if cfg.LockTTL != 10*time.Minute {
		t.Fatalf("lock ttl = %s, want %s", cfg.LockTTL, 10*time.Minute)
	}
}

func TestLoadRunConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		values       map[string]string
		wantDays     []int
		wantCooldown time.Duration
		wantErr      bool
	}{
		{
			name:         "no settings keeps defaults",
			values:       map[string]string{},
			wantDays:     []int{30, 15, 7, 3, 1},
			wantCooldown: DefaultCooldown,
		},
		{
			name: "settings override",
			values: map[string]string{
				SettingNotificationThresholds:    "1, 14,60,14",
				SettingNotificationCooldownHours: "12",
			},
			wantDays:     []int{60, 14, 1},
			wantCooldown: 12 * time.Hour,
		},
		{
			name:         "zero cooldown",
			values:       map[string]string{SettingNotificationCooldownHours: "0"},
			wantDays:     []int{30, 15, 7, 3, 1},
			wantCooldown: 0,
		},
		{
			name:    "malformed thresholds",
			values:  map[string]string{SettingNotificationThresholds: "30,soon"},
			wantErr: true,
		},
		{
			name:    "negative threshold",
			values:  map[string]string{SettingNotificationThresholds: "30,-1"},
			wantErr: true,
		},
		{
			name:    "malformed cooldown",
			values:  map[string]string{SettingNotificationCooldownHours: "a day"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := LoadRunConfig(context.Background(), &fakeSettingsStore{values: tt.values}, DefaultRunConfig())
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LoadRunConfig() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadRunConfig() error = %v", err)
			}
			if !slices.Equal(cfg.Policy.Days(), tt.wantDays) {
				t.Fatalf("thresholds = %v, want %v", cfg.Policy.Days(), tt.wantDays)
			}
			if cfg.Cooldown != tt.wantCooldown {
				t.Fatalf("cooldown = %s, want %s", cfg.Cooldown, tt.wantCooldown)
			}
		})
	}
}

func TestLoadRunConfigStoreFailure(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("relation \"settings\" does not exist")
	_, err := LoadRunConfig(context.Background(), &fakeSettingsStore{
		getFn: func(ctx context.Context, key string) (string, error) {
			return "", storeErr
		},
	}, DefaultRunConfig())
	if !errors.Is(err, storeErr) {
		t.Fatalf("LoadRunConfig() error = %v, want %v", err, storeErr)
	}
}

func TestLoadRunConfigWithoutStore(t *testing.T) {
	t.Parallel()

	cfg, err := LoadRunConfig(context.Background(), nil, RunConfig{Concurrency: 4})
	if err != nil {
		t.Fatalf("LoadRunConfig() error = %v", err)
	}
	if cfg.Concurrency != 4 {
		t.Fatalf("concurrency = %d, want 4", cfg.Concurrency)
	}
}
