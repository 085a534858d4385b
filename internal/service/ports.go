package service

import (
	"context"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/channel"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

// Resolver fetches registration data for a domain name.
type Resolver interface {
	Lookup(ctx context.Context, name string) (*domain.LookupSnapshot, error)
}

type DomainStore interface {
	ListActive(ctx context.Context) ([]domain.Domain, error)
	UpdateCheckResult(ctx context.Context, id string, result domain.CheckResult) error
}

type GroupStore interface {
	ActiveChannels(ctx context.Context, groupID string) ([]domain.Channel, error)
}

// Ledger is the append-only record of alert attempts.
type Ledger interface {
	Append(ctx context.Context, a *domain.AlertAttempt) error
	WasSentSince(ctx context.Context, domainID string, notificationType domain.NotificationType, since time.Time) (bool, error)
}

// LedgerPurger removes ledger rows older than a cutoff.
type LedgerPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
}

type ChannelRegistry interface {
	Lookup(channelType domain.ChannelType) (channel.Channel, error)
}
