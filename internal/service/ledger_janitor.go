package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/observability"
	"go.uber.org/zap"
)

const (
	defaultJanitorInterval = 24 * time.Hour
	DefaultLedgerRetention = 365 * 24 * time.Hour
)

// LedgerJanitor periodically deletes ledger rows older than the retention
// window. Rows inside the cooldown window are never eligible.
type LedgerJanitor struct {
	ledger    LedgerPurger
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewLedgerJanitor(
	ledger LedgerPurger,
	retention time.Duration,
	interval time.Duration,
	logger *zap.Logger,
) (*LedgerJanitor, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if retention <= 0 {
		retention = DefaultLedgerRetention
	}
	if retention < DefaultCooldown {
		return nil, fmt.Errorf("retention %s is shorter than the alert cooldown", retention)
	}
	if interval <= 0 {
		interval = defaultJanitorInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LedgerJanitor{
		ledger:    ledger,
		retention: retention,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}, nil
}

func (j *LedgerJanitor) SetMetrics(metrics *observability.Metrics) {
	if j == nil {
		return
	}
	j.metrics = metrics
}

func (j *LedgerJanitor) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := j.Prune(ctx); err != nil && ctx.Err() == nil {
		j.logger.Error("ledger janitor initial prune failed", zap.Error(err))
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := j.Prune(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				j.logger.Error("ledger janitor prune failed", zap.Error(err))
			}
		}
	}
}

// Prune deletes rows older than the retention window and returns how many
// were removed.
func (j *LedgerJanitor) Prune(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.retention)

	deleted, err := j.ledger.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune alert ledger: %w", err)
	}

	j.metrics.AddLedgerPruned(deleted)
	if deleted > 0 {
		j.logger.Info("pruned alert ledger",
			zap.Int64("rows", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return deleted, nil
}
