package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/channel"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
	"github.com/kursadbilgin/domain-alerts/internal/lock"
	"github.com/kursadbilgin/domain-alerts/internal/observability"
	"github.com/kursadbilgin/domain-alerts/internal/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DispatchOutcome describes how a due or non-due domain was handled.
type DispatchOutcome string

const (
	OutcomeNotDue     DispatchOutcome = "not_due"
	OutcomeCooldown   DispatchOutcome = "cooldown"
	OutcomeLocked     DispatchOutcome = "locked"
	OutcomeNoGroup    DispatchOutcome = "no_group"
	OutcomeNoChannels DispatchOutcome = "no_channels"
	OutcomeDispatched DispatchOutcome = "dispatched"
	OutcomeError      DispatchOutcome = "error"
)

// Suppressed reports whether a due alert was withheld by dedup.
func (o DispatchOutcome) Suppressed() bool {
	return o == OutcomeCooldown || o == OutcomeLocked
}

// DispatchResult is the outcome of one Dispatch call.
type DispatchResult struct {
	Bucket  domain.NotificationType
	Outcome DispatchOutcome
	Sent    int
	Failed  int
	// Errors counts store failures: the dedup check, the channel list or a
	// ledger append.
	Errors int
	Err    error
}

type DispatcherDeps struct {
	Ledger   Ledger
	Groups   GroupStore
	Registry ChannelRegistry
	Limiter  ratelimit.RateLimiter
	Locker   lock.Locker
}

// Dispatcher evaluates one domain against the threshold policy and fans a
// due alert out to every active channel of its group.
type Dispatcher struct {
	ledger   Ledger
	groups   GroupStore
	registry ChannelRegistry
	limiter  ratelimit.RateLimiter
	locker   lock.Locker
	cfg      RunConfig
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewDispatcher(deps DispatcherDeps, cfg RunConfig, logger *zap.Logger) (*Dispatcher, error) {
	if deps.Ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if deps.Groups == nil {
		return nil, fmt.Errorf("group store is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("channel registry is required")
	}
	if deps.Locker == nil {
		deps.Locker = lock.NewLocalLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		ledger:   deps.Ledger,
		groups:   deps.Groups,
		registry: deps.Registry,
		limiter:  deps.Limiter,
		locker:   deps.Locker,
		cfg:      cfg.withDefaults(),
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (d *Dispatcher) SetMetrics(metrics *observability.Metrics) {
	if d == nil {
		return
	}
	d.metrics = metrics
}

// Dispatch runs policy, dedup and fan-out for a domain whose status was
// just refreshed. It never returns early on a single channel failure.
func (d *Dispatcher) Dispatch(ctx context.Context, dom domain.Domain, daysLeft *int) DispatchResult {
	bucket, due := d.cfg.Policy.Evaluate(daysLeft)
	if !due {
		return DispatchResult{Outcome: OutcomeNotDue}
	}

	result := DispatchResult{Bucket: bucket}
	logger := observability.WithContextLogger(d.logger, ctx).With(
		zap.String("domainId", dom.ID),
		zap.String("domain", dom.Name),
		zap.String("notificationType", bucket.String()),
	)

	unlock, err := d.locker.TryLock(ctx, dom.ID+":"+bucket.String(), d.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLocked) {
			logger.Info("alert is being dispatched elsewhere, skipping")
			d.metrics.IncAlertSuppressed(string(OutcomeLocked))
			result.Outcome = OutcomeLocked
			return result
		}
		return d.fail(logger, result, fmt.Errorf("failed to acquire dispatch lock: %w", err))
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to release dispatch lock", zap.Error(err))
		}
	}()

	since := d.now().UTC().Add(-d.cfg.Cooldown)
	alreadySent, err := d.ledger.WasSentSince(ctx, dom.ID, bucket, since)
	if err != nil {
		return d.fail(logger, result, fmt.Errorf("failed to check ledger: %w", err))
	}
	if alreadySent {
		logger.Debug("alert already sent within cooldown")
		d.metrics.IncAlertSuppressed(string(OutcomeCooldown))
		result.Outcome = OutcomeCooldown
		return result
	}

	if dom.NotificationGroupID == nil || strings.TrimSpace(*dom.NotificationGroupID) == "" {
		logger.Info("domain has no notification group, skipping alert")
		result.Outcome = OutcomeNoGroup
		return result
	}

	channels, err := d.groups.ActiveChannels(ctx, *dom.NotificationGroupID)
	if err != nil {
		return d.fail(logger, result, fmt.Errorf("failed to load group channels: %w", err))
	}
	if len(channels) == 0 {
		logger.Info("notification group has no active channels, skipping alert",
			zap.String("groupId", *dom.NotificationGroupID),
		)
		result.Outcome = OutcomeNoChannels
		return result
	}

	msg := BuildMessage(dom, daysLeft, bucket)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, ch := range channels {
		ch := ch
		g.Go(func() error {
			sendErr, appendErr := d.sendAndRecord(ctx, logger, dom, bucket, ch, msg)

			mu.Lock()
			defer mu.Unlock()
			if sendErr != nil {
				result.Failed++
			} else {
				result.Sent++
			}
			if appendErr != nil {
				result.Errors++
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Outcome = OutcomeDispatched
	logger.Info("alert dispatched",
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)
	return result
}

// sendAndRecord sends through one channel and appends its ledger row
// whatever the outcome.
func (d *Dispatcher) sendAndRecord(
	ctx context.Context,
	logger *zap.Logger,
	dom domain.Domain,
	bucket domain.NotificationType,
	ch domain.Channel,
	msg channel.Message,
) (sendErr error, appendErr error) {
	logger = logger.With(zap.String("channelId", ch.ID), zap.String("channel", ch.ChannelType.String()))

	start := d.now()
	sendErr = d.send(ctx, ch, msg)
	d.metrics.ObserveChannelSendDuration(ch.ChannelType.String(), d.now().Sub(start))

	attempt := &domain.AlertAttempt{
		DomainID:         dom.ID,
		NotificationType: bucket,
		ChannelType:      ch.ChannelType,
		Message:          msg.Text,
		Status:           domain.AttemptStatusSent,
		SentAt:           d.now().UTC(),
	}

	if sendErr != nil {
		errMsg := sendErr.Error()
		attempt.Status = domain.AttemptStatusFailed
		attempt.ErrorMessage = &errMsg
		d.metrics.IncAlertFailed(ch.ChannelType.String(), channel.FailureReason(sendErr))
		logger.Warn("channel send failed",
			zap.Bool("transient", channel.IsTransient(sendErr)),
			zap.Error(sendErr),
		)
	} else {
		d.metrics.IncAlertSent(ch.ChannelType.String())
	}

	if err := d.ledger.Append(ctx, attempt); err != nil {
		logger.Error("failed to record alert attempt", zap.Error(err))
		return sendErr, err
	}
	return sendErr, nil
}

func (d *Dispatcher) send(ctx context.Context, ch domain.Channel, msg channel.Message) error {
	if !ch.ChannelType.IsValid() {
		return fmt.Errorf("%w: unknown channel type %q", channel.ErrInvalidConfig, ch.ChannelType)
	}

	cfg, err := channel.ParseConfig(ch.ChannelType, ch.Config)
	if err != nil {
		return err
	}

	impl, err := d.registry.Lookup(ch.ChannelType)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.ChannelTimeout)
	defer cancel()

	if d.limiter != nil {
		if err := d.limiter.Wait(sendCtx, ch.ChannelType); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	return impl.Send(sendCtx, cfg, msg)
}

func (d *Dispatcher) fail(logger *zap.Logger, result DispatchResult, err error) DispatchResult {
	logger.Error("alert dispatch failed", zap.Error(err))
	result.Outcome = OutcomeError
	result.Errors++
	result.Err = err
	return result
}
