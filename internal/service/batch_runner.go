package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
	"github.com/kursadbilgin/domain-alerts/internal/observability"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	runOutcomeCompleted = "completed"
	runOutcomeDeadline  = "deadline_exceeded"
	runOutcomeCancelled = "cancelled"
	runOutcomeFailed    = "failed"
)

// Summary is the result of one batch run.
type Summary struct {
	RunID               string    `json:"runId"`
	Checked             int64     `json:"checked"`
	Updated             int64     `json:"updated"`
	NotificationsSent   int64     `json:"notificationsSent"`
	NotificationsFailed int64     `json:"notificationsFailed"`
	Suppressed          int64     `json:"suppressed"`
	Skipped             int64     `json:"skipped"`
	Errors              int64     `json:"errors"`
	StartedAt           time.Time `json:"startedAt"`
	FinishedAt          time.Time `json:"finishedAt"`
	DeadlineExceeded    bool      `json:"deadlineExceeded"`
}

type runCounters struct {
	checked    atomic.Int64
	updated    atomic.Int64
	sent       atomic.Int64
	failed     atomic.Int64
	suppressed atomic.Int64
	skipped    atomic.Int64
	errors     atomic.Int64
}

// BatchRunner checks every active domain once and dispatches due alerts.
type BatchRunner struct {
	domains    DomainStore
	resolver   Resolver
	dispatcher *Dispatcher
	cfg        RunConfig
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

func NewBatchRunner(
	domains DomainStore,
	resolver Resolver,
	dispatcher *Dispatcher,
	cfg RunConfig,
	logger *zap.Logger,
) (*BatchRunner, error) {
	if domains == nil {
		return nil, fmt.Errorf("domain store is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BatchRunner{
		domains:    domains,
		resolver:   resolver,
		dispatcher: dispatcher,
		cfg:        cfg.withDefaults(),
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (r *BatchRunner) SetMetrics(metrics *observability.Metrics) {
	if r == nil {
		return
	}
	r.metrics = metrics
	r.dispatcher.SetMetrics(metrics)
}

// Run processes all active domains. The returned error is set only when the
// domain set cannot be loaded; per-domain and per-channel failures are
// reported through the summary counters.
func (r *BatchRunner) Run(ctx context.Context) (Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	summary := Summary{
		RunID:     uuid.NewString(),
		StartedAt: r.now().UTC(),
	}
	ctx = observability.WithRunID(ctx, summary.RunID)
	logger := observability.WithContextLogger(r.logger, ctx)

	domains, err := r.domains.ListActive(ctx)
	if err != nil {
		summary.FinishedAt = r.now().UTC()
		r.metrics.ObserveBatchRun(runOutcomeFailed, summary.FinishedAt.Sub(summary.StartedAt), summary.FinishedAt)
		logger.Error("failed to load active domains", zap.Error(err))
		return summary, fmt.Errorf("failed to load active domains: %w", err)
	}

	logger.Info("batch run started",
		zap.Int("domains", len(domains)),
		zap.Int("concurrency", r.cfg.Concurrency),
		zap.Ints("thresholds", r.cfg.Policy.Days()),
		zap.Duration("cooldown", r.cfg.Cooldown),
	)

	runCtx := ctx
	if r.cfg.BatchTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.cfg.BatchTimeout)
		defer cancel()
	}

	var (
		counters runCounters
		g        errgroup.Group
	)
	g.SetLimit(r.cfg.Concurrency)

	for i := range domains {
		if runCtx.Err() != nil {
			counters.skipped.Add(int64(len(domains) - i))
			break
		}

		dom := domains[i]
		g.Go(func() error {
			if runCtx.Err() != nil {
				counters.skipped.Add(1)
				return nil
			}
			// Started domains finish even if the run is cancelled; per-call
			// timeouts bound them.
			r.processDomain(context.WithoutCancel(runCtx), dom, &counters)
			return nil
		})
	}
	_ = g.Wait()

	summary.Checked = counters.checked.Load()
	summary.Updated = counters.updated.Load()
	summary.NotificationsSent = counters.sent.Load()
	summary.NotificationsFailed = counters.failed.Load()
	summary.Suppressed = counters.suppressed.Load()
	summary.Skipped = counters.skipped.Load()
	summary.Errors = counters.errors.Load()
	summary.DeadlineExceeded = errors.Is(runCtx.Err(), context.DeadlineExceeded) && summary.Skipped > 0
	summary.FinishedAt = r.now().UTC()

	outcome := runOutcomeCompleted
	switch {
	case summary.DeadlineExceeded:
		outcome = runOutcomeDeadline
	case summary.Skipped > 0:
		outcome = runOutcomeCancelled
	}
	r.metrics.ObserveBatchRun(outcome, summary.FinishedAt.Sub(summary.StartedAt), summary.FinishedAt)

	logger.Info("batch run finished",
		zap.Int64("checked", summary.Checked),
		zap.Int64("updated", summary.Updated),
		zap.Int64("notificationsSent", summary.NotificationsSent),
		zap.Int64("notificationsFailed", summary.NotificationsFailed),
		zap.Int64("suppressed", summary.Suppressed),
		zap.Int64("skipped", summary.Skipped),
		zap.Int64("errors", summary.Errors),
		zap.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
	)

	return summary, nil
}

func (r *BatchRunner) processDomain(ctx context.Context, dom domain.Domain, counters *runCounters) {
	r.metrics.IncDomainsInFlight()
	defer r.metrics.DecDomainsInFlight()

	counters.checked.Add(1)
	logger := observability.WithContextLogger(r.logger, ctx).With(
		zap.String("domainId", dom.ID),
		zap.String("domain", dom.Name),
	)

	lookupCtx, cancel := context.WithTimeout(ctx, r.cfg.LookupTimeout)
	snapshot, err := r.resolver.Lookup(lookupCtx, dom.Name)
	cancel()

	now := r.now().UTC()
	if err != nil {
		r.metrics.IncLookup("error")
		counters.errors.Add(1)
		logger.Warn("domain lookup failed", zap.Error(err))

		// Keep the last known registration data, only the status and check
		// time move.
		failed := domain.CheckResult{
			Registrar:      dom.Registrar,
			ExpirationDate: dom.ExpirationDate,
			Status:         domain.StatusError,
			RawLookupData:  dom.RawLookupData,
			LastChecked:    now,
		}
		if err := r.domains.UpdateCheckResult(ctx, dom.ID, failed); err != nil {
			counters.errors.Add(1)
			logger.Error("failed to persist lookup failure", zap.Error(err))
		}
		return
	}
	r.metrics.IncLookup("success")

	status, daysLeft := domain.ResolveStatus(snapshot, now)
	result := domain.CheckResult{
		Registrar:      snapshot.Registrar,
		ExpirationDate: snapshot.ExpirationDate,
		Status:         status,
		RawLookupData:  snapshot,
		LastChecked:    now,
	}
	if err := r.domains.UpdateCheckResult(ctx, dom.ID, result); err != nil {
		counters.errors.Add(1)
		logger.Error("failed to persist check result", zap.Error(err))
		return
	}
	counters.updated.Add(1)

	dom.Registrar = result.Registrar
	dom.ExpirationDate = result.ExpirationDate
	dom.Status = result.Status
	dom.RawLookupData = result.RawLookupData
	dom.LastChecked = &now

	dispatched := r.dispatcher.Dispatch(ctx, dom, daysLeft)
	counters.sent.Add(int64(dispatched.Sent))
	counters.failed.Add(int64(dispatched.Failed))
	counters.errors.Add(int64(dispatched.Errors + dispatched.Failed))
	if dispatched.Outcome.Suppressed() {
		counters.suppressed.Add(1)
	}
}
