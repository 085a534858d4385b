package service

import (
	"context"
	"sync"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/channel"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

var testNow = time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func timePtr(t time.Time) *time.Time { return &t }

type fakeDomainStore struct {
	listActiveFn        func(ctx context.Context) ([]domain.Domain, error)
	updateCheckResultFn func(ctx context.Context, id string, result domain.CheckResult) error

	mu      sync.Mutex
	updates map[string]domain.CheckResult
}

func (f *fakeDomainStore) ListActive(ctx context.Context) ([]domain.Domain, error) {
	if f.listActiveFn != nil {
		return f.listActiveFn(ctx)
	}
	return nil, nil
}

func (f *fakeDomainStore) UpdateCheckResult(ctx context.Context, id string, result domain.CheckResult) error {
	if f.updateCheckResultFn != nil {
		if err := f.updateCheckResultFn(ctx, id, result); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updates == nil {
		f.updates = make(map[string]domain.CheckResult)
	}
	f.updates[id] = result
	return nil
}

func (f *fakeDomainStore) update(id string) (domain.CheckResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.updates[id]
	return r, ok
}

type fakeResolver struct {
	lookupFn func(ctx context.Context, name string) (*domain.LookupSnapshot, error)
}

func (f *fakeResolver) Lookup(ctx context.Context, name string) (*domain.LookupSnapshot, error) {
	if f.lookupFn != nil {
		return f.lookupFn(ctx, name)
	}
	return &domain.LookupSnapshot{}, nil
}

type fakeGroupStore struct {
	activeChannelsFn func(ctx context.Context, groupID string) ([]domain.Channel, error)
}

func (f *fakeGroupStore) ActiveChannels(ctx context.Context, groupID string) ([]domain.Channel, error) {
	if f.activeChannelsFn != nil {
		return f.activeChannelsFn(ctx, groupID)
	}
	return nil, nil
}

// memoryLedger keeps attempts in memory with the same WasSentSince
// semantics as the database ledger.
type memoryLedger struct {
	appendFn       func(ctx context.Context, a *domain.AlertAttempt) error
	wasSentSinceFn func(ctx context.Context, domainID string, nt domain.NotificationType, since time.Time) (bool, error)

	mu       sync.Mutex
	attempts []domain.AlertAttempt
}

func (l *memoryLedger) Append(ctx context.Context, a *domain.AlertAttempt) error {
	if l.appendFn != nil {
		if err := l.appendFn(ctx, a); err != nil {
			return err
		}
	}
	if err := a.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts = append(l.attempts, *a)
	return nil
}

func (l *memoryLedger) WasSentSince(ctx context.Context, domainID string, nt domain.NotificationType, since time.Time) (bool, error) {
	if l.wasSentSinceFn != nil {
		return l.wasSentSinceFn(ctx, domainID, nt, since)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, a := range l.attempts {
		if a.DomainID == domainID && a.NotificationType == nt &&
			a.Status == domain.AttemptStatusSent && !a.SentAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (l *memoryLedger) rows() []domain.AlertAttempt {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.AlertAttempt, len(l.attempts))
	copy(out, l.attempts)
	return out
}

type fakeChannel struct {
	channelType domain.ChannelType
	sendFn      func(ctx context.Context, cfg channel.Config, msg channel.Message) error

	mu    sync.Mutex
	calls []channel.Message
}

func (f *fakeChannel) Type() domain.ChannelType { return f.channelType }

func (f *fakeChannel) Send(ctx context.Context, cfg channel.Config, msg channel.Message) error {
	f.mu.Lock()
	f.calls = append(f.calls, msg)
	f.mu.Unlock()

	if f.sendFn != nil {
		return f.sendFn(ctx, cfg, msg)
	}
	return nil
}

func (f *fakeChannel) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeRateLimiter struct {
	allowFn func(ctx context.Context, channelType domain.ChannelType) (bool, error)
	waitFn  func(ctx context.Context, channelType domain.ChannelType) error
}

func (f *fakeRateLimiter) Allow(ctx context.Context, channelType domain.ChannelType) (bool, error) {
	if f.allowFn != nil {
		return f.allowFn(ctx, channelType)
	}
	return true, nil
}

func (f *fakeRateLimiter) Wait(ctx context.Context, channelType domain.ChannelType) error {
	if f.waitFn != nil {
		return f.waitFn(ctx, channelType)
	}
	return nil
}

type fakeSettingsStore struct {
	values map[string]string
	getFn  func(ctx context.Context, key string) (string, error)
}

func (f *fakeSettingsStore) Get(ctx context.Context, key string) (string, error) {
	if f.getFn != nil {
		return f.getFn(ctx, key)
	}
	v, ok := f.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

type fakePurger struct {
	deleteOlderThanFn func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (f *fakePurger) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if f.deleteOlderThanFn != nil {
		return f.deleteOlderThanFn(ctx, cutoff)
	}
	return 0, nil
}

// slackAndWebhookChannels is a group with one Slack and one webhook channel.
func slackAndWebhookChannels() []domain.Channel {
	return []domain.Channel{
		{
			ID:          "ch-slack",
			GroupID:     "grp-1",
			ChannelType: domain.ChannelTypeSlack,
			Config:      map[string]string{"webhook_url": "https://hooks.slack.test/services/x"},
			IsActive:    true,
		},
		{
			ID:          "ch-webhook",
			GroupID:     "grp-1",
			ChannelType: domain.ChannelTypeWebhook,
			Config:      map[string]string{"url": "https://alerts.example.test/hook"},
			IsActive:    true,
		},
	}
}

func testDomain(id string, name string, expiresIn time.Duration) domain.Domain {
	return domain.Domain{
		ID:                  id,
		Name:                name,
		Registrar:           "Example Registrar",
		ExpirationDate:      timePtr(testNow.Add(expiresIn)),
		Status:              domain.StatusActive,
		NotificationGroupID: strPtr("grp-1"),
		IsActive:            true,
	}
}
