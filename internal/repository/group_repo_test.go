package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

type stubGroupRepo struct {
	calls int
	fn    func(groupID string) ([]domain.Channel, error)
}

func (s *stubGroupRepo) ActiveChannels(_ context.Context, groupID string) ([]domain.Channel, error) {
	s.calls++
	return s.fn(groupID)
}

func TestCachedGroupRepoMemoizesPerGroup(t *testing.T) {
	t.Parallel()

	stub := &stubGroupRepo{fn: func(groupID string) ([]domain.Channel, error) {
		return []domain.Channel{{ID: "c-" + groupID, GroupID: groupID, ChannelType: domain.ChannelTypeEmail}}, nil
	}}
	repo := NewCachedGroupRepo(stub, time.Minute)

	for i := 0; i < 3; i++ {
		channels, err := repo.ActiveChannels(context.Background(), "g-1")
		if err != nil {
			t.Fatalf("ActiveChannels() error = %v", err)
		}
		if len(channels) != 1 || channels[0].ID != "c-g-1" {
			t.Fatalf("ActiveChannels() = %+v", channels)
		}
	}
	if _, err := repo.ActiveChannels(context.Background(), "g-2"); err != nil {
		t.Fatalf("ActiveChannels() error = %v", err)
	}

	if stub.calls != 2 {
		t.Fatalf("calls = %d, want 2", stub.calls)
	}

	repo.Flush()
	if _, err := repo.ActiveChannels(context.Background(), "g-1"); err != nil {
		t.Fatalf("ActiveChannels() error = %v", err)
	}
	if stub.calls != 3 {
		t.Fatalf("calls after Flush = %d, want 3", stub.calls)
	}
}

func TestCachedGroupRepoDoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	fail := true
	stub := &stubGroupRepo{fn: func(string) ([]domain.Channel, error) {
		if fail {
			return nil, errors.New("db down")
		}
		return nil, nil
	}}
	repo := NewCachedGroupRepo(stub, time.Minute)

	if _, err := repo.ActiveChannels(context.Background(), "g-1"); err == nil {
		t.Fatal("ActiveChannels() should propagate the store error")
	}

	fail = false
	if _, err := repo.ActiveChannels(context.Background(), "g-1"); err != nil {
		t.Fatalf("ActiveChannels() error = %v", err)
	}
	if stub.calls != 2 {
		t.Fatalf("calls = %d, want 2", stub.calls)
	}
}
