package domain

import (
	"errors"
	"slices"
	"testing"
)

func TestThresholdPolicyEvaluate(t *testing.T) {
	t.Parallel()

	policy, err := NewThresholdPolicy([]int{30, 15, 7, 3, 1})
	if err != nil {
		t.Fatalf("NewThresholdPolicy() error = %v", err)
	}

	tests := []struct {
		name      string
		daysLeft  *int
		wantType  NotificationType
		wantFired bool
	}{
		{name: "unknown expiration", daysLeft: nil},
		{name: "expired yesterday", daysLeft: intPtr(-1), wantType: NotificationTypeExpired, wantFired: true},
		{name: "expires today", daysLeft: intPtr(0), wantType: NotificationTypeExpired, wantFired: true},
		{name: "exact seven", daysLeft: intPtr(7), wantType: "expiring_in_7_days", wantFired: true},
		{name: "exact one", daysLeft: intPtr(1), wantType: "expiring_in_1_days", wantFired: true},
		{name: "inside window but not exact", daysLeft: intPtr(6)},
		{name: "far away", daysLeft: intPtr(120)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, fired := policy.Evaluate(tt.daysLeft)
			if fired != tt.wantFired {
				t.Fatalf("Evaluate() fired = %v, want %v", fired, tt.wantFired)
			}
			if got != tt.wantType {
				t.Fatalf("Evaluate() = %q, want %q", got, tt.wantType)
			}
		})
	}
}

func TestThresholdPolicyOnlyExactMatchesFire(t *testing.T) {
	t.Parallel()

	days := []int{30, 15, 7, 3, 1}
	policy, err := NewThresholdPolicy(days)
	if err != nil {
		t.Fatalf("NewThresholdPolicy() error = %v", err)
	}

	fired := 0
	for d := 1; d <= 365; d++ {
		got, ok := policy.Evaluate(intPtr(d))
		if slices.Contains(days, d) {
			if !ok || got != ExpiringInType(d) {
				t.Fatalf("Evaluate(%d) = (%q, %v), want (%q, true)", d, got, ok, ExpiringInType(d))
			}
			fired++
			continue
		}
		if ok {
			t.Fatalf("Evaluate(%d) fired %q, want no bucket", d, got)
		}
	}
	if fired != len(days) {
		t.Fatalf("fired %d buckets, want %d", fired, len(days))
	}
}

func TestNewThresholdPolicyNormalizes(t *testing.T) {
	t.Parallel()

	policy, err := NewThresholdPolicy([]int{3, 30, 7, 3})
	if err != nil {
		t.Fatalf("NewThresholdPolicy() error = %v", err)
	}
	if got, want := policy.Days(), []int{30, 7, 3}; !slices.Equal(got, want) {
		t.Fatalf("Days() = %v, want %v", got, want)
	}

	if _, err := NewThresholdPolicy([]int{7, 0}); !errors.Is(err, ErrValidation) {
		t.Fatalf("NewThresholdPolicy() error = %v, want ErrValidation", err)
	}
}

func TestParseThresholdDays(t *testing.T) {
	t.Parallel()

	got, err := ParseThresholdDays(" 30, 15,7 ,3,1 ")
	if err != nil {
		t.Fatalf("ParseThresholdDays() error = %v", err)
	}
	if want := []int{30, 15, 7, 3, 1}; !slices.Equal(got, want) {
		t.Fatalf("ParseThresholdDays() = %v, want %v", got, want)
	}

	for _, raw := range []string{"", "30,abc", "7,-1", " , "} {
		if _, err := ParseThresholdDays(raw); !errors.Is(err, ErrValidation) {
			t.Fatalf("ParseThresholdDays(%q) error = %v, want ErrValidation", raw, err)
		}
	}
}
