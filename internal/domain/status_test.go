package domain

import (
	"testing"
	"time"
)

func TestResolveStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}
	day := 24 * time.Hour

	tests := []struct {
		name         string
		snapshot     *LookupSnapshot
		wantStatus   Status
		wantDaysLeft *int
	}{
		{
			name:       "nil snapshot is error",
			snapshot:   nil,
			wantStatus: StatusError,
		},
		{
			name:       "available token wins over expiration",
			snapshot:   &LookupSnapshot{ExpirationDate: at(-10 * day), StatusTokens: []string{"ok", "Domain Available"}},
			wantStatus: StatusAvailable,
		},
		{
			name:       "free token is case insensitive",
			snapshot:   &LookupSnapshot{StatusTokens: []string{"free"}},
			wantStatus: StatusAvailable,
		},
		{
			name:       "missing expiration is error",
			snapshot:   &LookupSnapshot{StatusTokens: []string{"clientTransferProhibited"}},
			wantStatus: StatusError,
		},
		{
			name:         "past expiration is expired",
			snapshot:     &LookupSnapshot{ExpirationDate: at(-1 * day)},
			wantStatus:   StatusExpired,
			wantDaysLeft: intPtr(-1),
		},
		{
			name:         "an hour ago floors to minus one",
			snapshot:     &LookupSnapshot{ExpirationDate: at(-time.Hour)},
			wantStatus:   StatusExpired,
			wantDaysLeft: intPtr(-1),
		},
		{
			name:         "later today is zero days",
			snapshot:     &LookupSnapshot{ExpirationDate: at(5 * time.Hour)},
			wantStatus:   StatusExpiringSoon,
			wantDaysLeft: intPtr(0),
		},
		{
			name:         "thirty days is expiring soon",
			snapshot:     &LookupSnapshot{ExpirationDate: at(30*day + time.Hour)},
			wantStatus:   StatusExpiringSoon,
			wantDaysLeft: intPtr(30),
		},
		{
			name:         "thirty one days is active",
			snapshot:     &LookupSnapshot{ExpirationDate: at(31 * day)},
			wantStatus:   StatusActive,
			wantDaysLeft: intPtr(31),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			status, daysLeft := ResolveStatus(tt.snapshot, now)
			if status != tt.wantStatus {
				t.Fatalf("status = %s, want %s", status, tt.wantStatus)
			}
			if (daysLeft == nil) != (tt.wantDaysLeft == nil) {
				t.Fatalf("daysLeft = %v, want %v", daysLeft, tt.wantDaysLeft)
			}
			if daysLeft != nil && *daysLeft != *tt.wantDaysLeft {
				t.Fatalf("daysLeft = %d, want %d", *daysLeft, *tt.wantDaysLeft)
			}
		})
	}
}

func TestResolveStatusPastExpirationAlwaysExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for hours := 1; hours <= 24*400; hours += 7 {
		exp := now.Add(-time.Duration(hours) * time.Hour)
		status, daysLeft := ResolveStatus(&LookupSnapshot{ExpirationDate: &exp}, now)
		if status != StatusExpired {
			t.Fatalf("ResolveStatus(-%dh) = %s, want expired", hours, status)
		}
		if daysLeft == nil || *daysLeft >= 0 {
			t.Fatalf("ResolveStatus(-%dh) daysLeft = %v, want negative", hours, daysLeft)
		}
	}
}

func TestResolveStatusIsReproducible(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 8, 30, 0, 0, time.UTC)
	exp := now.Add(7 * 24 * time.Hour)
	snapshot := &LookupSnapshot{ExpirationDate: &exp, StatusTokens: []string{"ok"}}

	s1, d1 := ResolveStatus(snapshot, now)
	s2, d2 := ResolveStatus(snapshot, now)
	if s1 != s2 || *d1 != *d2 {
		t.Fatalf("ResolveStatus not deterministic: (%s,%d) vs (%s,%d)", s1, *d1, s2, *d2)
	}
}

func TestUrgencyFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		daysLeft *int
		want     Urgency
	}{
		{daysLeft: nil, want: UrgencyNominal},
		{daysLeft: intPtr(-3), want: UrgencySevere},
		{daysLeft: intPtr(0), want: UrgencySevere},
		{daysLeft: intPtr(1), want: UrgencyHigh},
		{daysLeft: intPtr(3), want: UrgencyHigh},
		{daysLeft: intPtr(7), want: UrgencyMedium},
		{daysLeft: intPtr(15), want: UrgencyLow},
		{daysLeft: intPtr(30), want: UrgencyLow},
		{daysLeft: intPtr(90), want: UrgencyNominal},
	}

	for _, tt := range tests {
		if got := UrgencyFor(tt.daysLeft); got != tt.want {
			t.Fatalf("UrgencyFor(%v) = %s, want %s", tt.daysLeft, got, tt.want)
		}
	}
}

func intPtr(v int) *int { return &v }
