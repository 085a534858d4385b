package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of a monitored domain.
type Status string

const (
	StatusActive       Status = "active"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
	StatusAvailable    Status = "available"
	StatusError        Status = "error"
	StatusInactive     Status = "inactive"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusExpiringSoon, StatusExpired, StatusAvailable, StatusError, StatusInactive:
		return true
	}
	return false
}

func ParseStatusFromString(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
	}
	return st, nil
}

// Domain is a registered name under expiration monitoring.
type Domain struct {
	ID                  string
	Name                string
	Registrar           string
	ExpirationDate      *time.Time
	Status              Status
	RawLookupData       *LookupSnapshot
	NotificationGroupID *string
	IsActive            bool
	LastChecked         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CheckResult is the set of columns a batch run writes back for a domain.
// It is persisted as a single update so a domain is never left half-refreshed.
type CheckResult struct {
	Registrar      string
	ExpirationDate *time.Time
	Status         Status
	RawLookupData  *LookupSnapshot
	LastChecked    time.Time
}

// LookupSnapshot is point-in-time registration data for a domain.
type LookupSnapshot struct {
	Registrar      string     `json:"registrar,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	StatusTokens   []string   `json:"status_tokens,omitempty"`
	Source         string     `json:"source,omitempty"`
	FetchedAt      time.Time  `json:"fetched_at"`
}
