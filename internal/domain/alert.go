package domain

import (
	"fmt"
	"strings"
	"time"
)

// AttemptStatus is the outcome of a single channel send.
type AttemptStatus string

const (
	AttemptStatusSent   AttemptStatus = "sent"
	AttemptStatusFailed AttemptStatus = "failed"
)

func (s AttemptStatus) String() string { return string(s) }

func (s AttemptStatus) IsValid() bool {
	switch s {
	case AttemptStatusSent, AttemptStatusFailed:
		return true
	}
	return false
}

// AlertAttempt is one immutable ledger row: a single send of one alert bucket
// for one domain through one channel.
type AlertAttempt struct {
	ID               string
	DomainID         string
	NotificationType NotificationType
	ChannelType      ChannelType
	Message          string
	Status           AttemptStatus
	ErrorMessage     *string
	SentAt           time.Time
}

func (a *AlertAttempt) Validate() error {
	if strings.TrimSpace(a.DomainID) == "" {
		return fmt.Errorf("%w: domain id is required", ErrValidation)
	}
	if strings.TrimSpace(a.NotificationType.String()) == "" {
		return fmt.Errorf("%w: notification type is required", ErrValidation)
	}
	if !a.ChannelType.IsValid() {
		return fmt.Errorf("%w: invalid channel type %q", ErrValidation, a.ChannelType)
	}
	if !a.Status.IsValid() {
		return fmt.Errorf("%w: invalid attempt status %q", ErrValidation, a.Status)
	}
	if a.SentAt.IsZero() {
		return fmt.Errorf("%w: sent_at is required", ErrValidation)
	}
	return nil
}
