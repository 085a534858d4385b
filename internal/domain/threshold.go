package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// NotificationType identifies the alert bucket a domain matched in a run.
type NotificationType string

const NotificationTypeExpired NotificationType = "expired"

func (t NotificationType) String() string { return string(t) }

// ExpiringInType returns the bucket id for a day-count threshold.
func ExpiringInType(days int) NotificationType {
	return NotificationType(fmt.Sprintf("expiring_in_%d_days", days))
}

// DefaultThresholdDays is used when no thresholds are configured.
var DefaultThresholdDays = []int{30, 15, 7, 3, 1}

// ThresholdPolicy decides which alert bucket, if any, fires for a domain.
type ThresholdPolicy struct {
	days []int
}

func NewThresholdPolicy(days []int) (ThresholdPolicy, error) {
	normalized := make([]int, 0, len(days))
	for _, d := range days {
		if d <= 0 {
			return ThresholdPolicy{}, fmt.Errorf("%w: threshold must be positive, got %d", ErrValidation, d)
		}
		if !slices.Contains(normalized, d) {
			normalized = append(normalized, d)
		}
	}
	slices.SortFunc(normalized, func(a, b int) int { return b - a })

	return ThresholdPolicy{days: normalized}, nil
}

// Days returns the configured thresholds in descending order.
func (p ThresholdPolicy) Days() []int {
	return slices.Clone(p.days)
}

// Evaluate matches daysLeft exactly against the configured thresholds so a
// domain inside a window does not re-alert every day. Anything at or below
// zero falls into the expired bucket.
func (p ThresholdPolicy) Evaluate(daysLeft *int) (NotificationType, bool) {
	if daysLeft == nil {
		return "", false
	}
	if *daysLeft <= 0 {
		return NotificationTypeExpired, true
	}
	if slices.Contains(p.days, *daysLeft) {
		return ExpiringInType(*daysLeft), true
	}
	return "", false
}

// ParseThresholdDays parses a comma separated day list such as "30,15,7,3,1".
func ParseThresholdDays(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	days := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid threshold %q", ErrValidation, part)
		}
		if d <= 0 {
			return nil, fmt.Errorf("%w: threshold must be positive, got %d", ErrValidation, d)
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: threshold list is empty", ErrValidation)
	}
	return days, nil
}
