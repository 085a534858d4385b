package domain

import (
	"math"
	"strings"
	"time"
)

// ExpiringSoonDays is the display cutoff for StatusExpiringSoon. It is
// independent from the alert thresholds configured in ThresholdPolicy.
const ExpiringSoonDays = 30

var availabilityMarkers = []string{"AVAILABLE", "FREE"}

// ResolveStatus derives the lifecycle state of a domain from a lookup
// snapshot. The second return value is the number of whole days left until
// expiration, or nil when no expiration date is known.
func ResolveStatus(snapshot *LookupSnapshot, now time.Time) (Status, *int) {
	if snapshot == nil {
		return StatusError, nil
	}

	for _, token := range snapshot.StatusTokens {
		upper := strings.ToUpper(token)
		for _, marker := range availabilityMarkers {
			if strings.Contains(upper, marker) {
				return StatusAvailable, nil
			}
		}
	}

	if snapshot.ExpirationDate == nil {
		return StatusError, nil
	}

	daysLeft := DaysUntil(*snapshot.ExpirationDate, now)
	switch {
	case daysLeft < 0:
		return StatusExpired, &daysLeft
	case daysLeft <= ExpiringSoonDays:
		return StatusExpiringSoon, &daysLeft
	default:
		return StatusActive, &daysLeft
	}
}

// DaysUntil returns floor((t - now) / 24h).
func DaysUntil(t time.Time, now time.Time) int {
	return int(math.Floor(t.Sub(now).Hours() / 24))
}
