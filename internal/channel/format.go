package channel

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

// urgencyColors are the hex colors used by rich chat payloads.
var urgencyColors = map[domain.Urgency]string{
	domain.UrgencySevere:  "#E01E5A",
	domain.UrgencyHigh:    "#FF8C00",
	domain.UrgencyMedium:  "#ECB22E",
	domain.UrgencyLow:     "#36A2EB",
	domain.UrgencyNominal: "#2EB67D",
}

var urgencyMarkers = map[domain.Urgency]string{
	domain.UrgencySevere:  "🔴",
	domain.UrgencyHigh:    "🟠",
	domain.UrgencyMedium:  "🟡",
	domain.UrgencyLow:     "🔵",
	domain.UrgencyNominal: "🟢",
}

func colorHex(u domain.Urgency) string {
	if c, ok := urgencyColors[u]; ok {
		return c
	}
	return urgencyColors[domain.UrgencyNominal]
}

// colorInt returns the color as the integer Discord embeds expect.
func colorInt(u domain.Urgency) int {
	v, err := strconv.ParseInt(colorHex(u)[1:], 16, 32)
	if err != nil {
		return 0
	}
	return int(v)
}

func marker(u domain.Urgency) string {
	return urgencyMarkers[u]
}

func title(msg Message) string {
	if msg.NotificationType == domain.NotificationTypeExpired {
		return fmt.Sprintf("Domain expired: %s", msg.Domain)
	}
	return fmt.Sprintf("Domain expiring: %s", msg.Domain)
}

func daysLeftText(msg Message) string {
	if msg.DaysLeft == nil {
		return "unknown"
	}
	if *msg.DaysLeft < 0 {
		return fmt.Sprintf("expired %d days ago", -*msg.DaysLeft)
	}
	return strconv.Itoa(*msg.DaysLeft)
}

func expirationText(msg Message) string {
	if msg.ExpirationDate == nil {
		return "unknown"
	}
	return msg.ExpirationDate.UTC().Format(time.DateOnly)
}

func registrarText(msg Message) string {
	if msg.Registrar == "" {
		return "unknown"
	}
	return msg.Registrar
}

type field struct {
	Name  string
	Value string
}

func fields(msg Message) []field {
	return []field{
		{Name: "Domain", Value: msg.Domain},
		{Name: "Days left", Value: daysLeftText(msg)},
		{Name: "Expires", Value: expirationText(msg)},
		{Name: "Registrar", Value: registrarText(msg)},
	}
}
