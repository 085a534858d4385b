package service

import (
	"fmt"
	"time"

	"github.com/kursadbilgin/domain-alerts/internal/channel"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
)

// BuildMessage renders the alert for one domain bucket.
func BuildMessage(d domain.Domain, daysLeft *int, notificationType domain.NotificationType) channel.Message {
	date := "unknown date"
	if d.ExpirationDate != nil {
		date = d.ExpirationDate.UTC().Format(time.DateOnly)
	}
	registrar := d.Registrar
	if registrar == "" {
		registrar = "unknown"
	}

	var text string
	if notificationType == domain.NotificationTypeExpired || (daysLeft != nil && *daysLeft <= 0) {
		text = fmt.Sprintf("Domain %s has expired (%s). Registrar: %s", d.Name, date, registrar)
	} else {
		days := 0
		if daysLeft != nil {
			days = *daysLeft
		}
		text = fmt.Sprintf("Domain %s expires in %d days (%s). Registrar: %s", d.Name, days, date, registrar)
	}

	return channel.Message{
		Text:             text,
		Subject:          fmt.Sprintf("Domain expiration alert: %s", d.Name),
		Domain:           d.Name,
		DaysLeft:         daysLeft,
		ExpirationDate:   d.ExpirationDate,
		Registrar:        d.Registrar,
		NotificationType: notificationType,
	}
}
