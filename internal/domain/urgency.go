package domain

// Urgency grades how close a domain is to expiring.
type Urgency int

const (
	UrgencyNominal Urgency = iota
	UrgencyLow
	UrgencyMedium
	UrgencyHigh
	UrgencySevere
)

func (u Urgency) String() string {
	switch u {
	case UrgencySevere:
		return "severe"
	case UrgencyHigh:
		return "high"
	case UrgencyMedium:
		return "medium"
	case UrgencyLow:
		return "low"
	default:
		return "nominal"
	}
}

// UrgencyFor maps days left to an urgency level. A nil daysLeft is nominal.
func UrgencyFor(daysLeft *int) Urgency {
	if daysLeft == nil {
		return UrgencyNominal
	}
	switch d := *daysLeft; {
	case d <= 0:
		return UrgencySevere
	case d <= 3:
		return UrgencyHigh
	case d <= 7:
		return UrgencyMedium
	case d <= 30:
		return UrgencyLow
	default:
		return UrgencyNominal
	}
}
