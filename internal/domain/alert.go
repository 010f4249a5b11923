package domain

import "strings"

// AlertTier classifies how urgently an item needs restocking.
type AlertTier string

const (
	TierCritical AlertTier = "critical"
	TierLow      AlertTier = "low"
	TierWarning  AlertTier = "warning"
	TierSafe     AlertTier = "safe"
)

var tierUrgency = map[AlertTier]int{
	TierCritical: 0,
	TierLow:      1,
	TierWarning:  2,
	TierSafe:     3,
}

// Urgency returns the sort rank of a tier, most urgent first. Unknown tiers
// sort after safe.
func (t AlertTier) Urgency() int {
	if rank, ok := tierUrgency[t]; ok {
		return rank
	}

	return len(tierUrgency)
}

// ParseAlertTier returns the tier for a given label (case-insensitive).
func ParseAlertTier(label string) (AlertTier, bool) {
	tier := AlertTier(strings.ToLower(strings.TrimSpace(label)))
	_, ok := tierUrgency[tier]

	return tier, ok
}
