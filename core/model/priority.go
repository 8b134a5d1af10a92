package model

import "strings"

// Urgency levels produced by the triage classifier upstream.
const (
	UrgencyCritical = "critical"
	UrgencyHigh     = "high"
	UrgencyMedium   = "medium"
	UrgencyLow      = "low"
)

var urgencyPriority = map[string]int{
	UrgencyCritical: 5,
	UrgencyHigh:     4,
	UrgencyMedium:   2,
	UrgencyLow:      1,
}

// PriorityFromUrgency converts a triage urgency level into a job priority.
// Unknown levels map to the default priority.
func PriorityFromUrgency(level string) int {
	if p, ok := urgencyPriority[strings.ToLower(strings.TrimSpace(level))]; ok {
		return p
	}
	return DefaultPriority
}
