package adapters

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// Upstream enum spellings vary by endpoint vintage (NOT_STARTED, TODO,
// inprogress, ...). The stable contract uses lowercase snake_case.

var statusAliases = map[string]string{
	"not_started": "pending",
	"todo":        "pending",
	"pending":     "pending",
	"in_progress": "in_progress",
	"inprogress":  "in_progress",
	"completed":   "completed",
}

var priorityAliases = map[string]string{
	"low":    "low",
	"medium": "medium",
	"high":   "high",
}

// NormalizeStatus maps an upstream status spelling to the contract value.
// Unknown values fall back to the lowercased input rather than failing:
// status is a display field and availability wins over strictness. The
// warning keeps upstream contract drift visible in logs.
func NormalizeStatus(v string) string {
	if out, ok := statusAliases[strings.ToLower(v)]; ok {
		return out
	}
	log.Warn().Str("status", v).Msg("unknown upstream task status, passing through lowercased")
	return strings.ToLower(v)
}

// NormalizePriority maps an upstream priority spelling to the contract value.
func NormalizePriority(v string) string {
	if out, ok := priorityAliases[strings.ToLower(v)]; ok {
		return out
	}
	log.Warn().Str("priority", v).Msg("unknown upstream task priority, passing through lowercased")
	return strings.ToLower(v)
}
