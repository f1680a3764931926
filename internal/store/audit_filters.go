package store

import (
	"time"

	"github.com/masasa123jp/docshub/internal/models"
)

// AuditLogFilters narrows audit queries. Zero-valued fields are ignored, so
// the empty struct matches everything.
type AuditLogFilters struct {
	// Who and what.
	ActorUserID  string
	ActorIP      string
	ResourceType models.ResourceType
	ResourceID   string

	// Event shape.
	EventType models.EventType
	Severity  models.EventSeverity
	Success   *bool

	// Window; either bound may be zero.
	StartTime time.Time
	EndTime   time.Time

	// Substring match over action, resource name, and actor username.
	Search string
}

// AuditLogStats is the aggregate view served by the audit stats endpoint.
type AuditLogStats struct {
	TotalEvents      int64                          `json:"total_events"`
	EventsByType     map[models.EventType]int64     `json:"events_by_type"`
	EventsBySeverity map[models.EventSeverity]int64 `json:"events_by_severity"`
	SuccessCount     int64                          `json:"success_count"`
	FailureCount     int64                          `json:"failure_count"`
}
