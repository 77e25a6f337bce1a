package domain

import "time"

// EntityType identifies which record kind an audit entry describes.
type EntityType string

const (
	EntityTask     EntityType = "task"
	EntityApproval EntityType = "approval"
	EntityGroup    EntityType = "group"
)

// AuditEntry records one state transition. Entries are immutable once
// written; ordering within a day partition is append order.
// Fields are ordered to minimize memory padding.
type AuditEntry struct {
	Timestamp  time.Time  `json:"timestamp"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	FromStatus string     `json:"from_status"`
	ToStatus   string     `json:"to_status"`
	Actor      string     `json:"actor"`
	Result     string     `json:"result,omitempty"`
	Detail     string     `json:"detail,omitempty"`
}

// Partition returns the day partition key for this entry (YYYY-MM-DD, UTC).
func (e AuditEntry) Partition() string {
	return e.Timestamp.UTC().Format("2006-01-02")
}
