// Package domain contains core business entities and interfaces.
package domain

import "time"

// Task represents one claimed unit of work driven by the bounded loop.
// Fields are ordered to minimize memory padding.
type Task struct {
	Created       time.Time       `json:"created_at"`
	LastUpdate    time.Time       `json:"last_update_at"`
	ID            string          `json:"task_id"`
	SourceRef     string          `json:"source_ref"`
	Type          string          `json:"type,omitempty"`
	Title         string          `json:"title,omitempty"`
	ClaimedBy     string          `json:"claimed_by,omitempty"`
	Status        Status          `json:"status"`
	Outcome       Status          `json:"outcome,omitempty"` // complete or blocked, fixed when leaving active
	Progress      []ProgressEntry `json:"progress_log"`
	Iteration     int             `json:"iteration"`
	MaxIterations int             `json:"max_iterations"`
}

// ProgressEntry is one timestamped note in a task's append-only progress log.
type ProgressEntry struct {
	T    time.Time `json:"t"`
	Note string    `json:"note"`
}

// LastProgressAt returns the time of the most recent progress note,
// falling back to the creation time when no progress has been logged.
func (t *Task) LastProgressAt() time.Time {
	if len(t.Progress) == 0 {
		return t.Created
	}
	return t.Progress[len(t.Progress)-1].T
}

// IsStuck reports whether the task exhausted its iteration budget without
// reaching a terminal state.
func (t *Task) IsStuck() bool {
	return t.Status == StatusActive && t.Iteration == t.MaxIterations
}

// SourceItem is a pending unit of work owned by an external producer.
// The loop claims items; it never creates or deletes them.
// Fields are ordered to minimize memory padding.
type SourceItem struct {
	Created       time.Time `json:"created"`
	ClaimedAt     time.Time `json:"claimedAt,omitempty"`
	Ref           string    `json:"ref"`
	Type          string    `json:"type,omitempty"`
	Title         string    `json:"title"`
	ClaimedBy     string    `json:"claimedBy,omitempty"`
	TaskID        string    `json:"taskID,omitempty"`
	MaxIterations int       `json:"maxIterations,omitempty"`
}

// IsClaimed reports whether a worker has already reserved this item.
func (i *SourceItem) IsClaimed() bool {
	return i.ClaimedBy != ""
}

// TaskFilter specifies criteria for listing tasks.
type TaskFilter struct {
	Status Status // empty = all statuses
	Stuck  bool   // only tasks that exhausted their iteration budget
}
