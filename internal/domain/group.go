package domain

import "time"

// Strategy selects how a group's members are executed.
type Strategy string

const (
	StrategySequential Strategy = "sequential" // In list order, halt on first failure
	StrategyParallel   Strategy = "parallel"   // All members independently, no short-circuit
)

// IsValid returns true if the strategy is a known value.
func (s Strategy) IsValid() bool {
	return s == StrategySequential || s == StrategyParallel
}

// GroupStatus is the derived state of a task group.
type GroupStatus string

const (
	GroupPending  GroupStatus = "pending"  // Not yet processed
	GroupRunning  GroupStatus = "running"  // Members in flight
	GroupComplete GroupStatus = "complete" // Every member completed
	GroupFailed   GroupStatus = "failed"   // At least one member did not complete
)

// Group batches related tasks for sequential or parallel execution.
// Fields are ordered to minimize memory padding.
type Group struct {
	Created       time.Time   `json:"created"`
	ID            string      `json:"group_id"`
	Strategy      Strategy    `json:"strategy"`
	Status        GroupStatus `json:"status"`
	TaskIDs       []string    `json:"task_ids"`
	FailedAtIndex *int        `json:"failed_at_index,omitempty"` // Sequential only, 0-based
}

// DeriveGroupStatus computes the group status from member task statuses,
// in member order. Complete only if every member is complete.
func DeriveGroupStatus(members []*Task) GroupStatus {
	if len(members) == 0 {
		return GroupPending
	}
	allComplete := true
	for _, t := range members {
		status := t.Status
		if status == StatusArchived {
			status = t.Outcome
		}
		switch status {
		case StatusComplete:
			continue
		case StatusBlocked:
			return GroupFailed
		default:
			allComplete = false
		}
	}
	if allComplete {
		return GroupComplete
	}
	return GroupRunning
}
