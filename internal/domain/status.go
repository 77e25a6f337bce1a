package domain

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusActive   Status = "active"   // Claimed, loop iterating
	StatusComplete Status = "complete" // Completion predicate satisfied
	StatusBlocked  Status = "blocked"  // Halted without completing (stale, exhausted, rejected)
	StatusArchived Status = "archived" // Moved out of the active set; immutable
)

// AllStatuses returns all valid task status values.
func AllStatuses() []Status {
	return []Status{StatusActive, StatusComplete, StatusBlocked, StatusArchived}
}

// taskTransitions defines the allowed task status transitions.
// Flow: active → {complete|blocked} → archived, never backward.
var taskTransitions = map[Status][]Status{
	StatusActive:   {StatusComplete, StatusBlocked},
	StatusComplete: {StatusArchived},
	StatusBlocked:  {StatusArchived},
	StatusArchived: {},
}

// CanTransitionTo returns true if the status can transition to the target status.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, ok := taskTransitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transition is defined from this status.
func (s Status) IsTerminal() bool {
	return s == StatusArchived
}

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusComplete, StatusBlocked, StatusArchived:
		return true
	default:
		return false
	}
}

// Display returns a human-readable representation of the status.
func (s Status) Display() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusComplete:
		return "Complete"
	case StatusBlocked:
		return "Blocked"
	case StatusArchived:
		return "Archived"
	default:
		return string(s)
	}
}
