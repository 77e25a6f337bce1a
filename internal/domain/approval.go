package domain

import (
	"encoding/json"
	"time"
)

// ActionClass labels how dangerous an approved action is to repeat.
type ActionClass string

const (
	// ActionReversible actions may be retried automatically on transient failure.
	ActionReversible ActionClass = "reversible"
	// ActionIrreversible actions (payments, public posts) are never retried
	// automatically.
	ActionIrreversible ActionClass = "irreversible"
)

// IsValid returns true if the action class is a known value.
func (c ActionClass) IsValid() bool {
	return c == ActionReversible || c == ActionIrreversible
}

// ApprovalStatus represents the lifecycle state of an approval request.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"  // Awaiting a human decision
	ApprovalApproved ApprovalStatus = "approved" // Cleared for execution
	ApprovalRejected ApprovalStatus = "rejected" // Explicitly denied
	ApprovalExpired  ApprovalStatus = "expired"  // TTL elapsed without a decision
	ApprovalDone     ApprovalStatus = "done"     // Executed successfully
	ApprovalFailed   ApprovalStatus = "failed"   // Execution failed terminally
)

// approvalTransitions defines the allowed approval status transitions.
// Flow: pending → {approved|rejected|expired}; approved → {done|failed}.
var approvalTransitions = map[ApprovalStatus][]ApprovalStatus{
	ApprovalPending:  {ApprovalApproved, ApprovalRejected, ApprovalExpired},
	ApprovalApproved: {ApprovalDone, ApprovalFailed},
	ApprovalRejected: {},
	ApprovalExpired:  {},
	ApprovalDone:     {},
	ApprovalFailed:   {},
}

// CanTransitionTo returns true if the status can transition to the target status.
func (s ApprovalStatus) CanTransitionTo(target ApprovalStatus) bool {
	allowed, ok := approvalTransitions[s]
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

// IsDecided returns true once the status has left pending.
func (s ApprovalStatus) IsDecided() bool {
	return s != ApprovalPending
}

// IsTerminal returns true if no further transition is defined from this status.
func (s ApprovalStatus) IsTerminal() bool {
	switch s {
	case ApprovalRejected, ApprovalExpired, ApprovalDone, ApprovalFailed:
		return true
	default:
		return false
	}
}

// ApprovalRequest gates one externally visible action on a human decision.
// Fields are ordered to minimize memory padding.
type ApprovalRequest struct {
	Created   time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
	DecidedAt time.Time       `json:"decided_at,omitempty"`
	ID        string          `json:"request_id"`
	TaskID    string          `json:"task_id,omitempty"`
	DecidedBy string          `json:"decided_by,omitempty"`
	LastError string          `json:"last_error,omitempty"`
	Class     ActionClass     `json:"action_class"`
	Status    ApprovalStatus  `json:"status"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts,omitempty"`
	// Executing marks the request as reserved by an in-flight execution, so
	// concurrent callers cannot run the action a second time.
	Executing bool `json:"executing,omitempty"`
}

// IsExpiredAt reports whether the request's TTL has elapsed at the given time.
func (r *ApprovalRequest) IsExpiredAt(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// ExecutionResult is what an action executor reports back to the gate.
// Transient is only consulted when Success is false; the gate never guesses
// the classification itself.
type ExecutionResult struct {
	Detail    string
	Success   bool
	Transient bool
}

// RetryPolicy bounds automatic re-execution of a reversible action.
// Fields are ordered to minimize memory padding.
type RetryPolicy struct {
	InitialInterval time.Duration // First backoff delay
	MaxInterval     time.Duration // Backoff cap
	MaxAttempts     int           // Total attempts including the first
}
