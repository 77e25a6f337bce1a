package domain

import "errors"

// Domain errors.
var (
	ErrNotFound               = errors.New("record not found")
	ErrTaskNotFound           = errors.New("task not found")
	ErrGroupNotFound          = errors.New("group not found")
	ErrApprovalNotFound       = errors.New("approval request not found")
	ErrClaimConflict          = errors.New("source item already claimed")
	ErrNoPendingItems         = errors.New("no pending source items")
	ErrIterationLimitExceeded = errors.New("iteration limit exceeded")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrValidation             = errors.New("validation failed")
	ErrApprovalExpired        = errors.New("approval request expired")
	ErrApprovalRejected       = errors.New("approval request rejected")
	ErrApprovalTimeout        = errors.New("timed out waiting for approval decision")
	ErrNotApproved            = errors.New("approval request is not approved")
	ErrExecutionInFlight      = errors.New("approval request execution already in progress")
	ErrActionExecution        = errors.New("action execution failed")
	ErrStateCorruption        = errors.New("state record unreadable or partially written")
	ErrNotInitialized         = errors.New("store not initialized (run 'loopgate init' first)")
	ErrEmptyTitle             = errors.New("title cannot be empty")
	ErrEmptyNote              = errors.New("progress note cannot be empty")
)
