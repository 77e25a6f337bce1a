package domain

import (
	"context"
	"time"
)

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	Initialize() error
}

// SourceQueue is the inbound producer interface: pending units of work
// waiting to be claimed.
type SourceQueue interface {
	// Enqueue adds a pending source item. Fails with ErrValidation on a
	// duplicate ref.
	Enqueue(item *SourceItem) error

	// ListPending retrieves unclaimed source items in enqueue order.
	ListPending() ([]*SourceItem, error)

	// ClaimNext atomically reserves the first unclaimed item and persists the
	// task record built from it in the same committed write. Returns
	// ErrNoPendingItems when the queue is empty and ErrClaimConflict when
	// every item is already claimed.
	ClaimNext(claimant string, build func(*SourceItem) (*Task, error)) (*Task, error)

	// Claim reserves the specific item by ref. Returns ErrClaimConflict when
	// another claimant already holds it.
	Claim(ref, claimant string, build func(*SourceItem) (*Task, error)) (*Task, error)
}

// TaskRepository manages task record persistence.
type TaskRepository interface {
	// Get retrieves a task by ID. Returns nil if not found.
	Get(id string) (*Task, error)

	// List retrieves tasks matching the filter.
	List(filter TaskFilter) ([]*Task, error)

	// Update applies fn to the stored record under the store's exclusive lock
	// and commits the result atomically. Returns ErrTaskNotFound for unknown
	// IDs. An error from fn aborts the write.
	Update(id string, fn func(*Task) error) (*Task, error)
}

// GroupRepository manages task group persistence.
type GroupRepository interface {
	// Get retrieves a group by ID. Returns nil if not found.
	Get(id string) (*Group, error)

	// List retrieves all groups.
	List() ([]*Group, error)

	// Save creates or updates a group.
	Save(group *Group) error
}

// ApprovalRepository manages approval request persistence.
type ApprovalRepository interface {
	// Get retrieves a request by ID. Returns nil if not found.
	Get(id string) (*ApprovalRequest, error)

	// List retrieves requests with the given status (empty = all).
	List(status ApprovalStatus) ([]*ApprovalRequest, error)

	// Create persists a new request.
	Create(req *ApprovalRequest) error

	// Update applies fn to the stored record under the store's exclusive lock
	// and commits the result atomically. Returns ErrApprovalNotFound for
	// unknown IDs. An error from fn aborts the write.
	Update(id string, fn func(*ApprovalRequest) error) (*ApprovalRequest, error)
}

// AuditSink records state transitions. Append-only.
type AuditSink interface {
	// Record appends one entry to the current day partition.
	Record(entry AuditEntry) error
}

// AuditReader reads recorded transitions for compliance review.
type AuditReader interface {
	// List returns all entries in the given day partition (YYYY-MM-DD).
	List(day string) ([]AuditEntry, error)

	// Tail returns the most recent n entries across partitions.
	Tail(n int) ([]AuditEntry, error)
}

// CompletionChecker is the collaborator-supplied completion predicate the
// loop polls. Side-effect free.
type CompletionChecker interface {
	// Done reports whether the originating work item has been finished by
	// its producer.
	Done(ctx context.Context, task *Task) (bool, error)
}

// ActionExecutor performs the real-world effect behind an approved request.
// The executor classifies its own failures as transient or permanent; the
// gate never guesses.
type ActionExecutor interface {
	Execute(ctx context.Context, req *ApprovalRequest) (ExecutionResult, error)
}

// Estimator maps a task-type label to an advisory effort estimate.
type Estimator interface {
	Estimate(taskType string) Estimate
}

// Logger writes leveled, task-scoped log entries.
type Logger interface {
	Debug(taskID, category, msg string)
	Info(taskID, category, msg string)
	Warn(taskID, category, msg string)
	Error(taskID, category, msg string)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
