package usecase

import (
	"context"
	"fmt"

	"github.com/loopgate/loopgate/internal/domain"
)

// ArchiveTaskInput contains the parameters for archiving a task.
// Fields are ordered to minimize memory padding.
type ArchiveTaskInput struct {
	TaskID  string
	Actor   string        // Recorded in the audit log
	Outcome domain.Status // complete or blocked
	Detail  string        // Optional diagnostic context
}

// ArchiveTaskOutput contains the archived task record.
type ArchiveTaskOutput struct {
	Task *domain.Task
}

// ArchiveTask transitions a task active → {complete|blocked} → archived and
// moves it out of the active working set. Archiving an already-archived task
// is a no-op, not an error.
type ArchiveTask struct {
	tasks  domain.TaskRepository
	audit  domain.AuditSink
	clock  domain.Clock
	logger domain.Logger
}

// NewArchiveTask creates a new ArchiveTask use case.
func NewArchiveTask(tasks domain.TaskRepository, audit domain.AuditSink, clock domain.Clock, logger domain.Logger) *ArchiveTask {
	return &ArchiveTask{tasks: tasks, audit: audit, clock: clock, logger: logger}
}

// Execute archives the task with the given outcome.
func (uc *ArchiveTask) Execute(_ context.Context, in ArchiveTaskInput) (*ArchiveTaskOutput, error) {
	if in.Outcome != domain.StatusComplete && in.Outcome != domain.StatusBlocked {
		return nil, fmt.Errorf("%w: outcome must be %q or %q", domain.ErrValidation, domain.StatusComplete, domain.StatusBlocked)
	}

	var from domain.Status
	var alreadyArchived bool
	task, err := uc.tasks.Update(in.TaskID, func(t *domain.Task) error {
		from = t.Status
		if t.Status == domain.StatusArchived {
			alreadyArchived = true
			return nil // Idempotent
		}
		if !t.Status.CanTransitionTo(in.Outcome) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, t.Status, in.Outcome)
		}
		t.Outcome = in.Outcome
		t.Status = domain.StatusArchived
		t.LastUpdate = uc.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if alreadyArchived {
		return &ArchiveTaskOutput{Task: task}, nil
	}

	uc.logger.Info(in.TaskID, "archive", fmt.Sprintf("archived as %s", in.Outcome))

	// Two transitions, two entries: active -> outcome -> archived.
	now := uc.clock.Now()
	entries := []domain.AuditEntry{
		{
			Timestamp:  now,
			EntityType: domain.EntityTask,
			EntityID:   in.TaskID,
			FromStatus: string(from),
			ToStatus:   string(in.Outcome),
			Actor:      in.Actor,
			Result:     "success",
			Detail:     in.Detail,
		},
		{
			Timestamp:  now,
			EntityType: domain.EntityTask,
			EntityID:   in.TaskID,
			FromStatus: string(in.Outcome),
			ToStatus:   string(domain.StatusArchived),
			Actor:      in.Actor,
			Result:     "success",
		},
	}
	for _, e := range entries {
		if err := uc.audit.Record(e); err != nil {
			return nil, fmt.Errorf("record audit entry: %w", err)
		}
	}

	return &ArchiveTaskOutput{Task: task}, nil
}
