package usecase

import (
	"context"
	"fmt"

	"github.com/loopgate/loopgate/internal/domain"
)

// UpdateProgressInput contains the parameters for logging task progress.
type UpdateProgressInput struct {
	TaskID string
	Note   string
}

// UpdateProgressOutput contains the updated task record.
type UpdateProgressOutput struct {
	Task *domain.Task
}

// UpdateProgress appends a timestamped note to a task's progress log.
// The log is append-only; entries are never truncated or reordered.
type UpdateProgress struct {
	tasks  domain.TaskRepository
	clock  domain.Clock
	logger domain.Logger
}

// NewUpdateProgress creates a new UpdateProgress use case.
func NewUpdateProgress(tasks domain.TaskRepository, clock domain.Clock, logger domain.Logger) *UpdateProgress {
	return &UpdateProgress{tasks: tasks, clock: clock, logger: logger}
}

// Execute appends the note. Archived tasks are immutable and report
// ErrTaskNotFound, the same as unknown IDs.
func (uc *UpdateProgress) Execute(_ context.Context, in UpdateProgressInput) (*UpdateProgressOutput, error) {
	if in.Note == "" {
		return nil, domain.ErrEmptyNote
	}

	task, err := uc.tasks.Update(in.TaskID, func(t *domain.Task) error {
		if t.Status == domain.StatusArchived {
			return domain.ErrTaskNotFound
		}
		now := uc.clock.Now()
		t.Progress = append(t.Progress, domain.ProgressEntry{T: now, Note: in.Note})
		t.LastUpdate = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Debug(in.TaskID, "progress", fmt.Sprintf("note: %s", in.Note))
	return &UpdateProgressOutput{Task: task}, nil
}
