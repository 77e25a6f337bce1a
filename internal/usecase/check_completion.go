package usecase

import (
	"context"
	"fmt"

	"github.com/loopgate/loopgate/internal/domain"
)

// CheckCompletionInput contains the parameters for the completion check.
type CheckCompletionInput struct {
	TaskID string
}

// CheckCompletionOutput reports the collaborator's verdict.
type CheckCompletionOutput struct {
	Done bool
}

// CheckCompletion evaluates the collaborator-supplied completion predicate.
// Side-effect free: neither the task record nor the source item is touched.
type CheckCompletion struct {
	tasks   domain.TaskRepository
	checker domain.CompletionChecker
}

// NewCheckCompletion creates a new CheckCompletion use case.
func NewCheckCompletion(tasks domain.TaskRepository, checker domain.CompletionChecker) *CheckCompletion {
	return &CheckCompletion{tasks: tasks, checker: checker}
}

// Execute asks the producer whether the originating work item is done.
func (uc *CheckCompletion) Execute(ctx context.Context, in CheckCompletionInput) (*CheckCompletionOutput, error) {
	task, err := uc.tasks.Get(in.TaskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}

	done, err := uc.checker.Done(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("completion check: %w", err)
	}
	return &CheckCompletionOutput{Done: done}, nil
}
