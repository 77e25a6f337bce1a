package usecase

import (
	"context"

	"github.com/loopgate/loopgate/internal/domain"
)

// ShowTaskInput contains the parameters for showing one task.
type ShowTaskInput struct {
	TaskID string
}

// ShowTaskOutput contains the task with its advisory effort estimate.
type ShowTaskOutput struct {
	Task     *domain.Task
	Estimate domain.Estimate
}

// ShowTask retrieves one task record plus the estimator's advisory numbers
// for its type. The estimate is display-only; nothing gates on it.
type ShowTask struct {
	tasks     domain.TaskRepository
	estimator domain.Estimator
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(tasks domain.TaskRepository, estimator domain.Estimator) *ShowTask {
	return &ShowTask{tasks: tasks, estimator: estimator}
}

// Execute retrieves the task.
func (uc *ShowTask) Execute(_ context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	task, err := uc.tasks.Get(in.TaskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return &ShowTaskOutput{
		Task:     task,
		Estimate: uc.estimator.Estimate(task.Type),
	}, nil
}
