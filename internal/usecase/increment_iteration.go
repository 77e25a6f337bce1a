package usecase

import (
	"context"
	"fmt"

	"github.com/loopgate/loopgate/internal/domain"
)

// IncrementIterationInput contains the parameters for advancing a task's
// iteration counter.
type IncrementIterationInput struct {
	TaskID string
}

// IncrementIterationOutput contains the new iteration value.
type IncrementIterationOutput struct {
	Iteration int
}

// IncrementIteration advances a task's iteration counter by exactly one.
// Increments are linearizable per task: the read-modify-write runs under the
// store's exclusive lock, so concurrent calls serialize and each observes
// the previous one's effect.
type IncrementIteration struct {
	tasks  domain.TaskRepository
	clock  domain.Clock
	logger domain.Logger
}

// NewIncrementIteration creates a new IncrementIteration use case.
func NewIncrementIteration(tasks domain.TaskRepository, clock domain.Clock, logger domain.Logger) *IncrementIteration {
	return &IncrementIteration{tasks: tasks, clock: clock, logger: logger}
}

// Execute advances the counter. Fails with ErrIterationLimitExceeded when
// the task is already at its ceiling; iteration never exceeds max_iterations.
func (uc *IncrementIteration) Execute(_ context.Context, in IncrementIterationInput) (*IncrementIterationOutput, error) {
	task, err := uc.tasks.Update(in.TaskID, func(t *domain.Task) error {
		if t.Status == domain.StatusArchived {
			return domain.ErrTaskNotFound
		}
		if t.Iteration >= t.MaxIterations {
			return domain.ErrIterationLimitExceeded
		}
		t.Iteration++
		t.LastUpdate = uc.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Debug(in.TaskID, "loop", fmt.Sprintf("iteration %d/%d", task.Iteration, task.MaxIterations))
	return &IncrementIterationOutput{Iteration: task.Iteration}, nil
}
