package usecase

import (
	"context"
	"time"

	"github.com/loopgate/loopgate/internal/domain"
)

// HaltReason names which halt condition fired.
type HaltReason string

const (
	HaltNone      HaltReason = ""           // Loop may continue
	HaltExhausted HaltReason = "exhausted"  // iteration reached max_iterations
	HaltNotActive HaltReason = "not_active" // status left active
	HaltStale     HaltReason = "stale"      // no progress within the staleness window
)

// ShouldContinueInput contains the parameters for the halt check.
type ShouldContinueInput struct {
	TaskID string
}

// ShouldContinueOutput reports the halt decision and its reason.
type ShouldContinueOutput struct {
	Reason   HaltReason
	Continue bool
}

// ShouldContinue evaluates the three independent halt conditions: iteration
// budget, task status, and progress staleness. All three are checked.
type ShouldContinue struct {
	tasks      domain.TaskRepository
	clock      domain.Clock
	staleAfter time.Duration
}

// NewShouldContinue creates a new ShouldContinue use case.
func NewShouldContinue(tasks domain.TaskRepository, clock domain.Clock, staleAfter time.Duration) *ShouldContinue {
	return &ShouldContinue{tasks: tasks, clock: clock, staleAfter: staleAfter}
}

// Execute returns whether the loop may run another iteration.
func (uc *ShouldContinue) Execute(_ context.Context, in ShouldContinueInput) (*ShouldContinueOutput, error) {
	task, err := uc.tasks.Get(in.TaskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}

	if task.Status != domain.StatusActive {
		return &ShouldContinueOutput{Reason: HaltNotActive}, nil
	}
	if task.Iteration >= task.MaxIterations {
		return &ShouldContinueOutput{Reason: HaltExhausted}, nil
	}
	if uc.staleAfter > 0 && uc.clock.Now().Sub(task.LastProgressAt()) >= uc.staleAfter {
		return &ShouldContinueOutput{Reason: HaltStale}, nil
	}
	return &ShouldContinueOutput{Continue: true}, nil
}
