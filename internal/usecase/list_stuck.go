package usecase

import (
	"context"

	"github.com/loopgate/loopgate/internal/domain"
)

// ListStuckOutput contains the stuck tasks with diagnostic context.
type ListStuckOutput struct {
	Tasks []domain.StuckTask
}

// ListStuck returns every task that ran out of iterations without reaching
// a terminal state, with enough context to diagnose each one.
type ListStuck struct {
	tasks domain.TaskRepository
	clock domain.Clock
}

// NewListStuck creates a new ListStuck use case.
func NewListStuck(tasks domain.TaskRepository, clock domain.Clock) *ListStuck {
	return &ListStuck{tasks: tasks, clock: clock}
}

// Execute lists the stuck tasks.
func (uc *ListStuck) Execute(_ context.Context) (*ListStuckOutput, error) {
	tasks, err := uc.tasks.List(domain.TaskFilter{Stuck: true})
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	out := &ListStuckOutput{Tasks: make([]domain.StuckTask, 0, len(tasks))}
	for _, t := range tasks {
		lastNote := ""
		if len(t.Progress) > 0 {
			lastNote = t.Progress[len(t.Progress)-1].Note
		}
		out.Tasks = append(out.Tasks, domain.StuckTask{
			TaskID:        t.ID,
			Title:         t.Title,
			LastNote:      lastNote,
			Iteration:     t.Iteration,
			MaxIterations: t.MaxIterations,
			SinceProgress: now.Sub(t.LastProgressAt()),
		})
	}
	return out, nil
}
