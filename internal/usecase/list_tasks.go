package usecase

import (
	"context"

	"github.com/loopgate/loopgate/internal/domain"
)

// ListTasksInput contains the filter for listing tasks.
type ListTasksInput struct {
	Filter domain.TaskFilter
}

// ListTasksOutput contains the matching tasks.
type ListTasksOutput struct {
	Tasks []*domain.Task
}

// ListTasks retrieves task records matching a filter.
type ListTasks struct {
	tasks domain.TaskRepository
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(tasks domain.TaskRepository) *ListTasks {
	return &ListTasks{tasks: tasks}
}

// Execute lists the tasks.
func (uc *ListTasks) Execute(_ context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	tasks, err := uc.tasks.List(in.Filter)
	if err != nil {
		return nil, err
	}
	return &ListTasksOutput{Tasks: tasks}, nil
}

// ListSourceOutput contains the pending source items.
type ListSourceOutput struct {
	Items []*domain.SourceItem
}

// ListSource retrieves the unclaimed source items awaiting a worker.
type ListSource struct {
	queue domain.SourceQueue
}

// NewListSource creates a new ListSource use case.
func NewListSource(queue domain.SourceQueue) *ListSource {
	return &ListSource{queue: queue}
}

// Execute lists the pending items.
func (uc *ListSource) Execute(_ context.Context) (*ListSourceOutput, error) {
	items, err := uc.queue.ListPending()
	if err != nil {
		return nil, err
	}
	return &ListSourceOutput{Items: items}, nil
}
