package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/loopgate/loopgate/internal/domain"
)

// CreateGroupInput contains the parameters for creating a task group.
// Fields are ordered to minimize memory padding.
type CreateGroupInput struct {
	Actor    string
	Strategy domain.Strategy
	TaskIDs  []string
}

// CreateGroupOutput contains the created group.
type CreateGroupOutput struct {
	Group *domain.Group
}

// CreateGroup batches existing tasks for sequential or parallel execution.
type CreateGroup struct {
	groups domain.GroupRepository
	tasks  domain.TaskRepository
	audit  domain.AuditSink
	clock  domain.Clock
	logger domain.Logger
}

// NewCreateGroup creates a new CreateGroup use case.
func NewCreateGroup(groups domain.GroupRepository, tasks domain.TaskRepository, audit domain.AuditSink, clock domain.Clock, logger domain.Logger) *CreateGroup {
	return &CreateGroup{groups: groups, tasks: tasks, audit: audit, clock: clock, logger: logger}
}

// Execute creates the group after validating every member exists.
func (uc *CreateGroup) Execute(_ context.Context, in CreateGroupInput) (*CreateGroupOutput, error) {
	if !in.Strategy.IsValid() {
		return nil, fmt.Errorf("%w: unknown strategy %q", domain.ErrValidation, in.Strategy)
	}
	if len(in.TaskIDs) == 0 {
		return nil, fmt.Errorf("%w: group needs at least one task", domain.ErrValidation)
	}
	seen := make(map[string]bool, len(in.TaskIDs))
	for _, id := range in.TaskIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate member %s", domain.ErrValidation, id)
		}
		seen[id] = true
		task, err := uc.tasks.Get(id)
		if err != nil {
			return nil, err
		}
		if task == nil {
			return nil, fmt.Errorf("%w: member %s", domain.ErrTaskNotFound, id)
		}
	}

	group := &domain.Group{
		ID:       uuid.NewString(),
		Strategy: in.Strategy,
		Status:   domain.GroupPending,
		TaskIDs:  in.TaskIDs,
		Created:  uc.clock.Now(),
	}
	if err := uc.groups.Save(group); err != nil {
		return nil, fmt.Errorf("save group: %w", err)
	}

	uc.logger.Info("", "group", fmt.Sprintf("group %s created (%s, %d members)", group.ID, group.Strategy, len(group.TaskIDs)))
	if err := uc.audit.Record(domain.AuditEntry{
		Timestamp:  uc.clock.Now(),
		EntityType: domain.EntityGroup,
		EntityID:   group.ID,
		FromStatus: "",
		ToStatus:   string(domain.GroupPending),
		Actor:      in.Actor,
		Result:     "success",
		Detail:     fmt.Sprintf("strategy=%s members=%d", group.Strategy, len(group.TaskIDs)),
	}); err != nil {
		return nil, fmt.Errorf("record audit entry: %w", err)
	}

	return &CreateGroupOutput{Group: group}, nil
}
