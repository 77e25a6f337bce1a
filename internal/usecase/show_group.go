package usecase

import (
	"context"

	"github.com/loopgate/loopgate/internal/domain"
)

// ShowGroupInput contains the group ID to read.
type ShowGroupInput struct {
	GroupID string
}

// ShowGroupOutput contains the group, its members, and the derived status.
// Fields are ordered to minimize memory padding.
type ShowGroupOutput struct {
	Group   *domain.Group
	Members []*domain.Task
	Derived domain.GroupStatus
}

// ShowGroup retrieves one group with its member tasks and the status
// derived from them. Read-only.
type ShowGroup struct {
	groups domain.GroupRepository
	tasks  domain.TaskRepository
}

// NewShowGroup creates a new ShowGroup use case.
func NewShowGroup(groups domain.GroupRepository, tasks domain.TaskRepository) *ShowGroup {
	return &ShowGroup{groups: groups, tasks: tasks}
}

// Execute reads the group.
func (uc *ShowGroup) Execute(_ context.Context, in ShowGroupInput) (*ShowGroupOutput, error) {
	group, err := uc.groups.Get(in.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, domain.ErrGroupNotFound
	}

	members := make([]*domain.Task, 0, len(group.TaskIDs))
	for _, id := range group.TaskIDs {
		t, err := uc.tasks.Get(id)
		if err != nil {
			return nil, err
		}
		if t != nil {
			members = append(members, t)
		}
	}

	return &ShowGroupOutput{
		Group:   group,
		Members: members,
		Derived: domain.DeriveGroupStatus(members),
	}, nil
}
