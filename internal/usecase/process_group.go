package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/loopgate/loopgate/internal/domain"
)

// ProcessGroupInput contains the parameters for running a group.
// Fields are ordered to minimize memory padding.
type ProcessGroupInput struct {
	Work         WorkFunc      // Optional per-iteration work callback, shared by members
	GroupID      string        // Group to run (required)
	Actor        string        // Recorded on member transitions
	PollInterval time.Duration // Per-member loop interval (0 = config default)
	MaxParallel  int           // Parallel strategy only; 0 = unbounded
}

// MemberResult reports one member's loop outcome.
// Fields are ordered to minimize memory padding.
type MemberResult struct {
	TaskID string
	Reason StopReason
	Ran    bool // false when sequential processing halted before this member
}

// ProcessGroupOutput reports the aggregate outcome.
// Fields are ordered to minimize memory padding.
type ProcessGroupOutput struct {
	Group   *domain.Group
	Members []MemberResult
}

// ProcessGroup runs every member of a group through the task loop. For the
// sequential strategy members run in list order and processing halts on the
// first non-complete outcome, recording its 0-based index. For the parallel
// strategy all members run independently with isolated state and their
// outcomes are aggregated without short-circuiting.
type ProcessGroup struct {
	groups  domain.GroupRepository
	tasks   domain.TaskRepository
	runLoop *RunLoop
	audit   domain.AuditSink
	clock   domain.Clock
	logger  domain.Logger
}

// NewProcessGroup creates a new ProcessGroup use case.
func NewProcessGroup(groups domain.GroupRepository, tasks domain.TaskRepository, runLoop *RunLoop, audit domain.AuditSink, clock domain.Clock, logger domain.Logger) *ProcessGroup {
	return &ProcessGroup{
		groups:  groups,
		tasks:   tasks,
		runLoop: runLoop,
		audit:   audit,
		clock:   clock,
		logger:  logger,
	}
}

// Execute runs the group to completion or first failure.
func (uc *ProcessGroup) Execute(ctx context.Context, in ProcessGroupInput) (*ProcessGroupOutput, error) {
	group, err := uc.groups.Get(in.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, domain.ErrGroupNotFound
	}

	if err := uc.transition(group, in.Actor, domain.GroupRunning, ""); err != nil {
		return nil, err
	}

	var members []MemberResult
	switch group.Strategy {
	case domain.StrategyParallel:
		members, err = uc.runParallel(ctx, group, in)
	default:
		members, err = uc.runSequential(ctx, group, in)
	}
	if err != nil {
		return nil, err
	}

	final, detail, err := uc.resolve(group)
	if err != nil {
		return nil, err
	}
	if err := uc.transition(group, in.Actor, final, detail); err != nil {
		return nil, err
	}

	return &ProcessGroupOutput{Group: group, Members: members}, nil
}

func (uc *ProcessGroup) runSequential(ctx context.Context, group *domain.Group, in ProcessGroupInput) ([]MemberResult, error) {
	members := make([]MemberResult, 0, len(group.TaskIDs))
	for i, taskID := range group.TaskIDs {
		out, err := uc.runLoop.Execute(ctx, RunLoopInput{
			TaskID:       taskID,
			Actor:        in.Actor,
			Work:         in.Work,
			PollInterval: in.PollInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("run member %s: %w", taskID, err)
		}
		members = append(members, MemberResult{TaskID: taskID, Reason: out.Reason, Ran: true})

		if out.Reason != StopCompleted {
			// Halt on first non-complete outcome; later members are never
			// attempted.
			idx := i
			group.FailedAtIndex = &idx
			for _, later := range group.TaskIDs[i+1:] {
				members = append(members, MemberResult{TaskID: later})
			}
			break
		}
	}
	return members, nil
}

func (uc *ProcessGroup) runParallel(ctx context.Context, group *domain.Group, in ProcessGroupInput) ([]MemberResult, error) {
	members := make([]MemberResult, len(group.TaskIDs))
	g, gctx := errgroup.WithContext(ctx)
	if in.MaxParallel > 0 {
		g.SetLimit(in.MaxParallel)
	}

	for i, taskID := range group.TaskIDs {
		g.Go(func() error {
			out, err := uc.runLoop.Execute(gctx, RunLoopInput{
				TaskID:       taskID,
				Actor:        in.Actor,
				Work:         in.Work,
				PollInterval: in.PollInterval,
			})
			if err != nil {
				// A member's infrastructure failure is recorded, not
				// propagated: it must never roll back or corrupt the
				// other members' state.
				uc.logger.Error(taskID, "group", fmt.Sprintf("member failed: %v", err))
				members[i] = MemberResult{TaskID: taskID, Reason: StopWorkFailed, Ran: true}
				return nil
			}
			members[i] = MemberResult{TaskID: taskID, Reason: out.Reason, Ran: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return members, nil
}

// resolve derives the final group status from the members' task records.
func (uc *ProcessGroup) resolve(group *domain.Group) (domain.GroupStatus, string, error) {
	tasks := make([]*domain.Task, 0, len(group.TaskIDs))
	for _, id := range group.TaskIDs {
		t, err := uc.tasks.Get(id)
		if err != nil {
			return "", "", err
		}
		if t == nil {
			return "", "", fmt.Errorf("%w: member %s", domain.ErrTaskNotFound, id)
		}
		tasks = append(tasks, t)
	}

	status := domain.DeriveGroupStatus(tasks)
	if status == domain.GroupRunning {
		// Members halted without archiving (cancelled or stuck); the batch
		// did not complete.
		status = domain.GroupFailed
	}

	detail := ""
	if group.FailedAtIndex != nil {
		detail = fmt.Sprintf("failed_at_index=%d", *group.FailedAtIndex)
	}
	return status, detail, nil
}

func (uc *ProcessGroup) transition(group *domain.Group, actor string, to domain.GroupStatus, detail string) error {
	from := group.Status
	if from == to {
		return nil
	}
	group.Status = to
	if err := uc.groups.Save(group); err != nil {
		return fmt.Errorf("save group: %w", err)
	}
	if err := uc.audit.Record(domain.AuditEntry{
		Timestamp:  uc.clock.Now(),
		EntityType: domain.EntityGroup,
		EntityID:   group.ID,
		FromStatus: string(from),
		ToStatus:   string(to),
		Actor:      actor,
		Result:     "success",
		Detail:     detail,
	}); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	uc.logger.Info("", "group", fmt.Sprintf("group %s: %s -> %s", group.ID, from, to))
	return nil
}
