package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/loopgate/loopgate/internal/domain"
)

// ClaimTaskInput contains the parameters for claiming a source item.
// Fields are ordered to minimize memory padding.
type ClaimTaskInput struct {
	Claimant      string // Worker identity recorded on the claim (required)
	Ref           string // Specific item to claim (empty = next pending)
	MaxIterations int    // Override iteration ceiling (0 = item's own, then config default)
}

// ClaimTaskOutput contains the created task record.
type ClaimTaskOutput struct {
	Task *domain.Task
}

// ClaimTask is the use case for atomically reserving a pending source item
// and creating its task record. Exactly one caller among concurrent
// claimants succeeds for any given item; the rest get ErrClaimConflict.
type ClaimTask struct {
	queue                domain.SourceQueue
	audit                domain.AuditSink
	clock                domain.Clock
	logger               domain.Logger
	defaultMaxIterations int
}

// NewClaimTask creates a new ClaimTask use case.
func NewClaimTask(queue domain.SourceQueue, audit domain.AuditSink, clock domain.Clock, logger domain.Logger, defaultMaxIterations int) *ClaimTask {
	return &ClaimTask{
		queue:                queue,
		audit:                audit,
		clock:                clock,
		logger:               logger,
		defaultMaxIterations: defaultMaxIterations,
	}
}

// Execute claims one source item and returns the new task record.
func (uc *ClaimTask) Execute(_ context.Context, in ClaimTaskInput) (*ClaimTaskOutput, error) {
	if in.Claimant == "" {
		return nil, fmt.Errorf("%w: claimant is required", domain.ErrValidation)
	}

	build := func(item *domain.SourceItem) (*domain.Task, error) {
		maxIter := in.MaxIterations
		if maxIter == 0 {
			maxIter = item.MaxIterations
		}
		if maxIter == 0 {
			maxIter = uc.defaultMaxIterations
		}
		if maxIter <= 0 {
			return nil, fmt.Errorf("%w: max_iterations must be positive", domain.ErrValidation)
		}
		now := uc.clock.Now()
		return &domain.Task{
			ID:            uuid.NewString(),
			SourceRef:     item.Ref,
			Type:          item.Type,
			Title:         item.Title,
			ClaimedBy:     in.Claimant,
			Status:        domain.StatusActive,
			MaxIterations: maxIter,
			Created:       now,
			LastUpdate:    now,
		}, nil
	}

	var task *domain.Task
	var err error
	if in.Ref != "" {
		task, err = uc.queue.Claim(in.Ref, in.Claimant, build)
	} else {
		task, err = uc.queue.ClaimNext(in.Claimant, build)
	}
	if err != nil {
		return nil, err
	}

	uc.logger.Info(task.ID, "claim", fmt.Sprintf("claimed %q by %s", task.SourceRef, in.Claimant))
	if err := uc.audit.Record(domain.AuditEntry{
		Timestamp:  uc.clock.Now(),
		EntityType: domain.EntityTask,
		EntityID:   task.ID,
		FromStatus: "",
		ToStatus:   string(domain.StatusActive),
		Actor:      in.Claimant,
		Result:     "success",
		Detail:     fmt.Sprintf("claimed source %q", task.SourceRef),
	}); err != nil {
		return nil, fmt.Errorf("record audit entry: %w", err)
	}

	return &ClaimTaskOutput{Task: task}, nil
}
