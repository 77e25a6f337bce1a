package usecase

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v5"

	"github.com/loopgate/loopgate/internal/domain"
)

// ExecuteApprovalInput contains the parameters for executing an approved
// request. Fields are ordered to minimize memory padding.
type ExecuteApprovalInput struct {
	RequestID string
	Actor     string             // Recorded in the audit log
	Retry     domain.RetryPolicy // Bounds for reversible-class retries
}

// ExecuteApprovalOutput contains the request after execution.
// Fields are ordered to minimize memory padding.
type ExecuteApprovalOutput struct {
	Request  *domain.ApprovalRequest
	Detail   string
	Attempts int
}

// ExecuteApproval performs the gated action through the external executor.
// Allowed only from status=approved. Success lands on done, failure on
// failed. Irreversible actions are executed exactly once; reversible
// transient failures are retried with capped exponential backoff up to the
// caller-supplied attempt bound. Transient vs permanent comes from the
// executor's result, never guessed here.
type ExecuteApproval struct {
	approvals domain.ApprovalRepository
	executor  domain.ActionExecutor
	audit     domain.AuditSink
	clock     domain.Clock
	logger    domain.Logger
}

// NewExecuteApproval creates a new ExecuteApproval use case.
func NewExecuteApproval(approvals domain.ApprovalRepository, executor domain.ActionExecutor, audit domain.AuditSink, clock domain.Clock, logger domain.Logger) *ExecuteApproval {
	return &ExecuteApproval{
		approvals: approvals,
		executor:  executor,
		audit:     audit,
		clock:     clock,
		logger:    logger,
	}
}

// Execute runs the approved action.
func (uc *ExecuteApproval) Execute(ctx context.Context, in ExecuteApprovalInput) (*ExecuteApprovalOutput, error) {
	if uc.executor == nil {
		return nil, fmt.Errorf("%w: no executor command configured", domain.ErrValidation)
	}

	// Reserve execution in the same committed write that verifies the
	// status, so a concurrent caller is refused before the real-world
	// action runs a second time.
	req, err := uc.approvals.Update(in.RequestID, func(r *domain.ApprovalRequest) error {
		switch r.Status {
		case domain.ApprovalApproved:
			// Proceed.
		case domain.ApprovalExpired:
			return domain.ErrApprovalExpired
		case domain.ApprovalRejected:
			return domain.ErrApprovalRejected
		case domain.ApprovalPending:
			if r.IsExpiredAt(uc.clock.Now()) {
				return domain.ErrApprovalExpired
			}
			return domain.ErrNotApproved
		default:
			return fmt.Errorf("%w: %s is terminal", domain.ErrInvalidTransition, r.Status)
		}
		if r.Executing {
			return domain.ErrExecutionInFlight
		}
		r.Executing = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	maxAttempts := in.Retry.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if req.Class == domain.ActionIrreversible {
		// Irreversible actions never retry automatically.
		maxAttempts = 1
	}

	attempts := 0
	operation := func() (domain.ExecutionResult, error) {
		attempts++
		result, execErr := uc.executor.Execute(ctx, req)
		if execErr != nil {
			// The executor could not run at all; that is not a transient
			// action failure, so do not retry.
			return domain.ExecutionResult{}, backoff.Permanent(execErr)
		}
		if result.Success {
			return result, nil
		}
		if result.Transient && req.Class == domain.ActionReversible {
			return result, fmt.Errorf("%w: %s", domain.ErrActionExecution, result.Detail)
		}
		return result, backoff.Permanent(fmt.Errorf("%w: %s", domain.ErrActionExecution, result.Detail))
	}

	expo := backoff.NewExponentialBackOff()
	if in.Retry.InitialInterval > 0 {
		expo.InitialInterval = in.Retry.InitialInterval
	}
	if in.Retry.MaxInterval > 0 {
		expo.MaxInterval = in.Retry.MaxInterval
	}

	result, execErr := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(maxAttempts)),
	)

	target := domain.ApprovalDone
	auditResult := "success"
	detail := result.Detail
	if execErr != nil {
		target = domain.ApprovalFailed
		auditResult = "failure"
		detail = execErr.Error()
	}

	updated, err := uc.approvals.Update(in.RequestID, func(r *domain.ApprovalRequest) error {
		if !r.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, r.Status, target)
		}
		r.Status = target
		r.Attempts = attempts
		r.Executing = false
		if execErr != nil {
			r.LastError = detail
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info(updated.TaskID, "approval", fmt.Sprintf("request %s executed: %s after %d attempt(s)", updated.ID, target, attempts))
	if err := uc.audit.Record(domain.AuditEntry{
		Timestamp:  uc.clock.Now(),
		EntityType: domain.EntityApproval,
		EntityID:   updated.ID,
		FromStatus: string(domain.ApprovalApproved),
		ToStatus:   string(target),
		Actor:      in.Actor,
		Result:     auditResult,
		Detail:     detail,
	}); err != nil {
		return nil, fmt.Errorf("record audit entry: %w", err)
	}

	out := &ExecuteApprovalOutput{Request: updated, Detail: detail, Attempts: attempts}
	if execErr != nil {
		return out, fmt.Errorf("%w: %s", domain.ErrActionExecution, detail)
	}
	return out, nil
}
