package usecase

import (
	"context"
	"fmt"

	"github.com/loopgate/loopgate/internal/domain"
)

// DecideApprovalInput contains the parameters for recording a human decision.
// Fields are ordered to minimize memory padding.
type DecideApprovalInput struct {
	RequestID string
	DecidedBy string // Reviewer identity (required)
	Approve   bool   // true = approved, false = rejected
}

// DecideApprovalOutput contains the decided request.
type DecideApprovalOutput struct {
	Request *domain.ApprovalRequest
}

// DecideApproval moves a pending request to approved or rejected. The
// transition is a compare-and-swap under the store lock: a request that
// already left pending (decided elsewhere, or lazily expired) is rejected
// with a typed error, never silently coerced.
type DecideApproval struct {
	approvals domain.ApprovalRepository
	audit     domain.AuditSink
	clock     domain.Clock
	logger    domain.Logger
}

// NewDecideApproval creates a new DecideApproval use case.
func NewDecideApproval(approvals domain.ApprovalRepository, audit domain.AuditSink, clock domain.Clock, logger domain.Logger) *DecideApproval {
	return &DecideApproval{approvals: approvals, audit: audit, clock: clock, logger: logger}
}

// Execute records the decision.
func (uc *DecideApproval) Execute(_ context.Context, in DecideApprovalInput) (*DecideApprovalOutput, error) {
	if in.DecidedBy == "" {
		return nil, fmt.Errorf("%w: decided_by is required", domain.ErrValidation)
	}

	target := domain.ApprovalRejected
	if in.Approve {
		target = domain.ApprovalApproved
	}

	now := uc.clock.Now()
	req, err := uc.approvals.Update(in.RequestID, func(r *domain.ApprovalRequest) error {
		if r.Status == domain.ApprovalPending && r.IsExpiredAt(now) {
			// The TTL elapsed before anyone decided; the decision loses.
			r.Status = domain.ApprovalExpired
			return nil
		}
		if !r.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, r.Status, target)
		}
		r.Status = target
		r.DecidedBy = in.DecidedBy
		r.DecidedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Status == domain.ApprovalExpired {
		if err := uc.recordTransition(req, domain.ApprovalPending, domain.ApprovalExpired, "system", "ttl elapsed before decision"); err != nil {
			return nil, err
		}
		return nil, domain.ErrApprovalExpired
	}

	uc.logger.Info(req.TaskID, "approval", fmt.Sprintf("request %s %s by %s", req.ID, req.Status, in.DecidedBy))
	if err := uc.recordTransition(req, domain.ApprovalPending, req.Status, in.DecidedBy, ""); err != nil {
		return nil, err
	}
	return &DecideApprovalOutput{Request: req}, nil
}

func (uc *DecideApproval) recordTransition(req *domain.ApprovalRequest, from, to domain.ApprovalStatus, actor, detail string) error {
	if err := uc.audit.Record(domain.AuditEntry{
		Timestamp:  uc.clock.Now(),
		EntityType: domain.EntityApproval,
		EntityID:   req.ID,
		FromStatus: string(from),
		ToStatus:   string(to),
		Actor:      actor,
		Result:     "success",
		Detail:     detail,
	}); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}
