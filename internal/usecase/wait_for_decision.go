package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/loopgate/loopgate/internal/domain"
)

// WaitForDecisionInput contains the parameters for awaiting a decision.
// Fields are ordered to minimize memory padding.
type WaitForDecisionInput struct {
	RequestID    string
	Timeout      time.Duration // Upper bound on the wait (required, > 0; no unbounded waits)
	PollInterval time.Duration // Delay between status reads (0 = config default)
}

// WaitForDecisionOutput contains the request after the wait ended.
type WaitForDecisionOutput struct {
	Request *domain.ApprovalRequest
}

// WaitForDecision suspends the caller until the request's status leaves
// pending or the timeout elapses. The wait is cooperative polling: each poll
// is an independent store read, so no lock is held while suspended and other
// tasks and requests keep making progress. Cancelling the call (ctx) never
// mutates the request; only elapsing past expires_at does, and that
// transition is applied mechanically here.
type WaitForDecision struct {
	approvals    domain.ApprovalRepository
	audit        domain.AuditSink
	clock        domain.Clock
	logger       domain.Logger
	pollInterval time.Duration
}

// NewWaitForDecision creates a new WaitForDecision use case.
func NewWaitForDecision(approvals domain.ApprovalRepository, audit domain.AuditSink, clock domain.Clock, logger domain.Logger, pollInterval time.Duration) *WaitForDecision {
	return &WaitForDecision{
		approvals:    approvals,
		audit:        audit,
		clock:        clock,
		logger:       logger,
		pollInterval: pollInterval,
	}
}

// Execute waits for the decision. Returns ErrApprovalTimeout when the
// timeout elapses while the request is still pending and decidable, and
// ErrApprovalExpired when the request's TTL ran out.
func (uc *WaitForDecision) Execute(ctx context.Context, in WaitForDecisionInput) (*WaitForDecisionOutput, error) {
	if in.Timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be positive", domain.ErrValidation)
	}
	interval := in.PollInterval
	if interval <= 0 {
		interval = uc.pollInterval
	}

	// First poll happens immediately; a decided request returns without
	// sleeping at all.
	req, done, err := uc.poll(in.RequestID)
	if err != nil || done {
		return uc.result(req, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	timer := time.NewTimer(in.Timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			// Abandoning the call leaves the stored request untouched.
			return nil, ctx.Err()
		case <-timer.C:
			req, _, err := uc.poll(in.RequestID)
			if err != nil {
				return uc.result(req, err)
			}
			if req.Status.IsDecided() {
				return uc.result(req, nil)
			}
			return nil, domain.ErrApprovalTimeout
		case <-ticker.C:
			req, done, err := uc.poll(in.RequestID)
			if err != nil || done {
				return uc.result(req, err)
			}
		}
	}
}

// poll reads the request once, lazily expiring it when past its TTL.
// done reports that the status left pending.
func (uc *WaitForDecision) poll(requestID string) (*domain.ApprovalRequest, bool, error) {
	req, err := uc.approvals.Get(requestID)
	if err != nil {
		return nil, false, err
	}
	if req == nil {
		return nil, false, domain.ErrApprovalNotFound
	}
	if req.Status.IsDecided() {
		return req, true, nil
	}

	if req.IsExpiredAt(uc.clock.Now()) {
		expired, err := uc.expire(requestID)
		if err != nil {
			return nil, false, err
		}
		return expired, true, domain.ErrApprovalExpired
	}
	return req, false, nil
}

// expire applies the mechanical pending -> expired transition. A concurrent
// decision can still win the race; the stored status is what counts.
func (uc *WaitForDecision) expire(requestID string) (*domain.ApprovalRequest, error) {
	req, err := uc.approvals.Update(requestID, func(r *domain.ApprovalRequest) error {
		if r.Status != domain.ApprovalPending {
			return nil // Someone decided first; keep their transition.
		}
		r.Status = domain.ApprovalExpired
		return nil
	})
	if err != nil {
		return nil, err
	}
	if req.Status != domain.ApprovalExpired {
		return req, nil
	}

	uc.logger.Warn(req.TaskID, "approval", fmt.Sprintf("request %s expired without a decision", req.ID))
	if err := uc.audit.Record(domain.AuditEntry{
		Timestamp:  uc.clock.Now(),
		EntityType: domain.EntityApproval,
		EntityID:   req.ID,
		FromStatus: string(domain.ApprovalPending),
		ToStatus:   string(domain.ApprovalExpired),
		Actor:      "system",
		Result:     "success",
		Detail:     "ttl elapsed before decision",
	}); err != nil {
		return nil, fmt.Errorf("record audit entry: %w", err)
	}
	return req, nil
}

func (uc *WaitForDecision) result(req *domain.ApprovalRequest, err error) (*WaitForDecisionOutput, error) {
	if err != nil {
		if errors.Is(err, domain.ErrApprovalExpired) && req != nil {
			// Expired is an outcome, not a lookup failure; hand back the
			// record for diagnostics alongside the error.
			return &WaitForDecisionOutput{Request: req}, err
		}
		return nil, err
	}
	return &WaitForDecisionOutput{Request: req}, nil
}
