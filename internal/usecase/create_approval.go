package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/loopgate/loopgate/internal/domain"
)

// CreateApprovalInput contains the parameters for opening an approval request.
// Fields are ordered to minimize memory padding.
type CreateApprovalInput struct {
	Payload json.RawMessage    // Opaque action payload handed to the executor
	TaskID  string             // Originating task (optional)
	Actor   string             // Recorded in the audit log
	Class   domain.ActionClass // reversible or irreversible
	TTL     time.Duration      // Time the request stays decidable (required, > 0)
}

// CreateApprovalOutput contains the created request.
type CreateApprovalOutput struct {
	Request *domain.ApprovalRequest
}

// CreateApproval opens a pending approval request gating one externally
// visible action. TTLs for irreversible classes should be short (hours, not
// days); the caller supplies the value, this core only validates it.
type CreateApproval struct {
	approvals domain.ApprovalRepository
	audit     domain.AuditSink
	clock     domain.Clock
	logger    domain.Logger
}

// NewCreateApproval creates a new CreateApproval use case.
func NewCreateApproval(approvals domain.ApprovalRepository, audit domain.AuditSink, clock domain.Clock, logger domain.Logger) *CreateApproval {
	return &CreateApproval{approvals: approvals, audit: audit, clock: clock, logger: logger}
}

// Execute creates the pending request with expires_at = now + ttl.
func (uc *CreateApproval) Execute(_ context.Context, in CreateApprovalInput) (*CreateApprovalOutput, error) {
	if !in.Class.IsValid() {
		return nil, fmt.Errorf("%w: unknown action class %q", domain.ErrValidation, in.Class)
	}
	if in.TTL <= 0 {
		return nil, fmt.Errorf("%w: ttl must be positive", domain.ErrValidation)
	}
	if len(in.Payload) == 0 {
		return nil, fmt.Errorf("%w: payload is required", domain.ErrValidation)
	}
	if !json.Valid(in.Payload) {
		return nil, fmt.Errorf("%w: payload must be valid JSON", domain.ErrValidation)
	}

	now := uc.clock.Now()
	req := &domain.ApprovalRequest{
		ID:        uuid.NewString(),
		TaskID:    in.TaskID,
		Class:     in.Class,
		Status:    domain.ApprovalPending,
		Payload:   in.Payload,
		Created:   now,
		ExpiresAt: now.Add(in.TTL),
	}
	if err := uc.approvals.Create(req); err != nil {
		return nil, fmt.Errorf("create approval request: %w", err)
	}

	uc.logger.Info(req.TaskID, "approval", fmt.Sprintf("request %s opened (%s, ttl %s)", req.ID, req.Class, in.TTL))
	if err := uc.audit.Record(domain.AuditEntry{
		Timestamp:  now,
		EntityType: domain.EntityApproval,
		EntityID:   req.ID,
		FromStatus: "",
		ToStatus:   string(domain.ApprovalPending),
		Actor:      in.Actor,
		Result:     "success",
		Detail:     fmt.Sprintf("class=%s ttl=%s", req.Class, in.TTL),
	}); err != nil {
		return nil, fmt.Errorf("record audit entry: %w", err)
	}

	return &CreateApprovalOutput{Request: req}, nil
}
