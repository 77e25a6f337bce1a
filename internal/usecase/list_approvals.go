package usecase

import (
	"context"

	"github.com/loopgate/loopgate/internal/domain"
)

// ListApprovalsInput contains the status filter.
type ListApprovalsInput struct {
	Status domain.ApprovalStatus // empty = all
}

// ListApprovalsOutput contains the matching requests.
type ListApprovalsOutput struct {
	Requests []*domain.ApprovalRequest
}

// ListApprovals queries approval requests by status. Pending approvals are
// always a fresh query over the store, never a cached list.
type ListApprovals struct {
	approvals domain.ApprovalRepository
}

// NewListApprovals creates a new ListApprovals use case.
func NewListApprovals(approvals domain.ApprovalRepository) *ListApprovals {
	return &ListApprovals{approvals: approvals}
}

// Execute lists the requests.
func (uc *ListApprovals) Execute(_ context.Context, in ListApprovalsInput) (*ListApprovalsOutput, error) {
	reqs, err := uc.approvals.List(in.Status)
	if err != nil {
		return nil, err
	}
	return &ListApprovalsOutput{Requests: reqs}, nil
}

// CheckApprovalInput contains the request ID to read.
type CheckApprovalInput struct {
	RequestID string
}

// CheckApprovalOutput contains the request.
type CheckApprovalOutput struct {
	Request *domain.ApprovalRequest
}

// CheckApproval is a pure status read.
type CheckApproval struct {
	approvals domain.ApprovalRepository
}

// NewCheckApproval creates a new CheckApproval use case.
func NewCheckApproval(approvals domain.ApprovalRepository) *CheckApproval {
	return &CheckApproval{approvals: approvals}
}

// Execute reads the request.
func (uc *CheckApproval) Execute(_ context.Context, in CheckApprovalInput) (*CheckApprovalOutput, error) {
	req, err := uc.approvals.Get(in.RequestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrApprovalNotFound
	}
	return &CheckApprovalOutput{Request: req}, nil
}
