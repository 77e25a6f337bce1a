package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loopgate/loopgate/internal/domain"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "task not found", err: domain.ErrTaskNotFound, want: ExitNotFound},
		{name: "group not found", err: domain.ErrGroupNotFound, want: ExitNotFound},
		{name: "approval not found", err: domain.ErrApprovalNotFound, want: ExitNotFound},
		{name: "no pending items", err: domain.ErrNoPendingItems, want: ExitNotFound},
		{name: "claim conflict", err: domain.ErrClaimConflict, want: ExitClaimConflict},
		{name: "execution in flight", err: domain.ErrExecutionInFlight, want: ExitClaimConflict},
		{name: "validation", err: domain.ErrValidation, want: ExitValidation},
		{name: "invalid transition", err: domain.ErrInvalidTransition, want: ExitValidation},
		{name: "empty title", err: domain.ErrEmptyTitle, want: ExitValidation},
		{name: "empty note", err: domain.ErrEmptyNote, want: ExitValidation},
		{name: "wrapped sentinel", err: fmt.Errorf("claim issue-1: %w", domain.ErrClaimConflict), want: ExitClaimConflict},
		{name: "plain error", err: errors.New("boom"), want: ExitError},
		{name: "coded error", err: &CodeError{Code: 6}, want: 6},
		{name: "coded error wins over sentinel", err: &CodeError{Err: domain.ErrTaskNotFound, Code: 7}, want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestCodeError_Error(t *testing.T) {
	assert.Equal(t, "exit code 5", (&CodeError{Code: 5}).Error())
	assert.Equal(t, "task not found", (&CodeError{Err: domain.ErrTaskNotFound, Code: 7}).Error())
	assert.ErrorIs(t, &CodeError{Err: domain.ErrTaskNotFound, Code: 7}, domain.ErrTaskNotFound)
}
