package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopgate/loopgate/internal/domain"
	"github.com/loopgate/loopgate/internal/testutil"
)

// fastRetry keeps backoff delays negligible in tests.
var fastRetry = domain.RetryPolicy{
	InitialInterval: time.Microsecond,
	MaxInterval:     time.Millisecond,
	MaxAttempts:     3,
}

func newExecuteFixture(t *testing.T) (*ExecuteApproval, *testutil.MockStore, *testutil.MockExecutor, *testutil.MockClock) {
	t.Helper()
	clock := &testutil.MockClock{NowTime: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
	store := testutil.NewMockStore(clock)
	exec := &testutil.MockExecutor{}
	uc := NewExecuteApproval(store.ApprovalRepo(), exec, &testutil.MockAuditSink{}, clock, testutil.NopLogger{})
	return uc, store, exec, clock
}

func approvedRequest(clock *testutil.MockClock, class domain.ActionClass) *domain.ApprovalRequest {
	req := pendingRequest(clock, time.Hour)
	req.Status = domain.ApprovalApproved
	req.Class = class
	return req
}

func TestExecuteApproval_Execute_Success(t *testing.T) {
	// Setup
	uc, store, exec, clock := newExecuteFixture(t)
	store.Approvals["r1"] = approvedRequest(clock, domain.ActionReversible)
	exec.Results = []domain.ExecutionResult{{Success: true, Detail: "sent"}}

	// Execute
	out, err := uc.Execute(context.Background(), ExecuteApprovalInput{RequestID: "r1", Retry: fastRetry})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalDone, out.Request.Status)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, "sent", out.Detail)
}

func TestExecuteApproval_Execute_TransientRetriesThenSucceeds(t *testing.T) {
	// Setup - two transient failures before success
	uc, store, exec, clock := newExecuteFixture(t)
	store.Approvals["r1"] = approvedRequest(clock, domain.ActionReversible)
	exec.Results = []domain.ExecutionResult{
		{Transient: true, Detail: "rate limited"},
		{Transient: true, Detail: "rate limited"},
		{Success: true, Detail: "sent"},
	}

	// Execute
	out, err := uc.Execute(context.Background(), ExecuteApprovalInput{RequestID: "r1", Retry: fastRetry})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalDone, out.Request.Status)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, 3, exec.Calls)
}

func TestExecuteApproval_Execute_TransientExhaustsRetries(t *testing.T) {
	// Setup - every attempt fails transiently
	uc, store, exec, clock := newExecuteFixture(t)
	store.Approvals["r1"] = approvedRequest(clock, domain.ActionReversible)
	exec.Results = []domain.ExecutionResult{{Transient: true, Detail: "still down"}}

	// Execute
	out, err := uc.Execute(context.Background(), ExecuteApprovalInput{RequestID: "r1", Retry: fastRetry})

	// Assert - the retry bound holds and the request lands on failed
	assert.ErrorIs(t, err, domain.ErrActionExecution)
	require.NotNil(t, out)
	assert.Equal(t, domain.ApprovalFailed, out.Request.Status)
	assert.Equal(t, 3, out.Attempts)
	assert.NotEmpty(t, store.Approvals["r1"].LastError)
}

func TestExecuteApproval_Execute_PermanentFailureDoesNotRetry(t *testing.T) {
	// Setup
	uc, store, exec, clock := newExecuteFixture(t)
	store.Approvals["r1"] = approvedRequest(clock, domain.ActionReversible)
	exec.Results = []domain.ExecutionResult{{Detail: "invalid recipient"}}

	// Execute
	out, err := uc.Execute(context.Background(), ExecuteApprovalInput{RequestID: "r1", Retry: fastRetry})

	// Assert
	assert.ErrorIs(t, err, domain.ErrActionExecution)
	require.NotNil(t, out)
	assert.Equal(t, domain.ApprovalFailed, out.Request.Status)
	assert.Equal(t, 1, exec.Calls, "permanent failures are never retried")
}

func TestExecuteApproval_Execute_IrreversibleSingleAttempt(t *testing.T) {
	// Setup - transient failure, but the class forbids automatic retry
	uc, store, exec, clock := newExecuteFixture(t)
	store.Approvals["r1"] = approvedRequest(clock, domain.ActionIrreversible)
	exec.Results = []domain.ExecutionResult{{Transient: true, Detail: "timeout"}}

	// Execute
	out, err := uc.Execute(context.Background(), ExecuteApprovalInput{RequestID: "r1", Retry: fastRetry})

	// Assert
	assert.ErrorIs(t, err, domain.ErrActionExecution)
	require.NotNil(t, out)
	assert.Equal(t, domain.ApprovalFailed, out.Request.Status)
	assert.Equal(t, 1, exec.Calls, "irreversible actions execute exactly once")
}

func TestExecuteApproval_Execute_ExecutorErrorIsPermanent(t *testing.T) {
	// Setup - the executor program could not run at all
	uc, store, exec, clock := newExecuteFixture(t)
	store.Approvals["r1"] = approvedRequest(clock, domain.ActionReversible)
	exec.Err = assert.AnError

	// Execute
	out, err := uc.Execute(context.Background(), ExecuteApprovalInput{RequestID: "r1", Retry: fastRetry})

	// Assert
	require.Error(t, err)
	require.NotNil(t, out)
	assert.Equal(t, domain.ApprovalFailed, out.Request.Status)
	assert.Equal(t, 1, exec.Calls)
}

func TestExecuteApproval_Execute_OnlyApprovedRuns(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.ApprovalStatus
		expired bool
		wantErr error
	}{
		{"pending", domain.ApprovalPending, false, domain.ErrNotApproved},
		{"pending past ttl", domain.ApprovalPending, true, domain.ErrApprovalExpired},
		{"rejected", domain.ApprovalRejected, false, domain.ErrApprovalRejected},
		{"expired", domain.ApprovalExpired, false, domain.ErrApprovalExpired},
		{"done", domain.ApprovalDone, false, domain.ErrInvalidTransition},
		{"failed", domain.ApprovalFailed, false, domain.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, store, exec, clock := newExecuteFixture(t)
			req := pendingRequest(clock, time.Hour)
			req.Status = tt.status
			store.Approvals["r1"] = req
			if tt.expired {
				clock.Advance(2 * time.Hour)
			}

			_, err := uc.Execute(context.Background(), ExecuteApprovalInput{RequestID: "r1", Retry: fastRetry})

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, exec.Calls, "the executor must never run")
		})
	}
}

func TestExecuteApproval_Execute_NotFound(t *testing.T) {
	uc, _, _, _ := newExecuteFixture(t)

	_, err := uc.Execute(context.Background(), ExecuteApprovalInput{RequestID: "missing", Retry: fastRetry})

	assert.ErrorIs(t, err, domain.ErrApprovalNotFound)
}

func TestExecuteApproval_Execute_NoExecutorConfigured(t *testing.T) {
	clock := &testutil.MockClock{NowTime: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
	store := testutil.NewMockStore(clock)
	store.Approvals["r1"] = approvedRequest(clock, domain.ActionReversible)
	uc := NewExecuteApproval(store.ApprovalRepo(), nil, &testutil.MockAuditSink{}, clock, testutil.NopLogger{})

	_, err := uc.Execute(context.Background(), ExecuteApprovalInput{RequestID: "r1", Retry: fastRetry})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.ApprovalApproved, store.Approvals["r1"].Status, "request stays executable")
}

func TestExecuteApproval_Execute_ConcurrentCallersRunActionOnce(t *testing.T) {
	// Setup - a slow irreversible action with two racing callers
	uc, store, exec, clock := newExecuteFixture(t)
	store.Approvals["r1"] = approvedRequest(clock, domain.ActionIrreversible)
	exec.Delay = 50 * time.Millisecond
	exec.Results = []domain.ExecutionResult{{Success: true, Detail: "paid"}}

	// Execute
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), ExecuteApprovalInput{RequestID: "r1", Retry: fastRetry})
		}()
	}
	wg.Wait()

	// Assert - the loser is refused before the action runs a second time
	assert.Equal(t, 1, exec.Calls, "an irreversible action must execute at most once")
	var succeeded, refused int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		refused++
		assert.ErrorIs(t, err, domain.ErrExecutionInFlight)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, refused)
	assert.Equal(t, domain.ApprovalDone, store.Approvals["r1"].Status)
	assert.False(t, store.Approvals["r1"].Executing, "reservation released on completion")
}

func TestExecuteApproval_Execute_StaleReservationIsRefused(t *testing.T) {
	uc, store, exec, clock := newExecuteFixture(t)
	req := approvedRequest(clock, domain.ActionReversible)
	req.Executing = true
	store.Approvals["r1"] = req

	_, err := uc.Execute(context.Background(), ExecuteApprovalInput{RequestID: "r1", Retry: fastRetry})

	assert.ErrorIs(t, err, domain.ErrExecutionInFlight)
	assert.Equal(t, 0, exec.Calls)
}
