package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopgate/loopgate/internal/domain"
	"github.com/loopgate/loopgate/internal/testutil"
)

func newWaitFixture(t *testing.T) (*WaitForDecision, *testutil.MockStore, *testutil.MockClock) {
	t.Helper()
	clock := &testutil.MockClock{NowTime: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
	store := testutil.NewMockStore(clock)
	uc := NewWaitForDecision(store.ApprovalRepo(), &testutil.MockAuditSink{}, clock, testutil.NopLogger{}, time.Millisecond)
	return uc, store, clock
}

func TestWaitForDecision_Execute_AlreadyDecided(t *testing.T) {
	// Setup
	uc, store, clock := newWaitFixture(t)
	req := pendingRequest(clock, time.Hour)
	req.Status = domain.ApprovalApproved
	store.Approvals["r1"] = req

	// Execute - must return on the immediate first poll
	start := time.Now()
	out, err := uc.Execute(context.Background(), WaitForDecisionInput{
		RequestID: "r1",
		Timeout:   time.Minute,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalApproved, out.Request.Status)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitForDecision_Execute_DecisionArrivesDuringWait(t *testing.T) {
	// Setup
	uc, store, clock := newWaitFixture(t)
	store.Approvals["r1"] = pendingRequest(clock, time.Hour)

	// Decide from the side after a few poll intervals
	go func() {
		time.Sleep(10 * time.Millisecond)
		_, _ = store.UpdateApproval("r1", func(r *domain.ApprovalRequest) error {
			r.Status = domain.ApprovalRejected
			return nil
		})
	}()

	// Execute
	out, err := uc.Execute(context.Background(), WaitForDecisionInput{
		RequestID: "r1",
		Timeout:   5 * time.Second,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalRejected, out.Request.Status)
}

func TestWaitForDecision_Execute_Timeout(t *testing.T) {
	// Setup - nobody decides within the timeout
	uc, store, clock := newWaitFixture(t)
	store.Approvals["r1"] = pendingRequest(clock, time.Hour)

	// Execute
	_, err := uc.Execute(context.Background(), WaitForDecisionInput{
		RequestID: "r1",
		Timeout:   20 * time.Millisecond,
	})

	// Assert - the request stays pending; timing out is not a decision
	assert.ErrorIs(t, err, domain.ErrApprovalTimeout)
	assert.Equal(t, domain.ApprovalPending, store.Approvals["r1"].Status)
}

func TestWaitForDecision_Execute_ExpiresLazily(t *testing.T) {
	// Setup - the TTL is already past when the wait starts
	uc, store, clock := newWaitFixture(t)
	store.Approvals["r1"] = pendingRequest(clock, time.Hour)
	clock.Advance(2 * time.Hour)

	// Execute
	out, err := uc.Execute(context.Background(), WaitForDecisionInput{
		RequestID: "r1",
		Timeout:   time.Minute,
	})

	// Assert - the mechanical transition is applied and reported
	assert.ErrorIs(t, err, domain.ErrApprovalExpired)
	require.NotNil(t, out, "the expired record is returned for diagnostics")
	assert.Equal(t, domain.ApprovalExpired, out.Request.Status)
	assert.Equal(t, domain.ApprovalExpired, store.Approvals["r1"].Status)
}

func TestWaitForDecision_Execute_CancelDoesNotMutate(t *testing.T) {
	// Setup
	uc, store, clock := newWaitFixture(t)
	store.Approvals["r1"] = pendingRequest(clock, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	// Execute
	_, err := uc.Execute(ctx, WaitForDecisionInput{
		RequestID: "r1",
		Timeout:   time.Minute,
	})

	// Assert - abandoning the wait leaves the request pending
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.ApprovalPending, store.Approvals["r1"].Status)
}

func TestWaitForDecision_Execute_TimeoutRequired(t *testing.T) {
	uc, _, _ := newWaitFixture(t)

	_, err := uc.Execute(context.Background(), WaitForDecisionInput{RequestID: "r1"})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWaitForDecision_Execute_NotFound(t *testing.T) {
	uc, _, _ := newWaitFixture(t)

	_, err := uc.Execute(context.Background(), WaitForDecisionInput{
		RequestID: "missing",
		Timeout:   time.Minute,
	})

	assert.ErrorIs(t, err, domain.ErrApprovalNotFound)
}
