package jsonstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopgate/loopgate/internal/domain"
	"github.com/loopgate/loopgate/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	clock := &testutil.MockClock{NowTime: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
	store := New(filepath.Join(t.TempDir(), "state.json"), clock)
	require.NoError(t, store.Initialize())
	return store
}

func buildTask(item *domain.SourceItem) (*domain.Task, error) {
	return &domain.Task{
		ID:            uuid.NewString(),
		SourceRef:     item.Ref,
		Title:         item.Title,
		Status:        domain.StatusActive,
		MaxIterations: 5,
	}, nil
}

func TestStore_Initialize_Idempotent(t *testing.T) {
	clock := &testutil.MockClock{}
	store := New(filepath.Join(t.TempDir(), "nested", "state.json"), clock)
	assert.False(t, store.IsInitialized())

	require.NoError(t, store.Initialize())
	assert.True(t, store.IsInitialized())

	// Re-initializing must not wipe existing records.
	require.NoError(t, store.Enqueue(&domain.SourceItem{Ref: "issue-1", Title: "keep me"}))
	require.NoError(t, store.Initialize())
	items, err := store.ListPending()
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestStore_ReadBeforeInitialize(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "state.json"), &testutil.MockClock{})

	_, err := store.ListPending()

	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestStore_Enqueue_RejectsDuplicateRef(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Enqueue(&domain.SourceItem{Ref: "issue-1", Title: "first"}))

	err := store.Enqueue(&domain.SourceItem{Ref: "issue-1", Title: "again"})

	assert.ErrorIs(t, err, domain.ErrValidation)
	items, listErr := store.ListPending()
	require.NoError(t, listErr)
	assert.Len(t, items, 1)
}

func TestStore_ClaimNext_ReservesFirstPending(t *testing.T) {
	// Setup
	store := newTestStore(t)
	require.NoError(t, store.Enqueue(&domain.SourceItem{Ref: "issue-1", Title: "first"}))
	require.NoError(t, store.Enqueue(&domain.SourceItem{Ref: "issue-2", Title: "second"}))

	// Execute
	task, err := store.ClaimNext("worker-a", buildTask)

	// Assert - item and task committed together
	require.NoError(t, err)
	assert.Equal(t, "issue-1", task.SourceRef)
	got, err := store.Get(task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	pending, err := store.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "issue-2", pending[0].Ref)
}

func TestStore_ClaimNext_EmptyQueue(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ClaimNext("worker-a", buildTask)

	assert.ErrorIs(t, err, domain.ErrNoPendingItems)
}

func TestStore_ClaimNext_AllClaimedIsConflict(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Enqueue(&domain.SourceItem{Ref: "issue-1", Title: "only"}))
	_, err := store.ClaimNext("worker-a", buildTask)
	require.NoError(t, err)

	_, err = store.ClaimNext("worker-b", buildTask)

	assert.ErrorIs(t, err, domain.ErrClaimConflict)
}

func TestStore_Claim_SpecificRef(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Enqueue(&domain.SourceItem{Ref: "issue-1", Title: "first"}))
	require.NoError(t, store.Enqueue(&domain.SourceItem{Ref: "issue-2", Title: "second"}))

	task, err := store.Claim("issue-2", "worker-a", buildTask)

	require.NoError(t, err)
	assert.Equal(t, "issue-2", task.SourceRef)
}

func TestStore_Claim_Errors(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Enqueue(&domain.SourceItem{Ref: "issue-1", Title: "only"}))
	_, err := store.Claim("issue-1", "worker-a", buildTask)
	require.NoError(t, err)

	tests := []struct {
		name    string
		ref     string
		wantErr error
	}{
		{name: "already claimed", ref: "issue-1", wantErr: domain.ErrClaimConflict},
		{name: "unknown ref", ref: "issue-9", wantErr: domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Claim(tt.ref, "worker-b", buildTask)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStore_ClaimNext_ConcurrentClaimantsNeverShareAnItem(t *testing.T) {
	// Setup - more claimants than items
	store := newTestStore(t)
	const items = 5
	const claimants = 20
	for i := range items {
		require.NoError(t, store.Enqueue(&domain.SourceItem{
			Ref:   fmt.Sprintf("issue-%d", i),
			Title: fmt.Sprintf("item %d", i),
		}))
	}

	// Execute
	var wg sync.WaitGroup
	var mu sync.Mutex
	claimed := make(map[string]string) // ref -> claimant
	for i := range claimants {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker := fmt.Sprintf("worker-%d", i)
			task, err := store.ClaimNext(worker, buildTask)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if prev, dup := claimed[task.SourceRef]; dup {
				t.Errorf("ref %s claimed by both %s and %s", task.SourceRef, prev, worker)
			}
			claimed[task.SourceRef] = worker
		}()
	}
	wg.Wait()

	// Assert - every item claimed exactly once
	assert.Len(t, claimed, items)
	pending, err := store.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)
	tasks, err := store.List(domain.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, tasks, items)
}

func TestStore_Update_CommitsCallbackResult(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Enqueue(&domain.SourceItem{Ref: "issue-1", Title: "only"}))
	task, err := store.ClaimNext("worker-a", buildTask)
	require.NoError(t, err)

	updated, err := store.Update(task.ID, func(t *domain.Task) error {
		t.Iteration = 3
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, updated.Iteration)
	// A fresh store over the same file sees the committed state.
	reread := New(store.path, store.clock)
	got, err := reread.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Iteration)
}

func TestStore_Update_CallbackErrorDiscardsChanges(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Enqueue(&domain.SourceItem{Ref: "issue-1", Title: "only"}))
	task, err := store.ClaimNext("worker-a", buildTask)
	require.NoError(t, err)

	_, err = store.Update(task.ID, func(t *domain.Task) error {
		t.Iteration = 99
		return domain.ErrInvalidTransition
	})

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	got, getErr := store.Get(task.ID)
	require.NoError(t, getErr)
	assert.Equal(t, 0, got.Iteration, "failed update must not be committed")
}

func TestStore_Update_UnknownTask(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Update("missing", func(*domain.Task) error { return nil })

	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestStore_Get_MissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	task, err := store.Get("missing")

	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestStore_List_OrderedByCreation(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"t-c", "t-a", "t-b"} {
		require.NoError(t, store.Enqueue(&domain.SourceItem{Ref: id, Title: id}))
		created := base.Add(time.Duration(2-i) * time.Hour)
		_, err := store.Claim(id, "worker-a", func(item *domain.SourceItem) (*domain.Task, error) {
			return &domain.Task{ID: item.Ref, SourceRef: item.Ref, Status: domain.StatusActive, Created: created, MaxIterations: 5}, nil
		})
		require.NoError(t, err)
	}

	tasks, err := store.List(domain.TaskFilter{})

	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "t-b", tasks[0].ID)
	assert.Equal(t, "t-a", tasks[1].ID)
	assert.Equal(t, "t-c", tasks[2].ID)
}

func TestStore_Groups_SaveAndList(t *testing.T) {
	store := newTestStore(t)
	groups := store.Groups()
	require.NoError(t, groups.Save(&domain.Group{
		ID: "g1", Strategy: domain.StrategySequential, Status: domain.GroupPending, TaskIDs: []string{"t1"},
	}))

	got, err := groups.Get("g1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.StrategySequential, got.Strategy)

	// Save is an upsert.
	got.Status = domain.GroupComplete
	require.NoError(t, groups.Save(got))
	all, err := groups.List()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.GroupComplete, all[0].Status)
}

func TestStore_Approvals_CreateGetUpdate(t *testing.T) {
	store := newTestStore(t)
	approvals := store.Approvals()
	req := &domain.ApprovalRequest{
		ID:     "r1",
		Class:  domain.ActionReversible,
		Status: domain.ApprovalPending,
	}
	require.NoError(t, approvals.Create(req))

	err := approvals.Create(req)
	assert.ErrorIs(t, err, domain.ErrValidation, "duplicate request ID rejected")

	updated, err := approvals.Update("r1", func(r *domain.ApprovalRequest) error {
		r.Status = domain.ApprovalApproved
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalApproved, updated.Status)

	_, err = approvals.Update("missing", func(*domain.ApprovalRequest) error { return nil })
	assert.ErrorIs(t, err, domain.ErrApprovalNotFound)
}

func TestStore_Read_CorruptFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.path, []byte("{not json"), 0o600))

	_, err := store.ListPending()

	assert.ErrorIs(t, err, domain.ErrStateCorruption)
}
