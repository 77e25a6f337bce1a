// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/loopgate/loopgate/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// Advance moves the clock forward.
func (m *MockClock) Advance(d time.Duration) {
	m.NowTime = m.NowTime.Add(d)
}

// MockStore is an in-memory test double for the state store ports
// (SourceQueue, TaskRepository, GroupRepository, ApprovalRepository).
// Like the real store, reads hand out copies and every method serializes on
// a lock, so concurrent use cases see consistent records.
// Fields are ordered to minimize memory padding.
type MockStore struct {
	Tasks     map[string]*domain.Task
	Groups    map[string]*domain.Group
	Approvals map[string]*domain.ApprovalRequest
	Source    []*domain.SourceItem
	Clock     *MockClock
	SaveErr   error
	GetErr    error
	mu        sync.Mutex
}

// NewMockStore creates a MockStore with initialized maps.
func NewMockStore(clock *MockClock) *MockStore {
	return &MockStore{
		Tasks:     make(map[string]*domain.Task),
		Groups:    make(map[string]*domain.Group),
		Approvals: make(map[string]*domain.ApprovalRequest),
		Clock:     clock,
	}
}

// Enqueue adds a pending source item.
func (m *MockStore) Enqueue(item *domain.SourceItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Source = append(m.Source, item)
	return nil
}

// ListPending returns unclaimed source items.
func (m *MockStore) ListPending() ([]*domain.SourceItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*domain.SourceItem
	for _, i := range m.Source {
		if !i.IsClaimed() {
			copied := *i
			items = append(items, &copied)
		}
	}
	return items, nil
}

// ClaimNext reserves the first unclaimed item.
func (m *MockStore) ClaimNext(claimant string, build func(*domain.SourceItem) (*domain.Task, error)) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Source) == 0 {
		return nil, domain.ErrNoPendingItems
	}
	for _, item := range m.Source {
		if item.IsClaimed() {
			continue
		}
		return m.claim(item, claimant, build)
	}
	return nil, domain.ErrClaimConflict
}

// Claim reserves the specific item by ref.
func (m *MockStore) Claim(ref, claimant string, build func(*domain.SourceItem) (*domain.Task, error)) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.Source {
		if item.Ref != ref {
			continue
		}
		if item.IsClaimed() {
			return nil, domain.ErrClaimConflict
		}
		return m.claim(item, claimant, build)
	}
	return nil, domain.ErrNotFound
}

func (m *MockStore) claim(item *domain.SourceItem, claimant string, build func(*domain.SourceItem) (*domain.Task, error)) (*domain.Task, error) {
	task, err := build(item)
	if err != nil {
		return nil, err
	}
	item.ClaimedBy = claimant
	item.ClaimedAt = m.Clock.Now()
	item.TaskID = task.ID
	m.Tasks[task.ID] = task
	return task, nil
}

// Get retrieves a task by ID.
func (m *MockStore) Get(id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	t, ok := m.Tasks[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

// List retrieves tasks matching the filter.
func (m *MockStore) List(filter domain.TaskFilter) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tasks []*domain.Task
	for _, t := range m.Tasks {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Stuck && !t.IsStuck() {
			continue
		}
		copied := *t
		tasks = append(tasks, &copied)
	}
	return tasks, nil
}

// Update applies fn to the stored task.
func (m *MockStore) Update(id string, fn func(*domain.Task) error) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if err := fn(t); err != nil {
		return nil, err
	}
	copied := *t
	return &copied, nil
}

// GetGroup retrieves a group by ID.
func (m *MockStore) GetGroup(id string) (*domain.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.Groups[id]
	if !ok {
		return nil, nil
	}
	return g, nil
}

// ListGroups retrieves all groups.
func (m *MockStore) ListGroups() ([]*domain.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var groups []*domain.Group
	for _, g := range m.Groups {
		groups = append(groups, g)
	}
	return groups, nil
}

// SaveGroup creates or updates a group.
func (m *MockStore) SaveGroup(group *domain.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Groups[group.ID] = group
	return nil
}

// GetApproval retrieves a request by ID.
func (m *MockStore) GetApproval(id string) (*domain.ApprovalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	r, ok := m.Approvals[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

// ListApprovals retrieves requests with the given status (empty = all).
func (m *MockStore) ListApprovals(status domain.ApprovalStatus) ([]*domain.ApprovalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var reqs []*domain.ApprovalRequest
	for _, r := range m.Approvals {
		if status != "" && r.Status != status {
			continue
		}
		copied := *r
		reqs = append(reqs, &copied)
	}
	return reqs, nil
}

// CreateApproval persists a new request.
func (m *MockStore) CreateApproval(req *domain.ApprovalRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Approvals[req.ID] = req
	return nil
}

// UpdateApproval applies fn to the stored request.
func (m *MockStore) UpdateApproval(id string, fn func(*domain.ApprovalRequest) error) (*domain.ApprovalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Approvals[id]
	if !ok {
		return nil, domain.ErrApprovalNotFound
	}
	if err := fn(r); err != nil {
		return nil, err
	}
	copied := *r
	return &copied, nil
}

// Groups port views matching the jsonstore shape.

// GroupRepo returns the GroupRepository view.
func (m *MockStore) GroupRepo() domain.GroupRepository { return mockGroupView{m} }

// ApprovalRepo returns the ApprovalRepository view.
func (m *MockStore) ApprovalRepo() domain.ApprovalRepository { return mockApprovalView{m} }

type mockGroupView struct{ m *MockStore }

func (v mockGroupView) Get(id string) (*domain.Group, error) { return v.m.GetGroup(id) }
func (v mockGroupView) List() ([]*domain.Group, error)       { return v.m.ListGroups() }
func (v mockGroupView) Save(g *domain.Group) error           { return v.m.SaveGroup(g) }

type mockApprovalView struct{ m *MockStore }

func (v mockApprovalView) Get(id string) (*domain.ApprovalRequest, error) { return v.m.GetApproval(id) }
func (v mockApprovalView) List(status domain.ApprovalStatus) ([]*domain.ApprovalRequest, error) {
	return v.m.ListApprovals(status)
}
func (v mockApprovalView) Create(r *domain.ApprovalRequest) error { return v.m.CreateApproval(r) }
func (v mockApprovalView) Update(id string, fn func(*domain.ApprovalRequest) error) (*domain.ApprovalRequest, error) {
	return v.m.UpdateApproval(id, fn)
}

// MockAuditSink records entries in memory.
type MockAuditSink struct {
	Entries []domain.AuditEntry
	Err     error
	mu      sync.Mutex
}

// Record appends the entry.
func (m *MockAuditSink) Record(entry domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Entries = append(m.Entries, entry)
	return nil
}

// MockCompletionChecker is a test double for domain.CompletionChecker.
type MockCompletionChecker struct {
	DoneResult bool
	Err        error
	Calls      int
	// DoneAfter, when > 0, reports done only from the Nth call onward.
	DoneAfter int
	// DoneByTask, when set for a task ID, overrides the shared result.
	DoneByTask map[string]bool
	mu         sync.Mutex
}

// Done returns the configured result.
func (m *MockCompletionChecker) Done(_ context.Context, task *domain.Task) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return false, m.Err
	}
	if done, ok := m.DoneByTask[task.ID]; ok {
		return done, nil
	}
	if m.DoneAfter > 0 {
		return m.Calls >= m.DoneAfter, nil
	}
	return m.DoneResult, nil
}

// MockExecutor is a test double for domain.ActionExecutor.
// Results are consumed in order; the last one repeats.
type MockExecutor struct {
	Results []domain.ExecutionResult
	Err     error
	Calls   int
	// Delay is slept before each call, simulating a slow real-world action.
	// Set it before handing the mock to concurrent callers.
	Delay time.Duration
	mu    sync.Mutex
}

// Execute returns the next configured result.
func (m *MockExecutor) Execute(_ context.Context, _ *domain.ApprovalRequest) (domain.ExecutionResult, error) {
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.Calls
	m.Calls++
	if m.Err != nil {
		return domain.ExecutionResult{}, m.Err
	}
	if len(m.Results) == 0 {
		return domain.ExecutionResult{Success: true}, nil
	}
	if i >= len(m.Results) {
		i = len(m.Results) - 1
	}
	return m.Results[i], nil
}

// NopLogger discards all log output.
type NopLogger struct{}

// Debug does nothing.
func (NopLogger) Debug(string, string, string) {}

// Info does nothing.
func (NopLogger) Info(string, string, string) {}

// Warn does nothing.
func (NopLogger) Warn(string, string, string) {}

// Error does nothing.
func (NopLogger) Error(string, string, string) {}

// MockEstimator returns a fixed estimate per task type.
type MockEstimator struct {
	Estimates map[string]domain.Estimate
	Fallback  domain.Estimate
}

// Estimate returns the configured estimate, or the fallback.
func (m *MockEstimator) Estimate(taskType string) domain.Estimate {
	if est, ok := m.Estimates[taskType]; ok {
		return est
	}
	return m.Fallback
}

// MockAuditReader serves entries from memory, keyed by day partition.
type MockAuditReader struct {
	Entries []domain.AuditEntry
	Err     error
}

// List returns the entries in the given day partition.
func (m *MockAuditReader) List(day string) ([]domain.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []domain.AuditEntry
	for _, e := range m.Entries {
		if e.Partition() == day {
			out = append(out, e)
		}
	}
	return out, nil
}

// Tail returns the most recent n entries.
func (m *MockAuditReader) Tail(n int) ([]domain.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if n > len(m.Entries) {
		n = len(m.Entries)
	}
	return m.Entries[len(m.Entries)-n:], nil
}
