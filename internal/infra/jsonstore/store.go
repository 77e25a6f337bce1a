// Package jsonstore provides the flock-guarded JSON state store backing the
// source queue, task, group, and approval repositories.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/loopgate/loopgate/internal/domain"
)

// storeData represents the JSON file structure.
// Fields are ordered to minimize memory padding.
type storeData struct {
	Source    []*domain.SourceItem               `json:"source"`
	Tasks     map[string]*domain.Task            `json:"tasks"`
	Groups    map[string]*domain.Group           `json:"groups"`
	Approvals map[string]*domain.ApprovalRequest `json:"approvals"`
}

// Store implements the state store repositories over a single JSON file.
// Writes go through an exclusive flock plus tmp-file-and-rename commit, so a
// reader never observes a partially written record and read-modify-write
// updates are linearizable per store.
type Store struct {
	clock    domain.Clock
	path     string
	lockPath string
}

// New creates a new Store for the given file path.
// The file does not need to exist; Initialize creates it.
func New(path string, clock domain.Clock) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
		clock:    clock,
	}
}

// IsInitialized checks if the store file exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Initialize creates an empty store file if it doesn't exist.
func (s *Store) Initialize() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return nil // Already exists
	}

	return s.write(newStoreData())
}

func newStoreData() *storeData {
	return &storeData{
		Tasks:     make(map[string]*domain.Task),
		Groups:    make(map[string]*domain.Group),
		Approvals: make(map[string]*domain.ApprovalRequest),
	}
}

// === SourceQueue ===

// Enqueue adds a pending source item.
func (s *Store) Enqueue(item *domain.SourceItem) error {
	return s.withLockWrite(func(data *storeData) error {
		for _, existing := range data.Source {
			if existing.Ref == item.Ref {
				return fmt.Errorf("%w: source ref %q already enqueued", domain.ErrValidation, item.Ref)
			}
		}
		data.Source = append(data.Source, item)
		return nil
	})
}

// ListPending retrieves unclaimed source items in enqueue order.
func (s *Store) ListPending() ([]*domain.SourceItem, error) {
	var items []*domain.SourceItem
	err := s.withLock(func(data *storeData) error {
		for _, item := range data.Source {
			if !item.IsClaimed() {
				items = append(items, item)
			}
		}
		return nil
	})
	return items, err
}

// ClaimNext atomically reserves the first unclaimed source item and persists
// the task record built from it in the same committed write.
func (s *Store) ClaimNext(claimant string, build func(*domain.SourceItem) (*domain.Task, error)) (*domain.Task, error) {
	var task *domain.Task
	err := s.withLockWrite(func(data *storeData) error {
		if len(data.Source) == 0 {
			return domain.ErrNoPendingItems
		}
		for _, item := range data.Source {
			if item.IsClaimed() {
				continue
			}
			return s.claimItem(data, item, claimant, build, &task)
		}
		// Items exist but every one is already held by another claimant.
		return domain.ErrClaimConflict
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Claim reserves the specific source item by ref.
func (s *Store) Claim(ref, claimant string, build func(*domain.SourceItem) (*domain.Task, error)) (*domain.Task, error) {
	var task *domain.Task
	err := s.withLockWrite(func(data *storeData) error {
		for _, item := range data.Source {
			if item.Ref != ref {
				continue
			}
			if item.IsClaimed() {
				return domain.ErrClaimConflict
			}
			return s.claimItem(data, item, claimant, build, &task)
		}
		return domain.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Store) claimItem(data *storeData, item *domain.SourceItem, claimant string, build func(*domain.SourceItem) (*domain.Task, error), out **domain.Task) error {
	task, err := build(item)
	if err != nil {
		return err
	}
	item.ClaimedBy = claimant
	item.ClaimedAt = s.clock.Now()
	item.TaskID = task.ID
	data.Tasks[task.ID] = task
	*out = task
	return nil
}

// === TaskRepository ===

// Get retrieves a task by ID. Returns nil if not found.
func (s *Store) Get(id string) (*domain.Task, error) {
	var task *domain.Task
	err := s.withLock(func(data *storeData) error {
		task = data.Tasks[id]
		return nil
	})
	return task, err
}

// List retrieves tasks matching the filter, ordered by creation time.
func (s *Store) List(filter domain.TaskFilter) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.withLock(func(data *storeData) error {
		for _, t := range data.Tasks {
			if filter.Status != "" && t.Status != filter.Status {
				continue
			}
			if filter.Stuck && !t.IsStuck() {
				continue
			}
			tasks = append(tasks, t)
		}
		return nil
	})

	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	return tasks, err
}

// Update applies fn to the stored task under the exclusive lock and commits
// the result atomically.
func (s *Store) Update(id string, fn func(*domain.Task) error) (*domain.Task, error) {
	var task *domain.Task
	err := s.withLockWrite(func(data *storeData) error {
		t, ok := data.Tasks[id]
		if !ok {
			return domain.ErrTaskNotFound
		}
		if err := fn(t); err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// === GroupRepository ===

// GetGroup retrieves a group by ID. Returns nil if not found.
func (s *Store) GetGroup(id string) (*domain.Group, error) {
	var group *domain.Group
	err := s.withLock(func(data *storeData) error {
		group = data.Groups[id]
		return nil
	})
	return group, err
}

// ListGroups retrieves all groups ordered by creation time.
func (s *Store) ListGroups() ([]*domain.Group, error) {
	var groups []*domain.Group
	err := s.withLock(func(data *storeData) error {
		for _, g := range data.Groups {
			groups = append(groups, g)
		}
		return nil
	})
	slices.SortFunc(groups, func(a, b *domain.Group) int {
		return a.Created.Compare(b.Created)
	})
	return groups, err
}

// SaveGroup creates or updates a group.
func (s *Store) SaveGroup(group *domain.Group) error {
	return s.withLockWrite(func(data *storeData) error {
		data.Groups[group.ID] = group
		return nil
	})
}

// === ApprovalRepository ===

// GetApproval retrieves an approval request by ID. Returns nil if not found.
func (s *Store) GetApproval(id string) (*domain.ApprovalRequest, error) {
	var req *domain.ApprovalRequest
	err := s.withLock(func(data *storeData) error {
		req = data.Approvals[id]
		return nil
	})
	return req, err
}

// ListApprovals retrieves requests with the given status (empty = all),
// ordered by creation time. Pending approvals are always answered from the
// store, never from a cached list.
func (s *Store) ListApprovals(status domain.ApprovalStatus) ([]*domain.ApprovalRequest, error) {
	var reqs []*domain.ApprovalRequest
	err := s.withLock(func(data *storeData) error {
		for _, r := range data.Approvals {
			if status != "" && r.Status != status {
				continue
			}
			reqs = append(reqs, r)
		}
		return nil
	})
	slices.SortFunc(reqs, func(a, b *domain.ApprovalRequest) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return reqs, err
}

// CreateApproval persists a new approval request.
func (s *Store) CreateApproval(req *domain.ApprovalRequest) error {
	return s.withLockWrite(func(data *storeData) error {
		if _, ok := data.Approvals[req.ID]; ok {
			return fmt.Errorf("%w: request %q already exists", domain.ErrValidation, req.ID)
		}
		data.Approvals[req.ID] = req
		return nil
	})
}

// UpdateApproval applies fn to the stored request under the exclusive lock
// and commits the result atomically.
func (s *Store) UpdateApproval(id string, fn func(*domain.ApprovalRequest) error) (*domain.ApprovalRequest, error) {
	var req *domain.ApprovalRequest
	err := s.withLockWrite(func(data *storeData) error {
		r, ok := data.Approvals[id]
		if !ok {
			return domain.ErrApprovalNotFound
		}
		if err := fn(r); err != nil {
			return err
		}
		req = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// === Locking and IO ===

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	return fn(data)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result.
func (s *Store) withLockWrite(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	if err := fn(data); err != nil {
		return err
	}

	return s.write(data)
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	dir := filepath.Dir(s.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

func (s *Store) read() (*storeData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotInitialized
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var data storeData
	if err := json.Unmarshal(content, &data); err != nil {
		// An unreadable store is fatal for the affected records; it is
		// surfaced, never guessed-and-repaired.
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStateCorruption, s.path, err)
	}

	if data.Tasks == nil {
		data.Tasks = make(map[string]*domain.Task)
	}
	if data.Groups == nil {
		data.Groups = make(map[string]*domain.Group)
	}
	if data.Approvals == nil {
		data.Approvals = make(map[string]*domain.ApprovalRequest)
	}

	return &data, nil
}

func (s *Store) write(data *storeData) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to temp file first, then rename for atomicity.
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Groups returns the group repository view of the store.
func (s *Store) Groups() domain.GroupRepository {
	return groupView{s}
}

// Approvals returns the approval repository view of the store.
func (s *Store) Approvals() domain.ApprovalRepository {
	return approvalView{s}
}

type groupView struct{ s *Store }

func (v groupView) Get(id string) (*domain.Group, error) { return v.s.GetGroup(id) }
func (v groupView) List() ([]*domain.Group, error)       { return v.s.ListGroups() }
func (v groupView) Save(group *domain.Group) error       { return v.s.SaveGroup(group) }

type approvalView struct{ s *Store }

func (v approvalView) Get(id string) (*domain.ApprovalRequest, error) { return v.s.GetApproval(id) }
func (v approvalView) List(status domain.ApprovalStatus) ([]*domain.ApprovalRequest, error) {
	return v.s.ListApprovals(status)
}
func (v approvalView) Create(req *domain.ApprovalRequest) error { return v.s.CreateApproval(req) }
func (v approvalView) Update(id string, fn func(*domain.ApprovalRequest) error) (*domain.ApprovalRequest, error) {
	return v.s.UpdateApproval(id, fn)
}

// Interface conformance.
var (
	_ domain.SourceQueue        = (*Store)(nil)
	_ domain.TaskRepository     = (*Store)(nil)
	_ domain.StoreInitializer   = (*Store)(nil)
	_ domain.GroupRepository    = groupView{}
	_ domain.ApprovalRepository = approvalView{}
)
