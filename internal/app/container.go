// Package app provides the dependency injection container for the application.
package app

import (
	"path/filepath"

	"github.com/loopgate/loopgate/internal/domain"
	"github.com/loopgate/loopgate/internal/infra/auditlog"
	"github.com/loopgate/loopgate/internal/infra/config"
	"github.com/loopgate/loopgate/internal/infra/estimator"
	"github.com/loopgate/loopgate/internal/infra/executor"
	"github.com/loopgate/loopgate/internal/infra/jsonstore"
	"github.com/loopgate/loopgate/internal/infra/logging"
	"github.com/loopgate/loopgate/internal/infra/marker"
	"github.com/loopgate/loopgate/internal/usecase"
)

// Paths holds the application file-system layout.
type Paths struct {
	DataDir   string // Root data directory (.loopgate)
	StorePath string // Path to state.json
	AuditDir  string // Path to the audit partition directory
	MarkerDir string // Path to the completion marker directory
}

// newPaths derives the layout from the working directory.
func newPaths(dir string) Paths {
	dataDir := domain.DataDir(dir)
	return Paths{
		DataDir:   dataDir,
		StorePath: filepath.Join(dataDir, domain.StoreFileName),
		AuditDir:  filepath.Join(dataDir, domain.AuditDirName),
		MarkerDir: filepath.Join(dataDir, "done"),
	}
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Queue            domain.SourceQueue
	Tasks            domain.TaskRepository
	Groups           domain.GroupRepository
	Approvals        domain.ApprovalRepository
	StoreInitializer domain.StoreInitializer
	Audit            domain.AuditSink
	AuditReader      domain.AuditReader
	Checker          domain.CompletionChecker
	Executor         domain.ActionExecutor
	Estimator        domain.Estimator
	Clock            domain.Clock
	Logger           domain.Logger

	// Configuration
	Cfg   *domain.Config
	Paths Paths
}

// New creates a new Container rooted at the given directory.
func New(dir string) (*Container, error) {
	paths := newPaths(dir)

	loader := config.NewLoader(paths.DataDir)
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	clock := domain.RealClock{}
	store := jsonstore.New(paths.StorePath, clock)
	audit := auditlog.New(paths.AuditDir, clock)
	logger := logging.New(paths.DataDir, logging.ParseLevel(cfg.Log.Level))

	var actionExec domain.ActionExecutor
	if cfg.Approval.ExecutorCommand != "" {
		actionExec, err = executor.New(cfg.Approval.ExecutorCommand)
		if err != nil {
			return nil, err
		}
	}

	return &Container{
		Queue:            store,
		Tasks:            store,
		Groups:           store.Groups(),
		Approvals:        store.Approvals(),
		StoreInitializer: store,
		Audit:            audit,
		AuditReader:      audit,
		Checker:          marker.New(paths.MarkerDir),
		Executor:         actionExec,
		Estimator:        estimator.New(cfg.Estimator),
		Clock:            clock,
		Logger:           logger,
		Cfg:              cfg,
		Paths:            paths,
	}, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg *domain.Config, paths Paths, queue domain.SourceQueue, tasks domain.TaskRepository, groups domain.GroupRepository, approvals domain.ApprovalRepository, audit domain.AuditSink, clock domain.Clock, logger domain.Logger) *Container {
	return &Container{
		Queue:     queue,
		Tasks:     tasks,
		Groups:    groups,
		Approvals: approvals,
		Audit:     audit,
		Estimator: estimator.New(cfg.Estimator),
		Clock:     clock,
		Logger:    logger,
		Cfg:       cfg,
		Paths:     paths,
	}
}

// UseCase factory methods

// InitStoreUseCase returns a new InitStore use case.
func (c *Container) InitStoreUseCase() *usecase.InitStore {
	return usecase.NewInitStore(c.StoreInitializer)
}

// EnqueueItemUseCase returns a new EnqueueItem use case.
func (c *Container) EnqueueItemUseCase() *usecase.EnqueueItem {
	return usecase.NewEnqueueItem(c.Queue, c.Clock, c.Logger)
}

// ClaimTaskUseCase returns a new ClaimTask use case.
func (c *Container) ClaimTaskUseCase() *usecase.ClaimTask {
	return usecase.NewClaimTask(c.Queue, c.Audit, c.Clock, c.Logger, c.Cfg.Loop.DefaultMaxIterations)
}

// UpdateProgressUseCase returns a new UpdateProgress use case.
func (c *Container) UpdateProgressUseCase() *usecase.UpdateProgress {
	return usecase.NewUpdateProgress(c.Tasks, c.Clock, c.Logger)
}

// IncrementIterationUseCase returns a new IncrementIteration use case.
func (c *Container) IncrementIterationUseCase() *usecase.IncrementIteration {
	return usecase.NewIncrementIteration(c.Tasks, c.Clock, c.Logger)
}

// ShouldContinueUseCase returns a new ShouldContinue use case.
func (c *Container) ShouldContinueUseCase() *usecase.ShouldContinue {
	return usecase.NewShouldContinue(c.Tasks, c.Clock, c.Cfg.Loop.StaleAfter.Std())
}

// CheckCompletionUseCase returns a new CheckCompletion use case.
func (c *Container) CheckCompletionUseCase() *usecase.CheckCompletion {
	return usecase.NewCheckCompletion(c.Tasks, c.Checker)
}

// ArchiveTaskUseCase returns a new ArchiveTask use case.
func (c *Container) ArchiveTaskUseCase() *usecase.ArchiveTask {
	return usecase.NewArchiveTask(c.Tasks, c.Audit, c.Clock, c.Logger)
}

// RunLoopUseCase returns a new RunLoop use case.
func (c *Container) RunLoopUseCase() *usecase.RunLoop {
	return usecase.NewRunLoop(
		c.ShouldContinueUseCase(),
		c.CheckCompletionUseCase(),
		c.IncrementIterationUseCase(),
		c.UpdateProgressUseCase(),
		c.ArchiveTaskUseCase(),
		c.Logger,
		c.Cfg.Loop.PollInterval.Std(),
	)
}

// CreateApprovalUseCase returns a new CreateApproval use case.
func (c *Container) CreateApprovalUseCase() *usecase.CreateApproval {
	return usecase.NewCreateApproval(c.Approvals, c.Audit, c.Clock, c.Logger)
}

// DecideApprovalUseCase returns a new DecideApproval use case.
func (c *Container) DecideApprovalUseCase() *usecase.DecideApproval {
	return usecase.NewDecideApproval(c.Approvals, c.Audit, c.Clock, c.Logger)
}

// WaitForDecisionUseCase returns a new WaitForDecision use case.
func (c *Container) WaitForDecisionUseCase() *usecase.WaitForDecision {
	return usecase.NewWaitForDecision(c.Approvals, c.Audit, c.Clock, c.Logger, c.Cfg.Approval.PollInterval.Std())
}

// ExecuteApprovalUseCase returns a new ExecuteApproval use case.
func (c *Container) ExecuteApprovalUseCase() *usecase.ExecuteApproval {
	return usecase.NewExecuteApproval(c.Approvals, c.Executor, c.Audit, c.Clock, c.Logger)
}

// CreateGroupUseCase returns a new CreateGroup use case.
func (c *Container) CreateGroupUseCase() *usecase.CreateGroup {
	return usecase.NewCreateGroup(c.Groups, c.Tasks, c.Audit, c.Clock, c.Logger)
}

// ProcessGroupUseCase returns a new ProcessGroup use case.
func (c *Container) ProcessGroupUseCase() *usecase.ProcessGroup {
	return usecase.NewProcessGroup(c.Groups, c.Tasks, c.RunLoopUseCase(), c.Audit, c.Clock, c.Logger)
}

// ShowGroupUseCase returns a new ShowGroup use case.
func (c *Container) ShowGroupUseCase() *usecase.ShowGroup {
	return usecase.NewShowGroup(c.Groups, c.Tasks)
}

// HealthSnapshotUseCase returns a new HealthSnapshot use case.
func (c *Container) HealthSnapshotUseCase() *usecase.HealthSnapshot {
	return usecase.NewHealthSnapshot(c.Tasks)
}

// ListStuckUseCase returns a new ListStuck use case.
func (c *Container) ListStuckUseCase() *usecase.ListStuck {
	return usecase.NewListStuck(c.Tasks, c.Clock)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Tasks)
}

// ListSourceUseCase returns a new ListSource use case.
func (c *Container) ListSourceUseCase() *usecase.ListSource {
	return usecase.NewListSource(c.Queue)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Tasks, c.Estimator)
}

// ListApprovalsUseCase returns a new ListApprovals use case.
func (c *Container) ListApprovalsUseCase() *usecase.ListApprovals {
	return usecase.NewListApprovals(c.Approvals)
}

// CheckApprovalUseCase returns a new CheckApproval use case.
func (c *Container) CheckApprovalUseCase() *usecase.CheckApproval {
	return usecase.NewCheckApproval(c.Approvals)
}

// TailAuditUseCase returns a new TailAudit use case.
func (c *Container) TailAuditUseCase() *usecase.TailAudit {
	return usecase.NewTailAudit(c.AuditReader)
}
