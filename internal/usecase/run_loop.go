package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/loopgate/loopgate/internal/domain"
)

// StopReason indicates why the task loop terminated.
type StopReason int

const (
	StopCompleted  StopReason = iota // Completion predicate satisfied
	StopExhausted                    // Iteration budget spent without completing
	StopStale                        // No progress within the staleness window
	StopNotActive                    // Task left the active status out of band
	StopCancelled                    // Context cancelled (e.g. SIGINT)
	StopWorkFailed                   // The work callback reported a permanent error
)

// String returns a human-readable label for the stop reason.
func (r StopReason) String() string {
	switch r {
	case StopCompleted:
		return "completed"
	case StopExhausted:
		return "iterations-exhausted"
	case StopStale:
		return "stale"
	case StopNotActive:
		return "not-active"
	case StopCancelled:
		return "cancelled"
	case StopWorkFailed:
		return "work-failed"
	default:
		return "unknown"
	}
}

// ExitCode returns a distinct process exit code for each stop reason.
func (r StopReason) ExitCode() int {
	switch r {
	case StopCompleted:
		return 0
	case StopExhausted:
		return 5
	case StopStale:
		return 6
	case StopNotActive:
		return 7
	case StopCancelled:
		return 8
	case StopWorkFailed:
		return 9
	default:
		return 1
	}
}

// WorkFunc performs one iteration of actual work on the task and returns a
// progress note. Returning an error halts the loop as blocked.
type WorkFunc func(ctx context.Context, task *domain.Task) (string, error)

// RunLoopInput contains the parameters for driving one claimed task.
// Fields are ordered to minimize memory padding.
type RunLoopInput struct {
	Work         WorkFunc      // Optional per-iteration work callback
	TaskID       string        // Task to drive (required)
	Actor        string        // Recorded on archive transitions
	PollInterval time.Duration // Delay between iterations (0 = config default)
}

// RunLoopOutput reports how the loop ended.
// Fields are ordered to minimize memory padding.
type RunLoopOutput struct {
	Task       *domain.Task
	Iterations int // Iterations consumed by this run
	Reason     StopReason
}

// RunLoop drives the claim → iterate → check-completion → archive lifecycle
// for a single task. Each iteration consults the completion predicate, the
// three halt conditions, and the optional work callback; the loop archives
// the task when it halts for any reason other than cancellation.
type RunLoop struct {
	shouldContinue *ShouldContinue
	checkDone      *CheckCompletion
	increment      *IncrementIteration
	progress       *UpdateProgress
	archive        *ArchiveTask
	logger         domain.Logger
	pollInterval   time.Duration
}

// NewRunLoop creates a new RunLoop use case from its component operations.
func NewRunLoop(shouldContinue *ShouldContinue, checkDone *CheckCompletion, increment *IncrementIteration, progress *UpdateProgress, archive *ArchiveTask, logger domain.Logger, pollInterval time.Duration) *RunLoop {
	return &RunLoop{
		shouldContinue: shouldContinue,
		checkDone:      checkDone,
		increment:      increment,
		progress:       progress,
		archive:        archive,
		logger:         logger,
		pollInterval:   pollInterval,
	}
}

// Execute runs the loop until it halts.
func (uc *RunLoop) Execute(ctx context.Context, in RunLoopInput) (*RunLoopOutput, error) {
	if in.TaskID == "" {
		return nil, fmt.Errorf("%w: task ID is required", domain.ErrValidation)
	}
	interval := in.PollInterval
	if interval <= 0 {
		interval = uc.pollInterval
	}

	out := &RunLoopOutput{}
	for {
		if ctx.Err() != nil {
			// Cancellation abandons the run without archiving; the task
			// stays claimable state-wise for a later run.
			out.Reason = StopCancelled
			return uc.finish(ctx, in, out, false, "")
		}

		done, err := uc.checkDone.Execute(ctx, CheckCompletionInput{TaskID: in.TaskID})
		if err != nil {
			return nil, err
		}
		if done.Done {
			out.Reason = StopCompleted
			return uc.finish(ctx, in, out, true, "completion predicate satisfied")
		}

		cont, err := uc.shouldContinue.Execute(ctx, ShouldContinueInput{TaskID: in.TaskID})
		if err != nil {
			return nil, err
		}
		if !cont.Continue {
			switch cont.Reason {
			case HaltExhausted:
				out.Reason = StopExhausted
				// Exhausted tasks stay active so the health monitor surfaces
				// them as stuck; a human archives or re-runs them.
				uc.logger.Warn(in.TaskID, "loop", "iteration budget exhausted without completion")
				return out, uc.loadTask(ctx, in.TaskID, out)
			case HaltStale:
				out.Reason = StopStale
				return uc.finish(ctx, in, out, false, "no progress within staleness window")
			default:
				out.Reason = StopNotActive
				return out, uc.loadTask(ctx, in.TaskID, out)
			}
		}

		if _, err := uc.increment.Execute(ctx, IncrementIterationInput{TaskID: in.TaskID}); err != nil {
			if errors.Is(err, domain.ErrIterationLimitExceeded) {
				out.Reason = StopExhausted
				return out, uc.loadTask(ctx, in.TaskID, out)
			}
			return nil, err
		}
		out.Iterations++

		if in.Work != nil {
			task, err := uc.loadCurrent(ctx, in.TaskID)
			if err != nil {
				return nil, err
			}
			note, workErr := in.Work(ctx, task)
			if workErr != nil {
				uc.logger.Error(in.TaskID, "loop", fmt.Sprintf("work failed: %v", workErr))
				out.Reason = StopWorkFailed
				return uc.finish(ctx, in, out, false, fmt.Sprintf("work failed: %v", workErr))
			}
			if note != "" {
				if _, err := uc.progress.Execute(ctx, UpdateProgressInput{TaskID: in.TaskID, Note: note}); err != nil {
					return nil, err
				}
			}
		}

		select {
		case <-ctx.Done():
			out.Reason = StopCancelled
			return uc.finish(ctx, in, out, false, "")
		case <-time.After(interval):
		}
	}
}

// finish archives the task (unless cancelled) and loads the final record.
func (uc *RunLoop) finish(ctx context.Context, in RunLoopInput, out *RunLoopOutput, completed bool, detail string) (*RunLoopOutput, error) {
	if out.Reason != StopCancelled {
		outcome := domain.StatusBlocked
		if completed {
			outcome = domain.StatusComplete
		}
		archived, err := uc.archive.Execute(ctx, ArchiveTaskInput{
			TaskID:  in.TaskID,
			Outcome: outcome,
			Actor:   in.Actor,
			Detail:  detail,
		})
		if err != nil {
			return nil, err
		}
		out.Task = archived.Task
		uc.logger.Info(in.TaskID, "loop", fmt.Sprintf("stopped: %s", out.Reason))
		return out, nil
	}
	return out, uc.loadTask(ctx, in.TaskID, out)
}

func (uc *RunLoop) loadTask(ctx context.Context, taskID string, out *RunLoopOutput) error {
	task, err := uc.loadCurrent(ctx, taskID)
	if err != nil {
		return err
	}
	out.Task = task
	return nil
}

func (uc *RunLoop) loadCurrent(_ context.Context, taskID string) (*domain.Task, error) {
	task, err := uc.checkDone.tasks.Get(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}
