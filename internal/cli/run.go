package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/loopgate/loopgate/internal/app"
	"github.com/loopgate/loopgate/internal/domain"
	"github.com/loopgate/loopgate/internal/usecase"
)

// newRunCommand creates the run command that drives a claimed task's loop.
func newRunCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Work     string
		As       string
		Interval time.Duration
	}

	cmd := &cobra.Command{
		Use:     "run <task-id>",
		Short:   "Drive a claimed task through its bounded iteration loop",
		GroupID: groupTask,
		Long: `Run iterates a claimed task until its producer marks it done, the
iteration budget runs out, or progress goes stale. With --work a command
is executed once per iteration; its stdout becomes the progress note and
a non-zero exit halts the loop as blocked.

The task id and iteration number are exported to the work command as
LOOPGATE_TASK_ID and LOOPGATE_ITERATION.

Exit codes report the stop reason: 0 completed, 5 iterations exhausted,
6 stale, 7 task no longer active, 8 cancelled, 9 work failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := usecase.RunLoopInput{
				TaskID:       args[0],
				Actor:        opts.As,
				PollInterval: opts.Interval,
			}
			if in.Actor == "" {
				in.Actor = defaultClaimant()
			}
			if opts.Work != "" {
				in.Work = workCommand(opts.Work)
			}

			out, err := c.RunLoopUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Loop stopped: %s (task %s, %d iterations this run, %d/%d total)\n",
				out.Reason, out.Task.ID, out.Iterations, out.Task.Iteration, out.Task.MaxIterations)

			if code := out.Reason.ExitCode(); code != 0 {
				return &CodeError{Code: code}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Work, "work", "", "Command to execute once per iteration")
	cmd.Flags().StringVar(&opts.As, "as", "", "Actor recorded on archive transitions (default: hostname)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "Delay between iterations (0 = config default)")

	return cmd
}

// workCommand adapts a shell-style command line into a per-iteration
// WorkFunc. Stdout (trimmed) becomes the progress note.
func workCommand(line string) usecase.WorkFunc {
	return func(ctx context.Context, task *domain.Task) (string, error) {
		fields := strings.Fields(line)
		cmd := exec.CommandContext(ctx, fields[0], fields[1:]...) //nolint:gosec // operator-supplied command
		cmd.Env = append(os.Environ(),
			"LOOPGATE_TASK_ID="+task.ID,
			"LOOPGATE_ITERATION="+strconv.Itoa(task.Iteration),
		)
		var stdout bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return "", fmt.Errorf("work command: %w", err)
		}
		note := strings.TrimSpace(stdout.String())
		if note == "" {
			note = "iteration " + strconv.Itoa(task.Iteration) + " done"
		}
		return note, nil
	}
}
