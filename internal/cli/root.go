// Package cli provides the command-line interface for loopgate.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/loopgate/loopgate/internal/app"
)

// Command group IDs.
const (
	groupSetup    = "setup"
	groupTask     = "task"
	groupApproval = "approval"
	groupObserve  = "observe"
)

// NewRootCommand creates the root command for loopgate.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "loopgate",
		Short: "Bounded task loop with a human approval gate",
		Long: `loopgate drives autonomous units of work through a bounded-iteration
loop, and gates every externally visible action behind an explicit human
approval before it is executed.

Producers enqueue source items; workers claim them exclusively and iterate
until the producer marks the item done, the iteration budget runs out, or
progress goes stale. Actions that touch the outside world are opened as
approval requests and executed only after a reviewer approves them.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
	}

	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Commands:"},
		&cobra.Group{ID: groupApproval, Title: "Approval Commands:"},
		&cobra.Group{ID: groupObserve, Title: "Observability Commands:"},
	)

	root.AddCommand(
		newInitCommand(c),
		newEnqueueCommand(c),
		newClaimCommand(c),
		newRunCommand(c),
		newTasksCommand(c),
		newGroupsCommand(c),
		newApprovalsCommand(c),
		newHealthCommand(c),
		newAuditCommand(c),
	)

	return root
}
