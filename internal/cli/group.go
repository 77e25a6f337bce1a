package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/loopgate/loopgate/internal/app"
	"github.com/loopgate/loopgate/internal/domain"
	"github.com/loopgate/loopgate/internal/usecase"
)

// newGroupsCommand creates the groups command with its subcommands.
func newGroupsCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "groups",
		Short:   "Batch tasks for sequential or parallel execution",
		GroupID: groupTask,
	}

	cmd.AddCommand(
		newGroupsCreateCommand(c),
		newGroupsRunCommand(c),
		newGroupsShowCommand(c),
		newGroupsListCommand(c),
	)

	return cmd
}

func newGroupsCreateCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Strategy string
		As       string
	}

	cmd := &cobra.Command{
		Use:   "create <task-id>...",
		Short: "Create a group over existing tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor := opts.As
			if actor == "" {
				actor = defaultClaimant()
			}

			out, err := c.CreateGroupUseCase().Execute(cmd.Context(), usecase.CreateGroupInput{
				Actor:    actor,
				Strategy: domain.Strategy(opts.Strategy),
				TaskIDs:  args,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s group %s with %d members\n",
				out.Group.Strategy, out.Group.ID, len(out.Group.TaskIDs))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Strategy, "strategy", "sequential", "Execution strategy: sequential or parallel")
	cmd.Flags().StringVar(&opts.As, "as", "", "Actor recorded in the audit log (default: hostname)")

	return cmd
}

func newGroupsRunCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Work        string
		As          string
		Interval    time.Duration
		MaxParallel int
	}

	cmd := &cobra.Command{
		Use:   "run <group-id>",
		Short: "Run every member of a group through the task loop",
		Long: `Run drives each member task's loop according to the group's strategy.
Sequential groups halt on the first member that does not complete;
parallel groups run all members and aggregate the outcomes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := usecase.ProcessGroupInput{
				GroupID:      args[0],
				Actor:        opts.As,
				PollInterval: opts.Interval,
				MaxParallel:  opts.MaxParallel,
			}
			if in.Actor == "" {
				in.Actor = defaultClaimant()
			}
			if opts.Work != "" {
				in.Work = workCommand(opts.Work)
			}

			out, err := c.ProcessGroupUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "TASK\tRESULT")
			for _, m := range out.Members {
				result := m.Reason.String()
				if !m.Ran {
					result = "skipped"
				}
				fmt.Fprintf(w, "%s\t%s\n", shortID(m.TaskID), result)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Group %s: %s\n", shortID(out.Group.ID), out.Group.Status)
			if out.Group.Status != domain.GroupComplete {
				return &CodeError{Code: ExitError}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Work, "work", "", "Command to execute once per member iteration")
	cmd.Flags().StringVar(&opts.As, "as", "", "Actor recorded on member transitions (default: hostname)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "Per-member loop interval (0 = config default)")
	cmd.Flags().IntVar(&opts.MaxParallel, "max-parallel", 0, "Concurrent member bound for parallel groups (0 = unbounded)")

	return cmd
}

func newGroupsShowCommand(c *app.Container) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <group-id>",
		Short: "Show a group with its members and derived status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ShowGroupUseCase().Execute(cmd.Context(), usecase.ShowGroupInput{GroupID: args[0]})
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), out)
			}

			g := out.Group
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Group:    %s\n", g.ID)
			fmt.Fprintf(w, "Strategy: %s\n", g.Strategy)
			fmt.Fprintf(w, "Status:   %s (derived: %s)\n", g.Status, out.Derived)
			if g.FailedAtIndex != nil {
				fmt.Fprintf(w, "Failed at member index %d\n", *g.FailedAtIndex)
			}

			t := newTable(w)
			fmt.Fprintln(t, "TASK\tSTATUS\tITER\tTITLE")
			for _, m := range out.Members {
				status := m.Status.Display()
				if m.Status == domain.StatusArchived && m.Outcome != "" {
					status += " (" + m.Outcome.Display() + ")"
				}
				fmt.Fprintf(t, "%s\t%s\t%d/%d\t%s\n",
					shortID(m.ID), status, m.Iteration, m.MaxIterations, m.Title)
			}
			return t.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newGroupsListCommand(c *app.Container) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups, err := c.Groups.List()
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), groups)
			}
			if len(groups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No groups.")
				return nil
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tSTRATEGY\tSTATUS\tMEMBERS\tAGE")
			for _, g := range groups {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					shortID(g.ID), g.Strategy, g.Status, len(g.TaskIDs),
					formatAge(c.Clock.Now().Sub(g.Created)))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
