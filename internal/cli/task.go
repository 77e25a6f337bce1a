package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loopgate/loopgate/internal/app"
	"github.com/loopgate/loopgate/internal/domain"
	"github.com/loopgate/loopgate/internal/usecase"
)

// newTasksCommand creates the tasks command with its subcommands.
func newTasksCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Short:   "Inspect and manage task records",
		GroupID: groupTask,
	}

	cmd.AddCommand(
		newTasksListCommand(c),
		newTasksPendingCommand(c),
		newTasksShowCommand(c),
		newTasksArchiveCommand(c),
		newTasksStuckCommand(c),
	)

	return cmd
}

func newTasksListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Status string
		Stuck  bool
		AsJSON bool
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List task records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := domain.TaskFilter{Stuck: opts.Stuck}
			if opts.Status != "" {
				status := domain.Status(opts.Status)
				if !status.IsValid() {
					return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, opts.Status)
				}
				filter.Status = status
			}

			out, err := c.ListTasksUseCase().Execute(cmd.Context(), usecase.ListTasksInput{Filter: filter})
			if err != nil {
				return err
			}

			if opts.AsJSON {
				return printJSON(cmd.OutOrStdout(), out.Tasks)
			}
			if len(out.Tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
				return nil
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tSTATUS\tITER\tREF\tTITLE")
			for _, t := range out.Tasks {
				status := t.Status.Display()
				if t.IsStuck() {
					status += " (stuck)"
				}
				fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\t%s\n",
					shortID(t.ID), status, t.Iteration, t.MaxIterations, t.SourceRef, t.Title)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status (active, complete, blocked, archived)")
	cmd.Flags().BoolVar(&opts.Stuck, "stuck", false, "Only tasks that exhausted their iteration budget")
	cmd.Flags().BoolVar(&opts.AsJSON, "json", false, "Output as JSON")

	return cmd
}

func newTasksPendingCommand(c *app.Container) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List unclaimed source items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListSourceUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), out.Items)
			}
			if len(out.Items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending items.")
				return nil
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "REF\tTYPE\tTITLE")
			for _, item := range out.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\n", item.Ref, item.Type, item.Title)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newTasksShowCommand(c *app.Container) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task with its progress log and effort estimate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ShowTaskUseCase().Execute(cmd.Context(), usecase.ShowTaskInput{TaskID: args[0]})
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), out)
			}

			t := out.Task
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Task:       %s\n", t.ID)
			fmt.Fprintf(w, "Source:     %s\n", t.SourceRef)
			if t.Title != "" {
				fmt.Fprintf(w, "Title:      %s\n", t.Title)
			}
			fmt.Fprintf(w, "Status:     %s\n", t.Status.Display())
			if t.Outcome != "" {
				fmt.Fprintf(w, "Outcome:    %s\n", t.Outcome.Display())
			}
			fmt.Fprintf(w, "Iteration:  %d/%d\n", t.Iteration, t.MaxIterations)
			fmt.Fprintf(w, "Claimed by: %s\n", t.ClaimedBy)
			fmt.Fprintf(w, "Created:    %s\n", t.Created.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "Estimate:   %s (~%d steps, ~%d min)\n",
				out.Estimate.Tier, out.Estimate.EstimatedSteps, out.Estimate.EstimatedMinutes)

			if len(t.Progress) > 0 {
				fmt.Fprintln(w, "Progress:")
				for _, p := range t.Progress {
					fmt.Fprintf(w, "  %s  %s\n", p.T.Format("2006-01-02 15:04"), p.Note)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newTasksArchiveCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Outcome string
		Detail  string
		As      string
	}

	cmd := &cobra.Command{
		Use:   "archive <task-id>",
		Short: "Archive a task as complete or blocked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor := opts.As
			if actor == "" {
				actor = defaultClaimant()
			}

			out, err := c.ArchiveTaskUseCase().Execute(cmd.Context(), usecase.ArchiveTaskInput{
				TaskID:  args[0],
				Actor:   actor,
				Outcome: domain.Status(opts.Outcome),
				Detail:  opts.Detail,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Archived %s as %s\n", out.Task.ID, out.Task.Outcome.Display())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Outcome, "outcome", "complete", "Terminal outcome: complete or blocked")
	cmd.Flags().StringVar(&opts.Detail, "detail", "", "Diagnostic context recorded in the audit log")
	cmd.Flags().StringVar(&opts.As, "as", "", "Actor recorded in the audit log (default: hostname)")

	return cmd
}

func newTasksStuckCommand(c *app.Container) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stuck",
		Short: "List tasks that ran out of iterations without finishing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListStuckUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), out.Tasks)
			}
			if len(out.Tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stuck tasks.")
				return nil
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tITER\tIDLE\tLAST NOTE\tTITLE")
			for _, s := range out.Tasks {
				fmt.Fprintf(w, "%s\t%d/%d\t%s\t%s\t%s\n",
					shortID(s.TaskID), s.Iteration, s.MaxIterations,
					formatAge(s.SinceProgress), s.LastNote, s.Title)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
