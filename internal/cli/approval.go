package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/loopgate/loopgate/internal/app"
	"github.com/loopgate/loopgate/internal/domain"
	"github.com/loopgate/loopgate/internal/usecase"
)

// newApprovalsCommand creates the approvals command with its subcommands.
func newApprovalsCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "approvals",
		Short:   "Gate externally visible actions behind human approval",
		GroupID: groupApproval,
	}

	cmd.AddCommand(
		newApprovalsOpenCommand(c),
		newApprovalsListCommand(c),
		newApprovalsShowCommand(c),
		newApprovalsDecideCommand(c, true),
		newApprovalsDecideCommand(c, false),
		newApprovalsWaitCommand(c),
		newApprovalsExecuteCommand(c),
	)

	return cmd
}

func newApprovalsOpenCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Class   string
		TaskID  string
		Payload string
		As      string
		TTL     time.Duration
	}

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open an approval request for an external action",
		Long: `Open creates a pending approval request. The payload is an opaque JSON
document handed verbatim to the action executor once a reviewer approves.
Irreversible actions default to a short TTL so stale requests lapse
instead of lingering.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			class := domain.ActionClass(opts.Class)

			ttl := opts.TTL
			if ttl == 0 {
				if class == domain.ActionIrreversible {
					ttl = c.Cfg.Approval.IrreversibleTTL.Std()
				} else {
					ttl = c.Cfg.Approval.ReversibleTTL.Std()
				}
			}

			actor := opts.As
			if actor == "" {
				actor = defaultClaimant()
			}

			out, err := c.CreateApprovalUseCase().Execute(cmd.Context(), usecase.CreateApprovalInput{
				Payload: json.RawMessage(opts.Payload),
				TaskID:  opts.TaskID,
				Actor:   actor,
				Class:   class,
				TTL:     ttl,
			})
			if err != nil {
				return err
			}

			r := out.Request
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s request %s (expires %s)\n",
				r.Class, r.ID, r.ExpiresAt.Format("2006-01-02 15:04"))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Class, "class", "reversible", "Action class: reversible or irreversible")
	cmd.Flags().StringVar(&opts.TaskID, "task", "", "Originating task ID")
	cmd.Flags().StringVar(&opts.Payload, "payload", "", "Action payload as JSON (required)")
	cmd.Flags().StringVar(&opts.As, "as", "", "Actor recorded in the audit log (default: hostname)")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 0, "Decision window (0 = class default from config)")

	return cmd
}

func newApprovalsListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Status string
		AsJSON bool
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List approval requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListApprovalsUseCase().Execute(cmd.Context(), usecase.ListApprovalsInput{
				Status: domain.ApprovalStatus(opts.Status),
			})
			if err != nil {
				return err
			}

			if opts.AsJSON {
				return printJSON(cmd.OutOrStdout(), out.Requests)
			}
			if len(out.Requests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No approval requests.")
				return nil
			}

			now := c.Clock.Now()
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tCLASS\tSTATUS\tTASK\tEXPIRES")
			for _, r := range out.Requests {
				expires := "-"
				if r.Status == domain.ApprovalPending {
					if r.IsExpiredAt(now) {
						expires = "lapsed"
					} else {
						expires = "in " + formatAge(r.ExpiresAt.Sub(now))
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					shortID(r.ID), r.Class, r.Status, shortID(r.TaskID), expires)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status (pending, approved, rejected, expired, done, failed)")
	cmd.Flags().BoolVar(&opts.AsJSON, "json", false, "Output as JSON")

	return cmd
}

func newApprovalsShowCommand(c *app.Container) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <request-id>",
		Short: "Show one approval request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.CheckApprovalUseCase().Execute(cmd.Context(), usecase.CheckApprovalInput{RequestID: args[0]})
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), out.Request)
			}

			r := out.Request
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Request:  %s\n", r.ID)
			fmt.Fprintf(w, "Class:    %s\n", r.Class)
			fmt.Fprintf(w, "Status:   %s\n", r.Status)
			if r.TaskID != "" {
				fmt.Fprintf(w, "Task:     %s\n", r.TaskID)
			}
			fmt.Fprintf(w, "Created:  %s\n", r.Created.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "Expires:  %s\n", r.ExpiresAt.Format("2006-01-02 15:04:05"))
			if r.DecidedBy != "" {
				fmt.Fprintf(w, "Decided:  %s by %s\n", r.DecidedAt.Format("2006-01-02 15:04:05"), r.DecidedBy)
			}
			if r.Attempts > 0 {
				fmt.Fprintf(w, "Attempts: %d\n", r.Attempts)
			}
			if r.LastError != "" {
				fmt.Fprintf(w, "Error:    %s\n", r.LastError)
			}
			fmt.Fprintf(w, "Payload:  %s\n", string(r.Payload))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

// newApprovalsDecideCommand builds both approve and reject; they differ
// only in the recorded decision.
func newApprovalsDecideCommand(c *app.Container, approve bool) *cobra.Command {
	verb := "approve"
	short := "Approve a pending request for execution"
	if !approve {
		verb = "reject"
		short = "Reject a pending request"
	}

	var as string

	cmd := &cobra.Command{
		Use:   verb + " <request-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decidedBy := as
			if decidedBy == "" {
				decidedBy = defaultClaimant()
			}

			out, err := c.DecideApprovalUseCase().Execute(cmd.Context(), usecase.DecideApprovalInput{
				RequestID: args[0],
				DecidedBy: decidedBy,
				Approve:   approve,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Request %s is now %s\n", shortID(out.Request.ID), out.Request.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Reviewer identity recorded on the decision (default: hostname)")

	return cmd
}

func newApprovalsWaitCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Timeout  time.Duration
		Interval time.Duration
	}

	cmd := &cobra.Command{
		Use:   "wait <request-id>",
		Short: "Block until a request is decided or the wait times out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout := opts.Timeout
			if timeout == 0 {
				timeout = c.Cfg.Approval.WaitTimeout.Std()
			}

			out, err := c.WaitForDecisionUseCase().Execute(cmd.Context(), usecase.WaitForDecisionInput{
				RequestID:    args[0],
				Timeout:      timeout,
				PollInterval: opts.Interval,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Request %s: %s\n", shortID(out.Request.ID), out.Request.Status)
			return nil
		},
	}

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Upper bound on the wait (0 = config default)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "Delay between status reads (0 = config default)")

	return cmd
}

func newApprovalsExecuteCommand(c *app.Container) *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "execute <request-id>",
		Short: "Execute an approved request's action",
		Long: `Execute hands the approved payload to the configured executor command.
Reversible actions retry transient failures with exponential backoff up
to the configured attempt bound; irreversible actions get exactly one
attempt. Only approved requests execute; anything else is refused.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor := as
			if actor == "" {
				actor = defaultClaimant()
			}

			out, err := c.ExecuteApprovalUseCase().Execute(cmd.Context(), usecase.ExecuteApprovalInput{
				RequestID: args[0],
				Actor:     actor,
				Retry: domain.RetryPolicy{
					InitialInterval: c.Cfg.Approval.BackoffInitial.Std(),
					MaxInterval:     c.Cfg.Approval.BackoffMax.Std(),
					MaxAttempts:     c.Cfg.Approval.MaxAttempts,
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Request %s: %s after %d attempt(s)\n",
				shortID(out.Request.ID), out.Request.Status, out.Attempts)
			if out.Detail != "" {
				fmt.Fprintln(cmd.OutOrStdout(), out.Detail)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Actor recorded in the audit log (default: hostname)")

	return cmd
}
