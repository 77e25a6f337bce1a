package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loopgate/loopgate/internal/app"
	"github.com/loopgate/loopgate/internal/usecase"
)

// newAuditCommand creates the audit command.
func newAuditCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "audit",
		Short:   "Read the append-only transition log",
		GroupID: groupObserve,
	}

	cmd.AddCommand(newAuditTailCommand(c))

	return cmd
}

func newAuditTailCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Day    string
		N      int
		AsJSON bool
	}

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show recorded status transitions",
		Long: `Tail reads the audit log, newest partitions first. With --day a single
day partition (YYYY-MM-DD) is read in full; otherwise the most recent
entries across partitions are shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.TailAuditUseCase().Execute(cmd.Context(), usecase.TailAuditInput{
				Day: opts.Day,
				N:   opts.N,
			})
			if err != nil {
				return err
			}

			if opts.AsJSON {
				return printJSON(cmd.OutOrStdout(), out.Entries)
			}
			if len(out.Entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No audit entries.")
				return nil
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "TIME\tENTITY\tID\tTRANSITION\tACTOR\tDETAIL")
			for _, e := range out.Entries {
				from := e.FromStatus
				if from == "" {
					from = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s -> %s\t%s\t%s\n",
					e.Timestamp.Format("2006-01-02 15:04:05"),
					e.EntityType, shortID(e.EntityID), from, e.ToStatus, e.Actor, e.Detail)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&opts.Day, "day", "", "Read one day partition (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.N, "n", 0, "Entry count when tailing (default 50)")
	cmd.Flags().BoolVar(&opts.AsJSON, "json", false, "Output as JSON")

	return cmd
}
