package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loopgate/loopgate/internal/app"
	"github.com/loopgate/loopgate/internal/domain"
)

// newHealthCommand creates the health command.
func newHealthCommand(c *app.Container) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "health",
		Short:   "Report aggregate loop health",
		GroupID: groupObserve,
		Long: `Health computes a read-only snapshot over the state store: how many
tasks are active, how many exhausted their iteration budget without
finishing, and the archived success rate. Warning means 5-20% of tasks
are stuck; critical means more than 20%.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.HealthSnapshotUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}

			s := out.Snapshot
			if asJSON {
				return printJSON(cmd.OutOrStdout(), s)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Status:       %s\n", s.Status)
			fmt.Fprintf(w, "Active tasks: %d\n", s.ActiveCount)
			fmt.Fprintf(w, "Stuck tasks:  %d (%.0f%%)\n", s.StuckCount, s.StuckRate*100)
			fmt.Fprintf(w, "Success rate: %.0f%%\n", s.SuccessRate*100)

			if s.Status != domain.HealthHealthy {
				fmt.Fprintln(w, "Run 'loopgate tasks stuck' to inspect stuck tasks.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
