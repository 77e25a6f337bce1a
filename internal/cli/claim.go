package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loopgate/loopgate/internal/app"
	"github.com/loopgate/loopgate/internal/usecase"
)

// defaultClaimant falls back to the hostname when --as is omitted.
func defaultClaimant() string {
	if name := os.Getenv("LOOPGATE_WORKER"); name != "" {
		return name
	}
	host, err := os.Hostname()
	if err != nil {
		return "worker"
	}
	return host
}

// newClaimCommand creates the claim command for reserving a source item.
func newClaimCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Ref           string
		As            string
		MaxIterations int
	}

	cmd := &cobra.Command{
		Use:     "claim",
		Short:   "Atomically claim a pending source item and create its task",
		GroupID: groupTask,
		Long: `Claim reserves a pending source item for exactly one worker and creates
the task record that drives its loop. Without --ref the next pending item
is taken. With --ref a specific item is claimed; a second claim of the
same item fails with a conflict.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			claimant := opts.As
			if claimant == "" {
				claimant = defaultClaimant()
			}

			out, err := c.ClaimTaskUseCase().Execute(cmd.Context(), usecase.ClaimTaskInput{
				Claimant:      claimant,
				Ref:           opts.Ref,
				MaxIterations: opts.MaxIterations,
			})
			if err != nil {
				return err
			}

			t := out.Task
			fmt.Fprintf(cmd.OutOrStdout(), "Claimed %s as task %s (budget %d iterations)\n",
				t.SourceRef, t.ID, t.MaxIterations)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Ref, "ref", "", "Specific item to claim (default: next pending)")
	cmd.Flags().StringVar(&opts.As, "as", "", "Worker identity recorded on the claim (default: hostname)")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", 0, "Override the iteration budget")

	return cmd
}
