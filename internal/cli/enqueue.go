package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loopgate/loopgate/internal/app"
	"github.com/loopgate/loopgate/internal/usecase"
)

// newEnqueueCommand creates the enqueue command for adding source items.
func newEnqueueCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Ref           string
		Type          string
		Title         string
		From          string
		MaxIterations int
	}

	cmd := &cobra.Command{
		Use:     "enqueue",
		Short:   "Enqueue a pending source item for workers to claim",
		GroupID: groupTask,
		Long: `Enqueue a unit of work. Workers claim items with 'loopgate claim'.

Examples:
  # Enqueue a single item
  loopgate enqueue --ref mail-4711 --title "Reply to invoice question" --type reply

  # Enqueue with an explicit iteration budget
  loopgate enqueue --ref book-0042 --title "Reconcile March ledger" --max-iterations 20

  # Enqueue several items from a YAML stream
  loopgate enqueue --from items.yaml

File format for --from (multi-document YAML):
  ref: mail-4711
  title: Reply to invoice question
  type: reply
  ---
  ref: book-0042
  title: Reconcile March ledger
  max_iterations: 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.EnqueueItemUseCase()

			if opts.From != "" {
				f, err := os.Open(opts.From)
				if err != nil {
					return fmt.Errorf("open items file: %w", err)
				}
				defer func() { _ = f.Close() }()

				outs, err := uc.ExecuteFromYAML(cmd.Context(), f)
				if err != nil {
					return err
				}
				for _, out := range outs {
					fmt.Fprintf(cmd.OutOrStdout(), "Enqueued %s\n", out.Ref)
				}
				return nil
			}

			out, err := uc.Execute(cmd.Context(), usecase.EnqueueItemInput{
				Ref:           opts.Ref,
				Type:          opts.Type,
				Title:         opts.Title,
				MaxIterations: opts.MaxIterations,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enqueued %s\n", out.Ref)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Ref, "ref", "", "Producer reference for the item (unique)")
	cmd.Flags().StringVar(&opts.Type, "type", "", "Task-type label for effort estimation")
	cmd.Flags().StringVar(&opts.Title, "title", "", "Human-readable title")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", 0, "Iteration budget (0 = config default)")
	cmd.Flags().StringVar(&opts.From, "from", "", "Enqueue items from a YAML file")

	return cmd
}
