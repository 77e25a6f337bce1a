package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loopgate/loopgate/internal/app"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "init",
		Short:   "Initialize the loopgate data directory",
		GroupID: groupSetup,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.InitStoreUseCase().Execute(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized loopgate store in %s\n", c.Paths.DataDir)
			return nil
		},
	}
}
