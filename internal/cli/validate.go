package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *command) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [PROJECT...]",
		Short: "Check that a project loads and its graph can run",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(args)
			if err != nil {
				return err
			}
			_, g, err := a.Validate(cmd.Context())
			if err != nil {
				return failure(err)
			}
			fmt.Fprintf(c.outW, "✅ Project is valid: %d nodes.\n", len(g.Nodes()))
			return nil
		},
	}
}
