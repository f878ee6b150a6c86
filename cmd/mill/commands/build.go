package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build [target]",
		Short: "Build a target and everything it depends on",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := *c.opts
			if len(args) == 1 {
				opts.Target = args[0]
			}
			_, err := c.app.Build(cmd.Context(), opts)
			return err
		},
	}
}
