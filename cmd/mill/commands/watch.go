package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [target]",
		Short: "Build a target, then rebuild whenever its sources change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := *c.opts
			if len(args) == 1 {
				opts.Target = args[0]
			}
			return c.app.Watch(cmd.Context(), opts)
		},
	}
}
