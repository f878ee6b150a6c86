// Package commands implements the CLI commands for the mill build tool.
package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.trai.ch/mill/internal/app"
)

// CLI is the command line interface for mill.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
	opts    *app.BuildOptions
}

// New creates a CLI around the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "mill",
		Short:         "An incremental build graph for toolchain pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts := &app.BuildOptions{}
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default <project>/mill.yaml)")
	flags.StringVar(&opts.ProjectDir, "project", "", "Project root directory (default working directory)")
	flags.StringVar(&opts.BuildDir, "build-dir", "", "Build output directory (default <project>/build)")
	flags.StringVar(&opts.OutputDir, "output-dir", "", "Final output directory (default build dir)")
	flags.StringVar(&opts.Mode, "mode", "", "Build mode: debug, profile or release (default debug)")
	flags.StringVar(&opts.Platform, "platform", "", "Target platform (default host)")
	flags.StringVar(&opts.TargetFile, "target-file", "", "Entry point file define")
	flags.StringArrayVarP(&opts.Defines, "define", "d", nil, "Extra KEY=VALUE define (repeatable)")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
		opts:    opts,
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}
