package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pranavnadakkal/portfolio/internal/cfg"
	"github.com/pranavnadakkal/portfolio/internal/version"
)

const appName = "portfolio"

// newRootCmd builds the command tree. Running the root without a
// subcommand serves the site.
func newRootCmd() *cobra.Command {
	var conf cfg.App

	root := &cobra.Command{
		Use:          appName,
		Short:        "Portfolio web server",
		SilenceUsage: true,
		Version:      version.Get().String(),
		Args:         cobra.NoArgs,
		RunE:         func(cmd *cobra.Command, _ []string) error { return runServe(cmd, &conf) },
	}
	cfg.Register(root.PersistentFlags(), &conf)
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		cfg.FillFromEnv(root.PersistentFlags(), cfg.EnvPrefix, func(format string, args ...any) {
			fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
		})
		return nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the portfolio site (default)",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, _ []string) error { return runServe(cmd, &conf) },
		},
		newValidateCmd(&conf),
		newVersionCmd(),
	)
	return root
}
