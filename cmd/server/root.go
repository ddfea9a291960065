package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	cmd := &cobra.Command{
		Use:           "hrportal",
		Short:         "HR portal backend-for-frontend",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Running the bare binary serves.
		RunE: serve.RunE,
	}
	cmd.AddCommand(serve, newConfigCmd())
	return cmd
}
