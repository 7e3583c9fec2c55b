package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "auction-radar",
		Short:         "Seoul apartment auction risk and pricing service",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Without a subcommand the binary serves the API, as it always has.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		newServeCommand(),
		newSeedCommand(),
		newAssessCommand(),
		newRemindCommand(),
	)
	return root
}
