// Package cmd holds the pokemon-gym command tree.
package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pokemon-gym",
		Short:         "Emulator session harness for LLM agents playing Pokémon Red",
		Long:          "pokemon-gym runs a Game Boy emulator behind a REST API so agents can press buttons, read game state, and accumulate an evaluation score across resumable sessions.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newVersionCmd(),
	)

	return rootCmd
}
