package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tennis-tournament",
	Short: "Tennis tournament results and knockout rounds",
	Long: `Tennis tournament backend: tournaments with initial groups, match results
with status-dependent validation and progressively generated knockout rounds.

Configuration is read from the environment (and an optional .env file).`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
