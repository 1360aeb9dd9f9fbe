package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "estatesim",
	Short: "Enterprise analytics estate simulator",
	Long:  "EstateSim runs the turn-based analytics rollout simulation: solo games, two-player matches, and deterministic replay verification.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(scenariosCmd)
}
