package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"estatesim/internal/sim"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the scenario presets",
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range sim.Scenarios {
			fmt.Printf("%-18s %s\n", s.ID, s.Name)
			fmt.Printf("%-18s %s\n", "", s.Description)
			fmt.Printf("%-18s nodes=%d events-every=%d turns\n\n", "", s.NodeCount, s.EventFrequency)
		}
	},
}
