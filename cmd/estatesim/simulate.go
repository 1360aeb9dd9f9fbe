package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"estatesim/internal/replay"
	"estatesim/internal/sim"
)

var (
	simScenario string
	simSeed     int64
	simRecord   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Auto-play a solo game to completion",
	Long:  "simulate plays a full game with a simple deploy-first policy and prints the turn-by-turn outcome. The same scenario and seed always produce the same game.",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := sim.New(simScenario, simSeed)
		if err != nil {
			return err
		}

		rec := replay.Recording{ScenarioID: simScenario, Seed: simSeed}
		for g.State().Phase == sim.PhasePlaying || g.State().Phase == sim.PhaseEvent {
			turn := replay.RecordedTurn{}

			for g.State().Phase == sim.PhasePlaying && g.State().ActionsRemaining > 0 {
				req := pickAction(g.State())
				if err := g.PerformAction(req); err != nil {
					return fmt.Errorf("turn %d: %w", g.State().CurrentTurn, err)
				}
				turn.Actions = append(turn.Actions, req)
			}
			if g.State().Phase != sim.PhasePlaying {
				rec.Turns = append(rec.Turns, turn)
				break
			}

			if _, err := g.EndTurn(); err != nil {
				return err
			}
			if g.State().Phase == sim.PhaseEvent {
				card := sim.EventByID(g.State().ActiveEvent.EventID)
				choice := card.Choices[0].ID
				fmt.Printf("turn %d event: %s -> %s\n", g.State().CurrentTurn, card.Title, choice)
				if err := g.ResolveEvent(choice); err != nil {
					return err
				}
				turn.EventChoice = choice
			}
			rec.Turns = append(rec.Turns, turn)

			m := g.State().Metrics
			fmt.Printf("turn %d: adoption=%.0f trust=%.0f governance=%.0f reliability=%.0f latency=%.0fms cost=%.0f\n",
				g.State().CurrentTurn, m.Adoption, m.Trust, m.GovernanceCoverage, m.Reliability, m.Latency, m.Cost)
		}

		switch g.State().Phase {
		case sim.PhaseWon:
			fmt.Println("result: victory")
		case sim.PhaseLost:
			fmt.Printf("result: defeat (%s)\n", g.State().LoseReason)
		}

		if simRecord != "" {
			blob, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(simRecord, blob, 0o644); err != nil {
				return err
			}
			fmt.Printf("recording written to %s\n", simRecord)
		}
		return nil
	},
}

// pickAction is the autoplay policy: honor a forced action, otherwise
// deploy on the first node with an open slot, otherwise rotate the
// global actions.
func pickAction(s *sim.GameState) sim.ActionRequest {
	if s.ForcedAction != "" {
		return sim.ActionRequest{Type: s.ForcedAction}
	}
	for i := range s.Nodes {
		n := &s.Nodes[i]
		for _, a := range sim.AvailableActions(s, n.ID) {
			switch a {
			case sim.ActionDeploySimba, sim.ActionDeployVDD, sim.ActionDeployDashboards:
				return sim.ActionRequest{Type: a, NodeID: n.ID}
			}
		}
	}
	rotation := []sim.ActionType{sim.ActionRunEnablement, sim.ActionAddGovernance, sim.ActionPerformanceTuning}
	return sim.ActionRequest{Type: rotation[s.CurrentTurn%len(rotation)]}
}

func init() {
	simulateCmd.Flags().StringVar(&simScenario, "scenario", "speed-to-value", "Scenario preset id")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 42, "Deterministic game seed")
	simulateCmd.Flags().StringVar(&simRecord, "record", "", "Write the action recording to this file")
}
