package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"estatesim/internal/replay"
	"estatesim/internal/sim"
)

var replayStatePath string

var replayCmd = &cobra.Command{
	Use:   "replay <recording.json>",
	Short: "Re-run a recorded game",
	Long:  "replay rebuilds a game from its recording. With --state it also verifies the rebuilt state matches the recorded one bit for bit.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blob, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var rec replay.Recording
		if err := json.Unmarshal(blob, &rec); err != nil {
			return fmt.Errorf("parse recording: %w", err)
		}

		if replayStatePath != "" {
			stateBlob, err := os.ReadFile(replayStatePath)
			if err != nil {
				return err
			}
			var want sim.GameState
			if err := json.Unmarshal(stateBlob, &want); err != nil {
				return fmt.Errorf("parse state: %w", err)
			}
			if err := replay.Verify(rec, &want); err != nil {
				return err
			}
			fmt.Println("recording verified")
			return nil
		}

		state, err := replay.Run(rec)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayStatePath, "state", "", "Expected final state JSON to verify against")
}
