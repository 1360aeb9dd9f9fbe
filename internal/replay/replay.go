// Package replay re-runs recorded games from their seed and action
// history and verifies the rebuilt state matches bit for bit.
package replay

import (
	"bytes"
	"encoding/json"
	"fmt"

	"estatesim/internal/sim"
)

// RecordedTurn is one turn's worth of player input: the actions taken,
// whether the turn was ended, and the answer to any event drawn after
// resolution.
type RecordedTurn struct {
	Actions     []sim.ActionRequest `json:"actions"`
	EventChoice string              `json:"eventChoice,omitempty"`
}

// Recording is the full deterministic input of a finished or
// in-progress game.
type Recording struct {
	ScenarioID string         `json:"scenarioId"`
	Seed       int64          `json:"seed"`
	Turns      []RecordedTurn `json:"turns"`
}

// Run replays a recording from scratch and returns the resulting
// state. The replay stops early if the game ends mid-recording; any
// input the finished game cannot accept is an error.
func Run(rec Recording) (*sim.GameState, error) {
	g, err := sim.New(rec.ScenarioID, rec.Seed)
	if err != nil {
		return nil, err
	}
	for ti, turn := range rec.Turns {
		for ai, a := range turn.Actions {
			if err := g.PerformAction(a); err != nil {
				return nil, fmt.Errorf("turn %d action %d (%s): %w", ti+1, ai+1, a.Type, err)
			}
			if ended(g.State()) {
				return g.State(), nil
			}
		}
		if _, err := g.EndTurn(); err != nil {
			return nil, fmt.Errorf("turn %d end: %w", ti+1, err)
		}
		if ended(g.State()) {
			return g.State(), nil
		}
		if g.State().Phase == sim.PhaseEvent {
			if turn.EventChoice == "" {
				return nil, fmt.Errorf("turn %d: event drawn but no choice recorded", ti+1)
			}
			if err := g.ResolveEvent(turn.EventChoice); err != nil {
				return nil, fmt.Errorf("turn %d event: %w", ti+1, err)
			}
			if ended(g.State()) {
				return g.State(), nil
			}
		}
	}
	return g.State(), nil
}

// Verify replays the recording and compares the rebuilt state against
// the expected one via canonical JSON. A mismatch means either the
// recording was tampered with or the engine changed behavior.
func Verify(rec Recording, want *sim.GameState) error {
	got, err := Run(rec)
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}
	gotJSON, err := json.Marshal(got)
	if err != nil {
		return fmt.Errorf("marshal replayed state: %w", err)
	}
	wantJSON, err := json.Marshal(want)
	if err != nil {
		return fmt.Errorf("marshal expected state: %w", err)
	}
	if !bytes.Equal(gotJSON, wantJSON) {
		return fmt.Errorf("replayed state diverges from recorded state")
	}
	return nil
}

func ended(s *sim.GameState) bool {
	return s.Phase == sim.PhaseWon || s.Phase == sim.PhaseLost
}
