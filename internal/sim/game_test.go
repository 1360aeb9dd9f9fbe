package sim

import (
	"encoding/json"
	"testing"
)

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestNewGame(t *testing.T) {
	g, err := New("speed-to-value", 42)
	if err != nil {
		t.Fatal(err)
	}
	s := g.State()
	if s.Phase != PhasePlaying {
		t.Errorf("phase = %s, want playing", s.Phase)
	}
	if s.CurrentTurn != 1 || s.MaxTurns != 12 || s.ActionsRemaining != 2 {
		t.Errorf("turn setup wrong: %+v", s)
	}
	if len(s.Nodes) == 0 || len(s.Edges) == 0 {
		t.Error("map not generated")
	}
	if len(s.Timeline) != 1 || s.Timeline[0].Title != "Game Started" {
		t.Errorf("timeline = %+v", s.Timeline)
	}
}

func TestNewGameUnknownScenario(t *testing.T) {
	if _, err := New("no-such-scenario", 1); err == nil {
		t.Error("unknown scenario should fail")
	}
}

func TestUndoRestoresExactState(t *testing.T) {
	g, err := New("speed-to-value", 7)
	if err != nil {
		t.Fatal(err)
	}
	before := mustJSON(t, g.State())

	if err := g.PerformAction(ActionRequest{Type: ActionAddGovernance}); err != nil {
		t.Fatal(err)
	}
	if mustJSON(t, g.State()) == before {
		t.Fatal("action had no visible effect")
	}
	if err := g.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := mustJSON(t, g.State()); got != before {
		t.Error("undo did not restore the exact prior state")
	}
}

func TestUndoStackDepth(t *testing.T) {
	g, _ := New("speed-to-value", 7)
	if err := g.Undo(); err != ErrNothingToUndo {
		t.Errorf("empty undo = %v, want ErrNothingToUndo", err)
	}
	g.PerformAction(ActionRequest{Type: ActionAddGovernance})
	g.PerformAction(ActionRequest{Type: ActionRunEnablement})
	if g.UndoDepth() != 2 {
		t.Errorf("undo depth = %d, want 2", g.UndoDepth())
	}
}

func TestEndTurnClearsUndo(t *testing.T) {
	g, _ := New("speed-to-value", 7)
	g.PerformAction(ActionRequest{Type: ActionAddGovernance})
	if _, err := g.EndTurn(); err != nil {
		t.Fatal(err)
	}
	if err := g.Undo(); err != ErrNothingToUndo {
		t.Errorf("undo across a turn boundary = %v, want ErrNothingToUndo", err)
	}
}

func TestActionBudgetEnforced(t *testing.T) {
	g, _ := New("speed-to-value", 7)
	g.PerformAction(ActionRequest{Type: ActionAddGovernance})
	g.PerformAction(ActionRequest{Type: ActionRunEnablement})
	if err := g.PerformAction(ActionRequest{Type: ActionRunEnablement}); err != ErrNoActionsRemaining {
		t.Errorf("third action = %v, want ErrNoActionsRemaining", err)
	}
}

func TestForcedActionGatesEndTurn(t *testing.T) {
	g, _ := New("speed-to-value", 7)
	g.State().ForcedAction = ActionIncidentResponse
	if _, err := g.EndTurn(); err != ErrForcedActionPending {
		t.Errorf("end turn with forced pending = %v, want ErrForcedActionPending", err)
	}
	if err := g.PerformAction(ActionRequest{Type: ActionRunEnablement}); err != ErrActionNotAvailable {
		t.Errorf("non-forced action = %v, want ErrActionNotAvailable", err)
	}
	if err := g.PerformAction(ActionRequest{Type: ActionIncidentResponse}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.EndTurn(); err != nil {
		t.Errorf("end turn after forced action = %v", err)
	}
}

func TestEventDrawnOnFrequency(t *testing.T) {
	// speed-to-value draws every 2 turns.
	g, _ := New("speed-to-value", 42)
	if _, err := g.EndTurn(); err != nil {
		t.Fatal(err)
	}
	if g.State().Phase != PhaseEvent {
		t.Fatalf("after resolving to turn 2, phase = %s, want event", g.State().Phase)
	}
	if g.State().ActiveEvent == nil {
		t.Fatal("no active event recorded")
	}
	if err := g.PerformAction(ActionRequest{Type: ActionRunEnablement}); err != ErrWrongPhase {
		t.Errorf("acting during event phase = %v, want ErrWrongPhase", err)
	}

	card := EventByID(g.State().ActiveEvent.EventID)
	if err := g.ResolveEvent(card.Choices[0].ID); err != nil {
		t.Fatal(err)
	}
	if g.State().Phase != PhasePlaying && g.State().Phase != PhaseLost {
		t.Errorf("after event, phase = %s", g.State().Phase)
	}
}

func TestFullGameDeterminism(t *testing.T) {
	play := func() string {
		g, err := New("speed-to-value", 42)
		if err != nil {
			t.Fatal(err)
		}
		for g.State().Phase == PhasePlaying || g.State().Phase == PhaseEvent {
			if g.State().Phase == PhaseEvent {
				card := EventByID(g.State().ActiveEvent.EventID)
				if err := g.ResolveEvent(card.Choices[len(card.Choices)-1].ID); err != nil {
					t.Fatal(err)
				}
				continue
			}
			for g.State().ActionsRemaining > 0 && g.State().Phase == PhasePlaying {
				req := ActionRequest{Type: AvailableActions(g.State(), "")[0]}
				if g.State().ForcedAction != "" {
					req = ActionRequest{Type: g.State().ForcedAction}
				}
				if err := g.PerformAction(req); err != nil {
					t.Fatal(err)
				}
			}
			if g.State().Phase != PhasePlaying {
				break
			}
			if _, err := g.EndTurn(); err != nil {
				t.Fatal(err)
			}
		}
		return mustJSON(t, g.State())
	}

	first := play()
	for run := 0; run < 3; run++ {
		if play() != first {
			t.Fatalf("run %d produced a different final state", run)
		}
	}
}

func TestResumeFromSerializedState(t *testing.T) {
	g, _ := New("governance-first", 11)
	g.PerformAction(ActionRequest{Type: ActionRunEnablement})

	blob := mustJSON(t, g.State())
	var restored GameState
	if err := json.Unmarshal([]byte(blob), &restored); err != nil {
		t.Fatal(err)
	}
	resumed := Resume(&restored)

	if err := g.PerformAction(ActionRequest{Type: ActionAddGovernance}); err != nil {
		t.Fatal(err)
	}
	if err := resumed.PerformAction(ActionRequest{Type: ActionAddGovernance}); err != nil {
		t.Fatal(err)
	}
	if mustJSON(t, g.State()) != mustJSON(t, resumed.State()) {
		t.Error("rehydrated state diverged from the live one")
	}
}

// A governance-only campaign: one add-governance per turn for three
// turns. Governance climbs every turn, trust rises with it, political
// capital pays for it, and the game keeps going.
func TestGovernanceCampaign(t *testing.T) {
	g, err := New("speed-to-value", 42)
	if err != nil {
		t.Fatal(err)
	}
	start := g.State().Metrics
	if start.Adoption != 35 || start.Trust != 55 || start.GovernanceCoverage != 25 {
		t.Fatalf("speed-to-value start = %+v", start)
	}

	prevGov := start.GovernanceCoverage
	for turn := 0; turn < 3; turn++ {
		if fa := g.State().ForcedAction; fa != "" {
			if err := g.PerformAction(ActionRequest{Type: fa}); err != nil {
				t.Fatal(err)
			}
		}

		before := g.State().Metrics
		if err := g.PerformAction(ActionRequest{Type: ActionAddGovernance}); err != nil {
			t.Fatalf("turn %d: %v", turn+1, err)
		}
		after := g.State().Metrics
		if after.GovernanceCoverage <= prevGov {
			t.Errorf("turn %d: governance %.0f did not rise past %.0f", turn+1, after.GovernanceCoverage, prevGov)
		}
		prevGov = after.GovernanceCoverage
		if after.Trust <= before.Trust {
			t.Errorf("turn %d: trust %.1f should rise from %.1f", turn+1, after.Trust, before.Trust)
		}
		if after.PoliticalCapital >= before.PoliticalCapital {
			t.Errorf("turn %d: political capital %.1f should fall from %.1f", turn+1, after.PoliticalCapital, before.PoliticalCapital)
		}

		if _, err := g.EndTurn(); err != nil {
			t.Fatal(err)
		}
		// Answer the event drawn after turn 1 so turn 2 can play; an
		// event pending after the final end-turn can stay pending.
		if turn < 2 && g.State().Phase == PhaseEvent {
			choice := EventByID(g.State().ActiveEvent.EventID).Choices[0].ID
			if err := g.ResolveEvent(choice); err != nil {
				t.Fatal(err)
			}
		}
	}

	if p := g.State().Phase; p == PhaseWon || p == PhaseLost {
		t.Fatalf("game ended early in phase %s", p)
	}
}

func TestUndoCannotLeaveLostPhase(t *testing.T) {
	g, _ := New("speed-to-value", 42)
	g.State().Metrics.Trust = 18

	var bu string
	for _, n := range g.State().Nodes {
		if n.Category == CategoryBusinessUnit {
			bu = n.ID
			break
		}
	}
	// Low governance makes the pilot cost 5 trust, crossing the floor.
	if err := g.PerformAction(ActionRequest{Type: ActionDeployVDD, NodeID: bu}); err != nil {
		t.Fatal(err)
	}
	if g.State().Phase != PhaseLost {
		t.Fatalf("phase = %s, want lost", g.State().Phase)
	}

	if err := g.Undo(); err != ErrWrongPhase {
		t.Errorf("undo after loss = %v, want ErrWrongPhase", err)
	}
	if g.State().Phase != PhaseLost || g.State().Metrics.Trust != 13 {
		t.Errorf("loss was rolled back: phase %s, trust %v", g.State().Phase, g.State().Metrics.Trust)
	}
}
