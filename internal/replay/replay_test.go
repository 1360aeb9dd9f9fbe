package replay

import (
	"strings"
	"testing"

	"estatesim/internal/sim"
)

// record plays a short deterministic game and returns both the
// recording and the live final state.
func record(t *testing.T, turns int) (Recording, *sim.GameState) {
	t.Helper()
	g, err := sim.New("speed-to-value", 42)
	if err != nil {
		t.Fatal(err)
	}
	rec := Recording{ScenarioID: "speed-to-value", Seed: 42}

	for i := 0; i < turns; i++ {
		turn := RecordedTurn{}
		for g.State().ActionsRemaining > 0 {
			req := sim.ActionRequest{Type: sim.ActionRunEnablement}
			if g.State().ForcedAction != "" {
				req = sim.ActionRequest{Type: g.State().ForcedAction}
			}
			if err := g.PerformAction(req); err != nil {
				t.Fatal(err)
			}
			turn.Actions = append(turn.Actions, req)
		}
		if _, err := g.EndTurn(); err != nil {
			t.Fatal(err)
		}
		if g.State().Phase == sim.PhaseEvent {
			card := sim.EventByID(g.State().ActiveEvent.EventID)
			turn.EventChoice = card.Choices[0].ID
			if err := g.ResolveEvent(turn.EventChoice); err != nil {
				t.Fatal(err)
			}
		}
		rec.Turns = append(rec.Turns, turn)
		if g.State().Phase != sim.PhasePlaying {
			break
		}
	}
	return rec, g.State()
}

func TestRunRebuildsState(t *testing.T) {
	rec, want := record(t, 4)
	got, err := Run(rec)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentTurn != want.CurrentTurn {
		t.Errorf("turn = %d, want %d", got.CurrentTurn, want.CurrentTurn)
	}
	if got.Metrics != want.Metrics {
		t.Errorf("metrics diverged:\n got %+v\nwant %+v", got.Metrics, want.Metrics)
	}
}

func TestVerifyAcceptsFaithfulRecording(t *testing.T) {
	rec, want := record(t, 4)
	if err := Verify(rec, want); err != nil {
		t.Errorf("faithful recording rejected: %v", err)
	}
}

func TestVerifyRejectsTamperedState(t *testing.T) {
	rec, want := record(t, 4)
	tampered := want.Clone()
	tampered.Metrics.Adoption += 1
	err := Verify(rec, tampered)
	if err == nil {
		t.Fatal("tampered state accepted")
	}
	if !strings.Contains(err.Error(), "diverges") {
		t.Errorf("error = %v", err)
	}
}

func TestVerifyRejectsTamperedRecording(t *testing.T) {
	rec, want := record(t, 4)
	rec.Seed++
	if err := Verify(rec, want); err == nil {
		t.Fatal("recording with altered seed accepted")
	}
}

func TestRunRejectsMissingEventChoice(t *testing.T) {
	rec, _ := record(t, 4)
	var stripped bool
	for i := range rec.Turns {
		if rec.Turns[i].EventChoice != "" {
			rec.Turns[i].EventChoice = ""
			stripped = true
			break
		}
	}
	if !stripped {
		t.Skip("no event drawn in this recording")
	}
	if _, err := Run(rec); err == nil {
		t.Fatal("recording missing an event answer accepted")
	}
}

func TestRunUnknownScenario(t *testing.T) {
	if _, err := Run(Recording{ScenarioID: "bogus", Seed: 1}); err == nil {
		t.Error("unknown scenario accepted")
	}
}
