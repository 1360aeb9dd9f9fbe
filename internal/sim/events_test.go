package sim

import (
	"testing"
)

func eventState(governance float64) *GameState {
	s := testState(governance)
	s.ActiveEvent = &ActiveEvent{TurnDrawn: s.CurrentTurn}
	s.Phase = PhaseEvent
	return s
}

func TestDrawEventDeterministic(t *testing.T) {
	s := testState(40)
	s.CurrentTurn = 4
	first, ok := DrawEvent(s)
	if !ok {
		t.Fatal("expected a card")
	}
	for i := 0; i < 10; i++ {
		again, _ := DrawEvent(s)
		if again.ID != first.ID {
			t.Fatalf("draw %d gave %s, want %s", i, again.ID, first.ID)
		}
	}
}

func TestDrawEventNeverRepeats(t *testing.T) {
	s := testState(40)
	seen := make(map[EventID]bool)
	for turn := 1; ; turn++ {
		s.CurrentTurn = turn
		card, ok := DrawEvent(s)
		if !ok {
			break
		}
		if seen[card.ID] {
			t.Fatalf("card %s drawn twice", card.ID)
		}
		seen[card.ID] = true
		s.EventHistory = append(s.EventHistory, card.ID)
	}
	if len(seen) != 10 {
		t.Errorf("drew %d distinct cards, want 10", len(seen))
	}
}

func TestResolveEventRecordsHistory(t *testing.T) {
	s := eventState(40)
	s.ActiveEvent.EventID = EventLicensing
	if err := ResolveEventChoice(s, "pay-up"); err != nil {
		t.Fatal(err)
	}
	if s.Metrics.Cost != 120 {
		t.Errorf("cost = %v, want 120", s.Metrics.Cost)
	}
	if s.ActiveEvent != nil {
		t.Error("active event should clear")
	}
	if s.Phase != PhasePlaying {
		t.Errorf("phase = %s, want playing", s.Phase)
	}
	if len(s.EventHistory) != 1 || s.EventHistory[0] != EventLicensing {
		t.Errorf("event history = %v", s.EventHistory)
	}
	if len(s.Timeline) != 1 || s.Timeline[0].Type != EntryEvent {
		t.Errorf("timeline = %+v", s.Timeline)
	}
}

func TestResolveEventUnknownChoice(t *testing.T) {
	s := eventState(40)
	s.ActiveEvent.EventID = EventLicensing
	if err := ResolveEventChoice(s, "refuse"); err == nil {
		t.Error("unknown choice should be rejected")
	}
}

func TestSchemaDriftConditional(t *testing.T) {
	plain := eventState(40)
	plain.ActiveEvent.EventID = EventSchemaDrift
	if err := ResolveEventChoice(plain, "let-it-ride"); err != nil {
		t.Fatal(err)
	}
	if plain.Metrics.Trust != 38 {
		t.Errorf("without dashboards or governance, trust = %v, want 38", plain.Metrics.Trust)
	}

	guarded := eventState(70)
	guarded.ActiveEvent.EventID = EventSchemaDrift
	if err := ResolveEventChoice(guarded, "let-it-ride"); err != nil {
		t.Fatal(err)
	}
	if guarded.Metrics.Trust != 47 {
		t.Errorf("with governance 70, trust = %v, want 47", guarded.Metrics.Trust)
	}
}

func TestHighCardinalityTuningDiscount(t *testing.T) {
	tuned := eventState(40)
	tuned.ActiveEvent.EventID = EventHighCardinality
	tuned.RecentTuning = []int{1}
	tuned.CurrentTurn = 2
	if err := ResolveEventChoice(tuned, "do-nothing"); err != nil {
		t.Fatal(err)
	}
	if tuned.Metrics.Latency != 1550 {
		t.Errorf("recently tuned latency = %v, want 1550", tuned.Metrics.Latency)
	}

	stale := eventState(40)
	stale.ActiveEvent.EventID = EventHighCardinality
	stale.RecentTuning = []int{1}
	stale.CurrentTurn = 5
	if err := ResolveEventChoice(stale, "do-nothing"); err != nil {
		t.Fatal(err)
	}
	if stale.Metrics.Latency != 1800 {
		t.Errorf("stale tuning latency = %v, want 1800", stale.Metrics.Latency)
	}
}

func TestCentralITVetoPoliticalBranch(t *testing.T) {
	strong := eventState(40)
	strong.ActiveEvent.EventID = EventCentralITVeto
	strong.Metrics.PoliticalCapital = 60
	if err := ResolveEventChoice(strong, "fight-veto"); err != nil {
		t.Fatal(err)
	}
	if strong.Metrics.PoliticalCapital != 40 {
		t.Errorf("political = %v, want 40", strong.Metrics.PoliticalCapital)
	}
	for _, n := range strong.Nodes {
		if n.Blocked {
			t.Error("winning the fight should not block nodes")
		}
	}

	weak := eventState(40)
	weak.ActiveEvent.EventID = EventCentralITVeto
	weak.Metrics.PoliticalCapital = 40
	if err := ResolveEventChoice(weak, "fight-veto"); err != nil {
		t.Fatal(err)
	}
	if weak.Metrics.PoliticalCapital != 30 {
		t.Errorf("political = %v, want 30", weak.Metrics.PoliticalCapital)
	}
	for _, n := range weak.Nodes {
		if !n.Blocked {
			t.Errorf("losing the fight should block every node, %s is open", n.ID)
		}
	}
}

func TestP1IncidentForcesResponse(t *testing.T) {
	s := eventState(40)
	s.ActiveEvent.EventID = EventP1Incident
	if err := ResolveEventChoice(s, "incident-response"); err != nil {
		t.Fatal(err)
	}
	if s.Metrics.Reliability != 45 {
		t.Errorf("reliability = %v, want 45", s.Metrics.Reliability)
	}
	if s.ForcedAction != ActionIncidentResponse {
		t.Errorf("forced action = %q, want incident-response", s.ForcedAction)
	}
}

func TestStalledAdoptionAcceptIsNoOp(t *testing.T) {
	s := eventState(40)
	s.ActiveEvent.EventID = EventStalledAdoption
	before := s.Metrics
	if err := ResolveEventChoice(s, "accept-stall"); err != nil {
		t.Fatal(err)
	}
	if s.Metrics != before {
		t.Errorf("accept-stall should not move metrics: %+v vs %+v", s.Metrics, before)
	}
}

func TestShadowITDependsOnDashboards(t *testing.T) {
	bare := eventState(40)
	bare.ActiveEvent.EventID = EventShadowIT
	if err := ResolveEventChoice(bare, "embrace-extend"); err != nil {
		t.Fatal(err)
	}
	if bare.Metrics.Trust != 40 {
		t.Errorf("without dashboards trust = %v, want 40", bare.Metrics.Trust)
	}

	governed := eventState(40)
	governed.ActiveEvent.EventID = EventShadowIT
	governed.NodeByID("bu").Deployments = []Deployment{{Capability: CapabilityManagedDashboards}}
	if err := ResolveEventChoice(governed, "embrace-extend"); err != nil {
		t.Fatal(err)
	}
	if governed.Metrics.Adoption != 45 {
		t.Errorf("with dashboards adoption = %v, want 45", governed.Metrics.Adoption)
	}
}

func TestEventLossEndsGame(t *testing.T) {
	s := eventState(40)
	s.ActiveEvent.EventID = EventShadowIT
	s.Metrics.PoliticalCapital = 15
	if err := ResolveEventChoice(s, "crack-down"); err != nil {
		t.Fatal(err)
	}
	if s.Phase != PhaseLost {
		t.Errorf("phase = %s, want lost", s.Phase)
	}
	if s.LoseReason == "" {
		t.Error("lose reason missing")
	}
}

func TestWorkAroundBlocksOneNode(t *testing.T) {
	s := eventState(40)
	s.ActiveEvent.EventID = EventDataAccess
	if err := ResolveEventChoice(s, "work-around"); err != nil {
		t.Fatal(err)
	}
	blocked := 0
	for _, n := range s.Nodes {
		if n.Blocked {
			blocked++
		}
	}
	if blocked != 1 {
		t.Errorf("blocked nodes = %d, want 1", blocked)
	}
	if s.Metrics.Reliability != 55 {
		t.Errorf("reliability = %v, want 55", s.Metrics.Reliability)
	}
}

func TestWorkAroundWithoutCandidateCostsNothing(t *testing.T) {
	s := eventState(40)
	s.ActiveEvent.EventID = EventDataAccess
	for i := range s.Nodes {
		s.Nodes[i].Blocked = true
	}
	if err := ResolveEventChoice(s, "work-around"); err != nil {
		t.Fatal(err)
	}
	if s.Metrics.Reliability != 60 {
		t.Errorf("reliability = %v, want 60", s.Metrics.Reliability)
	}
}
