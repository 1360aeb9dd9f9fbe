package sim

import (
	"errors"
	"fmt"
)

// Sentinel errors the orchestrator returns for rejected commands.
var (
	ErrNoActionsRemaining  = errors.New("no actions remaining this turn")
	ErrForcedActionPending = errors.New("a forced action must be taken before ending the turn")
	ErrActionNotAvailable  = errors.New("action not available")
	ErrWrongPhase          = errors.New("operation not valid in current phase")
	ErrNothingToUndo       = errors.New("nothing to undo")
)

const (
	defaultMaxTurns       = 12
	defaultActionsPerTurn = 2
)

// Game wraps a GameState with the command surface and the undo stack.
// The undo stack is runtime-only: it is not serialized, and resolving a
// turn clears it.
type Game struct {
	state *GameState
	undo  []*GameState
}

// New starts a game from a scenario preset and seed.
func New(scenarioID string, seed int64) (*Game, error) {
	scenario, ok := ScenarioByID(scenarioID)
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", scenarioID)
	}
	nodes, edges := GenerateMap(scenario, seed)
	s := &GameState{
		Phase:            PhasePlaying,
		Seed:             seed,
		ScenarioID:       scenario.ID,
		CurrentTurn:      1,
		MaxTurns:         defaultMaxTurns,
		ActionsRemaining: defaultActionsPerTurn,
		ActionsPerTurn:   defaultActionsPerTurn,
		Nodes:            nodes,
		Edges:            edges,
		Metrics:          scenario.InitialMetrics,
		EventHistory:     []EventID{},
		Timeline:         []TimelineEntry{},
		ActionsThisTurn:  []ActionType{},
		RecentTuning:     []int{},
	}
	s.Timeline = append(s.Timeline, TimelineEntry{
		Turn:        0,
		Type:        EntryMilestone,
		Title:       "Game Started",
		Description: fmt.Sprintf("Scenario: %s", scenario.Name),
	})
	return &Game{state: s}, nil
}

// Resume wraps an already-built state, e.g. one rehydrated from storage.
// The undo history does not survive a round trip.
func Resume(s *GameState) *Game {
	return &Game{state: s}
}

// State returns the live state. Callers must treat it as read-only;
// mutations go through the command methods.
func (g *Game) State() *GameState {
	return g.state
}

// PerformAction validates and applies one player action, snapshotting
// first so the action can be undone. Defeat floors are checked
// immediately after the effects land.
func (g *Game) PerformAction(req ActionRequest) error {
	s := g.state
	if s.Phase != PhasePlaying {
		return ErrWrongPhase
	}
	if s.ActionsRemaining <= 0 {
		return ErrNoActionsRemaining
	}
	if !actionAllowed(s, req) {
		return ErrActionNotAvailable
	}

	g.undo = append(g.undo, s.Clone())
	if err := ApplyAction(s, req); err != nil {
		g.undo = g.undo[:len(g.undo)-1]
		return err
	}

	if reason, lost := CheckLose(s); lost {
		s.Phase = PhaseLost
		s.LoseReason = reason
		s.appendTimeline(EntryMilestone, "Game Over", reason)
	}
	return nil
}

func actionAllowed(s *GameState, req ActionRequest) bool {
	for _, a := range AvailableActions(s, req.NodeID) {
		if a == req.Type {
			return true
		}
	}
	return false
}

// Undo restores the state to before the most recent action this turn.
// A terminal or event phase cannot be undone out of.
func (g *Game) Undo() error {
	if g.state.Phase != PhasePlaying {
		return ErrWrongPhase
	}
	if len(g.undo) == 0 {
		return ErrNothingToUndo
	}
	g.state = g.undo[len(g.undo)-1]
	g.undo = g.undo[:len(g.undo)-1]
	return nil
}

// EndTurn resolves the current turn. It is rejected while a forced
// action is pending. Win is evaluated before loss; an event draw only
// happens when the game continues.
func (g *Game) EndTurn() (CostBreakdown, error) {
	s := g.state
	if s.Phase != PhasePlaying {
		return CostBreakdown{}, ErrWrongPhase
	}
	if s.ForcedAction != "" {
		return CostBreakdown{}, ErrForcedActionPending
	}

	breakdown := ResolveTurn(s)
	g.undo = nil

	if CheckWin(s, DefaultWinConditions) {
		s.Phase = PhaseWon
		s.appendTimeline(EntryMilestone, "Victory!", "All objectives achieved")
		return breakdown, nil
	}
	if reason, lost := CheckLose(s); lost {
		s.Phase = PhaseLost
		s.LoseReason = reason
		s.appendTimeline(EntryMilestone, "Game Over", reason)
		return breakdown, nil
	}

	scenario, _ := ScenarioByID(s.ScenarioID)
	if scenario.EventFrequency > 0 && s.CurrentTurn%scenario.EventFrequency == 0 {
		if card, ok := DrawEvent(s); ok {
			s.ActiveEvent = &ActiveEvent{EventID: card.ID, TurnDrawn: s.CurrentTurn}
			s.Phase = PhaseEvent
		}
	}
	return breakdown, nil
}

// ResolveEvent answers the pending event card with the given choice.
func (g *Game) ResolveEvent(choiceID string) error {
	if g.state.Phase != PhaseEvent {
		return ErrWrongPhase
	}
	return ResolveEventChoice(g.state, choiceID)
}

// UndoDepth reports how many actions can currently be undone.
func (g *Game) UndoDepth() int {
	return len(g.undo)
}
