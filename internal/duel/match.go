package duel

import (
	"fmt"

	"estatesim/internal/sim"
)

const matchMaxTurns = 12

// defaultArchitectMetrics are the match-mode starting gauges before
// scenario overrides.
var defaultArchitectMetrics = sim.Metrics{
	Adoption:           30,
	Trust:              50,
	Latency:            1500,
	Cost:               80,
	GovernanceCoverage: 40,
	Reliability:        60,
	PoliticalCapital:   50,
	SupportLoad:        40,
}

var defaultProspectMetrics = ProspectMetrics{
	BusinessValue: 30,
	Risk:          50,
	Patience:      70,
}

// NewMatch starts a two-player match on a scenario preset. Scenario
// presets only override a few starting gauges in match mode; the rest
// come from the match defaults, not the single-player metrics.
func NewMatch(scenarioID string, seed int64) (*MatchState, error) {
	scenario, ok := sim.ScenarioByID(scenarioID)
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", scenarioID)
	}

	arch := defaultArchitectMetrics
	pros := defaultProspectMetrics
	switch scenario.ID {
	case "speed-to-value":
		arch.Adoption = 20
		arch.PoliticalCapital = 60
		pros.Patience = 50
		pros.BusinessValue = 20
	case "governance-first":
		arch.GovernanceCoverage = 60
		arch.Trust = 40
		pros.Risk = 70
		pros.Patience = 80
	case "scale-out":
		arch.Adoption = 40
		arch.Reliability = 50
		pros.BusinessValue = 40
		pros.Patience = 60
	}

	nodes, edges := GenerateMatchMap(seed)
	m := &MatchState{
		Status:                StatusActive,
		Phase:                 PhasePlanning,
		Seed:                  seed,
		ScenarioID:            scenario.ID,
		CurrentTurn:           1,
		MaxTurns:              matchMaxTurns,
		Nodes:                 nodes,
		Edges:                 edges,
		ArchitectMetrics:      arch,
		ProspectMetrics:       pros,
		WinConditions:         sim.DefaultWinConditions,
		ProspectWinConditions: DefaultProspectWinConditions,
		Constraints:           []Constraint{},
		Timeline:              []sim.TimelineEntry{},
	}
	m.Timeline = append(m.Timeline, sim.TimelineEntry{
		Turn:        0,
		Type:        sim.EntryMilestone,
		Title:       "Match Started",
		Description: fmt.Sprintf("Scenario: %s", scenario.Name),
	})
	return m, nil
}
