package sim

import (
	"fmt"
	"strings"
)

// CheckWin reports whether the game is won: the final turn has been
// reached and every victory threshold holds simultaneously.
func CheckWin(s *GameState, wc WinConditions) bool {
	if s.CurrentTurn < s.MaxTurns {
		return false
	}
	m := s.Metrics
	return m.Adoption >= wc.Adoption &&
		m.Trust >= wc.Trust &&
		m.GovernanceCoverage >= wc.GovernanceCoverage &&
		m.Reliability >= wc.Reliability &&
		m.Latency <= wc.MaxLatency &&
		m.Cost <= wc.MaxCostPerTurn
}

// CheckLose reports whether a defeat condition holds and, if so, the
// human-readable reason. Floor collapses end the game at any time;
// unmet objectives only lose at the final turn.
func CheckLose(s *GameState) (string, bool) {
	m := s.Metrics
	switch {
	case m.Trust <= LoseThresholds.Trust:
		return "Trust collapsed. Stakeholders have lost faith in your analytics platform.", true
	case m.Reliability <= LoseThresholds.Reliability:
		return "Reliability crisis. Constant incidents have made the platform unusable.", true
	case m.PoliticalCapital <= LoseThresholds.PoliticalCapital:
		return "Political defeat. You no longer have the support to continue.", true
	}

	if s.CurrentTurn >= s.MaxTurns {
		if failures := unmetObjectives(s, DefaultWinConditions); len(failures) > 0 {
			return "Failed to meet objectives: " + strings.Join(failures, ", "), true
		}
	}
	return "", false
}

// unmetObjectives lists each victory threshold the state misses, in a
// fixed order, formatted for the defeat summary.
func unmetObjectives(s *GameState, wc WinConditions) []string {
	m := s.Metrics
	var failures []string
	if m.Adoption < wc.Adoption {
		failures = append(failures, fmt.Sprintf("Adoption (%.0f%% < %.0f%%)", m.Adoption, wc.Adoption))
	}
	if m.Trust < wc.Trust {
		failures = append(failures, fmt.Sprintf("Trust (%.0f%% < %.0f%%)", m.Trust, wc.Trust))
	}
	if m.GovernanceCoverage < wc.GovernanceCoverage {
		failures = append(failures, fmt.Sprintf("Governance (%.0f%% < %.0f%%)", m.GovernanceCoverage, wc.GovernanceCoverage))
	}
	if m.Reliability < wc.Reliability {
		failures = append(failures, fmt.Sprintf("Reliability (%.0f%% < %.0f%%)", m.Reliability, wc.Reliability))
	}
	if m.Latency > wc.MaxLatency {
		failures = append(failures, fmt.Sprintf("Latency (%.0fms > %.0fms)", m.Latency, wc.MaxLatency))
	}
	if m.Cost > wc.MaxCostPerTurn {
		failures = append(failures, fmt.Sprintf("Cost (£%.0f > £%.0f)", m.Cost, wc.MaxCostPerTurn))
	}
	return failures
}
