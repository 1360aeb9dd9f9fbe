package duel

import (
	"fmt"
	"strings"

	"estatesim/internal/sim"
)

// TurnResult is the resolution report for one match turn.
type TurnResult struct {
	Turn    int            `json:"turn"`
	Results []ActionResult `json:"results"`
	Summary string         `json:"summary"`
}

// ResolveTurn applies both sides' committed plans and advances the
// match one turn. Prospect actions resolve first in submission order,
// then architect actions, then passive drift. Constraints imposed on
// turn T with duration D stop binding once the turn counter passes
// T+D-1.
func ResolveTurn(m *MatchState, prospect []ProspectAction, architect []ArchitectAction) TurnResult {
	result := TurnResult{Turn: m.CurrentTurn}
	m.Phase = PhaseResolve

	for _, a := range prospect {
		result.Results = append(result.Results, applyProspectAction(m, a))
	}
	for _, a := range architect {
		result.Results = append(result.Results, applyArchitectAction(m, a))
	}

	applyDrift(m)

	m.CurrentTurn++
	pruneExpiredConstraints(m)
	for i := range m.Nodes {
		m.Nodes[i].Blocked = false
	}
	m.Phase = PhasePlanning

	result.Summary = buildSummary(result.Results)
	checkMatchEnd(m)
	return result
}

// applyDrift is the passive end-of-turn movement. The architect's
// gauges drift like the single-player game, minus the support-load and
// cost recomputation; the prospect's patience always ticks down.
func applyDrift(m *MatchState) {
	arch := &m.ArchitectMetrics
	pros := &m.ProspectMetrics
	simba, vdd, dash := countDeployments(m)

	arch.Adoption = clampPct(arch.Adoption + float64(vdd)*2 + float64(dash))
	trustDrift := float64(dash) * 1.5
	if arch.GovernanceCoverage < 50 {
		trustDrift -= 2
	}
	arch.Trust = clampPct(arch.Trust + trustDrift)
	arch.Latency = clampLatencyRange(arch.Latency + 50 - float64(simba)*30)
	arch.Reliability = clampPct(arch.Reliability + float64(dash)*2 - 1)
	arch.PoliticalCapital = clampPct(arch.PoliticalCapital + 3)

	pros.Patience = clampPct(pros.Patience - 2)
	if arch.Adoption > 50 {
		pros.BusinessValue = clampPct(pros.BusinessValue + 2)
	}
	if arch.GovernanceCoverage > 60 {
		pros.Risk = clampPct(pros.Risk - 2)
	}
}

func countDeployments(m *MatchState) (simba, vdd, dash int) {
	for i := range m.Nodes {
		for _, d := range m.Nodes[i].Deployments {
			switch d.Capability {
			case sim.CapabilitySimbaConnectors:
				simba++
			case sim.CapabilityVDD:
				vdd++
			case sim.CapabilityManagedDashboards:
				dash++
			}
		}
	}
	return
}

func pruneExpiredConstraints(m *MatchState) {
	kept := m.Constraints[:0]
	for _, c := range m.Constraints {
		if c.Active(m.CurrentTurn) {
			kept = append(kept, c)
		}
	}
	m.Constraints = kept
}

func buildSummary(results []ActionResult) string {
	var parts []string
	blocked := 0
	for _, r := range results {
		if r.Blocked {
			blocked++
			continue
		}
		switch r.Role {
		case RoleProspect:
			parts = append(parts, fmt.Sprintf("Prospect: %s", r.Effects))
		case RoleArchitect:
			parts = append(parts, fmt.Sprintf("Architect: %s", r.Effects))
		}
	}
	if blocked > 0 {
		parts = append(parts, fmt.Sprintf("%d action(s) were blocked.", blocked))
	}
	return strings.Join(parts, " | ")
}

// checkMatchEnd evaluates the end conditions after a turn resolves.
// Floor collapses end the match immediately in the prospect's favor;
// otherwise the match runs until the turn counter passes the deadline
// and both sides' objectives are compared.
func checkMatchEnd(m *MatchState) {
	arch := m.ArchitectMetrics
	pros := m.ProspectMetrics

	finish := func(winner Role, reason string) {
		m.Status = StatusFinished
		m.Winner = winner
		m.EndReason = reason
		m.appendTimeline(sim.EntryMilestone, winner, "Match Over", reason)
	}

	switch {
	case pros.Patience <= m.ProspectWinConditions.MinPatience:
		finish(RoleProspect, "Prospect ran out of patience and terminated the evaluation.")
		return
	case arch.Trust <= sim.LoseThresholds.Trust:
		finish(RoleProspect, "Trust collapsed. Stakeholders have lost faith in your analytics platform.")
		return
	case arch.Reliability <= sim.LoseThresholds.Reliability:
		finish(RoleProspect, "Reliability crisis. Constant incidents have made the platform unusable.")
		return
	case arch.PoliticalCapital <= sim.LoseThresholds.PoliticalCapital:
		finish(RoleProspect, "Political defeat. You no longer have the support to continue.")
		return
	}

	if m.CurrentTurn <= m.MaxTurns {
		return
	}

	architectSatisfied := arch.Adoption >= m.WinConditions.Adoption &&
		arch.Trust >= m.WinConditions.Trust &&
		arch.GovernanceCoverage >= m.WinConditions.GovernanceCoverage &&
		arch.Reliability >= m.WinConditions.Reliability &&
		arch.Latency <= m.WinConditions.MaxLatency &&
		arch.Cost <= m.WinConditions.MaxCostPerTurn
	prospectSatisfied := pros.BusinessValue >= m.ProspectWinConditions.MinBusinessValue &&
		pros.Risk <= m.ProspectWinConditions.MaxRisk &&
		pros.Patience >= m.ProspectWinConditions.MinPatience

	switch {
	case architectSatisfied && prospectSatisfied:
		finish(RoleArchitect, "Successfully delivered the analytics platform. Both parties satisfied!")
	case !architectSatisfied && !prospectSatisfied:
		m.Status = StatusFinished
		m.EndReason = "Neither party achieved their objectives. The evaluation ends inconclusively."
		m.appendTimeline(sim.EntryMilestone, "", "Match Over", m.EndReason)
	case !architectSatisfied:
		finish(RoleProspect, buildFailureReason(arch, m.WinConditions))
	default:
		finish(RoleProspect, "Prospect requirements not met despite technical success.")
	}
}

func buildFailureReason(arch sim.Metrics, wc sim.WinConditions) string {
	var missed []string
	if arch.Adoption < wc.Adoption {
		missed = append(missed, "Adoption")
	}
	if arch.Trust < wc.Trust {
		missed = append(missed, "Trust")
	}
	if arch.GovernanceCoverage < wc.GovernanceCoverage {
		missed = append(missed, "Governance")
	}
	if arch.Reliability < wc.Reliability {
		missed = append(missed, "Reliability")
	}
	if arch.Latency > wc.MaxLatency {
		missed = append(missed, "Latency")
	}
	if arch.Cost > wc.MaxCostPerTurn {
		missed = append(missed, "Cost")
	}
	return "Failed to meet: " + strings.Join(missed, ", ")
}

func clampLatencyRange(v float64) float64 {
	if v < sim.MinLatency {
		return sim.MinLatency
	}
	if v > sim.MaxLatency {
		return sim.MaxLatency
	}
	return v
}
