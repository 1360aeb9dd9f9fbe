package duel

import (
	"fmt"

	"estatesim/internal/sim"
)

// ActionResult records what one planned action did during resolution.
type ActionResult struct {
	Role        Role   `json:"role"`
	Action      string `json:"action"`
	Blocked     bool   `json:"blocked,omitempty"`
	BlockReason string `json:"blockReason,omitempty"`
	Effects     string `json:"effects,omitempty"`
}

// constraintID derives a stable id from the turn and the count so far,
// so replays of the same match produce identical constraints.
func constraintID(m *MatchState) string {
	return fmt.Sprintf("constraint-t%d-%d", m.CurrentTurn, len(m.Constraints))
}

// applyProspectAction applies one prospect move. Constraints never
// block the prospect, but a malformed submission (unknown action id,
// constraint without a capability) is rejected with zero effect and no
// timeline entry.
func applyProspectAction(m *MatchState, a ProspectAction) ActionResult {
	arch := &m.ArchitectMetrics
	pros := &m.ProspectMetrics
	res := ActionResult{Role: RoleProspect, Action: string(a.Type)}

	switch a.Type {
	case ProspectImposeConstraint:
		if a.Capability == "" {
			res.Blocked = true
			res.BlockReason = "No capability named"
			return res
		}
		m.Constraints = append(m.Constraints, Constraint{
			ID:          constraintID(m),
			Type:        ConstraintCapabilityBlock,
			Capability:  a.Capability,
			TurnImposed: m.CurrentTurn,
			Duration:    2,
		})
		pros.Risk = clampPct(pros.Risk - 5)
		arch.PoliticalCapital = clampPct(arch.PoliticalCapital - 10)
		res.Effects = fmt.Sprintf("Blocked %s deployments for 2 turns", a.Capability)

	case ProspectDemandPOC:
		m.Constraints = append(m.Constraints, Constraint{
			ID:          constraintID(m),
			Type:        ConstraintPOCRequired,
			TurnImposed: m.CurrentTurn,
			Duration:    3,
			Requirement: arch.Adoption + 10,
		})
		pros.Patience = clampPct(pros.Patience - 10)
		res.Effects = fmt.Sprintf("Demanded proof-of-concept: adoption must reach %.0f%%", arch.Adoption+10)

	case ProspectSecurityReview:
		m.WinConditions.GovernanceCoverage = clampPct(m.WinConditions.GovernanceCoverage + 10)
		pros.Risk = clampPct(pros.Risk - 10)
		arch.PoliticalCapital = clampPct(arch.PoliticalCapital - 5)
		res.Effects = fmt.Sprintf("Raised the governance bar to %.0f%%", m.WinConditions.GovernanceCoverage)

	case ProspectThreatenAlt:
		pros.Patience = clampPct(pros.Patience - 15)
		arch.PoliticalCapital = clampPct(arch.PoliticalCapital - 15)
		res.Effects = "Threatened to evaluate a competing platform"

	case ProspectApproveBudget:
		m.WinConditions.MaxCostPerTurn += 20
		pros.BusinessValue = clampPct(pros.BusinessValue - 5)
		arch.PoliticalCapital = clampPct(arch.PoliticalCapital + 10)
		res.Effects = fmt.Sprintf("Approved budget: cost ceiling now £%.0f", m.WinConditions.MaxCostPerTurn)

	case ProspectSetDeadline:
		shortened := m.MaxTurns - 2
		floor := m.CurrentTurn + 2
		if shortened < floor {
			shortened = floor
		}
		m.MaxTurns = shortened
		pros.Patience = clampPct(pros.Patience - 5)
		res.Effects = fmt.Sprintf("Moved the deadline to turn %d", m.MaxTurns)

	case ProspectShareRequirements:
		pros.BusinessValue = clampPct(pros.BusinessValue + 5)
		arch.PoliticalCapital = clampPct(arch.PoliticalCapital + 10)
		res.Effects = "Shared detailed requirements"

	case ProspectAcknowledge:
		pros.Patience = clampPct(pros.Patience + 10)
		pros.BusinessValue = clampPct(pros.BusinessValue + 5)
		arch.Trust = clampPct(arch.Trust + 5)
		res.Effects = "Acknowledged progress"

	default:
		res.Blocked = true
		res.BlockReason = fmt.Sprintf("Unknown action %q", a.Type)
		return res
	}

	m.appendTimeline(sim.EntryAction, RoleProspect, ProspectActionName(a.Type), res.Effects)
	return res
}

// applyArchitectAction applies one architect move, honoring active
// capability blocks. Deploy actions against an invalid target fail
// rather than silently doing nothing.
func applyArchitectAction(m *MatchState, a ArchitectAction) ActionResult {
	arch := &m.ArchitectMetrics
	pros := &m.ProspectMetrics
	res := ActionResult{Role: RoleArchitect, Action: string(a.Type)}

	if cap, isDeploy := deployCapability(a.Type); isDeploy && m.CapabilityBlocked(cap) {
		res.Blocked = true
		res.BlockReason = fmt.Sprintf("Blocked by %s", ConstraintCapabilityBlock)
		return res
	}

	node := m.NodeByID(a.NodeID)

	switch a.Type {
	case sim.ActionDeploySimba:
		if node == nil || (node.Category != sim.CategoryApplication && node.Category != sim.CategoryDataPlatform) {
			res.Blocked = true
			res.BlockReason = "Invalid deployment target"
			return res
		}
		if node.HasCapability(sim.CapabilitySimbaConnectors) {
			res.Blocked = true
			res.BlockReason = "Capability already deployed"
			return res
		}
		auth := sim.AuthWeak
		if arch.GovernanceCoverage >= 50 {
			auth = sim.AuthStrong
		}
		node.Deployments = append(node.Deployments, sim.Deployment{
			ID:           fmt.Sprintf("dep-%s-%s-t%d", node.ID, sim.CapabilitySimbaConnectors, m.CurrentTurn),
			Capability:   sim.CapabilitySimbaConnectors,
			TurnDeployed: m.CurrentTurn,
			AuthStrength: auth,
		})
		node.Latency = maxLatencyFloor(node.Latency - 200)
		arch.Latency = maxLatencyFloor(arch.Latency - 150)
		if arch.GovernanceCoverage < 50 {
			arch.SupportLoad = clampPct(arch.SupportLoad + 8)
			pros.Risk = clampPct(pros.Risk + 5)
		}
		arch.Cost += 15
		pros.BusinessValue = clampPct(pros.BusinessValue + 5)
		res.Effects = fmt.Sprintf("Deployed Simba connectors on %s", node.Name)

	case sim.ActionDeployVDD:
		if node == nil || node.Category != sim.CategoryBusinessUnit {
			res.Blocked = true
			res.BlockReason = "Invalid deployment target"
			return res
		}
		if node.HasCapability(sim.CapabilityVDD) {
			res.Blocked = true
			res.BlockReason = "Capability already deployed"
			return res
		}
		node.Deployments = append(node.Deployments, sim.Deployment{
			ID:            fmt.Sprintf("dep-%s-%s-t%d", node.ID, sim.CapabilityVDD, m.CurrentTurn),
			Capability:    sim.CapabilityVDD,
			TurnDeployed:  m.CurrentTurn,
			AuthStrength:  sim.AuthStrong,
			TemplatesUsed: arch.GovernanceCoverage >= 60,
		})
		node.Adoption = clampPct(node.Adoption + 15)
		arch.Adoption = clampPct(arch.Adoption + 12)
		if arch.GovernanceCoverage < 50 {
			arch.Trust = clampPct(arch.Trust - 5)
			pros.Risk = clampPct(pros.Risk + 10)
		}
		arch.SupportLoad = clampPct(arch.SupportLoad + 10)
		arch.Cost += 10
		pros.BusinessValue = clampPct(pros.BusinessValue + 8)
		res.Effects = fmt.Sprintf("Enabled VDD pilot on %s", node.Name)

	case sim.ActionDeployDashboards:
		if node == nil || node.Category != sim.CategoryBusinessUnit {
			res.Blocked = true
			res.BlockReason = "Invalid deployment target"
			return res
		}
		if node.HasCapability(sim.CapabilityManagedDashboards) {
			res.Blocked = true
			res.BlockReason = "Capability already deployed"
			return res
		}
		node.Deployments = append(node.Deployments, sim.Deployment{
			ID:            fmt.Sprintf("dep-%s-%s-t%d", node.ID, sim.CapabilityManagedDashboards, m.CurrentTurn),
			Capability:    sim.CapabilityManagedDashboards,
			TurnDeployed:  m.CurrentTurn,
			AuthStrength:  sim.AuthStrong,
			TemplatesUsed: true,
		})
		node.Trust = clampPct(node.Trust + 10)
		arch.Trust = clampPct(arch.Trust + 8)
		arch.Reliability = clampPct(arch.Reliability + 5)
		arch.Adoption = clampPct(arch.Adoption + 3)
		arch.SupportLoad = clampPct(arch.SupportLoad - 5)
		arch.Cost += 25
		pros.BusinessValue = clampPct(pros.BusinessValue + 10)
		pros.Risk = clampPct(pros.Risk - 5)
		res.Effects = fmt.Sprintf("Published managed dashboards on %s", node.Name)

	case sim.ActionRunEnablement:
		arch.SupportLoad = clampPct(arch.SupportLoad - 12)
		arch.Adoption = clampPct(arch.Adoption + 6)
		arch.Cost += 8
		pros.Patience = clampPct(pros.Patience + 3)
		res.Effects = "Ran enablement for end users"

	case sim.ActionAddGovernance:
		arch.GovernanceCoverage = clampPct(arch.GovernanceCoverage + 10)
		arch.Trust = clampPct(arch.Trust + 6)
		arch.Adoption = clampPct(arch.Adoption - 3)
		arch.PoliticalCapital = clampPct(arch.PoliticalCapital - 5)
		pros.Risk = clampPct(pros.Risk - 10)
		res.Effects = "Added a governance policy"

	case sim.ActionPerformanceTuning:
		arch.Latency = maxLatencyFloor(arch.Latency - 250)
		arch.Reliability = clampPct(arch.Reliability + 8)
		arch.PoliticalCapital = clampPct(arch.PoliticalCapital - 8)
		arch.Cost += 12
		pros.BusinessValue = clampPct(pros.BusinessValue + 3)
		res.Effects = "Tuned query performance"

	case sim.ActionIncidentResponse:
		arch.Reliability = clampPct(arch.Reliability + 10)
		arch.SupportLoad = clampPct(arch.SupportLoad - 5)
		pros.Risk = clampPct(pros.Risk - 5)
		pros.Patience = clampPct(pros.Patience - 5)
		res.Effects = "Responded to an incident"

	case ActionPresentRoadmap:
		arch.PoliticalCapital = clampPct(arch.PoliticalCapital - 10)
		pros.Patience = clampPct(pros.Patience + 15)
		pros.BusinessValue = clampPct(pros.BusinessValue + 5)
		res.Effects = "Presented strategic roadmap to stakeholders"

	case ActionExecutiveEscalation:
		if len(m.Constraints) == 0 {
			res.Blocked = true
			res.BlockReason = "No constraint to escalate against"
			return res
		}
		removed := m.Constraints[0]
		m.Constraints = m.Constraints[1:]
		arch.PoliticalCapital = clampPct(arch.PoliticalCapital - 20)
		pros.Patience = clampPct(pros.Patience - 10)
		res.Effects = fmt.Sprintf("Escalated to remove constraint: %s", removed.Type)

	default:
		res.Blocked = true
		res.BlockReason = fmt.Sprintf("Unknown action %q", a.Type)
		return res
	}

	title := string(a.Type)
	if info, ok := sim.ActionByType(a.Type); ok {
		title = info.Name
	} else if a.Type == ActionPresentRoadmap {
		title = "Present Roadmap"
	} else if a.Type == ActionExecutiveEscalation {
		title = "Executive Escalation"
	}
	m.appendTimeline(sim.EntryAction, RoleArchitect, title, res.Effects)
	return res
}

func deployCapability(t sim.ActionType) (sim.CapabilityType, bool) {
	switch t {
	case sim.ActionDeploySimba:
		return sim.CapabilitySimbaConnectors, true
	case sim.ActionDeployVDD:
		return sim.CapabilityVDD, true
	case sim.ActionDeployDashboards:
		return sim.CapabilityManagedDashboards, true
	}
	return "", false
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func maxLatencyFloor(v float64) float64 {
	if v < sim.MinLatency {
		return sim.MinLatency
	}
	return v
}

// AvailableArchitectActions lists the architect's legal moves for a
// selected node. Present-roadmap is always on the table; escalation
// needs an active constraint and enough political capital to spend.
func AvailableArchitectActions(m *MatchState, nodeID string) []sim.ActionType {
	var actions []sim.ActionType
	node := m.NodeByID(nodeID)
	if node != nil && !node.Blocked {
		switch node.Category {
		case sim.CategoryApplication, sim.CategoryDataPlatform:
			if !node.HasCapability(sim.CapabilitySimbaConnectors) {
				actions = append(actions, sim.ActionDeploySimba)
			}
		case sim.CategoryBusinessUnit:
			if !node.HasCapability(sim.CapabilityVDD) {
				actions = append(actions, sim.ActionDeployVDD)
			}
			if !node.HasCapability(sim.CapabilityManagedDashboards) {
				actions = append(actions, sim.ActionDeployDashboards)
			}
		}
	}
	actions = append(actions,
		sim.ActionRunEnablement,
		sim.ActionAddGovernance,
		sim.ActionPerformanceTuning,
		ActionPresentRoadmap,
	)
	if len(m.Constraints) > 0 && m.ArchitectMetrics.PoliticalCapital >= 20 {
		actions = append(actions, ActionExecutiveEscalation)
	}
	return actions
}
