package sim

import (
	"github.com/shopspring/decimal"
)

// CostBreakdown itemizes the recomputed per-turn cost so the resolution
// report can show where the money goes.
type CostBreakdown struct {
	NodeUpkeep    decimal.Decimal `json:"nodeUpkeep"`
	Connectors    decimal.Decimal `json:"connectors"`
	Discovery     decimal.Decimal `json:"discovery"`
	Dashboards    decimal.Decimal `json:"dashboards"`
	PlatformFloor decimal.Decimal `json:"platformFloor"`
	Total         decimal.Decimal `json:"total"`
}

// countDeployments tallies every deployment on the board by capability.
func countDeployments(s *GameState) (simba, vdd, dash int) {
	for i := range s.Nodes {
		for _, d := range s.Nodes[i].Deployments {
			switch d.Capability {
			case CapabilitySimbaConnectors:
				simba++
			case CapabilityVDD:
				vdd++
			case CapabilityManagedDashboards:
				dash++
			}
		}
	}
	return
}

// recomputeCost rebuilds the cost gauge from scratch each turn. Cost is
// the one metric that is derived rather than drifted: node upkeep at a
// tenth of face value, a per-deployment surcharge, and a flat platform
// floor. Decimal arithmetic keeps the ledger addition exact before the
// final rounding.
func recomputeCost(s *GameState, simba, vdd, dash int) CostBreakdown {
	upkeep := decimal.Zero
	for i := range s.Nodes {
		upkeep = upkeep.Add(decimal.NewFromFloat(s.Nodes[i].Cost))
	}
	upkeep = upkeep.Div(decimal.NewFromInt(10))

	connectors := decimal.NewFromInt(int64(simba * 3))
	discovery := decimal.NewFromInt(int64(vdd * 2))
	dashboards := decimal.NewFromInt(int64(dash * 4))
	floor := decimal.NewFromInt(60)

	total := upkeep.Add(connectors).Add(discovery).Add(dashboards).Add(floor).Round(0)
	return CostBreakdown{
		NodeUpkeep:    upkeep,
		Connectors:    connectors,
		Discovery:     discovery,
		Dashboards:    dashboards,
		PlatformFloor: floor,
		Total:         total,
	}
}

// ResolveTurn advances the world one turn: deployment-driven drift on
// the global gauges, cost recomputation, per-node nudges, node
// unblocking, and the turn counter reset. It does not evaluate win or
// lose conditions and does not draw events; the orchestrator sequences
// those.
func ResolveTurn(s *GameState) CostBreakdown {
	simba, vdd, dash := countDeployments(s)
	m := &s.Metrics

	m.Adoption = clampPct(m.Adoption + float64(vdd)*2 + float64(dash))
	trustDrift := float64(dash) * 1.5
	if m.GovernanceCoverage < 50 {
		trustDrift -= 2
	}
	m.Trust = clampPct(m.Trust + trustDrift)
	m.SupportLoad = clampPct(m.SupportLoad + float64(vdd)*2 - float64(dash)*3)
	m.Latency = clampLatency(m.Latency + 50 - float64(simba)*30)
	m.Reliability = clampPct(m.Reliability + float64(dash)*2 - 1)

	breakdown := recomputeCost(s, simba, vdd, dash)
	m.Cost, _ = breakdown.Total.Float64()

	m.PoliticalCapital = clampPct(m.PoliticalCapital + 3)

	for i := range s.Nodes {
		n := &s.Nodes[i]
		n.Blocked = false
		for _, d := range n.Deployments {
			switch d.Capability {
			case CapabilityVDD:
				n.Adoption = clampPct(n.Adoption + 2)
			case CapabilityManagedDashboards:
				n.Trust = clampPct(n.Trust + 1)
				n.Adoption = clampPct(n.Adoption + 0.5)
			case CapabilitySimbaConnectors:
				n.Latency = clampLatency(n.Latency - 20)
			}
		}
	}

	s.CurrentTurn++
	s.ActionsRemaining = s.ActionsPerTurn
	s.ActionsThisTurn = s.ActionsThisTurn[:0:0]
	return breakdown
}
