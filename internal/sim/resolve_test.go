package sim

import (
	"testing"
)

func TestResolveTurnBaseline(t *testing.T) {
	s := testState(60)
	ResolveTurn(s)

	if s.CurrentTurn != 2 {
		t.Errorf("turn = %d, want 2", s.CurrentTurn)
	}
	if s.ActionsRemaining != s.ActionsPerTurn {
		t.Errorf("actions remaining = %d, want %d", s.ActionsRemaining, s.ActionsPerTurn)
	}
	if len(s.ActionsThisTurn) != 0 {
		t.Errorf("actions this turn should reset, got %v", s.ActionsThisTurn)
	}
	m := s.Metrics
	if m.Adoption != 40 {
		t.Errorf("adoption = %v, want 40 (no deployments)", m.Adoption)
	}
	if m.Latency != 1550 {
		t.Errorf("latency = %v, want 1550", m.Latency)
	}
	if m.Reliability != 59 {
		t.Errorf("reliability = %v, want 59", m.Reliability)
	}
	if m.PoliticalCapital != 53 {
		t.Errorf("political = %v, want 53", m.PoliticalCapital)
	}
	// upkeep (10+15+20+8)/10 = 5.3, rounded with the flat 60 floor
	if m.Cost != 65 {
		t.Errorf("cost = %v, want 65", m.Cost)
	}
}

func TestResolveTurnTrustPenaltyLowGovernance(t *testing.T) {
	s := testState(40)
	ResolveTurn(s)
	if s.Metrics.Trust != 48 {
		t.Errorf("trust = %v, want 48", s.Metrics.Trust)
	}
}

func TestResolveTurnDeploymentDrift(t *testing.T) {
	s := testState(60)
	s.NodeByID("bu").Deployments = []Deployment{{Capability: CapabilityVDD}}
	s.NodeByID("app").Deployments = []Deployment{{Capability: CapabilitySimbaConnectors}}
	buTwo := Node{ID: "bu2", Name: "Sales", Category: CategoryBusinessUnit, Adoption: 40, Trust: 50, Latency: 1000, Cost: 10,
		Deployments: []Deployment{{Capability: CapabilityManagedDashboards}}}
	s.Nodes = append(s.Nodes, buTwo)

	breakdown := ResolveTurn(s)
	m := s.Metrics

	// vdd*2 + dash = 3
	if m.Adoption != 43 {
		t.Errorf("adoption = %v, want 43", m.Adoption)
	}
	// dash*1.5 with governance at 60
	if m.Trust != 51.5 {
		t.Errorf("trust = %v, want 51.5", m.Trust)
	}
	// +50 - simba*30
	if m.Latency != 1520 {
		t.Errorf("latency = %v, want 1520", m.Latency)
	}
	// dash*2 - 1
	if m.Reliability != 61 {
		t.Errorf("reliability = %v, want 61", m.Reliability)
	}
	// vdd*2 - dash*3
	if m.SupportLoad != 39 {
		t.Errorf("support load = %v, want 39", m.SupportLoad)
	}
	// (10+15+20+8+10)/10 + 3 + 2 + 4 + 60 = 6.3 + 69 -> 75
	if m.Cost != 75 {
		t.Errorf("cost = %v, want 75", m.Cost)
	}
	if got, _ := breakdown.Total.Float64(); got != 75 {
		t.Errorf("breakdown total = %v, want 75", got)
	}

	if s.NodeByID("bu").Adoption != 42 {
		t.Errorf("vdd node adoption = %v, want 42", s.NodeByID("bu").Adoption)
	}
	if s.NodeByID("bu2").Trust != 51 || s.NodeByID("bu2").Adoption != 40.5 {
		t.Errorf("dashboard node nudge wrong: trust=%v adoption=%v", s.NodeByID("bu2").Trust, s.NodeByID("bu2").Adoption)
	}
	if s.NodeByID("app").Latency != 980 {
		t.Errorf("simba node latency = %v, want 980", s.NodeByID("app").Latency)
	}
}

func TestResolveTurnUnblocksNodes(t *testing.T) {
	s := testState(50)
	for i := range s.Nodes {
		s.Nodes[i].Blocked = true
	}
	ResolveTurn(s)
	for _, n := range s.Nodes {
		if n.Blocked {
			t.Errorf("node %s still blocked after resolution", n.ID)
		}
	}
}

func TestResolveTurnClampInvariant(t *testing.T) {
	// Stack enough deployments and run enough turns that every gauge
	// pushes against its bounds.
	s := testState(50)
	for i := range s.Nodes {
		s.Nodes[i].Deployments = []Deployment{
			{Capability: CapabilitySimbaConnectors},
			{Capability: CapabilityVDD},
			{Capability: CapabilityManagedDashboards},
		}
	}
	for turn := 0; turn < 100; turn++ {
		ResolveTurn(s)
		m := s.Metrics
		for name, v := range map[string]float64{
			"adoption": m.Adoption, "trust": m.Trust, "governance": m.GovernanceCoverage,
			"reliability": m.Reliability, "political": m.PoliticalCapital, "supportLoad": m.SupportLoad,
		} {
			if v < 0 || v > 100 {
				t.Fatalf("turn %d: %s = %v out of [0,100]", turn, name, v)
			}
		}
		if m.Latency < MinLatency || m.Latency > MaxLatency {
			t.Fatalf("turn %d: latency = %v out of range", turn, m.Latency)
		}
	}
}
