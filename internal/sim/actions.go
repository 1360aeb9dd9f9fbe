package sim

import "fmt"

// ActionInfo describes a catalogue entry for display and availability
// listings. The effects themselves live in ApplyAction.
type ActionInfo struct {
	Type             ActionType     `json:"type"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	NeedsTarget      bool           `json:"needsTarget"`
	TargetCategories []NodeCategory `json:"targetCategories,omitempty"`
}

var actionCatalogue = map[ActionType]ActionInfo{
	ActionDeploySimba: {
		Type:             ActionDeploySimba,
		Name:             "Deploy Simba Connectors",
		Description:      "Install ODBC/JDBC drivers on an application or data platform",
		NeedsTarget:      true,
		TargetCategories: []NodeCategory{CategoryApplication, CategoryDataPlatform},
	},
	ActionDeployVDD: {
		Type:             ActionDeployVDD,
		Name:             "Enable VDD Pilot",
		Description:      "Turn on self-service data discovery for a business unit",
		NeedsTarget:      true,
		TargetCategories: []NodeCategory{CategoryBusinessUnit},
	},
	ActionDeployDashboards: {
		Type:             ActionDeployDashboards,
		Name:             "Publish Managed Dashboards",
		Description:      "Roll out governed dashboards to a business unit",
		NeedsTarget:      true,
		TargetCategories: []NodeCategory{CategoryBusinessUnit},
	},
	ActionRunEnablement: {
		Type:        ActionRunEnablement,
		Name:        "Run Enablement",
		Description: "Train users and publish templates to cut support load",
	},
	ActionAddGovernance: {
		Type:        ActionAddGovernance,
		Name:        "Add Governance Policy",
		Description: "Introduce data governance controls",
	},
	ActionPerformanceTuning: {
		Type:        ActionPerformanceTuning,
		Name:        "Performance Tuning",
		Description: "Optimize query performance to reduce latency",
	},
	ActionIncidentResponse: {
		Type:        ActionIncidentResponse,
		Name:        "Incident Response",
		Description: "Resolve a critical incident and restore services",
	},
}

// ActionByType looks up catalogue metadata for an action.
func ActionByType(t ActionType) (ActionInfo, bool) {
	info, ok := actionCatalogue[t]
	return info, ok
}

// ActionRequest is a player's chosen action plus optional target node.
type ActionRequest struct {
	Type   ActionType `json:"type"`
	NodeID string     `json:"nodeId,omitempty"`
}

// depID derives a stable deployment identifier from game position
// rather than a clock, so replays produce identical states.
func depID(s *GameState, nodeID string, cap CapabilityType) string {
	return fmt.Sprintf("dep-%s-%s-t%d-a%d", nodeID, cap, s.CurrentTurn, len(s.ActionsThisTurn))
}

// ApplyAction mutates the state with the action's immediate effects and
// records the timeline entry. It assumes the action was validated
// against AvailableActions; unknown action types are a no-op error.
func ApplyAction(s *GameState, req ActionRequest) error {
	node := s.NodeByID(req.NodeID)

	switch req.Type {
	case ActionDeploySimba:
		if node == nil {
			return fmt.Errorf("deploy-simba: node %q not found", req.NodeID)
		}
		auth := AuthWeak
		if s.Metrics.GovernanceCoverage >= 50 {
			auth = AuthStrong
		}
		node.Deployments = append(node.Deployments, Deployment{
			ID:            depID(s, node.ID, CapabilitySimbaConnectors),
			Capability:    CapabilitySimbaConnectors,
			TurnDeployed:  s.CurrentTurn,
			AuthStrength:  auth,
			TemplatesUsed: false,
		})
		node.Latency = maxf(MinLatency, node.Latency-200)
		s.Metrics.Latency = maxf(MinLatency, s.Metrics.Latency-150)
		if s.Metrics.GovernanceCoverage < 50 {
			s.Metrics.SupportLoad = clampPct(s.Metrics.SupportLoad + 8)
		}
		s.Metrics.Cost += 15
		s.appendTimeline(EntryAction, "Deployed Simba Connectors",
			fmt.Sprintf("Installed ODBC/JDBC drivers on %s", node.Name))

	case ActionDeployVDD:
		if node == nil {
			return fmt.Errorf("deploy-vdd: node %q not found", req.NodeID)
		}
		node.Deployments = append(node.Deployments, Deployment{
			ID:            depID(s, node.ID, CapabilityVDD),
			Capability:    CapabilityVDD,
			TurnDeployed:  s.CurrentTurn,
			AuthStrength:  AuthStrong,
			TemplatesUsed: s.Metrics.GovernanceCoverage >= 60,
		})
		node.Adoption = clampPct(node.Adoption + 15)
		s.Metrics.Adoption = clampPct(s.Metrics.Adoption + 12)
		if s.Metrics.GovernanceCoverage < 50 {
			s.Metrics.Trust = clampPct(s.Metrics.Trust - 5)
		}
		s.Metrics.SupportLoad = clampPct(s.Metrics.SupportLoad + 10)
		s.Metrics.Cost += 10
		s.appendTimeline(EntryAction, "Enabled VDD Pilot",
			fmt.Sprintf("Self-service discovery on %s", node.Name))

	case ActionDeployDashboards:
		if node == nil {
			return fmt.Errorf("deploy-dashboards: node %q not found", req.NodeID)
		}
		node.Deployments = append(node.Deployments, Deployment{
			ID:            depID(s, node.ID, CapabilityManagedDashboards),
			Capability:    CapabilityManagedDashboards,
			TurnDeployed:  s.CurrentTurn,
			AuthStrength:  AuthStrong,
			TemplatesUsed: true,
		})
		node.Trust = clampPct(node.Trust + 10)
		s.Metrics.Trust = clampPct(s.Metrics.Trust + 8)
		s.Metrics.Reliability = clampPct(s.Metrics.Reliability + 5)
		s.Metrics.Adoption = clampPct(s.Metrics.Adoption + 3)
		s.Metrics.SupportLoad = clampPct(s.Metrics.SupportLoad - 5)
		s.Metrics.Cost += 25
		s.appendTimeline(EntryAction, "Published Managed Dashboards",
			fmt.Sprintf("Governed dashboards on %s", node.Name))

	case ActionRunEnablement:
		s.Metrics.SupportLoad = clampPct(s.Metrics.SupportLoad - 12)
		s.Metrics.Adoption = clampPct(s.Metrics.Adoption + 6)
		s.Metrics.Cost += 8
		s.appendTimeline(EntryAction, "Ran Enablement",
			"Conducted training and deployed templates")

	case ActionAddGovernance:
		s.Metrics.GovernanceCoverage = clampPct(s.Metrics.GovernanceCoverage + 10)
		s.Metrics.Trust = clampPct(s.Metrics.Trust + 6)
		s.Metrics.Adoption = clampPct(s.Metrics.Adoption - 3)
		s.Metrics.PoliticalCapital = clampPct(s.Metrics.PoliticalCapital - 5)
		s.appendTimeline(EntryAction, "Added Governance Policy",
			"Implemented new data governance controls")

	case ActionPerformanceTuning:
		s.Metrics.Latency = maxf(MinLatency, s.Metrics.Latency-250)
		s.Metrics.Reliability = clampPct(s.Metrics.Reliability + 8)
		s.Metrics.PoliticalCapital = clampPct(s.Metrics.PoliticalCapital - 8)
		s.Metrics.Cost += 12
		s.RecentTuning = append(s.RecentTuning, s.CurrentTurn)
		s.appendTimeline(EntryAction, "Performance Tuning",
			"Optimized query performance and reduced latency")

	case ActionIncidentResponse:
		s.Metrics.Reliability = clampPct(s.Metrics.Reliability + 10)
		s.Metrics.SupportLoad = clampPct(s.Metrics.SupportLoad - 5)
		s.appendTimeline(EntryAction, "Incident Response",
			"Resolved critical incident and restored services")

	default:
		return fmt.Errorf("unknown action type %q", req.Type)
	}

	if s.ForcedAction == req.Type {
		s.ForcedAction = ""
	}
	s.ActionsThisTurn = append(s.ActionsThisTurn, req.Type)
	s.ActionsRemaining--
	return nil
}

// AvailableActions lists the legal actions given the current state and
// an optional selected node. A pending forced action preempts all
// other choices.
func AvailableActions(s *GameState, nodeID string) []ActionType {
	if s.ForcedAction != "" {
		return []ActionType{s.ForcedAction}
	}

	globalActions := []ActionType{
		ActionRunEnablement,
		ActionAddGovernance,
		ActionPerformanceTuning,
	}

	node := s.NodeByID(nodeID)
	if node == nil {
		return globalActions
	}
	if node.Blocked {
		return globalActions
	}

	var actions []ActionType
	switch node.Category {
	case CategoryApplication, CategoryDataPlatform:
		if !node.HasCapability(CapabilitySimbaConnectors) {
			actions = append(actions, ActionDeploySimba)
		}
	case CategoryBusinessUnit:
		if !node.HasCapability(CapabilityVDD) {
			actions = append(actions, ActionDeployVDD)
		}
		if !node.HasCapability(CapabilityManagedDashboards) {
			actions = append(actions, ActionDeployDashboards)
		}
	}
	return append(actions, globalActions...)
}

func (s *GameState) appendTimeline(t TimelineEntryType, title, description string) {
	s.Timeline = append(s.Timeline, TimelineEntry{
		Turn:        s.CurrentTurn,
		Type:        t,
		Title:       title,
		Description: description,
	})
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
