// Package duel implements the asymmetric two-player variant: one
// player builds out the analytics estate while the other evaluates it
// as a prospective buyer. Both plan in secret each turn; the resolver
// applies prospect actions first, then architect actions, then drift.
package duel

import (
	"estatesim/internal/sim"
)

// Role identifies which side of the table a player sits on.
type Role string

const (
	RoleArchitect Role = "architect"
	RoleProspect  Role = "prospect"
)

// TurnPhase is the lockstep phase machine for a match turn.
type TurnPhase string

const (
	PhaseEvent    TurnPhase = "event"
	PhasePlanning TurnPhase = "planning"
	PhaseCommit   TurnPhase = "commit"
	PhaseResolve  TurnPhase = "resolve"
	PhaseReview   TurnPhase = "review"
)

// MatchStatus is the match lifecycle.
type MatchStatus string

const (
	StatusActive   MatchStatus = "active"
	StatusFinished MatchStatus = "finished"
)

// ProspectMetrics are the evaluating side's gauges, all in [0,100].
type ProspectMetrics struct {
	BusinessValue float64 `json:"businessValue"`
	Risk          float64 `json:"risk"`
	Patience      float64 `json:"patience"`
}

// ProspectWinConditions are the prospect-side thresholds checked at
// match end alongside the architect's.
type ProspectWinConditions struct {
	MinBusinessValue float64 `json:"minBusinessValue"`
	MaxRisk          float64 `json:"maxRisk"`
	MinPatience      float64 `json:"minPatience"`
}

// DefaultProspectWinConditions are the shipped prospect thresholds.
var DefaultProspectWinConditions = ProspectWinConditions{
	MinBusinessValue: 70,
	MaxRisk:          30,
	MinPatience:      10,
}

// ConstraintType enumerates the obligations a prospect can impose.
type ConstraintType string

const (
	ConstraintCapabilityBlock ConstraintType = "capability-block"
	ConstraintPOCRequired     ConstraintType = "poc-required"
)

// Constraint is an active prospect-imposed obligation. A constraint
// imposed on turn T with duration D binds turns T through T+D-1 and is
// gone on turn T+D.
type Constraint struct {
	ID          string             `json:"id"`
	Type        ConstraintType     `json:"type"`
	Capability  sim.CapabilityType `json:"capability,omitempty"`
	TurnImposed int                `json:"turnImposed"`
	Duration    int                `json:"duration"`
	Requirement float64            `json:"requirement,omitempty"`
}

// Active reports whether the constraint still binds on the given turn.
func (c Constraint) Active(turn int) bool {
	return turn < c.TurnImposed+c.Duration
}

// ArchitectActionType extends the single-player action set with the
// two match-only diplomatic actions.
const (
	ActionPresentRoadmap      sim.ActionType = "present-roadmap"
	ActionExecutiveEscalation sim.ActionType = "executive-escalation"
)

// ProspectActionType enumerates the evaluating side's actions.
type ProspectActionType string

const (
	ProspectImposeConstraint  ProspectActionType = "impose-constraint"
	ProspectDemandPOC         ProspectActionType = "demand-poc"
	ProspectSecurityReview    ProspectActionType = "request-security-review"
	ProspectThreatenAlt       ProspectActionType = "threaten-alternative"
	ProspectApproveBudget     ProspectActionType = "approve-budget"
	ProspectSetDeadline       ProspectActionType = "set-deadline"
	ProspectShareRequirements ProspectActionType = "share-requirements"
	ProspectAcknowledge       ProspectActionType = "acknowledge-progress"
)

var prospectActionNames = map[ProspectActionType]string{
	ProspectImposeConstraint:  "Impose Constraint",
	ProspectDemandPOC:         "Demand Proof-of-Concept",
	ProspectSecurityReview:    "Request Security Review",
	ProspectThreatenAlt:       "Threaten Alternative",
	ProspectApproveBudget:     "Approve Budget",
	ProspectSetDeadline:       "Set Deadline",
	ProspectShareRequirements: "Share Requirements",
	ProspectAcknowledge:       "Acknowledge Progress",
}

// ProspectActionName returns the display name for a prospect action.
func ProspectActionName(t ProspectActionType) string {
	return prospectActionNames[t]
}

// AllProspectActions lists the prospect's catalogue in display order.
// The prospect's full hand is always available.
func AllProspectActions() []ProspectActionType {
	return []ProspectActionType{
		ProspectImposeConstraint,
		ProspectDemandPOC,
		ProspectSecurityReview,
		ProspectThreatenAlt,
		ProspectApproveBudget,
		ProspectSetDeadline,
		ProspectShareRequirements,
		ProspectAcknowledge,
	}
}

// ArchitectAction is a planned architect move for the turn.
type ArchitectAction struct {
	Type   sim.ActionType `json:"type"`
	NodeID string         `json:"nodeId,omitempty"`
}

// ProspectAction is a planned prospect move for the turn.
type ProspectAction struct {
	Type       ProspectActionType `json:"type"`
	Capability sim.CapabilityType `json:"capability,omitempty"`
}

// MatchState is the two-player aggregate root. Like the single-player
// state it is a plain serializable record.
type MatchState struct {
	Status     MatchStatus `json:"status"`
	Phase      TurnPhase   `json:"phase"`
	Seed       int64       `json:"seed"`
	ScenarioID string      `json:"scenarioId"`

	CurrentTurn int `json:"currentTurn"`
	MaxTurns    int `json:"maxTurns"`

	Nodes []sim.Node `json:"nodes"`
	Edges []sim.Edge `json:"edges"`

	ArchitectMetrics sim.Metrics     `json:"architectMetrics"`
	ProspectMetrics  ProspectMetrics `json:"prospectMetrics"`

	WinConditions         sim.WinConditions     `json:"winConditions"`
	ProspectWinConditions ProspectWinConditions `json:"prospectWinConditions"`

	Constraints []Constraint        `json:"constraints"`
	Timeline    []sim.TimelineEntry `json:"timeline"`

	// CurrentEvent is reserved for match-level disruption cards. No
	// catalogue ships for matches yet, so it stays null; the field keeps
	// the serialized form stable for clients that already render it.
	CurrentEvent *sim.ActiveEvent `json:"currentEvent"`

	Winner    Role   `json:"winner,omitempty"`
	EndReason string `json:"endReason,omitempty"`
}

// NodeByID returns the node with the given id, or nil.
func (m *MatchState) NodeByID(id string) *sim.Node {
	for i := range m.Nodes {
		if m.Nodes[i].ID == id {
			return &m.Nodes[i]
		}
	}
	return nil
}

// CapabilityBlocked reports whether an active constraint blocks
// deployments of the given capability this turn.
func (m *MatchState) CapabilityBlocked(c sim.CapabilityType) bool {
	for _, con := range m.Constraints {
		if con.Type == ConstraintCapabilityBlock && con.Capability == c && con.Active(m.CurrentTurn) {
			return true
		}
	}
	return false
}

func (m *MatchState) hasManagedDashboards() bool {
	for i := range m.Nodes {
		if m.Nodes[i].HasCapability(sim.CapabilityManagedDashboards) {
			return true
		}
	}
	return false
}

func (m *MatchState) appendTimeline(t sim.TimelineEntryType, role Role, title, description string) {
	m.Timeline = append(m.Timeline, sim.TimelineEntry{
		Turn:        m.CurrentTurn,
		Type:        t,
		Title:       title,
		Description: description,
		Role:        string(role),
	})
}
