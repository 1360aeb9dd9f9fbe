package sim

// NodeCategory is the tier of a node in the estate graph.
type NodeCategory string

const (
	CategoryBusinessUnit NodeCategory = "business-unit"
	CategoryApplication  NodeCategory = "application"
	CategoryDataPlatform NodeCategory = "data-platform"
	CategoryDomain       NodeCategory = "domain"
)

// CapabilityType identifies a deployable capability.
type CapabilityType string

const (
	CapabilitySimbaConnectors   CapabilityType = "simba-connectors"
	CapabilityVDD               CapabilityType = "logi-vdd"
	CapabilityManagedDashboards CapabilityType = "managed-dashboards"
)

// AuthStrength qualifies a connector deployment's authentication posture.
type AuthStrength string

const (
	AuthWeak   AuthStrength = "weak"
	AuthStrong AuthStrength = "strong"
)

// Deployment is a capability instance attached to a node. Its qualifiers
// are fixed from the governance metric at creation time and never change
// retroactively.
type Deployment struct {
	ID            string         `json:"id"`
	Capability    CapabilityType `json:"capability"`
	TurnDeployed  int            `json:"turnDeployed"`
	AuthStrength  AuthStrength   `json:"authStrength"`
	TemplatesUsed bool           `json:"templatesUsed"`
}

// Node is a vertex in the estate graph with its own local metrics.
// X/Y are presentational only.
type Node struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Category    NodeCategory   `json:"category"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	Adoption    float64        `json:"adoption"`
	Trust       float64        `json:"trust"`
	Latency     float64        `json:"latency"`
	Cost        float64        `json:"cost"`
	Deployments []Deployment   `json:"deployments"`
	Blocked     bool           `json:"blocked"`
}

// HasCapability reports whether the node already carries a deployment of
// the given capability.
func (n *Node) HasCapability(c CapabilityType) bool {
	for _, d := range n.Deployments {
		if d.Capability == c {
			return true
		}
	}
	return false
}

// EdgeStrength tags an edge as strong or weak. Purely descriptive: edges
// never feed into metric propagation.
type EdgeStrength string

const (
	EdgeStrong EdgeStrength = "strong"
	EdgeWeak   EdgeStrength = "weak"
)

// Edge connects two nodes. Informational only.
type Edge struct {
	ID       string       `json:"id"`
	Source   string       `json:"source"`
	Target   string       `json:"target"`
	Strength EdgeStrength `json:"strength"`
}

// Metrics is the global gauge record. Percentage-like metrics live in
// [0,100]; latency is clamped to [200,3000] ms; cost is recomputed each
// turn and only floor-bounded by its inputs.
type Metrics struct {
	Adoption           float64 `json:"adoption"`
	Trust              float64 `json:"trust"`
	Latency            float64 `json:"latency"`
	Cost               float64 `json:"cost"`
	GovernanceCoverage float64 `json:"governanceCoverage"`
	Reliability        float64 `json:"reliability"`
	PoliticalCapital   float64 `json:"politicalCapital"`
	SupportLoad        float64 `json:"supportLoad"`
}

// ActionType enumerates the single-player actions.
type ActionType string

const (
	ActionDeploySimba       ActionType = "deploy-simba"
	ActionDeployVDD         ActionType = "deploy-vdd"
	ActionDeployDashboards  ActionType = "deploy-dashboards"
	ActionRunEnablement     ActionType = "run-enablement"
	ActionAddGovernance     ActionType = "add-governance"
	ActionPerformanceTuning ActionType = "performance-tuning"
	ActionIncidentResponse  ActionType = "incident-response"
)

// TimelineEntryType classifies timeline entries.
type TimelineEntryType string

const (
	EntryAction     TimelineEntryType = "action"
	EntryEvent      TimelineEntryType = "event"
	EntryMilestone  TimelineEntryType = "milestone"
	EntryConstraint TimelineEntryType = "constraint"
)

// TimelineEntry is an append-only audit record. Entries are never
// mutated or removed once pushed.
type TimelineEntry struct {
	Turn        int               `json:"turn"`
	Type        TimelineEntryType `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Role        string            `json:"role,omitempty"`
}

// WinConditions are the thresholds all of which must hold at game end.
type WinConditions struct {
	Adoption           float64 `json:"adoption"`
	Trust              float64 `json:"trust"`
	GovernanceCoverage float64 `json:"governanceCoverage"`
	Reliability        float64 `json:"reliability"`
	MaxLatency         float64 `json:"maxLatency"`
	MaxCostPerTurn     float64 `json:"maxCostPerTurn"`
}

// DefaultWinConditions are the shipped thresholds.
var DefaultWinConditions = WinConditions{
	Adoption:           75,
	Trust:              75,
	GovernanceCoverage: 70,
	Reliability:        70,
	MaxLatency:         1200,
	MaxCostPerTurn:     120,
}

// LoseThresholds are the floors that end the game immediately.
var LoseThresholds = struct {
	Trust            float64
	Reliability      float64
	PoliticalCapital float64
}{
	Trust:            15,
	Reliability:      15,
	PoliticalCapital: 10,
}

// GamePhase is the single-player phase machine.
type GamePhase string

const (
	PhaseScenarioSelect GamePhase = "scenario-select"
	PhasePlaying        GamePhase = "playing"
	PhaseEvent          GamePhase = "event"
	PhaseWon            GamePhase = "won"
	PhaseLost           GamePhase = "lost"
)

// ActiveEvent is the event currently awaiting a player decision.
type ActiveEvent struct {
	EventID   EventID `json:"eventId"`
	TurnDrawn int     `json:"turnDrawn"`
}

// GameState is the single-player aggregate root. It is a plain
// serializable record: a state rehydrated from JSON behaves identically
// to the in-memory original.
type GameState struct {
	Phase      GamePhase `json:"phase"`
	Seed       int64     `json:"seed"`
	ScenarioID string    `json:"scenarioId"`

	CurrentTurn      int `json:"currentTurn"`
	MaxTurns         int `json:"maxTurns"`
	ActionsRemaining int `json:"actionsRemaining"`
	ActionsPerTurn   int `json:"actionsPerTurn"`

	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	Metrics Metrics `json:"metrics"`

	ActiveEvent  *ActiveEvent `json:"activeEvent"`
	EventHistory []EventID    `json:"eventHistory"`
	ForcedAction ActionType   `json:"forcedAction,omitempty"`

	Timeline        []TimelineEntry `json:"timeline"`
	ActionsThisTurn []ActionType    `json:"actionsThisTurn"`
	RecentTuning    []int           `json:"recentTuning"`

	LoseReason string `json:"loseReason,omitempty"`
}

// NodeByID returns the node with the given id, or nil.
func (s *GameState) NodeByID(id string) *Node {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i]
		}
	}
	return nil
}

// HasManagedDashboards reports whether any node ever received a
// managed-dashboards deployment.
func (s *GameState) HasManagedDashboards() bool {
	for i := range s.Nodes {
		if s.Nodes[i].HasCapability(CapabilityManagedDashboards) {
			return true
		}
	}
	return false
}

// TunedWithin reports whether performance tuning was done within the
// last turns turns.
func (s *GameState) TunedWithin(turns int) bool {
	minTurn := s.CurrentTurn - turns
	for _, t := range s.RecentTuning {
		if t >= minTurn {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the state. Only the mutable containers
// (nodes, event history, timeline, counters) are copied field by field;
// there is no reflective deep clone.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Nodes = cloneNodes(s.Nodes)
	out.Edges = append([]Edge(nil), s.Edges...)
	out.EventHistory = append([]EventID(nil), s.EventHistory...)
	out.Timeline = append([]TimelineEntry(nil), s.Timeline...)
	out.ActionsThisTurn = append([]ActionType(nil), s.ActionsThisTurn...)
	out.RecentTuning = append([]int(nil), s.RecentTuning...)
	if s.ActiveEvent != nil {
		ev := *s.ActiveEvent
		out.ActiveEvent = &ev
	}
	return &out
}

func cloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	for i := range out {
		out[i].Deployments = append([]Deployment(nil), nodes[i].Deployments...)
	}
	return out
}

// Metric clamp bounds.
const (
	MinLatency = 200
	MaxLatency = 3000
)

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampPct(v float64) float64 { return clamp(v, 0, 100) }

func clampLatency(v float64) float64 { return clamp(v, MinLatency, MaxLatency) }
