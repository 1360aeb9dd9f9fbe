package sim

import (
	"fmt"

	"estatesim/internal/engine"
)

// EventID identifies a disruption card.
type EventID string

const (
	EventAuthModelChange EventID = "auth-model-change"
	EventSchemaDrift     EventID = "schema-drift"
	EventHighCardinality EventID = "high-cardinality"
	EventExecAIMandate   EventID = "exec-ai-mandate"
	EventCentralITVeto   EventID = "central-it-veto"
	EventLicensing       EventID = "licensing-surprise"
	EventP1Incident      EventID = "p1-incident"
	EventStalledAdoption EventID = "stalled-adoption"
	EventDataAccess      EventID = "data-access-denied"
	EventShadowIT        EventID = "shadow-it-breakout"
)

// EventChoice is one response option on a card. Its consequences are
// applied by ResolveEventChoice, never stored here.
type EventChoice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// EventCard is a disruption the player must answer before play resumes.
type EventCard struct {
	ID          EventID       `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Choices     []EventChoice `json:"choices"`
}

var eventCatalogue = []EventCard{
	{
		ID:          EventAuthModelChange,
		Title:       "OAuth Scope Shift",
		Description: "A cloud identity provider changed its OAuth scopes. Connector deployments with weak auth will break.",
		Choices: []EventChoice{
			{ID: "accept-disruption", Label: "Accept the disruption"},
			{ID: "expedite-review", Label: "Expedite a security review"},
		},
	},
	{
		ID:          EventSchemaDrift,
		Title:       "Schema Drift Detected",
		Description: "An upstream team renamed columns without warning. Downstream reports may silently break.",
		Choices: []EventChoice{
			{ID: "let-it-ride", Label: "Let it ride"},
			{ID: "emergency-fix", Label: "Pay for an emergency fix"},
		},
	},
	{
		ID:          EventHighCardinality,
		Title:       "High-Cardinality Dashboard Pain",
		Description: "A popular dashboard groups by a high-cardinality column and query times are ballooning.",
		Choices: []EventChoice{
			{ID: "do-nothing", Label: "Do nothing"},
			{ID: "add-caching", Label: "Add a caching layer"},
		},
	},
	{
		ID:          EventExecAIMandate,
		Title:       "Executive AI Search Mandate",
		Description: "The CEO saw a demo and wants natural-language search over all analytics by next quarter.",
		Choices: []EventChoice{
			{ID: "embrace-ai", Label: "Embrace the mandate"},
			{ID: "cautious-pilot", Label: "Propose a cautious pilot"},
		},
	},
	{
		ID:          EventCentralITVeto,
		Title:       "Central IT Veto Threat",
		Description: "Central IT is threatening to freeze all new analytics deployments pending an architecture review.",
		Choices: []EventChoice{
			{ID: "accept-veto", Label: "Accept the freeze"},
			{ID: "fight-veto", Label: "Fight the veto"},
		},
	},
	{
		ID:          EventLicensing,
		Title:       "Licensing Surprise",
		Description: "A vendor audit found usage beyond the licensed tier. True-up fees are on the table.",
		Choices: []EventChoice{
			{ID: "pay-up", Label: "Pay the true-up"},
			{ID: "cut-scope", Label: "Cut licensed scope"},
		},
	},
	{
		ID:          EventP1Incident,
		Title:       "P1 Incident",
		Description: "The analytics platform is down for a flagship business unit during month-end close.",
		Choices: []EventChoice{
			{ID: "incident-response", Label: "Drop everything and respond"},
		},
	},
	{
		ID:          EventStalledAdoption,
		Title:       "Stalled Adoption",
		Description: "Weekly active usage has flatlined. Teams revert to exporting CSVs into spreadsheets.",
		Choices: []EventChoice{
			{ID: "accept-stall", Label: "Accept the stall"},
			{ID: "push-enablement", Label: "Push an enablement campaign"},
		},
	},
	{
		ID:          EventDataAccess,
		Title:       "Data Access Denied",
		Description: "A data owner revoked access to a key domain, citing compliance concerns.",
		Choices: []EventChoice{
			{ID: "negotiate-access", Label: "Negotiate access back"},
			{ID: "work-around", Label: "Work around it"},
		},
	},
	{
		ID:          EventShadowIT,
		Title:       "Shadow IT Breakout",
		Description: "A business unit stood up its own unsanctioned BI tool and adoption is shifting to it.",
		Choices: []EventChoice{
			{ID: "crack-down", Label: "Crack down"},
			{ID: "embrace-extend", Label: "Embrace and extend"},
		},
	},
}

// EventByID looks up a card. Unknown ids indicate a corrupted state and
// panic rather than limp along.
func EventByID(id EventID) EventCard {
	for _, c := range eventCatalogue {
		if c.ID == id {
			return c
		}
	}
	panic(fmt.Sprintf("sim: unknown event id %q", id))
}

// DrawEvent picks a card the game has not seen yet, using an RNG seeded
// from (seed, turn) so that replays draw identical cards. Returns false
// once every card has been drawn.
func DrawEvent(s *GameState) (EventCard, bool) {
	drawn := make(map[EventID]bool, len(s.EventHistory))
	for _, id := range s.EventHistory {
		drawn[id] = true
	}
	var remaining []EventCard
	for _, c := range eventCatalogue {
		if !drawn[c.ID] {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		return EventCard{}, false
	}
	rng := engine.NewRNG(s.Seed + int64(s.CurrentTurn))
	return remaining[rng.RandInt(0, len(remaining))], true
}

// ResolveEventChoice applies the consequences of the chosen response,
// records the timeline entry, and returns play to the acting phase.
// The card id must match the pending event.
func ResolveEventChoice(s *GameState, choiceID string) error {
	if s.ActiveEvent == nil {
		return fmt.Errorf("no active event to resolve")
	}
	card := EventByID(s.ActiveEvent.EventID)

	var label string
	for _, c := range card.Choices {
		if c.ID == choiceID {
			label = c.Label
		}
	}
	if label == "" {
		return fmt.Errorf("event %s has no choice %q", card.ID, choiceID)
	}

	applyEventChoice(s, card.ID, choiceID)

	s.appendTimeline(EntryEvent, card.Title, label)
	s.EventHistory = append(s.EventHistory, card.ID)
	s.ActiveEvent = nil
	s.Phase = PhasePlaying

	if reason, lost := CheckLose(s); lost {
		s.Phase = PhaseLost
		s.LoseReason = reason
		s.appendTimeline(EntryMilestone, "Game Over", reason)
	}
	return nil
}

// applyEventChoice is the closed effect table for every card/choice
// pair. Conditional consequences read the state at resolution time.
func applyEventChoice(s *GameState, event EventID, choice string) {
	m := &s.Metrics
	switch {
	case event == EventAuthModelChange && choice == "accept-disruption":
		m.SupportLoad = clampPct(m.SupportLoad + 15)
		if m.GovernanceCoverage < 60 {
			m.Reliability = clampPct(m.Reliability - 10)
		}
	case event == EventAuthModelChange && choice == "expedite-review":
		m.PoliticalCapital = clampPct(m.PoliticalCapital - 15)
		m.SupportLoad = clampPct(m.SupportLoad + 5)

	case event == EventSchemaDrift && choice == "let-it-ride":
		if s.HasManagedDashboards() || m.GovernanceCoverage >= 70 {
			m.Trust = clampPct(m.Trust - 3)
		} else {
			m.Trust = clampPct(m.Trust - 12)
		}
	case event == EventSchemaDrift && choice == "emergency-fix":
		m.Cost += 20
		m.Trust = clampPct(m.Trust - 3)

	case event == EventHighCardinality && choice == "do-nothing":
		if s.TunedWithin(2) {
			m.Latency = clampLatency(m.Latency + 50)
		} else {
			m.Latency = clampLatency(m.Latency + 300)
		}
	case event == EventHighCardinality && choice == "add-caching":
		m.Cost += 25
		m.Latency = maxf(MinLatency, m.Latency-200)

	case event == EventExecAIMandate && choice == "embrace-ai":
		m.PoliticalCapital = clampPct(m.PoliticalCapital + 20)
		if m.GovernanceCoverage < 60 {
			m.Trust = clampPct(m.Trust - 10)
		}
	case event == EventExecAIMandate && choice == "cautious-pilot":
		m.PoliticalCapital = clampPct(m.PoliticalCapital + 5)
		m.GovernanceCoverage = clampPct(m.GovernanceCoverage + 5)

	case event == EventCentralITVeto && choice == "accept-veto":
		blockAllNodes(s)
		m.Trust = clampPct(m.Trust + 5)
	case event == EventCentralITVeto && choice == "fight-veto":
		if m.PoliticalCapital >= 60 {
			m.PoliticalCapital = clampPct(m.PoliticalCapital - 20)
		} else {
			blockAllNodes(s)
			m.PoliticalCapital = clampPct(m.PoliticalCapital - 10)
		}

	case event == EventLicensing && choice == "pay-up":
		m.Cost += 40
	case event == EventLicensing && choice == "cut-scope":
		m.Adoption = clampPct(m.Adoption - 10)
		m.Cost += 10

	case event == EventP1Incident && choice == "incident-response":
		m.Reliability = clampPct(m.Reliability - 15)
		s.ForcedAction = ActionIncidentResponse

	case event == EventStalledAdoption && choice == "accept-stall":
		// Deliberately no effect: waiting out the stall costs nothing now.
	case event == EventStalledAdoption && choice == "push-enablement":
		m.Cost += 15
		m.Adoption = clampPct(m.Adoption + 8)

	case event == EventDataAccess && choice == "negotiate-access":
		m.PoliticalCapital = clampPct(m.PoliticalCapital - 15)
	case event == EventDataAccess && choice == "work-around":
		// No unblockable node means no workaround, and no cost either.
		if blockOneNode(s) {
			m.Reliability = clampPct(m.Reliability - 5)
		}

	case event == EventShadowIT && choice == "crack-down":
		m.PoliticalCapital = clampPct(m.PoliticalCapital - 10)
		m.Adoption = clampPct(m.Adoption - 8)
	case event == EventShadowIT && choice == "embrace-extend":
		if s.HasManagedDashboards() {
			m.Adoption = clampPct(m.Adoption + 5)
		} else {
			m.Trust = clampPct(m.Trust - 10)
		}

	default:
		panic(fmt.Sprintf("sim: no effect for event %q choice %q", event, choice))
	}
}

func blockAllNodes(s *GameState) {
	for i := range s.Nodes {
		s.Nodes[i].Blocked = true
	}
}

// blockOneNode blocks a deterministically chosen unblocked node and
// reports whether one was found.
func blockOneNode(s *GameState) bool {
	var unblocked []int
	for i := range s.Nodes {
		if !s.Nodes[i].Blocked {
			unblocked = append(unblocked, i)
		}
	}
	if len(unblocked) == 0 {
		return false
	}
	s.Nodes[unblocked[s.CurrentTurn%len(unblocked)]].Blocked = true
	return true
}
