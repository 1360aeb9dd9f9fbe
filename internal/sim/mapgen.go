package sim

import (
	"fmt"

	"estatesim/internal/engine"
)

// Map generation is a pure function of (scenario, seed): no clock, no
// I/O, no global RNG. Node counts follow fixed tier proportions of the
// scenario's node count; per-node metrics are the scenario baseline
// plus a small seed-derived jitter, clamped to valid ranges.

const (
	mapWidth   = 800
	mapPadding = 80
)

var rowY = map[NodeCategory]float64{
	CategoryBusinessUnit: 80,
	CategoryApplication:  180,
	CategoryDataPlatform: 300,
	CategoryDomain:       420,
}

// GenerateMap builds the node and edge collections for a scenario.
func GenerateMap(scenario Scenario, seed int64) ([]Node, []Edge) {
	nodes := GenerateNodes(scenario, seed)
	edges := GenerateEdges(nodes, seed)
	return nodes, edges
}

// GenerateNodes builds the estate graph vertices.
func GenerateNodes(scenario Scenario, seed int64) []Node {
	total := scenario.NodeCount
	buCount := ceilDiv(total*25, 100)
	appCount := ceilDiv(total*25, 100)
	dpCount := ceilDiv(total*20, 100)
	domainCount := total - buCount - appCount - dpCount
	if domainCount < 0 {
		domainCount = 0
	}

	shuffledBU := shuffleNames(pools.BusinessUnits, seed)
	shuffledApps := shuffleNames(pools.Applications, seed+1)
	shuffledDP := shuffleNames(pools.DataPlatforms, seed+2)
	shuffledDomains := shuffleNames(pools.Domains, seed+3)

	var nodes []Node
	id := 0

	addTier := func(names []string, count int, category NodeCategory, spec tierSpec) {
		for i := 0; i < count && i < len(names); i++ {
			x := mapPadding + float64(mapWidth-2*mapPadding)/float64(count+1)*float64(i+1)
			nodes = append(nodes, Node{
				ID:          fmt.Sprintf("node-%d", id),
				Name:        names[i],
				Category:    category,
				X:           x,
				Y:           rowY[category],
				Adoption:    scenario.InitialMetrics.Adoption + jitter(seed, i+spec.offset, 15, 7),
				Trust:       scenario.InitialMetrics.Trust + jitter(seed, i+spec.offset+1, 15, 7),
				Latency:     scenario.InitialMetrics.Latency + jitter(seed, i+spec.offset+2, spec.latencySpan, spec.latencySpan/2),
				Cost:        spec.baseCost + jitter(seed, i+spec.offset+3, spec.costSpan, 0),
				Deployments: []Deployment{},
				Blocked:     false,
			})
			id++
		}
	}

	addTier(shuffledBU, buCount, CategoryBusinessUnit, tierSpec{offset: 1, latencySpan: 300, baseCost: 10, costSpan: 20})
	addTier(shuffledApps, appCount, CategoryApplication, tierSpec{offset: 5, latencySpan: 400, baseCost: 15, costSpan: 25})
	addTier(shuffledDP, dpCount, CategoryDataPlatform, tierSpec{offset: 9, latencySpan: 500, baseCost: 20, costSpan: 30})
	addTier(shuffledDomains, domainCount, CategoryDomain, tierSpec{offset: 13, latencySpan: 300, baseCost: 8, costSpan: 15})

	for i := range nodes {
		nodes[i].Adoption = clampPct(nodes[i].Adoption)
		nodes[i].Trust = clampPct(nodes[i].Trust)
		nodes[i].Latency = clampLatency(nodes[i].Latency)
		nodes[i].Cost = clamp(nodes[i].Cost, 5, 50)
	}
	return nodes
}

type tierSpec struct {
	offset      int
	latencySpan int64
	baseCost    float64
	costSpan    int64
}

// jitter derives a deterministic offset in [-center, span-center) from
// the seed and a per-node index.
func jitter(seed int64, index int, span, center int64) float64 {
	return float64(seed*int64(index)%span - center)
}

// shuffleNames permutes a name pool with the map generator's LCG.
func shuffleNames(names []string, seed int64) []string {
	idx := engine.NewLCG(seed).ShuffleIndexes(len(names))
	out := make([]string, len(names))
	for i, j := range idx {
		out[i] = names[j]
	}
	return out
}

// GenerateEdges connects tiers top-down with a seed-derived branching
// factor. Edges never read or write node metrics.
func GenerateEdges(nodes []Node, seed int64) []Edge {
	var edges []Edge
	edgeID := 0

	push := func(source, target string, strength EdgeStrength) {
		edges = append(edges, Edge{
			ID:       fmt.Sprintf("edge-%d", edgeID),
			Source:   source,
			Target:   target,
			Strength: strength,
		})
		edgeID++
	}

	byCategory := func(c NodeCategory) []Node {
		var out []Node
		for _, n := range nodes {
			if n.Category == c {
				out = append(out, n)
			}
		}
		return out
	}

	businessUnits := byCategory(CategoryBusinessUnit)
	applications := byCategory(CategoryApplication)
	dataPlatforms := byCategory(CategoryDataPlatform)
	domains := byCategory(CategoryDomain)

	// Each business unit fans out to 1-2 applications.
	for i, bu := range businessUnits {
		fanOut := 1 + int((seed+int64(i))%2)
		for j := 0; j < fanOut && j < len(applications); j++ {
			strength := EdgeWeak
			if j == 0 {
				strength = EdgeStrong
			}
			push(bu.ID, applications[(i+j)%len(applications)].ID, strength)
		}
	}

	// Applications connect straight down to data platforms.
	for i, app := range applications {
		if len(dataPlatforms) > 0 {
			push(app.ID, dataPlatforms[i%len(dataPlatforms)].ID, EdgeStrong)
		}
	}

	// Data platforms fan out to 1-2 domains.
	for i, dp := range dataPlatforms {
		fanOut := 1 + int((seed+int64(i))%2)
		for j := 0; j < fanOut && j < len(domains); j++ {
			strength := EdgeWeak
			if j == 0 {
				strength = EdgeStrong
			}
			push(dp.ID, domains[(i+j)%len(domains)].ID, strength)
		}
	}

	return edges
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
