package duel

import (
	"fmt"
	"math"

	"estatesim/internal/engine"
	"estatesim/internal/sim"
)

// The match map is a fixed cast of fifteen nodes arranged on a circle.
// Only the per-node metrics and edge selection vary with the seed, so
// both players always see a familiar estate shape.

const (
	mapCenterX = 400
	mapCenterY = 300
	mapRadius  = 200
)

var (
	matchBusinessUnits = []string{"Finance", "Operations", "Product", "Sales", "Marketing"}
	matchApplications  = []string{"ERP", "CRM", "Support"}
	matchPlatforms     = []string{"Data Warehouse", "Data Lake", "Query Engine"}
	matchDomains       = []string{"Orders", "Customers", "Revenue", "Tickets"}
)

type metricRange struct {
	adoptionBase, adoptionSpan float64
	trustBase, trustSpan       float64
	latencyBase, latencySpan   float64
	costBase, costSpan         float64
}

var matchRanges = map[sim.NodeCategory]metricRange{
	sim.CategoryBusinessUnit: {20, 30, 40, 20, 800, 600, 10, 20},
	sim.CategoryApplication:  {30, 20, 50, 20, 600, 400, 15, 15},
	sim.CategoryDataPlatform: {25, 25, 45, 25, 500, 500, 20, 25},
	sim.CategoryDomain:       {30, 20, 50, 20, 400, 300, 5, 10},
}

// GenerateMatchMap builds the two-player estate from the match seed.
func GenerateMatchMap(seed int64) ([]sim.Node, []sim.Edge) {
	rng := engine.NewLCG(seed)

	type tier struct {
		names    []string
		category sim.NodeCategory
	}
	tiers := []tier{
		{matchBusinessUnits, sim.CategoryBusinessUnit},
		{matchApplications, sim.CategoryApplication},
		{matchPlatforms, sim.CategoryDataPlatform},
		{matchDomains, sim.CategoryDomain},
	}

	total := 0
	for _, t := range tiers {
		total += len(t.names)
	}

	var nodes []sim.Node
	id := 0
	for _, t := range tiers {
		r := matchRanges[t.category]
		for _, name := range t.names {
			angle := 2 * math.Pi * float64(id) / float64(total)
			nodes = append(nodes, sim.Node{
				ID:          fmt.Sprintf("node-%d", id),
				Name:        name,
				Category:    t.category,
				X:           mapCenterX + mapRadius*math.Cos(angle),
				Y:           mapCenterY + mapRadius*math.Sin(angle),
				Adoption:    r.adoptionBase + rng.Next()*r.adoptionSpan,
				Trust:       r.trustBase + rng.Next()*r.trustSpan,
				Latency:     r.latencyBase + rng.Next()*r.latencySpan,
				Cost:        r.costBase + rng.Next()*r.costSpan,
				Deployments: []sim.Deployment{},
			})
			id++
		}
	}

	edges := generateMatchEdges(nodes, rng)
	return nodes, edges
}

func generateMatchEdges(nodes []sim.Node, rng *engine.LCG) []sim.Edge {
	var edges []sim.Edge
	edgeID := 0
	push := func(source, target string, strength sim.EdgeStrength) {
		edges = append(edges, sim.Edge{
			ID:       fmt.Sprintf("edge-%d", edgeID),
			Source:   source,
			Target:   target,
			Strength: strength,
		})
		edgeID++
	}

	byCategory := func(c sim.NodeCategory) []sim.Node {
		var out []sim.Node
		for _, n := range nodes {
			if n.Category == c {
				out = append(out, n)
			}
		}
		return out
	}

	businessUnits := byCategory(sim.CategoryBusinessUnit)
	applications := byCategory(sim.CategoryApplication)
	dataPlatforms := byCategory(sim.CategoryDataPlatform)
	domains := byCategory(sim.CategoryDomain)

	// Business units care about the first couple of data domains.
	for _, bu := range businessUnits {
		for j := 0; j < 2 && j < len(domains); j++ {
			strength := sim.EdgeWeak
			if rng.Next() > 0.5 {
				strength = sim.EdgeStrong
			}
			push(bu.ID, domains[j].ID, strength)
		}
	}

	// Applications feed some of the platforms.
	for _, app := range applications {
		for _, dp := range dataPlatforms {
			if rng.Next() > 0.3 {
				strength := sim.EdgeWeak
				if rng.Next() > 0.5 {
					strength = sim.EdgeStrong
				}
				push(app.ID, dp.ID, strength)
			}
		}
	}

	// Domains are sourced from the first couple of applications.
	for _, dom := range domains {
		for j := 0; j < 2 && j < len(applications); j++ {
			if rng.Next() > 0.4 {
				push(dom.ID, applications[j].ID, sim.EdgeWeak)
			}
		}
	}

	return edges
}
