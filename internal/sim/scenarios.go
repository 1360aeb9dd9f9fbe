package sim

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Scenario is a preset: starting metrics, map size, and event cadence.
type Scenario struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	InitialMetrics Metrics `json:"initialMetrics"`
	NodeCount      int     `json:"nodeCount"`
	EventFrequency int     `json:"eventFrequency"`
}

// namePools are the display names the map generator assigns per tier.
type namePools struct {
	BusinessUnits []string `yaml:"business_units"`
	Applications  []string `yaml:"applications"`
	DataPlatforms []string `yaml:"data_platforms"`
	Domains       []string `yaml:"domains"`
}

type scenarioYAML struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	InitialMetrics struct {
		Adoption           float64 `yaml:"adoption"`
		Trust              float64 `yaml:"trust"`
		Latency            float64 `yaml:"latency"`
		Cost               float64 `yaml:"cost"`
		GovernanceCoverage float64 `yaml:"governance_coverage"`
		Reliability        float64 `yaml:"reliability"`
		PoliticalCapital   float64 `yaml:"political_capital"`
		SupportLoad        float64 `yaml:"support_load"`
	} `yaml:"initial_metrics"`
	NodeCount      int `yaml:"node_count"`
	EventFrequency int `yaml:"event_frequency"`
}

type scenarioFile struct {
	Scenarios []scenarioYAML `yaml:"scenarios"`
	NamePools namePools      `yaml:"name_pools"`
}

//go:embed scenarios.yaml
var scenarioData []byte

// Scenarios holds the presets in catalogue order.
var Scenarios []Scenario

var pools namePools

func init() {
	var file scenarioFile
	if err := yaml.Unmarshal(scenarioData, &file); err != nil {
		panic(fmt.Sprintf("sim: bad embedded scenario data: %v", err))
	}
	for _, sy := range file.Scenarios {
		Scenarios = append(Scenarios, Scenario{
			ID:          sy.ID,
			Name:        sy.Name,
			Description: sy.Description,
			InitialMetrics: Metrics{
				Adoption:           sy.InitialMetrics.Adoption,
				Trust:              sy.InitialMetrics.Trust,
				Latency:            sy.InitialMetrics.Latency,
				Cost:               sy.InitialMetrics.Cost,
				GovernanceCoverage: sy.InitialMetrics.GovernanceCoverage,
				Reliability:        sy.InitialMetrics.Reliability,
				PoliticalCapital:   sy.InitialMetrics.PoliticalCapital,
				SupportLoad:        sy.InitialMetrics.SupportLoad,
			},
			NodeCount:      sy.NodeCount,
			EventFrequency: sy.EventFrequency,
		})
	}
	pools = file.NamePools
}

// ScenarioByID looks up a preset by id.
func ScenarioByID(id string) (Scenario, bool) {
	for _, s := range Scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}
