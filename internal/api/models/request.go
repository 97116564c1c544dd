// Package models defines the request/response DTOs for the HTTP API.
package models

// SimulationRequest configures a single simulation run. Seed is a pointer
// so an explicit 0 is distinguishable from an absent field.
type SimulationRequest struct {
	PolicyType     string             `json:"policy_type"`
	Params         map[string]float64 `json:"params"`
	Steps          int                `json:"steps"`
	PopulationSize int                `json:"population_size"`
	Seed           *int64             `json:"seed"`
}

// CompareRequest is an ordered list of variants to run counterfactually.
type CompareRequest struct {
	Requests []SimulationRequest `json:"requests" binding:"required,min=1"`
}
