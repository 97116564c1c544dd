package models

import (
	"github.com/talgya/polisim/internal/counterfactual"
	"github.com/talgya/polisim/internal/emergence"
	"github.com/talgya/polisim/internal/engine"
	"github.com/talgya/polisim/internal/market"
	"github.com/talgya/polisim/internal/policy"
)

// SimulationResponse bundles a finished run with its analysis and a
// plain-language reading.
type SimulationResponse struct {
	History         []engine.HistoryRecord      `json:"history"`
	Analysis        emergence.Analysis          `json:"analysis"`
	Neighborhoods   map[int]market.Neighborhood `json:"neighborhoods"`
	Explanation     string                      `json:"explanation"`
	Recommendations []string                    `json:"recommendations"`
}

// CompareResponse reports counterfactual results keyed per variant.
type CompareResponse struct {
	Results  map[string]counterfactual.Result `json:"results"`
	Dominant string                           `json:"dominant"`
}

// PolicyInfo describes one registered policy kind for listings.
type PolicyInfo struct {
	Type   string             `json:"type"`
	Params []policy.Parameter `json:"params"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
