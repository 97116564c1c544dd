// Package counterfactual runs independent, identically-seeded engine
// instances per policy variant for controlled comparison.
package counterfactual

import (
	"fmt"

	"github.com/talgya/polisim/internal/engine"
	"github.com/talgya/polisim/internal/policy"
)

// Result holds the comparison metrics for one policy variant.
type Result struct {
	History         []engine.HistoryRecord `json:"history"`
	FinalCompliance float64                `json:"final_compliance"`
	FinalInequality float64                `json:"final_inequality"`
	FinalPrice      float64                `json:"final_price"`
	FinalStress     float64                `json:"final_stress"`
	PolicyParams    map[string]float64     `json:"policy_params"`
}

// Analyzer compares policy variants against the same seeded population.
type Analyzer struct {
	populationSize int
	seed           int64
}

// NewAnalyzer configures the population every variant runs against.
func NewAnalyzer(populationSize int, seed int64) *Analyzer {
	return &Analyzer{populationSize: populationSize, seed: seed}
}

// ComparePolicies runs one fresh engine per policy, all seeded identically,
// for the given step count. Results are keyed policy_<index>_<kind>, one
// per input policy. A nil entry runs the no-policy baseline, keyed
// policy_<index>_none.
func (c *Analyzer) ComparePolicies(policies []policy.Policy, steps int) (map[string]Result, error) {
	if steps < 1 {
		return nil, fmt.Errorf("step count must be positive, got %d", steps)
	}

	results := make(map[string]Result, len(policies))

	for i, p := range policies {
		eng, err := engine.New(c.populationSize, c.seed)
		if err != nil {
			return nil, fmt.Errorf("variant %d: %w", i, err)
		}

		kind := "none"
		params := map[string]float64{}
		if p != nil {
			eng.AddPolicy(p)
			kind = string(p.Kind())
			params = policy.ParamValues(p)
		}

		history := eng.Run(steps)
		final := history[len(history)-1]

		key := fmt.Sprintf("policy_%d_%s", i, kind)
		results[key] = Result{
			History:         history,
			FinalCompliance: final.ComplianceRate,
			FinalInequality: final.Gini,
			FinalPrice:      final.AvgPrice,
			FinalStress:     final.AvgStress,
			PolicyParams:    params,
		}
	}

	return results, nil
}

// IdentifyDominance returns the key of the best variant under a linear
// scalarization: high compliance, low inequality, low price. An explicit
// simplification, not Pareto analysis. Returns "none" for empty input.
func (c *Analyzer) IdentifyDominance(results map[string]Result) string {
	best := "none"
	bestScore := 0.0
	first := true

	for key, r := range results {
		score := 2.0*r.FinalCompliance - 1.5*r.FinalInequality - 0.1*r.FinalPrice
		if first || score > bestScore || (score == bestScore && key < best) {
			best = key
			bestScore = score
			first = false
		}
	}
	return best
}
