// Package dataset generates bulk simulation runs with randomized seeds,
// population sizes, and policy choices, labeled for offline analysis.
package dataset

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/google/uuid"

	"github.com/talgya/polisim/internal/engine"
	"github.com/talgya/polisim/internal/market"
	"github.com/talgya/polisim/internal/policy"
)

// PolicyMeta records which policy (if any) a run was generated with.
type PolicyMeta struct {
	Type   string             `json:"type"`
	Params map[string]float64 `json:"params"`
}

// RunRecord is one generated simulation run with its derived labels.
type RunRecord struct {
	ID             string                      `json:"id"`
	Seed           int64                       `json:"seed"`
	PopulationSize int                         `json:"population_size"`
	Policy         *PolicyMeta                 `json:"policy"`
	History        []engine.HistoryRecord      `json:"history"`
	Neighborhoods  map[int]market.Neighborhood `json:"neighborhoods"`
	Labels         Labels                      `json:"labels"`
}

// Generator produces randomized runs from a master stream. Run seeds come
// from the master stream, so a generator seed reproduces the whole batch.
type Generator struct {
	rng   *rand.Rand
	steps int
}

// NewGenerator creates a batch generator. steps is the run length.
func NewGenerator(seed int64, steps int) *Generator {
	if steps <= 0 {
		steps = 24
	}
	return &Generator{rng: rand.New(rand.NewSource(seed)), steps: steps}
}

// policyChoices are drawn uniformly, including the no-policy baseline.
var policyChoices = []string{"none", "housing", "luxury", "food", "fuel"}

// GenerateRun draws a randomized configuration, runs it, and labels the
// result.
func (g *Generator) GenerateRun() (RunRecord, error) {
	seed := g.rng.Int63()
	pop := 50 + g.rng.Intn(251) // 50–300

	eng, err := engine.New(pop, seed)
	if err != nil {
		return RunRecord{}, fmt.Errorf("construct engine: %w", err)
	}

	var meta *PolicyMeta
	choice := policyChoices[g.rng.Intn(len(policyChoices))]
	if choice != "none" {
		p, err := g.randomPolicy(choice)
		if err != nil {
			return RunRecord{}, fmt.Errorf("construct %s policy: %w", choice, err)
		}
		eng.AddPolicy(p)
		meta = &PolicyMeta{Type: string(p.Kind()), Params: policy.ParamValues(p)}
	}

	history := eng.Run(g.steps)
	neighborhoods := eng.Env().Snapshot()

	return RunRecord{
		ID:             uuid.NewString(),
		Seed:           seed,
		PopulationSize: pop,
		Policy:         meta,
		History:        history,
		Neighborhoods:  neighborhoods,
		Labels:         DeriveLabels(history, neighborhoods),
	}, nil
}

// GenerateBatch produces n labeled runs.
func (g *Generator) GenerateBatch(n int) ([]RunRecord, error) {
	runs := make([]RunRecord, 0, n)
	for i := 0; i < n; i++ {
		rec, err := g.GenerateRun()
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
		runs = append(runs, rec)
	}
	return runs, nil
}

// randomPolicy draws parameters uniformly from each variant's sampled
// range.
func (g *Generator) randomPolicy(choice string) (policy.Policy, error) {
	uniform := func(lo, hi float64) float64 {
		return lo + g.rng.Float64()*(hi-lo)
	}

	switch choice {
	case "housing":
		return policy.NewHousingRentSubsidy(uniform(50, 500), uniform(500, 2000))
	case "luxury":
		return policy.NewLuxuryAssetTax(uniform(0, 0.2), uniform(1000, 5000))
	case "food":
		return policy.NewFoodPriceCeiling(uniform(1, 10), uniform(0.5, 3))
	case "fuel":
		return policy.NewFuelTaxWithRebate(uniform(0, 0.5), uniform(0.5, 1.0))
	default:
		return nil, fmt.Errorf("unknown policy choice %q", choice)
	}
}

// WriteJSON serializes the full batch, indented for offline inspection.
func WriteJSON(path string, runs []RunRecord) error {
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
