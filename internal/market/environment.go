// Package market provides the spatial/market substrate: neighborhoods with
// supply/demand/price state, agent placement, and the social graph.
package market

import (
	"math/rand"

	"github.com/talgya/polisim/internal/agent"
)

// Price and supply bounds. The supply floor keeps demand/supply ratios
// finite under any policy combination.
const (
	MinPrice    = 1.0
	MaxPrice    = 1000.0
	SupplyFloor = 0.1
)

// Initial neighborhood state. Supply starts tight so market feedback is
// visible within a two-year run.
const (
	initialSupply = 50.0
	initialPrice  = 10.0
)

// Neighborhood holds the market state for one spatial partition.
type Neighborhood struct {
	Supply float64 `json:"supply"`
	Demand float64 `json:"demand"`
	Price  float64 `json:"price"`
}

// Environment is the spatial context agents interact through. Placement and
// the social graph are sampled once at construction and never change.
type Environment struct {
	neighborhoods []Neighborhood
	locations     []int   // agent id → neighborhood index
	network       [][]int // agent id → neighbor agent ids
}

// NewEnvironment creates size neighborhoods with identical starting state.
func NewEnvironment(size int) *Environment {
	if size < 1 {
		size = 1
	}
	nbhds := make([]Neighborhood, size)
	for i := range nbhds {
		nbhds[i] = Neighborhood{Supply: initialSupply, Price: initialPrice}
	}
	return &Environment{neighborhoods: nbhds}
}

// PlaceAgents assigns each agent a uniformly random neighborhood and links
// it to 2–5 distinct other agents. Self-links are rejected during sampling.
// Agents are processed in id order so the draw sequence is reproducible.
func (e *Environment) PlaceAgents(rng *rand.Rand, agents []*agent.Agent) {
	n := len(agents)
	e.locations = make([]int, n)
	e.network = make([][]int, n)

	for _, a := range agents {
		e.locations[a.ID] = rng.Intn(len(e.neighborhoods))
	}

	for _, a := range agents {
		degree := 2 + rng.Intn(4) // 2–5 friends
		if degree > n-1 {
			degree = n - 1
		}
		seen := make(map[int]bool, degree)
		friends := make([]int, 0, degree)
		for len(friends) < degree {
			fid := rng.Intn(n)
			if fid == a.ID || seen[fid] {
				continue
			}
			seen[fid] = true
			friends = append(friends, fid)
		}
		e.network[a.ID] = friends
	}
}

// Neighbors returns the agent ids in an agent's social circle.
func (e *Environment) Neighbors(agentID int) []int {
	if agentID < 0 || agentID >= len(e.network) {
		return nil
	}
	return e.network[agentID]
}

// LocalPrice returns the price in the agent's neighborhood.
func (e *Environment) LocalPrice(agentID int) float64 {
	return e.neighborhoods[e.locations[agentID]].Price
}

// LocalAvailability returns the supply in the agent's neighborhood.
func (e *Environment) LocalAvailability(agentID int) float64 {
	return e.neighborhoods[e.locations[agentID]].Supply
}

// UpdateMarketDynamics aggregates realized consumption per neighborhood
// into demand and applies the multiplicative price response. This feedback
// loop is the primary amplifier turning local shocks into macro phenomena.
func (e *Environment) UpdateMarketDynamics(agents []*agent.Agent) {
	demands := make([]float64, len(e.neighborhoods))
	for _, a := range agents {
		loc := e.locations[a.ID]
		if a.Consumed {
			demands[loc] += a.LastConsumption
		} else {
			// No realized value yet, fall back to declared need.
			demands[loc] += a.ConsumptionNeed
		}
	}

	for i := range e.neighborhoods {
		nb := &e.neighborhoods[i]
		demand := demands[i]

		pressure := demand / nb.Supply // supply is floored, never zero
		nb.Price = ClampPrice(nb.Price * (0.9 + 0.2*pressure))
		nb.Demand = demand

		nb.Supply -= demand * 0.05
		if nb.Supply < SupplyFloor {
			nb.Supply = SupplyFloor
		}
	}
}

// MacroIndicators returns the mean price across neighborhoods and the
// summed demand.
func (e *Environment) MacroIndicators() (avgPrice, totalDemand float64) {
	for _, nb := range e.neighborhoods {
		avgPrice += nb.Price
		totalDemand += nb.Demand
	}
	avgPrice /= float64(len(e.neighborhoods))
	return avgPrice, totalDemand
}

// Size returns the neighborhood count.
func (e *Environment) Size() int {
	return len(e.neighborhoods)
}

// Neighborhood returns a copy of the i-th neighborhood's state.
func (e *Environment) Neighborhood(i int) Neighborhood {
	return e.neighborhoods[i]
}

// SetPrice overwrites a neighborhood's price, clamped to the price bounds.
// Used by policy intended effects and distortion mechanisms.
func (e *Environment) SetPrice(i int, price float64) {
	e.neighborhoods[i].Price = ClampPrice(price)
}

// SetSupply overwrites a neighborhood's supply, floored at SupplyFloor.
func (e *Environment) SetSupply(i int, supply float64) {
	if supply < SupplyFloor {
		supply = SupplyFloor
	}
	e.neighborhoods[i].Supply = supply
}

// Snapshot returns the per-neighborhood state keyed by index, for boundary
// serialization. Mutating the result does not affect the environment.
func (e *Environment) Snapshot() map[int]Neighborhood {
	out := make(map[int]Neighborhood, len(e.neighborhoods))
	for i, nb := range e.neighborhoods {
		out[i] = nb
	}
	return out
}

// ClampPrice bounds a price to [MinPrice, MaxPrice].
func ClampPrice(p float64) float64 {
	if p < MinPrice {
		return MinPrice
	}
	if p > MaxPrice {
		return MaxPrice
	}
	return p
}
