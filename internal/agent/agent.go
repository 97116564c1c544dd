// Package agent provides the heterogeneous agent model: consumption,
// compliance, social imitation, relocation, and income updates.
package agent

import (
	"math"
	"math/rand"
)

// Decision is an agent's compliance choice for a step.
type Decision string

const (
	Comply Decision = "comply"
	Evade  Decision = "evade"
)

// Agent is a consumer/citizen with bounded rationality. All stochastic
// methods take an explicit *rand.Rand so randomness consumption stays
// centralized in the engine's stream.
type Agent struct {
	ID int `json:"id"`

	// Fixed traits, set at population generation.
	BaseIncome            float64 `json:"base_income"`
	ConsumptionNeed       float64 `json:"consumption_need"`
	Mobility              float64 `json:"mobility"`
	RiskTolerance         float64 `json:"risk_tolerance"`
	SocialInfluenceWeight float64 `json:"social_influence_weight"`

	// Mutable state.
	Income                float64  `json:"income"`
	Wealth                float64  `json:"wealth"`
	ComplianceProbability float64  `json:"compliance_probability"` // [0.1, 1.0]
	LastDecision          Decision `json:"last_decision"`
	Stress                float64  `json:"stress_level"` // [0, 1]
	LastConsumption       float64  `json:"last_consumption"`
	Consumed              bool     `json:"-"` // true once a realized consumption exists
}

// priceFloor guards the affordability division when prices are near zero.
const priceFloor = 0.1

// DecideConsumption picks a realized quantity against the local price and
// availability, debits wealth, and moves stress. Stress rises faster the
// larger the relative shortfall below 80% of need, and relaxes slowly when
// need is met. Returns the realized quantity.
func (a *Agent) DecideConsumption(rng *rand.Rand, price, availability float64) float64 {
	target := a.ConsumptionNeed * (0.9 + 0.2*rng.Float64())
	affordable := a.Wealth / math.Max(price, priceFloor)

	realized := math.Min(target, math.Min(affordable, availability))
	if realized < 0 {
		realized = 0
	}

	a.Wealth -= realized * price
	a.LastConsumption = realized
	a.Consumed = true

	if realized < a.ConsumptionNeed*0.8 {
		shortfall := (a.ConsumptionNeed - realized) / a.ConsumptionNeed
		a.Stress += 0.1 + 0.2*shortfall
	} else {
		a.Stress -= 0.05
	}
	a.Stress = clamp(a.Stress, 0, 1)

	return realized
}

// DecideCompliance chooses comply or evade. Stress inflates the effective
// risk tolerance, the premium/penalty ratio forms the incentive, and a
// logistic response scaled down by the current compliance probability
// produces the evasion probability. Always consumes exactly one uniform
// draw so the random stream stays aligned across agents.
func (a *Agent) DecideCompliance(rng *rand.Rand, expectedPenalty, blackMarketPremium float64) Decision {
	effectiveRisk := a.RiskTolerance * (1 + a.Stress)
	incentive := blackMarketPremium / math.Max(expectedPenalty, 1e-6)

	base := 1 / (1 + math.Exp(-(incentive*effectiveRisk - 1)))
	evadeP := base * (1 - a.ComplianceProbability)

	if rng.Float64() < evadeP {
		a.LastDecision = Evade
	} else {
		a.LastDecision = Comply
	}
	return a.LastDecision
}

// ApplySocialInfluence drifts compliance probability toward the local
// compliance rate observed among neighbors, scaled by the agent's social
// influence weight. This is the channel through which peer contagion can
// cascade into system-wide compliance collapse.
func (a *Agent) ApplySocialInfluence(neighborDecisions []Decision) {
	if len(neighborDecisions) == 0 {
		return
	}

	evaded := 0
	for _, d := range neighborDecisions {
		if d == Evade {
			evaded++
		}
	}
	evasionRate := float64(evaded) / float64(len(neighborDecisions))

	target := 1 - evasionRate
	a.ComplianceProbability += a.SocialInfluenceWeight * (target - a.ComplianceProbability)
	a.ComplianceProbability = clamp(a.ComplianceProbability, 0.1, 1.0)
}

// Relocate decides whether the agent would move given the local utility
// deficit. Agents below the mobility threshold never move. Exposed as a
// capability; the stepper does not invoke it.
func (a *Agent) Relocate(rng *rand.Rand, localUtility, globalAvgUtility float64) bool {
	if a.Mobility < 0.2 {
		return false
	}
	incentive := globalAvgUtility - localUtility
	if incentive > (1 - a.Mobility) {
		return rng.Float64() < a.Mobility
	}
	return false
}

// UpdateIncome sets the agent's income and replenishes wealth by the full
// new monthly amount (a paycheck, not a delta). The construction-time
// BaseIncome is left untouched so policy effects never compound into the
// baseline.
func (a *Agent) UpdateIncome(newIncome float64) {
	a.Income = newIncome
	a.Wealth += newIncome
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
