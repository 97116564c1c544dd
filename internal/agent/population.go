package agent

import (
	"math"
	"math/rand"
)

// GeneratePopulation creates n heterogeneous agents from the given stream.
// Incomes follow a lognormal distribution (a Pareto-like right tail);
// consumption need is a basic floor plus a discretionary share of income.
// Draw order per agent is fixed: income, mobility, risk tolerance.
func GeneratePopulation(rng *rand.Rand, n int) []*Agent {
	population := make([]*Agent, 0, n)
	for i := 0; i < n; i++ {
		income := math.Exp(7.0 + 0.8*rng.NormFloat64())
		mobility := rng.Float64()
		riskTolerance := rng.Float64()

		a := &Agent{
			ID:                    i,
			BaseIncome:            income,
			Income:                income,
			ConsumptionNeed:       500 + income*0.2,
			Mobility:              mobility,
			RiskTolerance:         riskTolerance,
			SocialInfluenceWeight: 0.1,
			Wealth:                income,
			// Higher risk tolerance starts closer to full compliance;
			// social pressure moves it from there.
			ComplianceProbability: clamp(1.0-0.5*(1.0-riskTolerance), 0.1, 1.0),
			LastDecision:          Comply,
		}
		population = append(population, a)
	}
	return population
}
