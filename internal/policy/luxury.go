package policy

import "github.com/talgya/polisim/internal/agent"

// LuxuryAssetTax taxes wealth above a threshold at a flat rate. The
// distortion is capital flight: heavily exposed agents may conceal or
// relocate wealth, halving what the system sees and raising their stress.
type LuxuryAssetTax struct {
	taxRate         float64
	wealthThreshold float64
}

// flightSensitivity scales exposure into flight probability. Exposure is
// normalized per 1000 over the threshold.
const flightSensitivity = 20.0

// NewLuxuryAssetTax validates parameters against their declared ranges.
func NewLuxuryAssetTax(taxRate, wealthThreshold float64) (*LuxuryAssetTax, error) {
	p := &LuxuryAssetTax{taxRate: taxRate, wealthThreshold: wealthThreshold}
	for _, param := range p.Params() {
		if err := checkRange(param); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *LuxuryAssetTax) Kind() Kind { return KindLuxuryAssetTax }

func (p *LuxuryAssetTax) Params() []Parameter {
	return []Parameter{
		{Name: "tax_rate", Value: p.taxRate,
			Description: "Annual tax on luxury assets", Min: 0, Max: 0.2},
		{Name: "wealth_threshold", Value: p.wealthThreshold,
			Description: "Minimum asset value to trigger tax", Min: 500, Max: 10000},
	}
}

// ApplyIntendedEffect is a no-op at the step level: the tax operates per
// agent after the consumption decision, through AfterConsumption.
func (p *LuxuryAssetTax) ApplyIntendedEffect(st *StepContext) {}

// ApplyDistortionMechanism is covered per agent in AfterConsumption; the
// flight response acts on agent wealth, not on neighborhood state.
func (p *LuxuryAssetTax) ApplyDistortionMechanism(st *StepContext) {}

// AfterConsumption collects the wealth tax and then runs the capital-flight
// check against the engine's random stream.
func (p *LuxuryAssetTax) AfterConsumption(st *StepContext, a *agent.Agent, qty, price float64) {
	a.Wealth -= p.WealthTax(a.Wealth)

	flightP := p.FlightProbability(a.Wealth)
	if flightP > 0 && st.Rand.Float64() < flightP {
		a.Wealth *= 0.5
		a.Stress += 0.2
		if a.Stress > 1 {
			a.Stress = 1
		}
	}
}

// WealthTax returns the flat-rate tax on wealth above the threshold.
func (p *LuxuryAssetTax) WealthTax(wealth float64) float64 {
	if wealth <= p.wealthThreshold {
		return 0
	}
	return (wealth - p.wealthThreshold) * p.taxRate
}

// FlightProbability rises with exposure above the threshold, capped at 0.9.
func (p *LuxuryAssetTax) FlightProbability(wealth float64) float64 {
	if wealth <= p.wealthThreshold {
		return 0
	}
	exposure := (wealth - p.wealthThreshold) / 1000.0
	risk := exposure * p.taxRate * flightSensitivity
	if risk > 0.9 {
		return 0.9
	}
	return risk
}
