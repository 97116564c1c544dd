package policy

import "github.com/talgya/polisim/internal/agent"

// FuelTaxWithRebate inflates the price agents face at consumption time,
// accrues the tax revenue per realized purchase, and redistributes the
// pooled revenue evenly across the population within the same step. The
// rebate is one-time and non-persistent.
type FuelTaxWithRebate struct {
	taxRate       float64
	rebatePercent float64

	// Per-step transient revenue pool. Reset by FinishStep; a policy value
	// must not be shared by concurrently running engines.
	revenue float64
}

// NewFuelTaxWithRebate validates parameters against their declared ranges.
func NewFuelTaxWithRebate(taxRate, rebatePercent float64) (*FuelTaxWithRebate, error) {
	p := &FuelTaxWithRebate{taxRate: taxRate, rebatePercent: rebatePercent}
	for _, param := range p.Params() {
		if err := checkRange(param); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *FuelTaxWithRebate) Kind() Kind { return KindFuelTaxRebate }

func (p *FuelTaxWithRebate) Params() []Parameter {
	return []Parameter{
		{Name: "tax_rate", Value: p.taxRate,
			Description: "Tax applied to the consumption-time price", Min: 0, Max: 0.5},
		{Name: "rebate_percent", Value: p.rebatePercent,
			Description: "Share of pooled revenue returned as rebates", Min: 0.5, Max: 1},
	}
}

func (p *FuelTaxWithRebate) ApplyIntendedEffect(st *StepContext)      {}
func (p *FuelTaxWithRebate) ApplyDistortionMechanism(st *StepContext) {}

// ConsumptionPrice inflates the price agents pay by the tax rate. The
// neighborhood's posted price is unchanged.
func (p *FuelTaxWithRebate) ConsumptionPrice(base float64) float64 {
	return base * (1 + p.taxRate)
}

// AfterConsumption accrues tax revenue from the realized purchase.
func (p *FuelTaxWithRebate) AfterConsumption(st *StepContext, a *agent.Agent, qty, price float64) {
	p.revenue += qty * price * p.taxRate
}

// FinishStep redistributes the pooled revenue evenly and resets the pool.
func (p *FuelTaxWithRebate) FinishStep(st *StepContext) {
	n := len(st.Agents)
	if n == 0 || p.revenue <= 0 {
		p.revenue = 0
		return
	}
	rebate := p.revenue * p.rebatePercent / float64(n)
	for _, a := range st.Agents {
		a.Wealth += rebate
	}
	p.revenue = 0
}
