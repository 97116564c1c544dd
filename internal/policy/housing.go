package policy

// HousingRentSubsidy pays a flat monthly cash subsidy to agents below an
// income eligibility threshold. The distortion is landlord capture: scarce
// supply lets prices rise to absorb the subsidy.
type HousingRentSubsidy struct {
	subsidyAmount        float64
	eligibilityThreshold float64
}

// NewHousingRentSubsidy validates parameters against their declared ranges.
func NewHousingRentSubsidy(subsidyAmount, eligibilityThreshold float64) (*HousingRentSubsidy, error) {
	p := &HousingRentSubsidy{
		subsidyAmount:        subsidyAmount,
		eligibilityThreshold: eligibilityThreshold,
	}
	for _, param := range p.Params() {
		if err := checkRange(param); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *HousingRentSubsidy) Kind() Kind { return KindHousingRentSubsidy }

func (p *HousingRentSubsidy) Params() []Parameter {
	return []Parameter{
		{Name: "subsidy_amount", Value: p.subsidyAmount,
			Description: "Monthly cash to eligible renters", Min: 0, Max: 1000},
		{Name: "eligibility_threshold", Value: p.eligibilityThreshold,
			Description: "Maximum income to qualify", Min: 0, Max: 5000},
	}
}

// ApplyIntendedEffect pays eligible agents their boosted monthly income.
// Eligibility is judged on current income, so agents whose income the
// subsidy has pushed over the threshold stop receiving it.
func (p *HousingRentSubsidy) ApplyIntendedEffect(st *StepContext) {
	for _, a := range st.Agents {
		if a.Income < p.eligibilityThreshold {
			a.UpdateIncome(a.Income + p.subsidyAmount)
		}
	}
}

// ApplyDistortionMechanism models rent inflation: when demand outstrips
// supply, prices rise by a factor proportional to the imbalance, capturing
// part of the subsidy for landlords.
func (p *HousingRentSubsidy) ApplyDistortionMechanism(st *StepContext) {
	for i := 0; i < st.Env.Size(); i++ {
		nb := st.Env.Neighborhood(i)
		factor := p.priceIncreaseFactor(nb.Demand, nb.Supply)
		if factor > 0 {
			st.Env.SetPrice(i, nb.Price*(1+factor))
		}
	}
}

func (p *HousingRentSubsidy) priceIncreaseFactor(demand, supply float64) float64 {
	if supply <= 0 {
		return 0
	}
	pressure := demand / supply
	factor := (pressure - 1.0) * 0.5
	if factor < 0 {
		return 0
	}
	return factor
}
