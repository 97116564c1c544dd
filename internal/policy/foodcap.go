package policy

// FoodPriceCeiling caps the market price of essentials. The distortion is
// supplier withdrawal: the wider the gap between the market price and the
// cap, the more supply retreats toward black markets.
type FoodPriceCeiling struct {
	priceCap          float64
	supplySensitivity float64
}

// NewFoodPriceCeiling validates parameters against their declared ranges.
func NewFoodPriceCeiling(priceCap, supplySensitivity float64) (*FoodPriceCeiling, error) {
	p := &FoodPriceCeiling{priceCap: priceCap, supplySensitivity: supplySensitivity}
	for _, param := range p.Params() {
		if err := checkRange(param); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *FoodPriceCeiling) Kind() Kind { return KindFoodPriceCeiling }

func (p *FoodPriceCeiling) Params() []Parameter {
	return []Parameter{
		{Name: "price_cap", Value: p.priceCap,
			Description: "Maximum allowed price for a food unit", Min: 1, Max: 20},
		{Name: "supply_sensitivity", Value: p.supplySensitivity,
			Description: "How quickly supply retreats from price caps", Min: 0, Max: 5},
	}
}

// ApplyIntendedEffect enforces the cap on every neighborhood before agents
// consume.
func (p *FoodPriceCeiling) ApplyIntendedEffect(st *StepContext) {
	for i := 0; i < st.Env.Size(); i++ {
		nb := st.Env.Neighborhood(i)
		if nb.Price > p.priceCap {
			st.Env.SetPrice(i, p.priceCap)
		}
	}
}

// ApplyDistortionMechanism contracts supply wherever the post-clearing
// market price sits above the cap.
func (p *FoodPriceCeiling) ApplyDistortionMechanism(st *StepContext) {
	for i := 0; i < st.Env.Size(); i++ {
		nb := st.Env.Neighborhood(i)
		contraction := p.SupplyContraction(nb.Price)
		if contraction < 1 {
			st.Env.SetSupply(i, nb.Supply*contraction)
		}
	}
}

// SupplyContraction returns the multiplicative supply retention factor for
// a market price, in [0.1, 1].
func (p *FoodPriceCeiling) SupplyContraction(marketPrice float64) float64 {
	if p.priceCap >= marketPrice {
		return 1.0
	}
	gap := (marketPrice - p.priceCap) / marketPrice
	retention := 1.0 - gap*p.supplySensitivity
	if retention < 0.1 {
		return 0.1
	}
	return retention
}
