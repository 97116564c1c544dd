// Package policy provides the intervention abstraction: each variant pairs
// an intended effect (what policymakers want) with a distortion mechanism
// (the behavioral/market response it provokes).
package policy

import (
	"fmt"
	"math/rand"

	"github.com/talgya/polisim/internal/agent"
	"github.com/talgya/polisim/internal/market"
)

// Kind tags a policy variant.
type Kind string

const (
	KindHousingRentSubsidy Kind = "housing_rent_subsidy"
	KindLuxuryAssetTax     Kind = "luxury_asset_tax"
	KindFoodPriceCeiling   Kind = "food_price_ceiling"
	KindFuelTaxRebate      Kind = "fuel_tax_rebate"
)

// Parameter is a named policy parameter with its declared valid range.
type Parameter struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Description string  `json:"description"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
}

// checkRange rejects values outside the declared range at construction
// time, so a running simulation never sees an out-of-range parameter.
func checkRange(p Parameter) error {
	if p.Value < p.Min || p.Value > p.Max {
		return fmt.Errorf("policy parameter %s=%g outside valid range [%g, %g]",
			p.Name, p.Value, p.Min, p.Max)
	}
	return nil
}

// StepContext is the per-step view a policy acts on. The engine builds one
// per step and threads it through every hook.
type StepContext struct {
	Env    *market.Environment
	Agents []*agent.Agent
	Rand   *rand.Rand
}

// Policy is the uniform interface over the tagged-variant family. The
// stepper iterates active policies through it without type inspection.
type Policy interface {
	Kind() Kind
	Params() []Parameter

	// ApplyIntendedEffect runs before agents act.
	ApplyIntendedEffect(st *StepContext)
	// ApplyDistortionMechanism runs after the market update.
	ApplyDistortionMechanism(st *StepContext)
}

// PriceModifier adjusts the price an agent faces at consumption time.
type PriceModifier interface {
	ConsumptionPrice(base float64) float64
}

// AgentHook runs per agent immediately after its consumption decision, in
// population order. qty and price are the realized quantity and the
// undistorted local price.
type AgentHook interface {
	AfterConsumption(st *StepContext, a *agent.Agent, qty, price float64)
}

// StepFinisher runs once after the agent loop, before the market update.
type StepFinisher interface {
	FinishStep(st *StepContext)
}

// ParamValues flattens a policy's parameters into a name→value map for
// serialization.
func ParamValues(p Policy) map[string]float64 {
	out := make(map[string]float64)
	for _, param := range p.Params() {
		out[param.Name] = param.Value
	}
	return out
}

// FromSpec constructs a policy from a type tag and a parameter map, falling
// back to variant defaults for missing keys. Unknown kinds are an error,
// never silently ignored.
func FromSpec(kind string, params map[string]float64) (Policy, error) {
	get := func(name string, def float64) float64 {
		if v, ok := params[name]; ok {
			return v
		}
		return def
	}

	switch Kind(kind) {
	case KindHousingRentSubsidy:
		return NewHousingRentSubsidy(
			get("subsidy_amount", 200),
			get("eligibility_threshold", 1000),
		)
	case KindLuxuryAssetTax:
		return NewLuxuryAssetTax(
			get("tax_rate", 0.05),
			get("wealth_threshold", 2000),
		)
	case KindFoodPriceCeiling:
		return NewFoodPriceCeiling(
			get("price_cap", 5.0),
			get("supply_sensitivity", 1.5),
		)
	case KindFuelTaxRebate:
		return NewFuelTaxWithRebate(
			get("tax_rate", 0.2),
			get("rebate_percent", 0.9),
		)
	default:
		return nil, fmt.Errorf("unknown policy type %q", kind)
	}
}

// Kinds lists the registered policy kinds in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindHousingRentSubsidy,
		KindLuxuryAssetTax,
		KindFoodPriceCeiling,
		KindFuelTaxRebate,
	}
}

// Describe returns the default parameter set for a kind, for boundary
// listings.
func Describe(kind Kind) ([]Parameter, error) {
	p, err := FromSpec(string(kind), nil)
	if err != nil {
		return nil, err
	}
	return p.Params(), nil
}
