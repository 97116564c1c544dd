// Package engine orchestrates the time evolution of the system: it owns
// the population, the environment, and the ordered active-policy list, and
// advances state one step at a time while recording an immutable history.
package engine

import (
	"fmt"
	"math/rand"

	"github.com/talgya/polisim/internal/agent"
	"github.com/talgya/polisim/internal/market"
	"github.com/talgya/polisim/internal/policy"
)

// HistoryRecord is a per-step macro snapshot. Records are append-only and
// immutable once appended.
type HistoryRecord struct {
	Step           int     `json:"step"`
	AvgPrice       float64 `json:"avg_price"`
	TotalDemand    float64 `json:"total_demand"`
	Gini           float64 `json:"gini"`
	ComplianceRate float64 `json:"compliance_rate"`
	AvgStress      float64 `json:"avg_stress"`
}

// basePenalty anchors the adaptive enforcement penalty; each active policy
// and the prior step's evasion rate raise it from there.
const basePenalty = 5.0

// Engine holds a complete simulation instance. Distinct engines share no
// mutable state; a single engine is not safe for concurrent use.
type Engine struct {
	seed   int64
	rng    *rand.Rand
	agents []*agent.Agent
	env    *market.Environment

	policies   []policy.Policy
	priceMods  []policy.PriceModifier
	agentHooks []policy.AgentHook
	finishers  []policy.StepFinisher

	history     []HistoryRecord
	currentStep int

	// Prior step's evasion rate, feeding the closed-loop penalty.
	prevEvasionRate float64
}

// New constructs an engine with a deterministic initial population and
// environment. All randomness is drawn from a single stream seeded here, in
// a fixed order: population generation, then agent placement, then the
// social graph, then per-step decisions.
func New(populationSize int, seed int64) (*Engine, error) {
	if populationSize <= 0 {
		return nil, fmt.Errorf("population size must be positive, got %d", populationSize)
	}

	rng := rand.New(rand.NewSource(seed))
	agents := agent.GeneratePopulation(rng, populationSize)

	env := market.NewEnvironment(populationSize / 10)
	env.PlaceAgents(rng, agents)

	return &Engine{
		seed:   seed,
		rng:    rng,
		agents: agents,
		env:    env,
	}, nil
}

// AddPolicy appends to the ordered active-policy list. Activation order is
// significant: intended effects and distortions both run in this order.
// Optional per-phase capabilities are indexed once here so the stepper
// never inspects types.
func (e *Engine) AddPolicy(p policy.Policy) {
	e.policies = append(e.policies, p)
	if pm, ok := p.(policy.PriceModifier); ok {
		e.priceMods = append(e.priceMods, pm)
	}
	if ah, ok := p.(policy.AgentHook); ok {
		e.agentHooks = append(e.agentHooks, ah)
	}
	if f, ok := p.(policy.StepFinisher); ok {
		e.finishers = append(e.finishers, f)
	}
}

// Step advances the simulation by one month and returns the appended
// history record.
func (e *Engine) Step() HistoryRecord {
	e.currentStep++

	st := &policy.StepContext{Env: e.env, Agents: e.agents, Rand: e.rng}

	// Enforcement tightens with every active policy and with the prior
	// step's observed evasion.
	penalty := basePenalty * (1 + 0.5*float64(len(e.policies))) * (1 + e.prevEvasionRate)

	// Snapshot last decisions so social influence reads the previous
	// step's behavior, not mid-loop writes.
	prevDecisions := make([]agent.Decision, len(e.agents))
	for i, a := range e.agents {
		prevDecisions[i] = a.LastDecision
	}

	for _, p := range e.policies {
		p.ApplyIntendedEffect(st)
	}

	totalEvaded := 0
	totalStress := 0.0

	for _, a := range e.agents {
		price := e.env.LocalPrice(a.ID)

		effPrice := price
		for _, pm := range e.priceMods {
			effPrice = pm.ConsumptionPrice(effPrice)
		}

		availability := e.env.LocalAvailability(a.ID)
		qty := a.DecideConsumption(e.rng, effPrice, availability)

		for _, h := range e.agentHooks {
			h.AfterConsumption(st, a, qty, price)
		}

		a.ApplySocialInfluence(e.neighborDecisions(a.ID, prevDecisions))

		premium := price * 0.5
		if a.DecideCompliance(e.rng, penalty, premium) == agent.Evade {
			totalEvaded++
		}
		totalStress += a.Stress
	}

	for _, f := range e.finishers {
		f.FinishStep(st)
	}

	e.env.UpdateMarketDynamics(e.agents)

	for _, p := range e.policies {
		p.ApplyDistortionMechanism(st)
	}

	avgPrice, totalDemand := e.env.MacroIndicators()
	incomes := make([]float64, len(e.agents))
	for i, a := range e.agents {
		incomes[i] = a.Income
	}

	n := float64(len(e.agents))
	rec := HistoryRecord{
		Step:           e.currentStep,
		AvgPrice:       avgPrice,
		TotalDemand:    totalDemand,
		Gini:           Gini(incomes),
		ComplianceRate: 1 - float64(totalEvaded)/n,
		AvgStress:      totalStress / n,
	}
	e.history = append(e.history, rec)
	e.prevEvasionRate = float64(totalEvaded) / n

	return rec
}

// Run advances the simulation by the given number of steps and returns the
// full ordered history.
func (e *Engine) Run(steps int) []HistoryRecord {
	for i := 0; i < steps; i++ {
		e.Step()
	}
	return e.History()
}

// History returns a copy of the recorded history. Safe to call at any
// time; never mutates engine state.
func (e *Engine) History() []HistoryRecord {
	out := make([]HistoryRecord, len(e.history))
	copy(out, e.history)
	return out
}

// Env exposes the environment for boundary serialization.
func (e *Engine) Env() *market.Environment {
	return e.env
}

// Agents returns the population in insertion order.
func (e *Engine) Agents() []*agent.Agent {
	return e.agents
}

// Seed returns the seed the engine was constructed with.
func (e *Engine) Seed() int64 {
	return e.seed
}

// neighborDecisions maps an agent's social circle to the snapshot of the
// prior step's decisions.
func (e *Engine) neighborDecisions(agentID int, prev []agent.Decision) []agent.Decision {
	ids := e.env.Neighbors(agentID)
	if len(ids) == 0 {
		return nil
	}
	out := make([]agent.Decision, len(ids))
	for i, id := range ids {
		out[i] = prev[id]
	}
	return out
}
