package market

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/polisim/internal/agent"
)

func testPopulation(rng *rand.Rand, n int) []*agent.Agent {
	return agent.GeneratePopulation(rng, n)
}

func TestNewEnvironmentMinimumSize(t *testing.T) {
	env := NewEnvironment(0)
	require.Equal(t, 1, env.Size())

	env = NewEnvironment(5)
	require.Equal(t, 5, env.Size())
	for i := 0; i < env.Size(); i++ {
		nb := env.Neighborhood(i)
		assert.Equal(t, 50.0, nb.Supply)
		assert.Equal(t, 10.0, nb.Price)
		assert.Equal(t, 0.0, nb.Demand)
	}
}

func TestPlaceAgentsSocialGraph(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	agents := testPopulation(rng, 100)
	env := NewEnvironment(10)
	env.PlaceAgents(rng, agents)

	for _, a := range agents {
		friends := env.Neighbors(a.ID)
		require.GreaterOrEqual(t, len(friends), 2)
		require.LessOrEqual(t, len(friends), 5)

		seen := map[int]bool{}
		for _, fid := range friends {
			assert.NotEqual(t, a.ID, fid, "no self links")
			assert.False(t, seen[fid], "no duplicate links")
			assert.GreaterOrEqual(t, fid, 0)
			assert.Less(t, fid, len(agents))
			seen[fid] = true
		}

		assert.GreaterOrEqual(t, env.LocalPrice(a.ID), MinPrice)
		assert.Greater(t, env.LocalAvailability(a.ID), 0.0)
	}
}

func TestPlaceAgentsTinyPopulation(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	agents := testPopulation(rng, 3)
	env := NewEnvironment(1)
	env.PlaceAgents(rng, agents)

	// Degree is capped at n-1.
	for _, a := range agents {
		assert.Len(t, env.Neighbors(a.ID), 2)
	}
}

func TestUpdateMarketDynamicsPriceResponse(t *testing.T) {
	env := NewEnvironment(1)
	a := &agent.Agent{ID: 0, ConsumptionNeed: 150}
	env.PlaceAgents(rand.New(rand.NewSource(1)), []*agent.Agent{a})

	// No realized consumption yet: demand falls back to declared need.
	env.UpdateMarketDynamics([]*agent.Agent{a})
	nb := env.Neighborhood(0)

	// price = 10 * (0.9 + 0.2 * 150/50) = 15
	assert.InDelta(t, 15.0, nb.Price, 1e-9)
	assert.Equal(t, 150.0, nb.Demand)
	// supply = 50 - 0.05*150 = 42.5
	assert.InDelta(t, 42.5, nb.Supply, 1e-9)
}

func TestUpdateMarketDynamicsUsesRealizedConsumption(t *testing.T) {
	env := NewEnvironment(1)
	a := &agent.Agent{ID: 0, ConsumptionNeed: 150, LastConsumption: 20, Consumed: true}
	env.PlaceAgents(rand.New(rand.NewSource(1)), []*agent.Agent{a})

	env.UpdateMarketDynamics([]*agent.Agent{a})
	nb := env.Neighborhood(0)
	assert.Equal(t, 20.0, nb.Demand)
	// price = 10 * (0.9 + 0.2 * 20/50) = 9.8
	assert.InDelta(t, 9.8, nb.Price, 1e-9)
}

func TestSupplyNeverBelowFloor(t *testing.T) {
	env := NewEnvironment(1)
	a := &agent.Agent{ID: 0, ConsumptionNeed: 100000}
	env.PlaceAgents(rand.New(rand.NewSource(1)), []*agent.Agent{a})

	for i := 0; i < 10; i++ {
		env.UpdateMarketDynamics([]*agent.Agent{a})
	}
	assert.Equal(t, SupplyFloor, env.Neighborhood(0).Supply)
	assert.Equal(t, MaxPrice, env.Neighborhood(0).Price)
}

func TestClampPrice(t *testing.T) {
	assert.Equal(t, MinPrice, ClampPrice(0.001))
	assert.Equal(t, MinPrice, ClampPrice(-5))
	assert.Equal(t, MaxPrice, ClampPrice(1e9))
	assert.Equal(t, 42.0, ClampPrice(42))
}

func TestSettersClamp(t *testing.T) {
	env := NewEnvironment(1)
	env.SetPrice(0, 5000)
	assert.Equal(t, MaxPrice, env.Neighborhood(0).Price)
	env.SetSupply(0, -3)
	assert.Equal(t, SupplyFloor, env.Neighborhood(0).Supply)
}

func TestSnapshotIsDetached(t *testing.T) {
	env := NewEnvironment(2)
	snap := env.Snapshot()
	require.Len(t, snap, 2)

	nb := snap[0]
	nb.Price = 999
	snap[0] = nb
	assert.Equal(t, 10.0, env.Neighborhood(0).Price)
}
