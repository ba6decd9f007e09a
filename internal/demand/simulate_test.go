package demand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricing-lab/internal/domain"
	"pricing-lab/internal/population"
)

func TestSimulate(t *testing.T) {
	rng := population.NewSource(42)
	policies := population.Generate(rng, 2000)

	quotes := Simulate(rng, policies, 1000, 1000)
	require.Len(t, quotes, len(policies))

	accepted := 0
	for i, q := range quotes {
		assert.Equal(t, policies[i].PolicyID, q.PolicyID)
		assert.InDelta(t, 1.0, q.RelPrice, 1e-9)
		assert.Greater(t, q.AcceptProb, 0.0)
		assert.Less(t, q.AcceptProb, 1.0)
		if q.Accepted {
			accepted++
		}
	}
	// At market price some accept and some decline.
	assert.Greater(t, accepted, 0)
	assert.Less(t, accepted, len(quotes))
}

func TestSimulate_PriceSensitivity(t *testing.T) {
	policies := population.Generate(population.NewSource(7), 5000)

	count := func(premium float64) int {
		quotes := Simulate(population.NewSource(7), policies, premium, 1000)
		n := 0
		for _, q := range quotes {
			if q.Accepted {
				n++
			}
		}
		return n
	}

	assert.Greater(t, count(850), count(1200), "cheaper quotes must win more business")
}

func TestSimulate_Reproducible(t *testing.T) {
	policies := population.Generate(population.NewSource(3), 500)

	a := Simulate(population.NewSource(11), policies, 950, 1000)
	b := Simulate(population.NewSource(11), policies, 950, 1000)
	assert.Equal(t, a, b)
}

func TestSimulateAt(t *testing.T) {
	policies := population.Generate(population.NewSource(5), 100)

	premiums := make([]*float64, len(policies))
	for i := range premiums {
		if i%3 == 0 {
			continue // declined, stays nil
		}
		v := 950.0 + float64(i)
		premiums[i] = &v
	}

	quotes := SimulateAt(population.NewSource(5), policies, premiums, 1000)
	require.Len(t, quotes, len(policies))

	for i, q := range quotes {
		assert.Equal(t, policies[i].PolicyID, q.PolicyID)
		if premiums[i] == nil {
			assert.Zero(t, q.AcceptProb)
			assert.False(t, q.Accepted)
			assert.Zero(t, q.RelPrice)
		} else {
			assert.InDelta(t, *premiums[i]/1000, q.RelPrice, 1e-9)
			assert.Greater(t, q.AcceptProb, 0.0)
		}
	}
}

func TestSimulateAt_Reproducible(t *testing.T) {
	policies := population.Generate(population.NewSource(5), 200)

	premiums := make([]*float64, len(policies))
	for i := range premiums {
		if i%4 == 0 {
			continue
		}
		premiums[i] = domain.Float64Ptr(990)
	}

	a := SimulateAt(population.NewSource(13), policies, premiums, 1000)
	b := SimulateAt(population.NewSource(13), policies, premiums, 1000)
	assert.Equal(t, a, b)
}
