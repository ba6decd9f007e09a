package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricing-lab/internal/domain"
	"pricing-lab/internal/population"
)

func TestDetectDrift_IdenticalPopulations(t *testing.T) {
	policies := population.Generate(population.NewSource(42), 1000)

	pvals, err := DetectDrift(policies, policies, []string{"age", "tenure", "smoker", "plan"})
	require.NoError(t, err)
	require.Len(t, pvals, 4)

	for feature, p := range pvals {
		assert.InDelta(t, 1.0, p, 1e-9, "identical samples must not drift on %s", feature)
	}
}

func TestDetectDrift_ShiftedPopulation(t *testing.T) {
	reference := population.Generate(population.NewSource(42), 2000)

	// Age everyone by 20 years: a gross, detectable shift.
	shifted := make([]*domain.PolicyRecord, len(reference))
	for i, p := range reference {
		cp := *p
		cp.Age = p.Age + 20
		shifted[i] = &cp
	}

	pvals, err := DetectDrift(reference, shifted, []string{"age", "tenure"})
	require.NoError(t, err)

	assert.Less(t, pvals["age"], 0.01, "a 20-year age shift must show near-zero p")
	assert.Greater(t, pvals["tenure"], 0.05, "untouched tenure must not drift")
}

func TestDetectDrift_Errors(t *testing.T) {
	policies := population.Generate(population.NewSource(1), 10)

	_, err := DetectDrift(nil, policies, []string{"age"})
	assert.ErrorIs(t, err, ErrEmptyPopulation)

	_, err = DetectDrift(policies, nil, []string{"age"})
	assert.ErrorIs(t, err, ErrEmptyPopulation)

	_, err = DetectDrift(policies, policies, []string{"shoe_size"})
	assert.Error(t, err)
}

func TestDetectDrift_AllFeatureColumns(t *testing.T) {
	rng := population.NewSource(7)
	policies := population.Generate(rng, 200)
	population.SimulateClaims(rng, policies)

	features := []string{"age", "tenure", "smoker", "bmi", "plan", "ncd", "excess", "incurred"}
	pvals, err := DetectDrift(policies, policies, features)
	require.NoError(t, err)
	assert.Len(t, pvals, len(features))
}
