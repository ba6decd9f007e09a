package population

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricing-lab/internal/domain"
)

func TestGenerate_Reproducible(t *testing.T) {
	a := Generate(NewSource(42), 500)
	b := Generate(NewSource(42), 500)

	require.Len(t, a, 500)
	require.Len(t, b, 500)

	for i := range a {
		assert.Equal(t, *a[i], *b[i], "policy %d differs between identically seeded runs", i)
	}
}

func TestGenerate_DifferentSeeds(t *testing.T) {
	a := Generate(NewSource(1), 200)
	b := Generate(NewSource(2), 200)

	same := 0
	for i := range a {
		if *a[i] == *b[i] {
			same++
		}
	}
	assert.Less(t, same, 200, "different seeds produced identical portfolios")
}

func TestGenerate_AttributeRanges(t *testing.T) {
	policies := Generate(NewSource(7), 2000)

	seen := make(map[string]struct{}, len(policies))
	for _, p := range policies {
		_, dup := seen[p.PolicyID]
		require.False(t, dup, "duplicate policy id %s", p.PolicyID)
		seen[p.PolicyID] = struct{}{}

		assert.GreaterOrEqual(t, p.Age, 0)
		assert.LessOrEqual(t, p.Age, 100)
		assert.Contains(t, []string{"M", "F"}, p.Gender)
		assert.NotEmpty(t, p.Region)
		assert.GreaterOrEqual(t, p.Tenure, 0.0)
		assert.LessOrEqual(t, p.Tenure, 30.0)
		assert.Contains(t, []domain.Smoker{domain.SmokerNo, domain.SmokerYes}, p.Smoker)

		// Attributes only; claims come from the claims simulator.
		assert.Zero(t, p.NumClaims)
		assert.Zero(t, p.Incurred)
	}
}

func TestGenerate_CategoryMix(t *testing.T) {
	policies := Generate(NewSource(11), 10000)

	smokers := 0
	children := 0
	plans := make(map[domain.Plan]int)
	for _, p := range policies {
		if p.Smoker == domain.SmokerYes {
			smokers++
		}
		if p.Age < 18 {
			children++
		}
		plans[p.Plan]++
	}

	n := float64(len(policies))
	assert.InDelta(t, 0.15, float64(smokers)/n, 0.03, "smoker share off target")
	assert.Greater(t, children, 0, "age mixture produced no children")
	assert.Greater(t, plans[domain.PlanPremium], plans[domain.PlanBudget],
		"plan mix should skew to Premium over Budget")
}
