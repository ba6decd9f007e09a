package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricing-lab/internal/domain"
)

func quotablePolicy() *domain.PolicyRecord {
	return &domain.PolicyRecord{
		PolicyID: "pol-000001",
		Age:      45,
		Tenure:   5.0,
		Smoker:   domain.SmokerNo,
		BMI:      domain.BMINormal,
		Plan:     domain.PlanStandard,
		NCD:      domain.NCD30,
		Excess:   domain.Excess1000,
	}
}

func TestUnderwriting_StandardRules(t *testing.T) {
	u := NewUnderwriting(1.0)

	assert.True(t, u.Quotable(quotablePolicy()))

	old := quotablePolicy()
	old.Age = 90
	assert.False(t, u.Quotable(old), "age 90 exceeds the standard limit")

	atLimit := quotablePolicy()
	atLimit.Age = 85
	assert.True(t, u.Quotable(atLimit), "the age limit is inclusive")

	smokerObese := quotablePolicy()
	smokerObese.Smoker = domain.SmokerYes
	smokerObese.BMI = domain.BMIObese
	assert.False(t, u.Quotable(smokerObese))

	smokerOnly := quotablePolicy()
	smokerOnly.Smoker = domain.SmokerYes
	assert.True(t, u.Quotable(smokerOnly), "smoking alone is not a decline")

	newJoiner := quotablePolicy()
	newJoiner.Tenure = 0.05
	assert.False(t, u.Quotable(newJoiner))
}

func TestUnderwriting_Strictness(t *testing.T) {
	policy := quotablePolicy()
	policy.Age = 75

	assert.True(t, NewUnderwriting(1.0).Quotable(policy))
	// Strictness 1.2 lowers the age limit to floor(85/1.2) = 70.
	assert.False(t, NewUnderwriting(1.2).Quotable(policy))

	old := quotablePolicy()
	old.Age = 90
	// Strictness 0.9 raises it to floor(85/0.9) = 94.
	assert.True(t, NewUnderwriting(0.9).Quotable(old))
}

func TestApplyCapsAndCollars(t *testing.T) {
	// Band around previous 100 with cap 0.25 and collar -0.15: [85, 125].
	assert.InDelta(t, 110.0, ApplyCapsAndCollars(110, 100, 0.25, -0.15), 1e-9)
	assert.InDelta(t, 125.0, ApplyCapsAndCollars(140, 100, 0.25, -0.15), 1e-9)
	assert.InDelta(t, 85.0, ApplyCapsAndCollars(70, 100, 0.25, -0.15), 1e-9)
	assert.InDelta(t, 125.0, ApplyCapsAndCollars(125, 100, 0.25, -0.15), 1e-9)
}

func TestTotalDiscount(t *testing.T) {
	// Loyalty 0.05 + excess 0.03 + NCD30 0.15 = 0.23, inside the 0.25 cap.
	p := quotablePolicy()
	assert.InDelta(t, 0.23, TotalDiscount(p, 0.25), 1e-9)

	// NCD50 pushes the sum to 0.33; the cap binds.
	maxed := quotablePolicy()
	maxed.NCD = domain.NCD50
	assert.InDelta(t, 0.25, TotalDiscount(maxed, 0.25), 1e-9)
	assert.InDelta(t, 0.33, TotalDiscount(maxed, 0.35), 1e-9)

	// No qualifying components.
	bare := &domain.PolicyRecord{Tenure: 1.0, NCD: domain.NCD0, Excess: domain.Excess0}
	assert.Zero(t, TotalDiscount(bare, 0.25))
}

func TestApplyDiscounts(t *testing.T) {
	p := quotablePolicy()
	final, discount := ApplyDiscounts(p, 1000, 0.25)
	assert.InDelta(t, 0.23, discount, 1e-9)
	assert.InDelta(t, 770.0, final, 1e-9)
}

func TestPipeline_Apply(t *testing.T) {
	pipe := NewPipeline(domain.StrategyBase)

	p := quotablePolicy()
	d := pipe.Apply(p, 1000, 1400, 1000, 320)

	assert.Equal(t, p.PolicyID, d.PolicyID)
	assert.True(t, d.Quotable)
	assert.InDelta(t, 1000.0, d.BasePrice, 1e-9)
	assert.InDelta(t, 1400.0, d.TargetPrice, 1e-9)
	assert.InDelta(t, 320.0, d.ExpectedLTV, 1e-9)

	// Target 1400 hits the +25% cap at 1250; discount 0.23 lands at 962.50.
	require.NotNil(t, d.CappedPrice)
	assert.InDelta(t, 1250.0, *d.CappedPrice, 1e-9)
	require.NotNil(t, d.FinalPrice)
	assert.InDelta(t, 962.5, *d.FinalPrice, 1e-9)
	assert.InDelta(t, 0.23, d.Discount, 1e-9)
}

func TestPipeline_ApplyDeclined(t *testing.T) {
	pipe := NewPipeline(domain.StrategyBase)

	p := quotablePolicy()
	p.Age = 90
	d := pipe.Apply(p, 1000, 1100, 1000, 320)

	assert.False(t, d.Quotable)
	assert.Nil(t, d.CappedPrice)
	assert.Nil(t, d.FinalPrice)
	assert.Zero(t, d.Discount)
	// Model outputs survive on the record for audit.
	assert.InDelta(t, 1100.0, d.TargetPrice, 1e-9)
}
