package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCodes(t *testing.T) {
	s, err := ParseSmoker("Y")
	require.NoError(t, err)
	assert.Equal(t, SmokerYes, s)
	_, err = ParseSmoker("maybe")
	assert.Error(t, err)

	b, err := ParseBMICategory("Obese")
	require.NoError(t, err)
	assert.Equal(t, BMIObese, b)
	_, err = ParseBMICategory("obese")
	assert.Error(t, err)

	p, err := ParsePlan("Standard")
	require.NoError(t, err)
	assert.Equal(t, PlanStandard, p)
	_, err = ParsePlan("Platinum")
	assert.Error(t, err)

	n, err := ParseNCDBand("30")
	require.NoError(t, err)
	assert.Equal(t, NCD30, n)
	_, err = ParseNCDBand("35")
	assert.Error(t, err)

	e, err := ParseExcessBand("1000")
	require.NoError(t, err)
	assert.Equal(t, Excess1000, e)
	_, err = ParseExcessBand("750")
	assert.Error(t, err)
}

func TestBandsFromInt(t *testing.T) {
	n, err := NCDBandFromInt(40)
	require.NoError(t, err)
	assert.Equal(t, NCD40, n)
	_, err = NCDBandFromInt(37)
	assert.Error(t, err)
	_, err = NCDBandFromInt(-10)
	assert.Error(t, err)

	e, err := ExcessBandFromInt(250)
	require.NoError(t, err)
	assert.Equal(t, Excess250, e)
	_, err = ExcessBandFromInt(300)
	assert.Error(t, err)
}

func TestOrdinals(t *testing.T) {
	assert.Less(t, BMINormal.Ordinal(), BMIOverweight.Ordinal())
	assert.Less(t, BMIOverweight.Ordinal(), BMIObese.Ordinal())
	assert.Less(t, PlanBudget.Ordinal(), PlanStandard.Ordinal())
	assert.Less(t, PlanStandard.Ordinal(), PlanPremium.Ordinal())
}

func TestNCDPercent(t *testing.T) {
	assert.InDelta(t, 0.30, NCD30.Percent(), 1e-9)
	assert.Zero(t, NCD0.Percent())
}
