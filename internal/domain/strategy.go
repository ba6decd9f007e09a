package domain

// StrategyConfig represents one pricing strategy: the commercial knobs a
// pricing committee can turn. All fields are numeric multipliers/thresholds
// with documented valid ranges, enforced by config validation.
type StrategyConfig struct {
	StrategyID string

	ProfitMargin           float64 // loading on expected burn cost, >= 0
	MaxCap                 float64 // max allowed price increase vs previous, > 0
	MinCollar              float64 // max allowed price decrease vs previous, < 0
	MaxDiscount            float64 // cap on the summed commercial discount, [0, 1]
	UnderwritingStrictness float64 // 1.0 = standard rules; >1 tightens, <1 relaxes
	DemandShockFactor      float64 // acceptance assumption, divides market price
	ExpenseMultiplier      float64 // scales per-policy expenses
}

// Strategy ID constants
const (
	StrategyBaseID         = "base"
	StrategyAggressiveID   = "aggressive"
	StrategyConservativeID = "conservative"
)

// Predefined pricing strategies
var (
	StrategyBase = StrategyConfig{
		StrategyID:             StrategyBaseID,
		ProfitMargin:           0.20,
		MaxCap:                 0.25,
		MinCollar:              -0.15,
		MaxDiscount:            0.25,
		UnderwritingStrictness: 1.0,
		DemandShockFactor:      1.0,
		ExpenseMultiplier:      1.0,
	}

	StrategyAggressive = StrategyConfig{
		StrategyID:             StrategyAggressiveID,
		ProfitMargin:           0.30,
		MaxCap:                 0.40,
		MinCollar:              -0.10,
		MaxDiscount:            0.15,
		UnderwritingStrictness: 0.9,
		DemandShockFactor:      1.1,
		ExpenseMultiplier:      1.0,
	}

	StrategyConservative = StrategyConfig{
		StrategyID:             StrategyConservativeID,
		ProfitMargin:           0.15,
		MaxCap:                 0.15,
		MinCollar:              -0.20,
		MaxDiscount:            0.35,
		UnderwritingStrictness: 1.2,
		DemandShockFactor:      0.95,
		ExpenseMultiplier:      1.05,
	}
)

// AllStrategies returns the predefined strategies in a fixed order.
func AllStrategies() []StrategyConfig {
	return []StrategyConfig{StrategyBase, StrategyAggressive, StrategyConservative}
}
