package domain

// ScenarioConfig represents market/operating scenario shocks. Each factor is
// a multiplier applied to the matching stage output before optimization.
type ScenarioConfig struct {
	ScenarioID      string  // "base" | "medical_inflation" | "price_war" | "combined_shock"
	ClaimsInflation float64 // multiplies incurred claims
	DemandShock     float64 // divides the reference market price
	ExpenseChange   float64 // multiplies per-policy expenses
}

// Scenario ID constants
const (
	ScenarioBase             = "base"
	ScenarioMedicalInflation = "medical_inflation"
	ScenarioPriceWar         = "price_war"
	ScenarioCombinedShock    = "combined_shock"
)

// Predefined scenario configurations
var (
	ScenarioConfigBase = ScenarioConfig{
		ScenarioID:      ScenarioBase,
		ClaimsInflation: 1.00,
		DemandShock:     1.00,
		ExpenseChange:   1.00,
	}

	ScenarioConfigMedicalInflation = ScenarioConfig{
		ScenarioID:      ScenarioMedicalInflation,
		ClaimsInflation: 1.15,
		DemandShock:     1.00,
		ExpenseChange:   1.00,
	}

	ScenarioConfigPriceWar = ScenarioConfig{
		ScenarioID:      ScenarioPriceWar,
		ClaimsInflation: 1.00,
		DemandShock:     1.15,
		ExpenseChange:   1.00,
	}

	ScenarioConfigCombinedShock = ScenarioConfig{
		ScenarioID:      ScenarioCombinedShock,
		ClaimsInflation: 1.10,
		DemandShock:     1.15,
		ExpenseChange:   1.10,
	}
)

// AllScenarios returns the predefined scenarios in a fixed order.
func AllScenarios() []ScenarioConfig {
	return []ScenarioConfig{
		ScenarioConfigBase,
		ScenarioConfigMedicalInflation,
		ScenarioConfigPriceWar,
		ScenarioConfigCombinedShock,
	}
}
