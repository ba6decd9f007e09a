package domain

import (
	"fmt"
	"strconv"
)

// Smoker represents the smoker flag on a policy.
type Smoker string

// Smoker constants.
const (
	SmokerNo  Smoker = "N"
	SmokerYes Smoker = "Y"
)

// BMICategory is the ordered body-mass category.
type BMICategory string

// BMI category constants, ordered from lightest to heaviest.
const (
	BMIUnderweight BMICategory = "Underweight"
	BMINormal      BMICategory = "Normal"
	BMIOverweight  BMICategory = "Overweight"
	BMIObese       BMICategory = "Obese"
)

// bmiOrdinals maps each BMI category to its ordinal position.
var bmiOrdinals = map[BMICategory]int{
	BMIUnderweight: 0,
	BMINormal:      1,
	BMIOverweight:  2,
	BMIObese:       3,
}

// Ordinal returns the ordered position of the category.
func (b BMICategory) Ordinal() int { return bmiOrdinals[b] }

// Plan is the ordered product tier.
type Plan string

// Plan tier constants.
const (
	PlanBudget   Plan = "Budget"
	PlanStandard Plan = "Standard"
	PlanPremium  Plan = "Premium"
)

// planOrdinals maps each plan tier to its ordinal position.
var planOrdinals = map[Plan]int{
	PlanBudget:   0,
	PlanStandard: 1,
	PlanPremium:  2,
}

// Ordinal returns the ordered position of the tier.
func (p Plan) Ordinal() int { return planOrdinals[p] }

// NCDBand is the no-claims-discount band, coded as an integer percentage.
type NCDBand int

// NCD band constants.
const (
	NCD0  NCDBand = 0
	NCD10 NCDBand = 10
	NCD20 NCDBand = 20
	NCD30 NCDBand = 30
	NCD40 NCDBand = 40
	NCD50 NCDBand = 50
)

// Percent returns the band as a fraction of 1 (e.g. NCD30 -> 0.30).
func (n NCDBand) Percent() float64 { return float64(n) / 100.0 }

// ExcessBand is the voluntary excess band, coded as an integer currency amount.
type ExcessBand int

// Excess band constants.
const (
	Excess0    ExcessBand = 0
	Excess250  ExcessBand = 250
	Excess500  ExcessBand = 500
	Excess1000 ExcessBand = 1000
	Excess2000 ExcessBand = 2000
)

// ParseSmoker parses a smoker flag code. Returns an error on unknown codes.
func ParseSmoker(code string) (Smoker, error) {
	switch Smoker(code) {
	case SmokerNo, SmokerYes:
		return Smoker(code), nil
	}
	return "", fmt.Errorf("unknown smoker code %q", code)
}

// ParseBMICategory parses a BMI category code. Returns an error on unknown codes.
func ParseBMICategory(code string) (BMICategory, error) {
	if _, ok := bmiOrdinals[BMICategory(code)]; !ok {
		return "", fmt.Errorf("unknown bmi category %q", code)
	}
	return BMICategory(code), nil
}

// ParsePlan parses a plan tier code. Returns an error on unknown codes.
func ParsePlan(code string) (Plan, error) {
	if _, ok := planOrdinals[Plan(code)]; !ok {
		return "", fmt.Errorf("unknown plan tier %q", code)
	}
	return Plan(code), nil
}

// NCDBandFromInt validates an integer percentage against the known NCD bands.
func NCDBandFromInt(v int) (NCDBand, error) {
	switch b := NCDBand(v); b {
	case NCD0, NCD10, NCD20, NCD30, NCD40, NCD50:
		return b, nil
	}
	return 0, fmt.Errorf("unknown ncd band %d", v)
}

// ParseNCDBand parses an NCD band code such as "30".
func ParseNCDBand(code string) (NCDBand, error) {
	v, err := strconv.Atoi(code)
	if err != nil {
		return 0, fmt.Errorf("unknown ncd band %q", code)
	}
	b, err := NCDBandFromInt(v)
	if err != nil {
		return 0, fmt.Errorf("unknown ncd band %q", code)
	}
	return b, nil
}

// ExcessBandFromInt validates an integer amount against the known excess bands.
func ExcessBandFromInt(v int) (ExcessBand, error) {
	switch b := ExcessBand(v); b {
	case Excess0, Excess250, Excess500, Excess1000, Excess2000:
		return b, nil
	}
	return 0, fmt.Errorf("unknown excess band %d", v)
}

// ParseExcessBand parses an excess band code such as "1000".
func ParseExcessBand(code string) (ExcessBand, error) {
	v, err := strconv.Atoi(code)
	if err != nil {
		return 0, fmt.Errorf("unknown excess band %q", code)
	}
	b, err := ExcessBandFromInt(v)
	if err != nil {
		return 0, fmt.Errorf("unknown excess band %q", code)
	}
	return b, nil
}

// PolicyRecord holds the immutable per-policy attributes of one portfolio
// member, plus claim experience appended once by the claims simulator or an
// external ingestion step. Attributes are never mutated after creation.
type PolicyRecord struct {
	PolicyID string
	Age      int     // [0, 100]
	Gender   string  // "M" | "F"
	Region   string  // UK region label
	Tenure   float64 // years with the insurer, [0, 30]
	Smoker   Smoker
	BMI      BMICategory
	Plan     Plan
	NCD      NCDBand
	Excess   ExcessBand

	// Claim experience for the exposure period. Derived, set once.
	NumClaims int
	Incurred  float64
}
