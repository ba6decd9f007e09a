// Package risk fits the frequency and severity models and produces expected
// burn cost per policy.
package risk

import (
	"gonum.org/v1/gonum/mat"

	"pricing-lab/internal/domain"
)

// FeatureNames lists the design-matrix columns in order. One-hot columns
// drop the first level (Underweight, Budget) as the reference category.
var FeatureNames = []string{
	"intercept",
	"age",
	"tenure",
	"smoker",
	"bmi_normal",
	"bmi_overweight",
	"bmi_obese",
	"plan_standard",
	"plan_premium",
	"ncd",
	"excess",
}

// Features encodes one policy into a design-matrix row matching FeatureNames.
func Features(p *domain.PolicyRecord) []float64 {
	row := make([]float64, len(FeatureNames))
	row[0] = 1.0
	row[1] = float64(p.Age)
	row[2] = p.Tenure
	if p.Smoker == domain.SmokerYes {
		row[3] = 1.0
	}
	switch p.BMI {
	case domain.BMINormal:
		row[4] = 1.0
	case domain.BMIOverweight:
		row[5] = 1.0
	case domain.BMIObese:
		row[6] = 1.0
	}
	switch p.Plan {
	case domain.PlanStandard:
		row[7] = 1.0
	case domain.PlanPremium:
		row[8] = 1.0
	}
	row[9] = float64(p.NCD)
	row[10] = float64(p.Excess)
	return row
}

// designMatrix stacks feature rows for a policy slice.
func designMatrix(policies []*domain.PolicyRecord) *mat.Dense {
	rows := len(policies)
	cols := len(FeatureNames)
	x := mat.NewDense(rows, cols, nil)
	for i, p := range policies {
		x.SetRow(i, Features(p))
	}
	return x
}

// solveOLS computes least-squares coefficients for y against x via QR.
func solveOLS(x *mat.Dense, y []float64) ([]float64, error) {
	var qr mat.QR
	qr.Factorize(x)

	b := mat.NewVecDense(len(y), y)
	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, b); err != nil {
		return nil, err
	}

	_, cols := x.Dims()
	coef := make([]float64, cols)
	for j := 0; j < cols; j++ {
		coef[j] = beta.At(j, 0)
	}
	return coef, nil
}

// dot computes the inner product of two equal-length vectors.
func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
