package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"pricing-lab/internal/domain"
)

// glmFeatureNames lists the columns of the diagnostic burn-cost GLM. A
// deliberately small, interpretable subset of the full feature set.
var glmFeatureNames = []string{"intercept", "age", "tenure", "smoker", "ncd", "excess"}

// BurnCostGLM is a log-linear decomposition of the burn cost produced by the
// frequency/severity pair. It exists for audit: pricing never consumes it.
type BurnCostGLM struct {
	coef []float64
}

// FitBurnCostGLM regresses log1p(burn cost) on the interpretable feature
// subset. Burn costs are clipped non-negative before the transform.
func FitBurnCostGLM(policies []*domain.PolicyRecord, burnCosts []float64) (*BurnCostGLM, error) {
	if len(policies) == 0 || len(policies) != len(burnCosts) {
		return nil, fmt.Errorf("%w: burn cost glm", ErrNoTrainingData)
	}

	x := mat.NewDense(len(policies), len(glmFeatureNames), nil)
	y := make([]float64, len(policies))
	for i, p := range policies {
		smoker := 0.0
		if p.Smoker == domain.SmokerYes {
			smoker = 1.0
		}
		x.SetRow(i, []float64{
			1.0,
			float64(p.Age),
			math.Min(p.Tenure, 50),
			smoker,
			float64(p.NCD),
			float64(p.Excess),
		})

		bc := burnCosts[i]
		if bc < 0 || math.IsNaN(bc) || math.IsInf(bc, 0) {
			bc = 0
		}
		y[i] = math.Log1p(bc)
	}

	coef, err := solveOLS(x, y)
	if err != nil {
		return nil, fmt.Errorf("%w: burn cost glm: %v", ErrFitFailed, err)
	}
	return &BurnCostGLM{coef: coef}, nil
}

// Coefficients returns the fitted coefficients keyed by feature name.
func (m *BurnCostGLM) Coefficients() map[string]float64 {
	out := make(map[string]float64, len(m.coef))
	for i, name := range glmFeatureNames {
		out[name] = m.coef[i]
	}
	return out
}
