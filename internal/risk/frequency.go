package risk

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"pricing-lab/internal/domain"
)

// Fitting errors.
var (
	// ErrNoTrainingData is returned when a model is fitted on an empty set.
	ErrNoTrainingData = errors.New("risk: no training data")

	// ErrFitFailed is returned when the optimizer does not converge.
	ErrFitFailed = errors.New("risk: model fit failed")
)

// FrequencyModel is a Poisson regression (log link) of annual claim counts
// on policy attributes. Immutable after fitting; predictions are pure reads.
type FrequencyModel struct {
	coef []float64
}

// FitFrequency fits the claim-count model on the full portfolio by
// minimizing the Poisson negative log-likelihood.
func FitFrequency(policies []*domain.PolicyRecord) (*FrequencyModel, error) {
	if len(policies) == 0 {
		return nil, fmt.Errorf("%w: frequency model", ErrNoTrainingData)
	}

	rows := make([][]float64, len(policies))
	counts := make([]float64, len(policies))
	for i, p := range policies {
		rows[i] = Features(p)
		counts[i] = float64(p.NumClaims)
	}

	coef, err := fitPoisson(rows, counts)
	if err != nil {
		return nil, fmt.Errorf("%w: frequency model: %v", ErrFitFailed, err)
	}
	return &FrequencyModel{coef: coef}, nil
}

// Predict returns the expected claim count for one policy, clipped at zero.
func (m *FrequencyModel) Predict(p *domain.PolicyRecord) float64 {
	rate := math.Exp(dot(m.coef, Features(p)))
	if rate < 0 || math.IsNaN(rate) {
		return 0
	}
	return rate
}

// Coefficients returns a copy of the fitted coefficients, ordered as
// FeatureNames.
func (m *FrequencyModel) Coefficients() []float64 {
	out := make([]float64, len(m.coef))
	copy(out, m.coef)
	return out
}

// fitPoisson minimizes sum_i exp(x_i . theta) - y_i * (x_i . theta) with
// an analytic gradient.
func fitPoisson(rows [][]float64, y []float64) ([]float64, error) {
	dim := len(rows[0])

	// Linear predictors are capped to keep exp finite on wild iterates.
	const linkCap = 30.0

	problem := optimize.Problem{
		Func: func(theta []float64) float64 {
			nll := 0.0
			for i, row := range rows {
				eta := dot(theta, row)
				if eta > linkCap {
					eta = linkCap
				}
				nll += math.Exp(eta) - y[i]*eta
			}
			return nll
		},
		Grad: func(grad, theta []float64) {
			for j := range grad {
				grad[j] = 0
			}
			for i, row := range rows {
				eta := dot(theta, row)
				if eta > linkCap {
					eta = linkCap
				}
				resid := math.Exp(eta) - y[i]
				for j, v := range row {
					grad[j] += resid * v
				}
			}
		},
	}

	init := make([]float64, dim)
	result, err := optimize.Minimize(problem, init, &optimize.Settings{
		GradientThreshold: 1e-6,
		MajorIterations:   500,
	}, &optimize.LBFGS{})
	if err != nil {
		return nil, err
	}
	return result.X, nil
}
