package demand

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"pricing-lab/internal/domain"
)

// Fitting errors.
var (
	// ErrNoTrainingData is returned when fitting on an empty quote history.
	ErrNoTrainingData = errors.New("demand: no training data")

	// ErrDegenerateLabels is returned when every quote in the training set
	// has the same outcome; a logistic model cannot separate anything.
	ErrDegenerateLabels = errors.New("demand: all training outcomes identical")

	// ErrFitFailed is returned when the optimizer does not converge.
	ErrFitFailed = errors.New("demand: model fit failed")
)

// featureNames lists the model's design-matrix columns in order.
var featureNames = []string{"intercept", "rel_price", "age", "tenure", "plan_standard", "plan_premium"}

// Model is a logistic regression of quote acceptance on relative price and
// policy attributes. Immutable after fitting, so Score is safe for
// concurrent use by the optimizer.
type Model struct {
	coef []float64
}

// features encodes one (relative price, policy) pair. The relative price is
// a free input so the optimizer can re-score the same policy at every grid
// point without resimulating noise.
func features(relPrice float64, p *domain.PolicyRecord) []float64 {
	row := make([]float64, len(featureNames))
	row[0] = 1.0
	row[1] = relPrice
	row[2] = float64(p.Age)
	row[3] = p.Tenure
	switch p.Plan {
	case domain.PlanStandard:
		row[4] = 1.0
	case domain.PlanPremium:
		row[5] = 1.0
	}
	return row
}

// Fit trains the acceptance model on historical (or simulated) quotes.
// policies[i] must correspond to quotes[i].
func Fit(policies []*domain.PolicyRecord, quotes []domain.DemandQuote) (*Model, error) {
	if len(policies) == 0 || len(policies) != len(quotes) {
		return nil, ErrNoTrainingData
	}

	rows := make([][]float64, len(policies))
	labels := make([]float64, len(policies))
	accepted := 0
	for i, p := range policies {
		rows[i] = features(quotes[i].RelPrice, p)
		if quotes[i].Accepted {
			labels[i] = 1.0
			accepted++
		}
	}
	if accepted == 0 || accepted == len(quotes) {
		return nil, ErrDegenerateLabels
	}

	coef, err := fitLogistic(rows, labels)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}
	return &Model{coef: coef}, nil
}

// Score returns the acceptance probability for a policy quoted at the given
// relative price. Always in [0, 1].
func (m *Model) Score(relPrice float64, p *domain.PolicyRecord) float64 {
	return sigmoid(dot(m.coef, features(relPrice, p)))
}

// Coefficients returns the fitted coefficients keyed by feature name.
func (m *Model) Coefficients() map[string]float64 {
	out := make(map[string]float64, len(m.coef))
	for i, name := range featureNames {
		out[name] = m.coef[i]
	}
	return out
}

// fitLogistic minimizes the logistic negative log-likelihood with an
// analytic gradient.
func fitLogistic(rows [][]float64, y []float64) ([]float64, error) {
	dim := len(rows[0])

	problem := optimize.Problem{
		Func: func(theta []float64) float64 {
			nll := 0.0
			for i, row := range rows {
				eta := dot(theta, row)
				// log(1 + exp(eta)) - y*eta, computed stably.
				if eta > 0 {
					nll += eta + math.Log1p(math.Exp(-eta)) - y[i]*eta
				} else {
					nll += math.Log1p(math.Exp(eta)) - y[i]*eta
				}
			}
			return nll
		},
		Grad: func(grad, theta []float64) {
			for j := range grad {
				grad[j] = 0
			}
			for i, row := range rows {
				resid := sigmoid(dot(theta, row)) - y[i]
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

// dot computes the inner product of two equal-length vectors.
func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
