package monitoring

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"pricing-lab/internal/domain"
)

// Drift errors.
var (
	// ErrEmptyPopulation is returned when either population has no policies.
	ErrEmptyPopulation = errors.New("monitoring: empty population for drift test")
)

// DetectDrift runs a two-sample Kolmogorov-Smirnov test per feature between
// a reference population and the current one and returns a p-value per
// feature. Low p-values are evidence of drift; thresholding is the caller's
// call, not the engine's.
func DetectDrift(reference, current []*domain.PolicyRecord, features []string) (map[string]float64, error) {
	if len(reference) == 0 || len(current) == 0 {
		return nil, ErrEmptyPopulation
	}

	out := make(map[string]float64, len(features))
	for _, name := range features {
		ref, err := featureColumn(reference, name)
		if err != nil {
			return nil, err
		}
		cur, err := featureColumn(current, name)
		if err != nil {
			return nil, err
		}

		sort.Float64s(ref)
		sort.Float64s(cur)
		d := stat.KolmogorovSmirnov(ref, nil, cur, nil)
		out[name] = ksPValue(d, len(ref), len(cur))
	}
	return out, nil
}

// featureColumn extracts one numeric feature column. Ordered categoricals
// use their ordinal levels.
func featureColumn(policies []*domain.PolicyRecord, name string) ([]float64, error) {
	col := make([]float64, len(policies))
	for i, p := range policies {
		switch name {
		case "age":
			col[i] = float64(p.Age)
		case "tenure":
			col[i] = p.Tenure
		case "smoker":
			if p.Smoker == domain.SmokerYes {
				col[i] = 1
			}
		case "bmi":
			col[i] = float64(p.BMI.Ordinal())
		case "plan":
			col[i] = float64(p.Plan.Ordinal())
		case "ncd":
			col[i] = float64(p.NCD)
		case "excess":
			col[i] = float64(p.Excess)
		case "incurred":
			col[i] = p.Incurred
		default:
			return nil, fmt.Errorf("monitoring: unknown drift feature %q", name)
		}
	}
	return col, nil
}

// ksPValue approximates the two-sided p-value for a two-sample KS statistic
// using the asymptotic Kolmogorov distribution.
func ksPValue(d float64, n1, n2 int) float64 {
	if d <= 0 {
		return 1.0
	}

	ne := float64(n1) * float64(n2) / float64(n1+n2)
	sqrtNe := math.Sqrt(ne)
	lambda := (sqrtNe + 0.12 + 0.11/sqrtNe) * d

	// Alternating series for Q_KS(lambda); converges in a handful of terms.
	sum := 0.0
	sign := 1.0
	for j := 1; j <= 100; j++ {
		term := sign * math.Exp(-2.0*lambda*lambda*float64(j)*float64(j))
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
		sign = -sign
	}

	p := 2.0 * sum
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
