package risk

import (
	"errors"
	"fmt"
	"math"

	"pricing-lab/internal/domain"
)

// ErrNoClaimants is returned when severity training finds no policy with at
// least one claim. Fitting must fail explicitly rather than extrapolate from
// nothing.
var ErrNoClaimants = errors.New("risk: no policies with claims in severity training set")

// SeverityModel regresses log per-claim severity on policy attributes over
// claimants only. Immutable after fitting.
type SeverityModel struct {
	coef []float64
}

// FitSeverity fits the per-claim severity model. Only policies with
// NumClaims > 0 contribute; their observed severity is Incurred / NumClaims.
func FitSeverity(policies []*domain.PolicyRecord) (*SeverityModel, error) {
	var claimants []*domain.PolicyRecord
	for _, p := range policies {
		if p.NumClaims > 0 {
			claimants = append(claimants, p)
		}
	}
	if len(claimants) == 0 {
		return nil, ErrNoClaimants
	}

	x := designMatrix(claimants)
	y := make([]float64, len(claimants))
	for i, p := range claimants {
		sev := p.Incurred / float64(p.NumClaims)
		// Log response stabilizes the heavy right tail.
		y[i] = math.Log(math.Max(sev, 1.0))
	}

	coef, err := solveOLS(x, y)
	if err != nil {
		return nil, fmt.Errorf("%w: severity model: %v", ErrFitFailed, err)
	}
	return &SeverityModel{coef: coef}, nil
}

// Predict returns the expected per-claim severity, clipped at 1.
func (m *SeverityModel) Predict(p *domain.PolicyRecord) float64 {
	sev := math.Exp(dot(m.coef, Features(p)))
	if sev < 1.0 || math.IsNaN(sev) {
		return 1.0
	}
	return sev
}

// Coefficients returns a copy of the fitted coefficients, ordered as
// FeatureNames.
func (m *SeverityModel) Coefficients() []float64 {
	out := make([]float64, len(m.coef))
	copy(out, m.coef)
	return out
}
