package risk

import (
	"runtime"
	"sync"

	"pricing-lab/internal/domain"
)

// Estimator combines the fitted frequency and severity models into a burn
// cost per policy. The fitted models are immutable, so Estimate is safe to
// call from many goroutines at once.
type Estimator struct {
	freq *FrequencyModel
	sev  *SeverityModel
}

// Fit trains both sub-models on the portfolio's claims experience.
func Fit(policies []*domain.PolicyRecord) (*Estimator, error) {
	freq, err := FitFrequency(policies)
	if err != nil {
		return nil, err
	}
	sev, err := FitSeverity(policies)
	if err != nil {
		return nil, err
	}
	return &Estimator{freq: freq, sev: sev}, nil
}

// Estimate produces the risk profile for one policy.
// Burn cost is frequency x severity, both clipped non-negative.
func (e *Estimator) Estimate(p *domain.PolicyRecord) domain.RiskProfile {
	freq := e.freq.Predict(p)
	sev := e.sev.Predict(p)
	return domain.RiskProfile{
		PolicyID:  p.PolicyID,
		Frequency: freq,
		Severity:  sev,
		BurnCost:  freq * sev,
	}
}

// EstimateAll scores the whole portfolio in parallel. Each worker writes a
// disjoint index range, so no locking is needed; output order matches input
// order.
func (e *Estimator) EstimateAll(policies []*domain.PolicyRecord) []domain.RiskProfile {
	profiles := make([]domain.RiskProfile, len(policies))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(policies) {
		workers = len(policies)
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (len(policies) + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= len(policies) {
			break
		}
		if end > len(policies) {
			end = len(policies)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				profiles[i] = e.Estimate(policies[i])
			}
		}(start, end)
	}
	wg.Wait()

	return profiles
}

// MeanBurnCost returns the portfolio-average burn cost.
func MeanBurnCost(profiles []domain.RiskProfile) float64 {
	if len(profiles) == 0 {
		return 0
	}
	sum := 0.0
	for _, rp := range profiles {
		sum += rp.BurnCost
	}
	return sum / float64(len(profiles))
}
