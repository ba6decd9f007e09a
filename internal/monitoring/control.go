package monitoring

import "gonum.org/v1/gonum/stat"

// DefaultControlK is the standard Shewhart control-limit width.
const DefaultControlK = 3.0

// ControlLimits returns mean +/- k standard deviations over the series.
// This is a plain Shewhart chart, not CUSUM or EWMA.
func ControlLimits(series []float64, k float64) (lower, upper float64) {
	mean := stat.Mean(series, nil)
	std := stat.StdDev(series, nil)
	return mean - k*std, mean + k*std
}

// FlagOutOfControl marks values outside the control limits.
func FlagOutOfControl(series []float64, k float64) []bool {
	lower, upper := ControlLimits(series, k)
	flags := make([]bool, len(series))
	for i, v := range series {
		flags[i] = v < lower || v > upper
	}
	return flags
}

// OutOfControlShare is the fraction of flagged values; 0 for empty input.
func OutOfControlShare(series []float64, k float64) float64 {
	if len(series) == 0 {
		return 0
	}
	count := 0
	for _, flagged := range FlagOutOfControl(series, k) {
		if flagged {
			count++
		}
	}
	return float64(count) / float64(len(series))
}

// MovingAverage returns the trailing mean over a fixed window. The first
// window-1 positions have no full window and are NaN-free zeros skipped by
// callers; positions from window-1 on hold the mean of the preceding window
// values.
func MovingAverage(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	if window <= 0 {
		return out
	}
	sum := 0.0
	for i, v := range series {
		sum += v
		if i >= window {
			sum -= series[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}
