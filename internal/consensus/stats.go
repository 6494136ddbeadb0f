package consensus

import (
	"math"
	"sort"
)

// #region softmax

// softmax computes a numerically stable softmax over confidences divided by
// temperature, preserving input order. Non-finite inputs are sanitized
// (NaN→0, +Inf→1, −Inf→0) rather than propagated. Identical inputs yield an
// exactly uniform distribution.
func softmax(confidences []float64, temperature float64) []float64 {
	n := len(confidences)
	if n == 0 {
		return nil
	}
	if temperature <= 0 {
		temperature = 1.0
	}

	scaled := make([]float64, n)
	for i, c := range confidences {
		scaled[i] = sanitize(c) / temperature
	}

	maxVal, minVal := scaled[0], scaled[0]
	for _, v := range scaled[1:] {
		if v > maxVal {
			maxVal = v
		}
		if v < minVal {
			minVal = v
		}
	}
	if maxVal == minVal {
		uniform := make([]float64, n)
		for i := range uniform {
			uniform[i] = 1.0 / float64(n)
		}
		return uniform
	}

	exps := make([]float64, n)
	var sum float64
	for i, v := range scaled {
		exps[i] = math.Exp(v - maxVal)
		sum += exps[i]
	}
	for i := range exps {
		exps[i] /= sum
	}
	return exps
}

func sanitize(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return 1
	case math.IsInf(v, -1):
		return 0
	default:
		return v
	}
}

// #endregion softmax

// #region outlier

const (
	iqrFenceFactor = 1.5
	// With fewer than minSamplesForIQR values the IQR is unstable, so the
	// test stays permissive: only a raw spread this extreme flags anything.
	minSamplesForIQR         = 4
	extremeSmallSampleSpread = 0.8
)

// detectOutlierIQR applies the interquartile-range test over raw confidence
// values and returns the index of the most extreme deviant from the median.
func detectOutlierIQR(confidences []float64) (int, bool) {
	n := len(confidences)
	if n < 2 {
		return 0, false
	}

	sorted := append([]float64(nil), confidences...)
	sort.Float64s(sorted)
	median := percentile(sorted, 50)

	if n < minSamplesForIQR {
		if sorted[n-1]-sorted[0] < extremeSmallSampleSpread {
			return 0, false
		}
		return farthestFrom(confidences, median), true
	}

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1
	lower := q1 - iqrFenceFactor*iqr
	upper := q3 + iqrFenceFactor*iqr

	best := -1
	bestDeviation := 0.0
	for i, v := range confidences {
		if v >= lower && v <= upper {
			continue
		}
		deviation := math.Abs(v - median)
		if best == -1 || deviation > bestDeviation {
			best = i
			bestDeviation = deviation
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// percentile computes the p-th percentile of a sorted slice using linear
// interpolation between closest ranks.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func farthestFrom(values []float64, center float64) int {
	best := 0
	bestDeviation := math.Abs(values[0] - center)
	for i, v := range values[1:] {
		if d := math.Abs(v - center); d > bestDeviation {
			best = i + 1
			bestDeviation = d
		}
	}
	return best
}

// #endregion outlier

// #region entropy

// normalizedEntropy computes Shannon entropy of a probability distribution
// scaled to [0,1]: 0 means all mass on one element, 1 means uniform.
func normalizedEntropy(probs []float64) float64 {
	var entropy float64
	count := 0
	for _, p := range probs {
		if p <= 0 {
			continue
		}
		entropy -= p * math.Log2(p)
		count++
	}
	if count <= 1 {
		return 0
	}
	return entropy / math.Log2(float64(count))
}

// #endregion entropy

// #region helpers

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func spread(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return maxVal - minVal
}

// #endregion helpers
