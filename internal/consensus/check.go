package consensus

import (
	"fmt"
	"math"
)

// #region check-types

// CheckMetric is one integrity measurement over an advisory signal.
type CheckMetric struct {
	Name  string
	Value float64
	Pass  bool
}

// CheckResult aggregates signal integrity checks.
type CheckResult struct {
	Passed  bool
	Metrics []CheckMetric
	Reason  string
}

// #endregion check-types

// #region check

const probabilitySumTolerance = 1e-9

// Check validates an advisory signal's internal consistency: consensus level
// in range, probabilities normalized, outlier attributed to a known core, and
// the recommendation reproducible from consensus level and outlier flag
// alone. Used by the replay harness and tests; production code trusts the
// advisor.
func Check(signal AdvisorySignal) CheckResult {
	var metrics []CheckMetric
	passed := true
	var failReasons []string

	consensusPass := signal.ConsensusLevel >= 0 && signal.ConsensusLevel <= 1
	metrics = append(metrics, CheckMetric{Name: "consensus_level_range", Value: signal.ConsensusLevel, Pass: consensusPass})
	if !consensusPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("consensus level %.4f outside [0,1]", signal.ConsensusLevel))
	}

	if len(signal.SoftmaxProbabilities) > 0 {
		var sum float64
		inRange := true
		for _, p := range signal.SoftmaxProbabilities {
			sum += p.Probability
			if p.Probability < 0 || p.Probability > 1 {
				inRange = false
			}
		}
		sumPass := math.Abs(sum-1) <= probabilitySumTolerance
		metrics = append(metrics, CheckMetric{Name: "probability_sum", Value: sum, Pass: sumPass})
		if !sumPass {
			passed = false
			failReasons = append(failReasons, fmt.Sprintf("probability sum %.12f != 1", sum))
		}
		metrics = append(metrics, CheckMetric{Name: "probability_range", Value: boolMetric(inRange), Pass: inRange})
		if !inRange {
			passed = false
			failReasons = append(failReasons, "probability outside [0,1]")
		}
	}

	if signal.OutlierDetected != "" {
		known := false
		for _, p := range signal.SoftmaxProbabilities {
			if p.CoreName == signal.OutlierDetected {
				known = true
				break
			}
		}
		metrics = append(metrics, CheckMetric{Name: "outlier_attributed", Value: boolMetric(known), Pass: known})
		if !known {
			passed = false
			failReasons = append(failReasons, fmt.Sprintf("outlier %q is not an input core", signal.OutlierDetected))
		}
	}

	expected := mapRecommendation(signal.ConsensusLevel, signal.OutlierDetected != "")
	recPass := signal.Recommendation == expected
	metrics = append(metrics, CheckMetric{Name: "recommendation_reproducible", Value: boolMetric(recPass), Pass: recPass})
	if !recPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("recommendation %s, thresholds say %s", signal.Recommendation, expected))
	}

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("check failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("check failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return CheckResult{Passed: passed, Metrics: metrics, Reason: reason}
}

func boolMetric(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// #endregion check
