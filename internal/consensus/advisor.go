// Package consensus turns a set of peer verdicts into a single advisory
// signal: softmax-weighted aggregation, IQR outlier detection, clustering
// classification, and a recommendation drawn from fixed thresholds. The
// advisor is pure and stateless; same ordered input, same output, always.
package consensus

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cali-systems/core4-advisory/go-advisor/internal/verdict"
)

// #region config

// Config holds the advisor's tunables.
type Config struct {
	// Temperature scales confidences before softmax. 1.0 preserves the
	// standard weighting; higher values flatten the distribution.
	Temperature float64
}

// DefaultConfig returns the standard advisor configuration.
func DefaultConfig() Config {
	return Config{Temperature: 1.0}
}

// #endregion config

// #region advisor

// Advisor computes consensus advisories. It holds configuration only — no
// history, no randomness, no I/O.
type Advisor struct {
	config Config
}

// NewAdvisor creates an advisor with the given configuration.
func NewAdvisor(config Config) *Advisor {
	if config.Temperature <= 0 {
		config.Temperature = 1.0
	}
	return &Advisor{config: config}
}

// #endregion advisor

// #region thresholds

const (
	proceedThreshold           = 0.90
	proceedCautiouslyThreshold = 0.75
	pauseAndVerifyThreshold    = 0.60
	outlierPriorityThreshold   = 0.80

	// Consensus level blend: softmax mass on the dominant verdict's cores
	// weighted against the plain agreement rate.
	massWeight  = 0.6
	agreeWeight = 0.4

	unanimousSpreadBand = 0.10
	strongSpreadCap     = 0.30
	comparableBand      = 0.15
)

// #endregion thresholds

// #region process

// Process computes an advisory signal from the given verdicts. An empty
// input is a legitimate "no consensus possible" case, not an error.
func (a *Advisor) Process(verdicts []verdict.Verdict) AdvisorySignal {
	if len(verdicts) == 0 {
		return AdvisorySignal{
			DominantVerdict:      "",
			SoftmaxProbabilities: nil,
			OutlierDetected:      "",
			ConfidenceClustering: ClusteringConflicted,
			ConsensusLevel:       0,
			Recommendation:       EscalateToReview,
			Distribution:         map[string]int{},
			Explanation:          "no verdicts received; no consensus possible",
		}
	}

	confidences := make([]float64, len(verdicts))
	for i, v := range verdicts {
		confidences[i] = sanitize(v.Confidence)
	}

	weights := softmax(confidences, a.config.Temperature)
	probs := make([]CoreProbability, len(verdicts))
	for i, v := range verdicts {
		probs[i] = CoreProbability{CoreName: v.CoreName, Probability: weights[i]}
	}

	// Dominant verdict: highest raw confidence, first occurrence on ties.
	dominantIdx := 0
	for i, c := range confidences[1:] {
		if c > confidences[dominantIdx] {
			dominantIdx = i + 1
		}
	}
	dominant := verdicts[dominantIdx].Assertion

	agreeing := 0
	distribution := make(map[string]int, len(verdicts))
	groupMass := make(map[string]float64, len(verdicts))
	for i, v := range verdicts {
		distribution[v.Assertion]++
		groupMass[v.Assertion] += weights[i]
		if v.Assertion == dominant {
			agreeing++
		}
	}
	dominantMass := groupMass[dominant]
	agreeRate := float64(agreeing) / float64(len(verdicts))

	consensus := clamp01(massWeight*dominantMass + agreeWeight*agreeRate)

	outlier := ""
	if idx, found := detectOutlierIQR(confidences); found {
		outlier = verdicts[idx].CoreName
	}

	clustering := classifyClustering(agreeRate, spread(confidences))
	recommendation := mapRecommendation(consensus, outlier != "")

	return AdvisorySignal{
		DominantVerdict:      dominant,
		SoftmaxProbabilities: probs,
		OutlierDetected:      outlier,
		ConfidenceClustering: clustering,
		ConsensusLevel:       consensus,
		Recommendation:       recommendation,
		Distribution:         distribution,
		Explanation:          explain(consensus, dominant, distribution, outlier, clustering, groupMass),
	}
}

// #endregion process

// #region clustering-classifier

// classifyClustering buckets distribution cohesion from the agreement rate
// against the dominant verdict and the raw confidence spread.
func classifyClustering(agreeRate, confSpread float64) Clustering {
	switch {
	case agreeRate == 1 && confSpread <= unanimousSpreadBand:
		return ClusteringUnanimous
	case agreeRate >= 0.75 && confSpread <= strongSpreadCap:
		return ClusteringStrong
	case agreeRate >= 0.60:
		return ClusteringModerate
	case confSpread <= comparableBand:
		// Verdicts disagree while confidences stay comparable: a genuine
		// split council rather than a noisy one.
		return ClusteringConflicted
	default:
		return ClusteringFragmented
	}
}

// #endregion clustering-classifier

// #region recommendation-mapping

// mapRecommendation applies the fixed advisory thresholds. It depends on
// consensus level and the outlier flag alone; no other state influences it.
func mapRecommendation(consensus float64, outlier bool) Recommendation {
	switch {
	case outlier && consensus >= outlierPriorityThreshold:
		// A single confident-but-anomalous peer warrants investigation even
		// when aggregate consensus looks strong.
		return OutlierInvestigation
	case consensus >= proceedThreshold:
		return Proceed
	case consensus >= proceedCautiouslyThreshold:
		return ProceedCautiously
	case consensus >= pauseAndVerifyThreshold:
		return PauseAndVerify
	default:
		return EscalateToReview
	}
}

// #endregion recommendation-mapping

// #region explanation

// explain builds a deterministic human-readable summary. Distribution keys
// are sorted so identical inputs always produce identical text.
func explain(consensus float64, dominant string, distribution map[string]int, outlier string, clustering Clustering, groupMass map[string]float64) string {
	var parts []string

	switch {
	case consensus >= 0.95:
		parts = append(parts, "unanimous consensus")
	case consensus >= 0.80:
		parts = append(parts, "strong consensus")
	case consensus >= 0.60:
		parts = append(parts, "moderate consensus")
	case consensus >= 0.40:
		parts = append(parts, "fragmented opinions")
	default:
		parts = append(parts, "significant disagreement")
	}

	parts = append(parts, fmt.Sprintf("dominant verdict: %s (%.1f%%)", dominant, consensus*100))

	keys := make([]string, 0, len(distribution))
	for k := range distribution {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	counts := make([]string, 0, len(keys))
	for _, k := range keys {
		counts = append(counts, fmt.Sprintf("%s:%d", k, distribution[k]))
	}
	parts = append(parts, fmt.Sprintf("distribution (%s)", strings.Join(counts, ", ")))

	parts = append(parts, fmt.Sprintf("clustering: %s", clustering))

	// Entropy over per-verdict mass, not per-core weight: four aligned cores
	// are one concentrated group, not four-way uncertainty.
	masses := make([]float64, 0, len(groupMass))
	for _, k := range keys {
		masses = append(masses, groupMass[k])
	}
	if entropy := normalizedEntropy(masses); entropy > 0.7 {
		parts = append(parts, "high uncertainty (split council)")
	}

	if outlier != "" {
		parts = append(parts, fmt.Sprintf("outlier detected: %s", outlier))
	}

	return strings.Join(parts, "; ")
}

// #endregion explanation
