package consensus

import (
	"math"
	"reflect"
	"testing"

	"github.com/cali-systems/core4-advisory/go-advisor/internal/verdict"
)

func v(core, assertion string, confidence float64) verdict.Verdict {
	return verdict.Verdict{CoreName: core, Assertion: assertion, Confidence: confidence}
}

func TestProcessEmptyInput(t *testing.T) {
	a := NewAdvisor(DefaultConfig())

	signal := a.Process(nil)

	if signal.ConsensusLevel != 0 {
		t.Fatalf("expected consensus 0, got %f", signal.ConsensusLevel)
	}
	if signal.Recommendation != EscalateToReview {
		t.Fatalf("expected escalate, got %s", signal.Recommendation)
	}
	if signal.DominantVerdict != "" {
		t.Fatalf("expected no dominant verdict, got %q", signal.DominantVerdict)
	}
	if signal.OutlierDetected != "" {
		t.Fatalf("expected no outlier, got %q", signal.OutlierDetected)
	}
}

func TestProcessDeterministic(t *testing.T) {
	// Same ordered verdicts twice must yield identical signals.
	a := NewAdvisor(DefaultConfig())
	verdicts := []verdict.Verdict{
		v("KayGee", "approve", 0.94),
		v("ECM", "approve", 0.78),
		v("Caleon", "reject", 0.91),
	}

	first := a.Process(verdicts)
	second := a.Process(verdicts)

	if first.ConsensusLevel != second.ConsensusLevel {
		t.Fatalf("consensus differs: %v vs %v", first.ConsensusLevel, second.ConsensusLevel)
	}
	if first.OutlierDetected != second.OutlierDetected {
		t.Fatalf("outlier differs: %q vs %q", first.OutlierDetected, second.OutlierDetected)
	}
	if first.Recommendation != second.Recommendation {
		t.Fatalf("recommendation differs: %s vs %s", first.Recommendation, second.Recommendation)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("signals are not identical")
	}
}

func TestProcessHighConsensus(t *testing.T) {
	a := NewAdvisor(DefaultConfig())
	verdicts := []verdict.Verdict{
		v("KayGee_1.0", "approve", 0.95),
		v("Cali_X_One", "approve", 0.93),
		v("UMC_Core_ECM", "approve", 0.91),
		v("Caleon_Genesis_1.12", "approve", 0.97),
	}

	signal := a.Process(verdicts)

	if signal.Recommendation != Proceed {
		t.Fatalf("expected proceed, got %s", signal.Recommendation)
	}
	if signal.ConsensusLevel <= 0.90 {
		t.Fatalf("expected consensus > 0.90, got %f", signal.ConsensusLevel)
	}
	if signal.ConfidenceClustering != ClusteringUnanimous {
		t.Fatalf("expected unanimous clustering, got %s", signal.ConfidenceClustering)
	}
	if signal.OutlierDetected != "" {
		t.Fatalf("unexpected outlier %q", signal.OutlierDetected)
	}
}

func TestProcessOutlierWithStrongConsensus(t *testing.T) {
	// Three cores near 0.9 plus one agreeing core at 0.12: the aggregate
	// stays strong but the anomaly must surface.
	a := NewAdvisor(DefaultConfig())
	verdicts := []verdict.Verdict{
		v("KayGee_1.0", "approve", 0.90),
		v("Cali_X_One", "approve", 0.88),
		v("UMC_Core_ECM", "approve", 0.92),
		v("Caleon_Genesis_1.12", "approve", 0.12),
	}

	signal := a.Process(verdicts)

	if signal.DominantVerdict != "approve" {
		t.Fatalf("expected approve, got %q", signal.DominantVerdict)
	}
	if signal.ConsensusLevel < 0.8 {
		t.Fatalf("expected consensus >= 0.8, got %f", signal.ConsensusLevel)
	}
	if signal.OutlierDetected != "Caleon_Genesis_1.12" {
		t.Fatalf("expected Caleon_Genesis_1.12 outlier, got %q", signal.OutlierDetected)
	}
	switch signal.Recommendation {
	case Proceed, ProceedCautiously, OutlierInvestigation:
	default:
		t.Fatalf("unexpected recommendation %s", signal.Recommendation)
	}
}

func TestProcessSoftmaxSumsToOne(t *testing.T) {
	a := NewAdvisor(DefaultConfig())
	verdicts := []verdict.Verdict{
		v("A", "approve", 0.2),
		v("B", "reject", 0.7),
		v("C", "defer", 0.5),
	}

	signal := a.Process(verdicts)

	var sum float64
	for _, p := range signal.SoftmaxProbabilities {
		sum += p.Probability
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("probabilities sum to %f", sum)
	}
	if len(signal.SoftmaxProbabilities) != len(verdicts) {
		t.Fatalf("expected %d probabilities, got %d", len(verdicts), len(signal.SoftmaxProbabilities))
	}
	// Order matches input order.
	for i, p := range signal.SoftmaxProbabilities {
		if p.CoreName != verdicts[i].CoreName {
			t.Fatalf("probability %d attributed to %s, want %s", i, p.CoreName, verdicts[i].CoreName)
		}
	}
}

func TestProcessMonotonicOutlierEscalation(t *testing.T) {
	a := NewAdvisor(DefaultConfig())
	baseline := []verdict.Verdict{
		v("A", "approve", 0.90),
		v("B", "approve", 0.91),
		v("C", "approve", 0.89),
		v("D", "approve", 0.92),
	}

	clean := a.Process(baseline)
	if clean.OutlierDetected != "" {
		t.Fatalf("tight baseline should have no outlier, got %q", clean.OutlierDetected)
	}

	withAnomaly := append(append([]verdict.Verdict(nil), baseline...), v("E", "approve", 0.05))
	anomalous := a.Process(withAnomaly)
	if anomalous.OutlierDetected != "E" {
		t.Fatalf("expected E flagged, got %q", anomalous.OutlierDetected)
	}
}

func TestProcessTieBreakFirstOccurrence(t *testing.T) {
	a := NewAdvisor(DefaultConfig())
	verdicts := []verdict.Verdict{
		v("A", "reject", 0.9),
		v("B", "approve", 0.9),
		v("C", "approve", 0.3),
	}

	signal := a.Process(verdicts)

	if signal.DominantVerdict != "reject" {
		t.Fatalf("tie must break to first occurrence, got %q", signal.DominantVerdict)
	}
}

func TestProcessConflictedClustering(t *testing.T) {
	// Even split with comparable confidences.
	a := NewAdvisor(DefaultConfig())
	verdicts := []verdict.Verdict{
		v("A", "approve", 0.80),
		v("B", "reject", 0.81),
		v("C", "approve", 0.79),
		v("D", "reject", 0.80),
	}

	signal := a.Process(verdicts)

	if signal.ConfidenceClustering != ClusteringConflicted {
		t.Fatalf("expected conflicted, got %s", signal.ConfidenceClustering)
	}
}

func TestProcessFragmentedClustering(t *testing.T) {
	a := NewAdvisor(DefaultConfig())
	verdicts := []verdict.Verdict{
		v("A", "approve", 0.95),
		v("B", "reject", 0.45),
		v("C", "defer", 0.70),
		v("D", "modify", 0.30),
	}

	signal := a.Process(verdicts)

	if signal.ConfidenceClustering != ClusteringFragmented {
		t.Fatalf("expected fragmented, got %s", signal.ConfidenceClustering)
	}
}

func TestProcessStrongClustering(t *testing.T) {
	a := NewAdvisor(DefaultConfig())
	verdicts := []verdict.Verdict{
		v("A", "approve", 0.90),
		v("B", "approve", 0.85),
		v("C", "approve", 0.80),
		v("D", "reject", 0.70),
	}

	signal := a.Process(verdicts)

	if signal.ConfidenceClustering != ClusteringStrong {
		t.Fatalf("expected strong, got %s", signal.ConfidenceClustering)
	}
}

func TestProcessModerateMixedVerdicts(t *testing.T) {
	a := NewAdvisor(DefaultConfig())
	verdicts := []verdict.Verdict{
		v("KayGee", "approve", 0.94),
		v("ECM", "approve", 0.78),
		v("Caleon", "reject", 0.91),
	}

	signal := a.Process(verdicts)

	if signal.DominantVerdict != "approve" {
		t.Fatalf("expected approve dominant, got %q", signal.DominantVerdict)
	}
	if signal.ConfidenceClustering != ClusteringModerate {
		t.Fatalf("expected moderate, got %s", signal.ConfidenceClustering)
	}
	if signal.Recommendation != PauseAndVerify {
		t.Fatalf("expected pause_verify, got %s", signal.Recommendation)
	}
	if signal.Distribution["approve"] != 2 || signal.Distribution["reject"] != 1 {
		t.Fatalf("unexpected distribution %v", signal.Distribution)
	}
}

func TestProcessNonFiniteConfidenceSanitized(t *testing.T) {
	a := NewAdvisor(DefaultConfig())
	verdicts := []verdict.Verdict{
		v("A", "approve", math.NaN()),
		v("B", "approve", 0.9),
	}

	signal := a.Process(verdicts)

	for _, p := range signal.SoftmaxProbabilities {
		if math.IsNaN(p.Probability) || math.IsInf(p.Probability, 0) {
			t.Fatalf("non-finite probability for %s", p.CoreName)
		}
	}
	if math.IsNaN(signal.ConsensusLevel) {
		t.Fatal("non-finite consensus level")
	}
}

func TestProcessHigherTemperatureFlattens(t *testing.T) {
	verdicts := []verdict.Verdict{
		v("A", "approve", 0.95),
		v("B", "reject", 0.20),
	}

	sharp := NewAdvisor(Config{Temperature: 0.5}).Process(verdicts)
	flat := NewAdvisor(Config{Temperature: 4.0}).Process(verdicts)

	if flat.SoftmaxProbabilities[0].Probability >= sharp.SoftmaxProbabilities[0].Probability {
		t.Fatalf("higher temperature should flatten: sharp=%f flat=%f",
			sharp.SoftmaxProbabilities[0].Probability, flat.SoftmaxProbabilities[0].Probability)
	}
}

func TestRecommendationThresholds(t *testing.T) {
	cases := []struct {
		consensus float64
		outlier   bool
		want      Recommendation
	}{
		{0.95, false, Proceed},
		{0.90, false, Proceed},
		{0.89, false, ProceedCautiously},
		{0.75, false, ProceedCautiously},
		{0.74, false, PauseAndVerify},
		{0.60, false, PauseAndVerify},
		{0.59, false, EscalateToReview},
		{0.10, false, EscalateToReview},
		{0.95, true, OutlierInvestigation},
		{0.80, true, OutlierInvestigation},
		{0.79, true, ProceedCautiously},
		{0.65, true, PauseAndVerify},
		{0.30, true, EscalateToReview},
	}
	for _, c := range cases {
		got := mapRecommendation(c.consensus, c.outlier)
		if got != c.want {
			t.Errorf("mapRecommendation(%.2f, %v) = %s, want %s", c.consensus, c.outlier, got, c.want)
		}
	}
}
