package consensus

import (
	"testing"

	"github.com/cali-systems/core4-advisory/go-advisor/internal/verdict"
)

func TestCheckPassesOnAdvisorOutput(t *testing.T) {
	a := NewAdvisor(DefaultConfig())
	signal := a.Process([]verdict.Verdict{
		v("KayGee", "approve", 0.94),
		v("ECM", "approve", 0.78),
		v("Caleon", "reject", 0.91),
	})

	result := Check(signal)

	if !result.Passed {
		t.Fatalf("expected pass: %s", result.Reason)
	}
}

func TestCheckPassesOnEmptySignal(t *testing.T) {
	signal := NewAdvisor(DefaultConfig()).Process(nil)
	result := Check(signal)
	if !result.Passed {
		t.Fatalf("expected pass: %s", result.Reason)
	}
}

func TestCheckFailsOnBrokenProbabilitySum(t *testing.T) {
	signal := AdvisorySignal{
		ConsensusLevel: 0.5,
		SoftmaxProbabilities: []CoreProbability{
			{CoreName: "A", Probability: 0.9},
			{CoreName: "B", Probability: 0.9},
		},
		Recommendation: EscalateToReview,
	}

	result := Check(signal)

	if result.Passed {
		t.Fatal("expected failure on probability sum")
	}
}

func TestCheckFailsOnUnattributedOutlier(t *testing.T) {
	signal := AdvisorySignal{
		ConsensusLevel: 0.85,
		SoftmaxProbabilities: []CoreProbability{
			{CoreName: "A", Probability: 0.5},
			{CoreName: "B", Probability: 0.5},
		},
		OutlierDetected: "ghost",
		Recommendation:  OutlierInvestigation,
	}

	result := Check(signal)

	if result.Passed {
		t.Fatal("expected failure on unknown outlier core")
	}
}

func TestCheckFailsOnInconsistentRecommendation(t *testing.T) {
	signal := AdvisorySignal{
		ConsensusLevel: 0.95,
		SoftmaxProbabilities: []CoreProbability{
			{CoreName: "A", Probability: 1.0},
		},
		Recommendation: EscalateToReview,
	}

	result := Check(signal)

	if result.Passed {
		t.Fatal("expected failure on recommendation mismatch")
	}
}
