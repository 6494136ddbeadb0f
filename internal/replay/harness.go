// Package replay runs recorded verdict sets through the advisor and checks
// that the resulting signals are deterministic, internally consistent, and
// match the fixture's expectations. Operates entirely in-memory.
package replay

import (
	"fmt"
	"reflect"

	"github.com/cali-systems/core4-advisory/go-advisor/internal/consensus"
)

// #region types

// CaseResult captures the outcome of replaying one fixture case.
type CaseResult struct {
	Name     string
	Passed   bool
	Failures []string
	Signal   consensus.AdvisorySignal
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Description string
	TotalCases  int
	Passed      int
	Failed      int
	Results     []CaseResult
}

// #endregion types

// #region replay

// Replay runs every fixture case through a fresh advisor twice: the two
// signals must be identical, pass the integrity check, and satisfy the
// case's expectations.
func Replay(fixture *Fixture) Summary {
	advisor := consensus.NewAdvisor(fixture.AdvisorConfig())
	summary := Summary{
		Description: fixture.Description,
		TotalCases:  len(fixture.Cases),
	}

	for _, c := range fixture.Cases {
		result := runCase(advisor, c)
		if result.Passed {
			summary.Passed++
		} else {
			summary.Failed++
		}
		summary.Results = append(summary.Results, result)
	}
	return summary
}

func runCase(advisor *consensus.Advisor, c FixtureCase) CaseResult {
	verdicts := c.ToVerdicts()
	first := advisor.Process(verdicts)
	second := advisor.Process(c.ToVerdicts())

	result := CaseResult{Name: c.Name, Signal: first}

	if !reflect.DeepEqual(first, second) {
		result.Failures = append(result.Failures, "non-deterministic signal across identical runs")
	}
	if check := consensus.Check(first); !check.Passed {
		result.Failures = append(result.Failures, fmt.Sprintf("integrity check: %s", check.Reason))
	}
	result.Failures = append(result.Failures, checkExpectations(c.Expect, first)...)

	result.Passed = len(result.Failures) == 0
	return result
}

func checkExpectations(expect CaseExpectation, signal consensus.AdvisorySignal) []string {
	var failures []string

	if expect.Recommendation != "" && string(signal.Recommendation) != expect.Recommendation {
		failures = append(failures, fmt.Sprintf("recommendation %q, want %q", signal.Recommendation, expect.Recommendation))
	}
	if expect.Clustering != "" && string(signal.ConfidenceClustering) != expect.Clustering {
		failures = append(failures, fmt.Sprintf("clustering %q, want %q", signal.ConfidenceClustering, expect.Clustering))
	}
	if expect.Outlier != "" && signal.OutlierDetected != expect.Outlier {
		failures = append(failures, fmt.Sprintf("outlier %q, want %q", signal.OutlierDetected, expect.Outlier))
	}
	if expect.NoOutlier && signal.OutlierDetected != "" {
		failures = append(failures, fmt.Sprintf("unexpected outlier %q", signal.OutlierDetected))
	}
	if expect.MinConsensus != nil && signal.ConsensusLevel < *expect.MinConsensus {
		failures = append(failures, fmt.Sprintf("consensus %.3f below minimum %.3f", signal.ConsensusLevel, *expect.MinConsensus))
	}
	if expect.MaxConsensus != nil && signal.ConsensusLevel > *expect.MaxConsensus {
		failures = append(failures, fmt.Sprintf("consensus %.3f above maximum %.3f", signal.ConsensusLevel, *expect.MaxConsensus))
	}
	return failures
}

// #endregion replay
