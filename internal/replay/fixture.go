package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cali-systems/core4-advisory/go-advisor/internal/consensus"
	"github.com/cali-systems/core4-advisory/go-advisor/internal/verdict"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string        `json:"description"`
	Temperature float64       `json:"temperature,omitempty"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureCase is one recorded advisory cycle: the verdicts a council
// returned plus the expected advisory properties.
type FixtureCase struct {
	Name            string           `json:"name"`
	DecisionContext string           `json:"decision_context"`
	Verdicts        []FixtureVerdict `json:"verdicts"`
	Expect          CaseExpectation  `json:"expect"`
}

// FixtureVerdict mirrors verdict.Verdict with JSON tags.
type FixtureVerdict struct {
	CoreName   string  `json:"core_name"`
	Assertion  string  `json:"verdict"`
	Confidence float64 `json:"confidence"`
}

// CaseExpectation captures what the advisory signal must satisfy. Zero-value
// fields are not checked; consensus bounds use pointers so 0 is expressible.
type CaseExpectation struct {
	Recommendation string   `json:"recommendation,omitempty"`
	Clustering     string   `json:"clustering,omitempty"`
	Outlier        string   `json:"outlier,omitempty"`
	NoOutlier      bool     `json:"no_outlier,omitempty"`
	MinConsensus   *float64 `json:"min_consensus,omitempty"`
	MaxConsensus   *float64 `json:"max_consensus,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Cases) == 0 {
		return nil, fmt.Errorf("fixture %s has no cases", path)
	}
	return &f, nil
}

// ToVerdicts converts a case's fixture verdicts to domain verdicts.
func (c *FixtureCase) ToVerdicts() []verdict.Verdict {
	out := make([]verdict.Verdict, len(c.Verdicts))
	for i, fv := range c.Verdicts {
		out[i] = verdict.Verdict{
			CoreName:   fv.CoreName,
			Assertion:  fv.Assertion,
			Confidence: fv.Confidence,
		}
	}
	return out
}

// AdvisorConfig derives the advisor configuration for this fixture.
func (f *Fixture) AdvisorConfig() consensus.Config {
	config := consensus.DefaultConfig()
	if f.Temperature > 0 {
		config.Temperature = f.Temperature
	}
	return config
}

// #endregion fixture-loader
