package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cali-systems/core4-advisory/go-advisor/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to verdict fixture JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	fixture, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		os.Exit(2)
	}

	summary := replay.Replay(fixture)
	os.Exit(printSummary(summary))
}

// #endregion main

// #region output

func printSummary(summary replay.Summary) int {
	if summary.Description != "" {
		fmt.Printf("Fixture: %s\n\n", summary.Description)
	}

	fmt.Printf("%-28s| %-10s| %-20s| %s\n", "Case", "Consensus", "Recommendation", "Result")
	fmt.Printf("%-28s+%-11s+%-21s+%s\n",
		"----------------------------", "-----------", "---------------------", "--------")

	for _, r := range summary.Results {
		result := "OK"
		if !r.Passed {
			result = "FAIL"
		}
		fmt.Printf("%-28s| %10.3f| %-20s| %s\n",
			r.Name, r.Signal.ConsensusLevel, r.Signal.Recommendation, result)
		for _, failure := range r.Failures {
			fmt.Printf("    - %s\n", failure)
		}
	}

	fmt.Printf("\nSummary: %d total, %d pass, %d fail\n",
		summary.TotalCases, summary.Passed, summary.Failed)

	if summary.Failed > 0 {
		return 1
	}
	return 0
}

// #endregion output
