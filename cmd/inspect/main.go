package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/cali-systems/core4-advisory/go-advisor/internal/audit"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to advisory_audit.db")
	last := flag.Int("last", 20, "show N most recent entries")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/advisory_audit.db [--last N] [--json]")
		os.Exit(2)
	}

	matrix, err := audit.NewMatrix(*dbPath, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer matrix.Close()

	if err := run(matrix, *last, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(matrix *audit.Matrix, last int, jsonOut bool) error {
	summary, err := matrix.Summarize()
	if err != nil {
		return err
	}
	entries, err := matrix.Recent(last)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"summary": summary,
			"entries": entries,
		})
	}

	printSummary(summary)
	printEntries(entries)
	return nil
}

// #endregion main

// #region output

func printSummary(summary audit.Summary) {
	fmt.Printf("Retained entries: %d\n", summary.TotalRecorded)

	fmt.Println("\nBy consensus bucket:")
	printCounts(summary.ByConsensusBucket)
	fmt.Println("\nBy recommendation:")
	printCounts(summary.ByRecommendation)
}

func printCounts(counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-20s %d\n", k, counts[k])
	}
}

func printEntries(entries []audit.Entry) {
	if len(entries) == 0 {
		fmt.Println("\nno entries")
		return
	}

	fmt.Printf("\n%-10s  %-24s  %-9s  %-20s  %s\n",
		"Entry", "Context", "Consensus", "Recommendation", "Time")
	fmt.Printf("%-10s  %-24s  %-9s  %-20s  %s\n",
		"----------", "------------------------", "---------", "--------------------", "--------------------")

	for _, e := range entries {
		fmt.Printf("%-10s  %-24s  %9.3f  %-20s  %s\n",
			shortID(e.EntryID), truncate(e.DecisionContext, 24),
			e.Advisory.ConsensusLevel, e.Advisory.Recommendation,
			e.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

// #endregion output
