package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cali-systems/core4-advisory/go-advisor/internal/audit"
	"github.com/cali-systems/core4-advisory/go-advisor/internal/config"
	"github.com/cali-systems/core4-advisory/go-advisor/internal/consensus"
	"github.com/cali-systems/core4-advisory/go-advisor/internal/coordinator"
	"github.com/cali-systems/core4-advisory/go-advisor/internal/hub"
	"github.com/cali-systems/core4-advisory/go-advisor/internal/verdict"
)

// #region main
func main() {
	cfg, err := config.Load(os.Getenv("CORE4_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	dbPath := envOr("CORE4_AUDIT_DB", cfg.Audit.DBPath)
	baseDir := envOr("CORE4_BASE_DIR", ".")

	matrix, err := audit.NewMatrix(dbPath, cfg.Audit.Capacity)
	if err != nil {
		log.Fatalf("failed to open audit matrix: %v", err)
	}
	defer matrix.Close()

	endpoints := verdict.DiscoverEndpoints(baseDir)
	acquirer := verdict.NewAcquirer(cfg.Timeout())
	stateHub := hub.New(cfg.Hub.EventCap, cfg.Hub.ControlCap)
	advisor := consensus.NewAdvisor(consensus.Config{Temperature: cfg.SoftmaxTemperature})
	coord := coordinator.New(acquirer, endpoints, advisor, matrix, stateHub, coordinator.KeywordInferrer{})

	fmt.Println("Core 4 Advisory Controller ready.")
	fmt.Printf("  Audit: %s | Peers: %d\n", dbPath, len(endpoints))
	for _, ep := range endpoints {
		fmt.Printf("    %s -> %s\n", ep.CoreName, ep.URL)
	}
	fmt.Println("Type a decision context (or 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		decisionContext := strings.TrimSpace(scanner.Text())
		if decisionContext == "" {
			continue
		}
		if decisionContext == "quit" || decisionContext == "exit" {
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		signal := coord.Advise(ctx, decisionContext)
		cancel()

		action := coord.Interpret(decisionContext, signal)

		fmt.Printf("\n  dominant:       %s\n", orNone(signal.DominantVerdict))
		fmt.Printf("  consensus:      %.3f (%s)\n", signal.ConsensusLevel, signal.ConfidenceClustering)
		fmt.Printf("  recommendation: %s\n", signal.Recommendation)
		fmt.Printf("  action:         %s\n", action.Action)
		if signal.OutlierDetected != "" {
			fmt.Printf("  outlier:        %s\n", signal.OutlierDetected)
		}
		if action.TargetCore != "" {
			fmt.Printf("  routed to:      %s (%s)\n", action.TargetCore, action.AssertionLevel)
		}
		fmt.Printf("  %s\n\n", signal.Explanation)
	}
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// #endregion helpers
