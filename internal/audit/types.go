package audit

import (
	"time"

	"github.com/cali-systems/core4-advisory/go-advisor/internal/consensus"
)

// #region audit-entry

// Entry is one recorded advisory computation. Entries are written once and
// never edited; the matrix may evict the oldest entries past its retention
// capacity but never reorders or rewrites what it retains.
type Entry struct {
	EntryID         string
	DecisionContext string
	Advisory        consensus.AdvisorySignal
	VerdictSources  []string
	Derivation      map[string]any
	CreatedAt       time.Time
}

// #endregion audit-entry

// #region summary

// Summary aggregates the retained advisory log.
type Summary struct {
	TotalRecorded     int
	ByConsensusBucket map[string]int
	ByRecommendation  map[string]int
}

// consensusBucket bins a consensus level for summary reporting.
func consensusBucket(level float64) string {
	switch {
	case level >= 0.90:
		return "unanimous"
	case level >= 0.75:
		return "strong"
	case level >= 0.60:
		return "moderate"
	case level >= 0.40:
		return "fragmented"
	default:
		return "conflicted"
	}
}

// #endregion summary
