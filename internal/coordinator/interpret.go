package coordinator

import (
	"strings"
	"time"

	"github.com/cali-systems/core4-advisory/go-advisor/internal/consensus"
)

// #region action-recommendation

// ActionRecommendation is the coordinator's reading of an advisory signal:
// what the caller should do, and toward which peer, if one was inferable.
// Nothing here is dispatched; the recommendation is advisory output only.
type ActionRecommendation struct {
	Action         string `json:"action"`
	Justification  string `json:"justification"`
	TargetCore     string `json:"target_core,omitempty"`
	AssertionLevel string `json:"assertion_level,omitempty"`
}

const (
	ActionExecuteImmediately = "execute_immediately"
	ActionExecuteMonitored   = "execute_with_monitoring"
	ActionDeferAndValidate   = "defer_and_validate"
	ActionEscalateManual     = "escalate_for_manual_review"
	ActionInvestigateOutlier = "investigate_outlier"
)

// commandThreshold splits control entries into commands and suggestions.
const commandThreshold = 0.7

// #endregion action-recommendation

// #region interpret

// Interpret maps an advisory signal to an action recommendation. When the
// inferrer resolves a target peer from the decision context, a control entry
// is appended to the hub so the peer can observe the advisory.
func (c *Coordinator) Interpret(decisionContext string, signal consensus.AdvisorySignal) ActionRecommendation {
	rec := ActionRecommendation{
		Action:        actionFor(signal.Recommendation),
		Justification: signal.Explanation,
	}

	if c.inferrer == nil {
		return rec
	}
	target, ok := c.inferrer.Infer(decisionContext)
	if !ok {
		return rec
	}

	level := "suggestion"
	if signal.ConsensusLevel > commandThreshold {
		level = "command"
	}
	rec.TargetCore = target
	rec.AssertionLevel = level

	if c.stateHub != nil {
		c.stateHub.RecordControl(target, level, map[string]any{
			"action":           rec.Action,
			"decision_context": decisionContext,
			"consensus_level":  signal.ConsensusLevel,
			"timestamp":        time.Now().UTC().Unix(),
		})
	}
	return rec
}

func actionFor(r consensus.Recommendation) string {
	switch r {
	case consensus.Proceed:
		return ActionExecuteImmediately
	case consensus.ProceedCautiously:
		return ActionExecuteMonitored
	case consensus.PauseAndVerify:
		return ActionDeferAndValidate
	case consensus.OutlierInvestigation:
		return ActionInvestigateOutlier
	default:
		return ActionEscalateManual
	}
}

// #endregion interpret

// #region keyword-inferrer

// KeywordInferrer resolves peers from decision-context keywords.
type KeywordInferrer struct{}

var peerKeywords = []struct {
	keyword string
	core    string
}{
	{"kaygee", "KayGee_1.0"},
	{"empirical", "KayGee_1.0"},
	{"ecm", "UMC_Core_ECM"},
	{"convergent", "UMC_Core_ECM"},
	{"genesis", "Caleon_Genesis_1.12"},
	{"cali_x", "Cali_X_One"},
}

// Infer matches the first known keyword in the decision context.
func (KeywordInferrer) Infer(decisionContext string) (string, bool) {
	lowered := strings.ToLower(decisionContext)
	for _, pk := range peerKeywords {
		if strings.Contains(lowered, pk.keyword) {
			return pk.core, true
		}
	}
	return "", false
}

// #endregion keyword-inferrer
