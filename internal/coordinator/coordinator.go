// Package coordinator ties the pipeline together: acquire verdicts, update
// the hub's peer picture, compute the advisory, and record it in the audit
// matrix. It advises only; dispatching actions stays with the caller.
package coordinator

import (
	"context"
	"log"

	"github.com/cali-systems/core4-advisory/go-advisor/internal/audit"
	"github.com/cali-systems/core4-advisory/go-advisor/internal/consensus"
	"github.com/cali-systems/core4-advisory/go-advisor/internal/hub"
	"github.com/cali-systems/core4-advisory/go-advisor/internal/verdict"
)

// #region interfaces

// VerdictSource collects verdicts for a decision context. The production
// implementation is verdict.Acquirer; tests inject stubs.
type VerdictSource interface {
	Collect(ctx context.Context, decisionContext string, endpoints []verdict.EndpointConfig) ([]verdict.Verdict, []verdict.PeerOutcome)
}

// PeerInferrer resolves which peer a decision context concerns, if any.
type PeerInferrer interface {
	Infer(decisionContext string) (coreName string, ok bool)
}

// #endregion interfaces

// #region coordinator-struct

// Coordinator runs advisory cycles against a fixed endpoint set.
type Coordinator struct {
	source    VerdictSource
	endpoints []verdict.EndpointConfig
	advisor   *consensus.Advisor
	matrix    *audit.Matrix
	stateHub  *hub.Hub
	inferrer  PeerInferrer
}

// New wires a coordinator. matrix, stateHub, and inferrer may be nil; the
// corresponding side effects are simply skipped.
func New(source VerdictSource, endpoints []verdict.EndpointConfig, advisor *consensus.Advisor, matrix *audit.Matrix, stateHub *hub.Hub, inferrer PeerInferrer) *Coordinator {
	return &Coordinator{
		source:    source,
		endpoints: endpoints,
		advisor:   advisor,
		matrix:    matrix,
		stateHub:  stateHub,
		inferrer:  inferrer,
	}
}

// #endregion coordinator-struct

// #region advise

// Advise runs one full advisory cycle. Acquisition failures degrade to a
// smaller council and an audit write failure is logged, never surfaced; the
// advisory signal itself is always produced.
func (c *Coordinator) Advise(ctx context.Context, decisionContext string) consensus.AdvisorySignal {
	verdicts, outcomes := c.source.Collect(ctx, decisionContext, c.endpoints)

	if c.stateHub != nil {
		assertions := make(map[string]string, len(verdicts))
		for _, v := range verdicts {
			assertions[v.CoreName] = v.Assertion
		}
		for _, o := range outcomes {
			c.stateHub.UpdatePeer(o.CoreName, string(o.Status), assertions[o.CoreName])
		}
	}

	signal := c.advisor.Process(verdicts)
	log.Printf("[COORD] advisory for %q: consensus=%.3f recommendation=%s peers=%d/%d",
		decisionContext, signal.ConsensusLevel, signal.Recommendation, len(verdicts), len(c.endpoints))

	if c.matrix != nil {
		sources := make([]string, len(verdicts))
		for i, v := range verdicts {
			sources[i] = v.CoreName
		}
		derivation := map[string]any{
			"consensus_calculation_method": "softmax_weighted",
			"outlier_detection_method":     "iqr",
			"peers_queried":                len(c.endpoints),
			"peers_responded":              len(verdicts),
		}
		if _, err := c.matrix.Record(decisionContext, signal, sources, derivation); err != nil {
			log.Printf("[COORD] audit record failed: %v", err)
		}
	}

	if c.stateHub != nil {
		c.stateHub.RecordEvent("advisory", map[string]any{
			"decision_context": decisionContext,
			"consensus_level":  signal.ConsensusLevel,
			"recommendation":   string(signal.Recommendation),
			"dominant_verdict": signal.DominantVerdict,
		})
	}

	return signal
}

// #endregion advise
