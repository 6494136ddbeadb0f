// Package verdict acquires peer verdicts: endpoint discovery, a concurrent
// HTTP fan-out across the council, and per-peer outcome classification. One
// attempt per endpoint per cycle; failures degrade, never abort.
package verdict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cali-systems/core4-advisory/go-advisor/internal/shape"
)

// #region acquirer

const defaultTimeout = 5 * time.Second

// Acquirer queries the endpoint set and extracts verdicts from whatever
// each peer returns.
type Acquirer struct {
	client  *http.Client
	timeout time.Duration
}

// NewAcquirer builds an acquirer with the given per-endpoint timeout.
func NewAcquirer(timeout time.Duration) *Acquirer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Acquirer{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// #endregion acquirer

// #region collect

// Collect queries every endpoint concurrently and returns the usable
// verdicts plus one outcome per endpoint, both in endpoint order. A council
// where every peer fails yields an empty verdict slice, not an error.
func (a *Acquirer) Collect(ctx context.Context, decisionContext string, endpoints []EndpointConfig) ([]Verdict, []PeerOutcome) {
	results := make([]*Verdict, len(endpoints))
	outcomes := make([]PeerOutcome, len(endpoints))

	var g errgroup.Group
	for i, ep := range endpoints {
		i, ep := i, ep
		g.Go(func() error {
			results[i], outcomes[i] = a.query(ctx, decisionContext, ep)
			return nil
		})
	}
	g.Wait()

	verdicts := make([]Verdict, 0, len(endpoints))
	for i, v := range results {
		if v != nil {
			verdicts = append(verdicts, *v)
			continue
		}
		log.Printf("[ACQ] peer %s %s: %s", endpoints[i].CoreName, outcomes[i].Status, outcomes[i].Detail)
	}
	return verdicts, outcomes
}

// query performs one attempt against one endpoint.
func (a *Acquirer) query(ctx context.Context, decisionContext string, ep EndpointConfig) (*Verdict, PeerOutcome) {
	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := buildRequest(reqCtx, decisionContext, ep)
	if err != nil {
		return nil, PeerOutcome{CoreName: ep.CoreName, Status: PeerUnavailable, Detail: err.Error()}
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, PeerOutcome{CoreName: ep.CoreName, Status: PeerUnavailable, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, PeerOutcome{
			CoreName: ep.CoreName,
			Status:   PeerUnavailable,
			Detail:   fmt.Sprintf("status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, PeerOutcome{CoreName: ep.CoreName, Status: PeerUnavailable, Detail: err.Error()}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		// The peer answered but said nothing usable.
		return nil, PeerOutcome{CoreName: ep.CoreName, Status: PeerSilent, Detail: "empty response body"}
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, PeerOutcome{CoreName: ep.CoreName, Status: PeerSilent, Detail: "non-JSON response body"}
	}

	return extractVerdict(ep, payload)
}

func buildRequest(ctx context.Context, decisionContext string, ep EndpointConfig) (*http.Request, error) {
	if strings.EqualFold(ep.Method, http.MethodGet) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		q := req.URL.Query()
		q.Set(ep.PayloadKey, decisionContext)
		req.URL.RawQuery = q.Encode()
		return req, nil
	}

	body, err := json.Marshal(map[string]string{ep.PayloadKey: decisionContext})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// #endregion collect

// #region extraction

// extractVerdict runs the shared shape rules against a decoded payload and
// classifies the peer accordingly.
func extractVerdict(ep EndpointConfig, payload any) (*Verdict, PeerOutcome) {
	obs := shape.Observe(payload)
	if !obs.Conforming {
		return nil, PeerOutcome{CoreName: ep.CoreName, Status: PeerSilent, Detail: obs.Reason}
	}

	object := payload.(map[string]any)
	assertion, assertionRule, _ := shape.FindAssertion(object)
	confidence, confidenceRule, _ := shape.FindConfidence(object)
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	coreName := ep.CoreName
	if hinted, ok := object["core_name"].(string); ok && hinted != "" {
		coreName = hinted
	}

	v := &Verdict{
		CoreName:   coreName,
		Assertion:  assertion,
		Confidence: confidence,
		Metadata:   residualMetadata(object, assertionRule, confidenceRule),
	}
	return v, PeerOutcome{CoreName: coreName, Status: PeerAvailable, Detail: "conforming assertion"}
}

// residualMetadata copies the payload minus the fields the extraction rules
// consumed, so peer-specific context survives alongside the verdict.
func residualMetadata(object map[string]any, consumedRules ...string) map[string]any {
	consumed := make(map[string]bool, len(consumedRules))
	for _, rule := range consumedRules {
		root, _, _ := strings.Cut(rule, ".")
		consumed[root] = true
	}
	meta := make(map[string]any)
	for k, v := range object {
		if !consumed[k] {
			meta[k] = v
		}
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

// #endregion extraction
