package shape

import "testing"

func TestAssertionRulePrecedence(t *testing.T) {
	// Top-level "assertion" outranks everything else, including a nested
	// final_verdict and a top-level "verdict".
	payload := map[string]any{
		"assertion": "approve",
		"verdict":   "reject",
		"final_verdict": map[string]any{
			"status": "defer",
		},
	}
	text, rule, ok := FindAssertion(payload)
	if !ok {
		t.Fatal("expected a match")
	}
	if text != "approve" || rule != "assertion" {
		t.Fatalf("got %q via %q", text, rule)
	}
}

func TestAssertionNestedBeatsTopLevelVerdict(t *testing.T) {
	payload := map[string]any{
		"verdict": "reject",
		"final_verdict": map[string]any{
			"decision": "approve",
		},
	}
	text, rule, ok := FindAssertion(payload)
	if !ok {
		t.Fatal("expected a match")
	}
	if text != "approve" || rule != "final_verdict.decision" {
		t.Fatalf("got %q via %q", text, rule)
	}
}

func TestConfidenceRulePrecedence(t *testing.T) {
	payload := map[string]any{
		"confidence": 0.9,
		"final_verdict": map[string]any{
			"probability": 0.1,
		},
	}
	num, rule, ok := FindConfidence(payload)
	if !ok {
		t.Fatal("expected a match")
	}
	if num != 0.9 || rule != "confidence" {
		t.Fatalf("got %v via %q", num, rule)
	}
}

func TestConfidenceInevitabilityAlias(t *testing.T) {
	payload := map[string]any{
		"final_verdict": map[string]any{
			"inevitability": 0.66,
			"confidence":    0.2,
		},
	}
	num, rule, ok := FindConfidence(payload)
	if !ok {
		t.Fatal("expected a match")
	}
	if num != 0.66 || rule != "final_verdict.inevitability" {
		t.Fatalf("got %v via %q", num, rule)
	}
}

func TestConfidenceDeepMetaPath(t *testing.T) {
	payload := map[string]any{
		"final_verdict": map[string]any{
			"meta": map[string]any{"confidence": 0.42},
		},
	}
	num, rule, ok := FindConfidence(payload)
	if !ok {
		t.Fatal("expected a match")
	}
	if num != 0.42 || rule != "final_verdict.meta.confidence" {
		t.Fatalf("got %v via %q", num, rule)
	}
}

func TestFindConfidenceUnclamped(t *testing.T) {
	// The rule table reports raw values; clamping is the acquirer's job.
	num, _, ok := FindConfidence(map[string]any{"confidence": 1.7})
	if !ok || num != 1.7 {
		t.Fatalf("expected raw 1.7, got %v ok=%v", num, ok)
	}
}

func TestCoerceNumberRejectsGarbage(t *testing.T) {
	for _, v := range []any{"not-a-number", true, nil, map[string]any{}} {
		if _, ok := coerceNumber(v); ok {
			t.Fatalf("expected rejection of %v", v)
		}
	}
}
